package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ermitavulpe/rdir/control"
)

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"l", "-L"},
	Short:   "Show daemon status",
	Run: func(cmd *cobra.Command, args []string) {
		resp := roundTrip(control.ClientMessage{Kind: control.KindLs}, false)
		exitOnErr(resp)
		fmt.Printf("peers: %d\n", resp.StatusPeers)
		fmt.Printf("shares: %d\n", resp.StatusShares)
		fmt.Printf("mounted remote shares: %d\n", resp.StatusRemoteShares)
	},
}

func init() { rootCmd.AddCommand(lsCmd) }
