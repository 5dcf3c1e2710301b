package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ermitavulpe/rdir/control"
)

var killCmd = &cobra.Command{
	Use:     "kill",
	Aliases: []string{"k", "-K"},
	Short:   "Ask the daemon to shut down",
	Run: func(cmd *cobra.Command, args []string) {
		resp := roundTrip(control.ClientMessage{Kind: control.KindKill}, false)
		exitOnErr(resp)
		fmt.Println("daemon stopped")
	},
}

func init() { rootCmd.AddCommand(killCmd) }
