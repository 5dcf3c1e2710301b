package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ermitavulpe/rdir/control"
)

// discoverCmd exists end to end but is gated rather than implemented:
// guessing a discovery wire protocol that was never specified would be
// fabricating behavior, not implementing it. The daemon always answers
// it with ErrNotImplemented.
var discoverCmd = &cobra.Command{
	Use:     "discover",
	Aliases: []string{"d", "-D"},
	Short:   "Discover peers on the local network (not yet implemented)",
	Run: func(cmd *cobra.Command, args []string) {
		resp := roundTrip(control.ClientMessage{Kind: control.KindDiscover}, true)
		exitOnErr(resp)
		fmt.Println("no peers found")
	},
}

func init() { rootCmd.AddCommand(discoverCmd) }
