package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ermitavulpe/rdir/control"
)

var shareCmd = &cobra.Command{
	Use:     "share",
	Aliases: []string{"s", "-S"},
	Short:   "Manage local shares",
}

var shareLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List local shares",
	Run: func(cmd *cobra.Command, args []string) {
		resp := roundTrip(control.ClientMessage{Kind: control.KindShare, ShareKind: control.ShareLs}, true)
		exitOnErr(resp)
		for _, s := range resp.Shares {
			fmt.Printf("%s\t%s\t%d participant(s)\n", s.Name, s.Path, s.Participants)
		}
	},
}

var shareRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a local share",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp := roundTrip(control.ClientMessage{
			Kind:       control.KindShare,
			ShareKind:  control.ShareRemove,
			RemoveName: args[0],
		}, true)
		exitOnErr(resp)
		fmt.Println("removed")
	},
}

var shareShareCmd = &cobra.Command{
	Use:   "share PATH [NAME]",
	Short: "Expose a local directory as a share",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		resp := roundTrip(control.ClientMessage{
			Kind:      control.KindShare,
			ShareKind: control.ShareShare,
			SharePath: args[0],
			ShareName: name,
		}, true)
		exitOnErr(resp)
		fmt.Println("shared")
	},
}

func init() {
	rootCmd.AddCommand(shareCmd)
	shareCmd.AddCommand(shareLsCmd, shareRemoveCmd, shareShareCmd)
}
