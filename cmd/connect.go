package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ermitavulpe/rdir/control"
)

var connectCmd = &cobra.Command{
	Use:     "connect",
	Aliases: []string{"c", "-C"},
	Short:   "Manage mounted remote shares",
}

var connectLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List mounted remote shares",
	Run: func(cmd *cobra.Command, args []string) {
		resp := roundTrip(control.ClientMessage{Kind: control.KindConnect, ConnectKind: control.ConnectLs}, true)
		exitOnErr(resp)
		for _, rs := range resp.RemoteShares {
			fmt.Printf("%s → %s: %s\n", rs.Owner, rs.Name, rs.MountPath)
		}
	},
}

var connectMountCmd = &cobra.Command{
	Use:   "mount NAME PATH",
	Short: "Mount a remote share",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		resp := roundTrip(control.ClientMessage{
			Kind:        control.KindConnect,
			ConnectKind: control.ConnectMount,
			MountName:   args[0],
			MountPath:   args[1],
		}, true)
		exitOnErr(resp)
		fmt.Println("mounted")
	},
}

var connectUnmountCmd = &cobra.Command{
	Use:   "unmount NAME",
	Short: "Unmount a remote share",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resp := roundTrip(control.ClientMessage{
			Kind:        control.KindConnect,
			ConnectKind: control.ConnectUnmount,
			UnmountName: args[0],
		}, true)
		exitOnErr(resp)
		fmt.Println("unmounted")
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.AddCommand(connectLsCmd, connectMountCmd, connectUnmountCmd)
}
