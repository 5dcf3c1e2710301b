package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ermitavulpe/rdir/daemon"
)

// daemonCmd is the re-exec target rclient.spawnDaemon launches with the
// bound control listener inherited on fd 3; it is never meant to be
// typed by a user, so it is hidden from help output.
var daemonCmd = &cobra.Command{
	Use:    "__daemon",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return daemon.RunChild(context.Background(), resolveConfig())
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
