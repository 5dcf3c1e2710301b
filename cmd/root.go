package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ermitavulpe/rdir/config"
)

var (
	flagTmpDir    string
	flagTCPSocket string
	flagUDPSocket string
)

var rootCmd = &cobra.Command{
	Use:   "rdir",
	Short: "Peer-to-peer LAN file sharing",
	Long: `rdir lets you expose local directories as shares and mount other
peers' shares on your LAN, through a long-lived per-user daemon that
holds all network state.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagTmpDir, "tmpdir", "t", "", "base temp directory (default /tmp, env RDIR_TMPDIR)")
	rootCmd.PersistentFlags().StringVar(&flagTCPSocket, "tcp-socket", "", "peer TCP listen address (env RDIR_TCP_SOCKET)")
	rootCmd.PersistentFlags().StringVar(&flagUDPSocket, "udp-socket", "", "discovery UDP listen address (env RDIR_UDP_SOCKET)")
}

func resolveConfig() config.Config {
	return config.Resolve(flagTmpDir, flagTCPSocket, flagUDPSocket)
}
