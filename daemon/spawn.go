package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/ermitavulpe/rdir/config"
)

// InheritedListenerFD is the file descriptor number the detached child
// expects its pre-bound Unix listener on (stdin/stdout/stderr occupy
// 0-2, ExtraFiles starts at 3).
const InheritedListenerFD = 3

// RunChild is the entry point for the re-exec'd daemon child (see
// rclient.spawnDaemon for the parent side): it reconstructs the inherited Unix
// listener, binds the TCP peer listener fresh, resets the umask, and
// runs the daemon until shutdown. The double-fork's terminal-detach
// duties (setsid, chdir, closed fd 0/1/2) are already satisfied by the
// parent's exec.Cmd before this ever runs (see DESIGN.md on the fork
// substitution).
func RunChild(ctx context.Context, cfg config.Config) error {
	syscall.Umask(0)

	f := os.NewFile(InheritedListenerFD, "rdir.sock")
	if f == nil {
		return fmt.Errorf("inherited listener fd %d not open", InheritedListenerFD)
	}
	unixLn, err := net.FileListener(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reconstruct inherited listener: %w", err)
	}

	tcpAddr := cfg.TCPSocket
	if tcpAddr == "" {
		tcpAddr = fmt.Sprintf(":%d", config.DefaultPort)
	}
	tcpLn, err := net.Listen("tcp4", tcpAddr)
	if err != nil {
		unixLn.Close()
		return fmt.Errorf("bind peer listener on %s: %w", tcpAddr, err)
	}

	logger, closeLog, err := NewLogger(cfg.LogDir())
	if err != nil {
		unixLn.Close()
		tcpLn.Close()
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	d := New(cfg, logger)
	return d.Run(ctx, unixLn, tcpLn)
}
