package rclient

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"syscall"

	"github.com/ermitavulpe/rdir/config"
)

// spawnDaemon binds the control socket, re-execs the current binary in
// hidden daemon mode with the listener inherited on fd 3, and returns
// once the child has been started — it does not wait for the daemon to
// finish initialising; the caller retries connect with backoff.
//
// Go cannot safely fork() after the runtime has started extra OS
// threads, so this re-exec stands in for the original's double fork:
// Setsid gives the child its own session (equivalent to the fork+setsid
// between the two forks), Dir/Stdin/Stdout/Stderr below reproduce the
// chdir and fd-0/1/2-to-/dev/null steps, and passing the already-bound
// listener across the exec boundary avoids the TOCTOU race on the
// socket path that a literal "child creates its own listener" approach
// would reintroduce.
func spawnDaemon(cfg config.Config) error {
	if err := os.MkdirAll(cfg.UserDir(), 0o700); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}

	sockPath := cfg.SocketPath()
	// A crashed daemon leaves its socket file behind; connect already
	// failed, so clear it before binding fresh.
	_ = os.Remove(sockPath)

	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		return fmt.Errorf("bind control socket: %w", err)
	}
	unixLn, ok := ln.(*net.UnixListener)
	if !ok {
		ln.Close()
		return fmt.Errorf("unexpected listener type %T", ln)
	}
	lnFile, err := unixLn.File()
	if err != nil {
		ln.Close()
		return fmt.Errorf("obtain listener fd: %w", err)
	}
	defer lnFile.Close()
	defer ln.Close()

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve own executable path: %w", err)
	}

	cmd := exec.Command(exe, "__daemon")
	cmd.Dir = cfg.UserDir()
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.ExtraFiles = []*os.File{lnFile}
	cmd.Env = os.Environ()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	// The daemon is detached; releasing it here means Go's runtime
	// won't wait on or signal it as a child of this short-lived
	// front-end process.
	return cmd.Process.Release()
}
