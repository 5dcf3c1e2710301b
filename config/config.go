// Package config resolves the daemon and front-end's runtime
// configuration from CLI flags falling back to environment variables
// falling back to built-in defaults.
package config

import (
	"fmt"
	"os"
)

const (
	DefaultTmpDir = "/tmp"
	// DefaultPort is 0x7264 ("rd"), the same value as shares.DefaultPort;
	// it is duplicated here to avoid a config -> shares import for
	// callers that only need the config surface.
	DefaultPort = 0x7264
)

// Config holds the resolved runtime configuration shared by front-end
// and daemon mode.
type Config struct {
	TmpDir    string
	TCPSocket string
	UDPSocket string
}

// Resolve applies the flag > env-var > default precedence for each
// field. Empty flag values fall through to the corresponding
// environment variable, then to the built-in default.
func Resolve(flagTmpDir, flagTCPSocket, flagUDPSocket string) Config {
	return Config{
		TmpDir:    firstNonEmpty(flagTmpDir, os.Getenv("RDIR_TMPDIR"), DefaultTmpDir),
		TCPSocket: firstNonEmpty(flagTCPSocket, os.Getenv("RDIR_TCP_SOCKET"), ""),
		UDPSocket: firstNonEmpty(flagUDPSocket, os.Getenv("RDIR_UDP_SOCKET"), ""),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// UserDir returns "<tmpdir>/rdir-<uid>", the per-user directory holding
// the control socket and log files.
func (c Config) UserDir() string {
	return fmt.Sprintf("%s/rdir-%d", c.TmpDir, os.Getuid())
}

// SocketPath returns "<tmpdir>/rdir-<uid>/rdir.sock".
func (c Config) SocketPath() string {
	return c.UserDir() + "/rdir.sock"
}

// LogDir returns "<tmpdir>/rdir-<uid>/logs".
func (c Config) LogDir() string {
	return c.UserDir() + "/logs"
}
