package rclient

import (
	"fmt"
	"net"
	"time"

	"github.com/ermitavulpe/rdir/config"
)

// Connect returns a connection to the daemon's control socket.
// Commands that require a daemon will spawn one and retry with backoff
// when none is reachable; commands that don't (Ls, Kill) simply fail.
func Connect(cfg config.Config, requiresDaemon bool) (net.Conn, error) {
	if conn, err := net.DialTimeout("unix", cfg.SocketPath(), 200*time.Millisecond); err == nil {
		return conn, nil
	}

	if !requiresDaemon {
		return nil, fmt.Errorf("no daemon running at %s", cfg.SocketPath())
	}

	if err := spawnDaemon(cfg); err != nil {
		return nil, fmt.Errorf("spawn daemon: %w", err)
	}

	next := backoffSequence()
	var lastErr error
	for {
		sleep, ok := next()
		if !ok {
			break
		}
		time.Sleep(sleep)
		conn, err := net.DialTimeout("unix", cfg.SocketPath(), 200*time.Millisecond)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("daemon did not become reachable at %s: %w", cfg.SocketPath(), lastErr)
}

// SendRequest dials, sends req, reads one response, and closes the
// connection: one request, one response, per connection.
func SendRequest(cfg config.Config, requiresDaemon bool, send func(net.Conn) error, recv func(net.Conn) error) error {
	conn, err := Connect(cfg, requiresDaemon)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := send(conn); err != nil {
		return err
	}
	return recv(conn)
}
