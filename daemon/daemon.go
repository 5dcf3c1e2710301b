// Package daemon implements daemon-mode rdir: the startup handoff, the
// Unix-socket and TCP acceptor loops, the control-plane and peer-init
// handlers, and the cooperative shutdown fanout.
package daemon

import (
	"context"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ermitavulpe/rdir/config"
	"github.com/ermitavulpe/rdir/membership"
)

const (
	ControlHeaderTimeout = 500 * time.Millisecond
	PeerInitTimeout      = 1000 * time.Millisecond
)

// Daemon owns the membership state, the bound listeners, and the
// shutdown fanout.
type Daemon struct {
	cfg   config.Config
	log   *zap.Logger
	owner *membership.Owner

	shutdownOnce sync.Once
	shutdownCh   chan struct{}

	wg sync.WaitGroup
}

// shutdownToken adapts Daemon's broadcast-close channel to the
// membership.CancelHandle interface the state machine signals through.
type shutdownToken struct{ d *Daemon }

func (t shutdownToken) Cancel() { t.d.signalShutdown() }

// New constructs a Daemon ready to Run. The listener must already be
// bound by the caller (front-end or re-exec'd child, see spawn.go) so
// that inheriting it across the detach step never races the socket
// path.
func New(cfg config.Config, log *zap.Logger) *Daemon {
	d := &Daemon{
		cfg:        cfg,
		log:        log,
		shutdownCh: make(chan struct{}),
	}
	d.owner = membership.NewOwner(shutdownToken{d})
	return d
}

func (d *Daemon) signalShutdown() {
	d.shutdownOnce.Do(func() { close(d.shutdownCh) })
}

// Run drives the daemon until shutdown is signalled by a Kill request,
// the state machine's shutdown predicate, or SIGINT/SIGTERM, then tears
// down the user directory and returns.
func (d *Daemon) Run(ctx context.Context, unixLn net.Listener, tcpLn net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.owner.Run(ctx)
	}()

	d.wg.Add(1)
	go d.acceptLoop(ctx, unixLn, d.handleControlConn, "control")
	defer func() { unixLn.Close() }()

	d.wg.Add(1)
	go d.acceptLoop(ctx, tcpLn, d.handlePeerConn, "peer")
	defer func() { tcpLn.Close() }()

	select {
	case <-d.shutdownCh:
		d.log.Info("shutdown signalled")
	case sig := <-sigCh:
		d.log.Info("shutdown signalled by os signal", zap.String("signal", sig.String()))
		d.signalShutdown()
	case <-ctx.Done():
	}

	cancel()
	unixLn.Close()
	tcpLn.Close()
	d.wg.Wait()

	return os.RemoveAll(d.cfg.UserDir())
}

// acceptLoop runs one listener's accept loop, spawning handle as a
// tracked goroutine per accepted connection, until ctx is cancelled.
func (d *Daemon) acceptLoop(ctx context.Context, ln net.Listener, handle func(context.Context, net.Conn), kind string) {
	defer d.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				d.log.Warn("accept failed", zap.String("listener", kind), zap.Error(err))
				return
			}
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.log.Error("recovered panic in connection handler", zap.String("listener", kind), zap.Any("panic", r))
				}
			}()
			handle(ctx, conn)
		}()
	}
}
