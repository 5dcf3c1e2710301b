package daemon

import (
	"context"

	"go.uber.org/zap"

	"github.com/ermitavulpe/rdir/membership"
	"github.com/ermitavulpe/rdir/wire"
)

// peerConn is the narrow read/close surface runPeerTask needs; satisfied
// by *wire.SecureConn.
type peerConn interface {
	Read() ([]byte, error)
	Close() error
}

// runPeerTask is the long-lived task that outlives the init exchange for
// one peer connection, on either side of it: the host side (serving a
// local share to the connecting peer) and the mounter side (consuming a
// remote share). It has no content-transfer protocol to speak (out of
// scope); its job is purely to notice the connection end, from whichever
// side that happens, and keep the membership graph consistent:
//
//   - cancelCh closing means try-drop already unwound this peer's edges
//     on our side; we just need to tear down the socket.
//   - a read error/EOF means the remote end is gone without us having
//     cancelled anything locally; onExternalClose lets the caller
//     reconcile its own state (the host unwinds any edges that
//     survived, the mounter removes its remote-share row).
func (d *Daemon) runPeerTask(ctx context.Context, conn peerConn, cancelCh <-chan struct{}, onExternalClose func()) {
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, err := conn.Read(); err != nil {
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		conn.Close()
		<-readDone
	case <-cancelCh:
		conn.Close()
		<-readDone
	case <-readDone:
		conn.Close()
		if onExternalClose != nil {
			onExternalClose()
		}
	}
}

// loggingSink adapts a membership.NotificationSink to also log
// KickedFromShare events for operator visibility; it wraps a
// membership.ChanNotificationSink so a peer task can still select on the
// channel if it ever needs to react synchronously.
type loggingSink struct {
	inner membership.ChanNotificationSink
	log   *zap.Logger
	peer  string
}

func (s loggingSink) Notify(n membership.Notification) {
	s.log.Info("peer notified", zap.String("peer", s.peer), zap.String("share", string(n.ShareName)))
	s.inner.Notify(n)
}
