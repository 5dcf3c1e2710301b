package membership

import (
	"net/netip"

	"github.com/ermitavulpe/rdir/shares"
)

// PeerID is an opaque identifier unique within the daemon's lifetime.
type PeerID uint64

// NotificationKind discriminates the (currently single) state-change
// event delivered to a peer's task.
type NotificationKind uint8

const KickedFromShare NotificationKind = 0

// Notification is one state-change event fanned out to a peer's
// notification sink.
type Notification struct {
	Kind      NotificationKind
	ShareName shares.Common
}

// NotificationSink receives Notification values. Implementations must be
// non-blocking and must silently drop a notification nobody is left to
// read; state mutations complete independently of whether the peer's
// task is still listening.
type NotificationSink interface {
	Notify(Notification)
}

// CancelHandle terminates a peer's long-lived task. Cancel must be
// idempotent and non-blocking.
type CancelHandle interface {
	Cancel()
}

// ChanNotificationSink is a NotificationSink backed by a buffered
// channel; Notify drops the event rather than blocking when the buffer
// is full or the channel's reader has already gone away.
type ChanNotificationSink chan Notification

func (s ChanNotificationSink) Notify(n Notification) {
	select {
	case s <- n:
	default:
	}
}

// ChanCancelHandle is a CancelHandle backed by closing a channel exactly
// once; the peer's task selects on the channel to notice cancellation.
type ChanCancelHandle struct {
	ch     chan struct{}
	closed bool
}

// NewChanCancelHandle returns a handle wrapping a fresh channel, along
// with that channel for the peer task to select on.
func NewChanCancelHandle() (*ChanCancelHandle, <-chan struct{}) {
	ch := make(chan struct{})
	return &ChanCancelHandle{ch: ch}, ch
}

func (h *ChanCancelHandle) Cancel() {
	if h.closed {
		return
	}
	h.closed = true
	close(h.ch)
}

// PeerInit describes a not-yet-registered peer: the socket address it
// connected from, its cancellation handle, and its notification sink.
// State turns this into a live Peer the first time a membership edge is
// added for it.
type PeerInit struct {
	Address netip.AddrPort
	Cancel  CancelHandle
	Notify  NotificationSink
}

// Peer is a remote daemon currently holding at least one membership
// edge. It is created on the first edge and removed by try-drop once
// both its edge sets are empty.
type Peer struct {
	Address          netip.AddrPort
	Cancel           CancelHandle
	Notify           NotificationSink
	UsedShares       map[shares.Common]struct{}
	UsedRemoteShares map[shares.Full]struct{}
}

func newPeer(init PeerInit) *Peer {
	return &Peer{
		Address:          init.Address,
		Cancel:           init.Cancel,
		Notify:           init.Notify,
		UsedShares:       make(map[shares.Common]struct{}),
		UsedRemoteShares: make(map[shares.Full]struct{}),
	}
}

func (p *Peer) edgeCount() int {
	return len(p.UsedShares) + len(p.UsedRemoteShares)
}

// Share is a local directory exposed to peers under a common name.
type Share struct {
	Name         shares.Common
	Path         string
	Participants map[PeerID]struct{}
}

// RemoteShare is a remote peer's share this daemon has mounted locally,
// keyed by its full share name.
type RemoteShare struct {
	Owner     PeerID
	Name      shares.Common
	MountPath string
}

// PeerDTO, ShareDTO and RemoteShareDTO are owned, ordered snapshots
// returned by State's accessors; they hold no references into State's
// interior containers.
type PeerDTO struct {
	ID      PeerID
	Address netip.AddrPort
}

type ShareDTO struct {
	Name         shares.Common
	Path         string
	Participants int
}

type RemoteShareDTO struct {
	Owner     netip.AddrPort
	Name      shares.Common
	MountPath string
}
