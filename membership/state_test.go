package membership

import (
	"net/netip"
	"testing"

	"github.com/ermitavulpe/rdir/shares"
)

type testCancel struct{ fired int }

func (c *testCancel) Cancel() { c.fired++ }

type nullSink struct{}

func (nullSink) Notify(Notification) {}

func peerInit(addr string) (PeerInit, *testCancel) {
	c := &testCancel{}
	return PeerInit{
		Address: netip.MustParseAddrPort(addr),
		Cancel:  c,
		Notify:  nullSink{},
	}, c
}

func TestCreateShareRejectsDuplicate(t *testing.T) {
	s := New(&testCancel{})
	if err := s.CreateShare("foo", "/tmp/foo"); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	if err := s.CreateShare("foo", "/tmp/bar"); err == nil {
		t.Fatal("expected RepeatedShare error")
	}
}

func TestPeerLifecycleSingleShare(t *testing.T) {
	s := New(&testCancel{})
	if err := s.CreateShare("foo", "/tmp/foo"); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	init, cancel := peerInit("10.0.0.1:1000")
	id, err := s.NewPeerConnectedToShare(init, "foo")
	if err != nil {
		t.Fatalf("NewPeerConnectedToShare: %v", err)
	}
	if len(s.PeersDTO()) != 1 {
		t.Fatalf("expected 1 peer, got %d", len(s.PeersDTO()))
	}
	if err := s.PeerDisconnectedFromShare(id, "foo"); err != nil {
		t.Fatalf("PeerDisconnectedFromShare: %v", err)
	}
	if len(s.PeersDTO()) != 0 {
		t.Fatal("peer should be gone after last edge removed")
	}
	if cancel.fired != 1 {
		t.Fatalf("expected cancellation to fire once, fired %d times", cancel.fired)
	}
}

func TestPeerLifecycleTwoShares(t *testing.T) {
	s := New(&testCancel{})
	for _, n := range []shares.Common{"a", "b"} {
		if err := s.CreateShare(n, "/tmp/"+string(n)); err != nil {
			t.Fatalf("CreateShare(%s): %v", n, err)
		}
	}
	init, cancel := peerInit("10.0.0.2:2000")
	id, err := s.NewPeerConnectedToShare(init, "a")
	if err != nil {
		t.Fatalf("NewPeerConnectedToShare: %v", err)
	}
	if err := s.PeerConnectedToShare(id, "b"); err != nil {
		t.Fatalf("PeerConnectedToShare: %v", err)
	}
	if err := s.PeerDisconnectedFromShare(id, "a"); err != nil {
		t.Fatalf("PeerDisconnectedFromShare(a): %v", err)
	}
	if cancel.fired != 0 {
		t.Fatal("peer should still be alive with one remaining edge")
	}
	if err := s.PeerDisconnectedFromShare(id, "b"); err != nil {
		t.Fatalf("PeerDisconnectedFromShare(b): %v", err)
	}
	if cancel.fired != 1 {
		t.Fatal("peer should be gone after its last edge is removed")
	}
}

func TestRepeatedPeerAddressRejected(t *testing.T) {
	s := New(&testCancel{})
	if err := s.CreateShare("foo", "/tmp/foo"); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	init1, _ := peerInit("10.0.0.3:3000")
	if _, err := s.NewPeerConnectedToShare(init1, "foo"); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	init2, _ := peerInit("10.0.0.3:3000")
	if _, err := s.NewPeerConnectedToShare(init2, "foo"); err == nil {
		t.Fatal("expected RepeatedPeer for a second peer at the same address")
	}
}

func TestShutdownPredicateSingleShare(t *testing.T) {
	shutdown := &testCancel{}
	s := New(shutdown)
	if err := s.CreateShare("foo", "/tmp/foo"); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	if shutdown.fired != 0 {
		t.Fatal("shutdown should not fire merely from creating a share")
	}
	if err := s.RemoveShare("foo"); err != nil {
		t.Fatalf("RemoveShare: %v", err)
	}
	if shutdown.fired != 1 {
		t.Fatalf("expected shutdown to fire exactly once, fired %d times", shutdown.fired)
	}
}

func TestShutdownPredicateNotTriggeredWithRemainingShare(t *testing.T) {
	shutdown := &testCancel{}
	s := New(shutdown)
	if err := s.CreateShare("foo", "/tmp/foo"); err != nil {
		t.Fatalf("CreateShare(foo): %v", err)
	}
	if err := s.CreateShare("bar", "/tmp/bar"); err != nil {
		t.Fatalf("CreateShare(bar): %v", err)
	}
	if err := s.RemoveShare("foo"); err != nil {
		t.Fatalf("RemoveShare: %v", err)
	}
	if shutdown.fired != 0 {
		t.Fatal("shutdown must not fire while a share remains")
	}
}

func TestShutdownNotEvaluatedAfterConnect(t *testing.T) {
	shutdown := &testCancel{}
	s := New(shutdown)
	if err := s.CreateShare("foo", "/tmp/foo"); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	init, _ := peerInit("10.0.0.4:4000")
	if _, err := s.NewPeerConnectedToShare(init, "foo"); err != nil {
		t.Fatalf("NewPeerConnectedToShare: %v", err)
	}
	if shutdown.fired != 0 {
		t.Fatal("shutdown predicate must not be evaluated on peer-initiated connects")
	}
}

func TestRemoveShareKicksParticipants(t *testing.T) {
	s := New(&testCancel{})
	if err := s.CreateShare("foo", "/tmp/foo"); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	var got []Notification
	init := PeerInit{
		Address: netip.MustParseAddrPort("10.0.0.5:5000"),
		Cancel:  &testCancel{},
		Notify:  notifyFunc(func(n Notification) { got = append(got, n) }),
	}
	if _, err := s.NewPeerConnectedToShare(init, "foo"); err != nil {
		t.Fatalf("NewPeerConnectedToShare: %v", err)
	}
	if err := s.RemoveShare("foo"); err != nil {
		t.Fatalf("RemoveShare: %v", err)
	}
	if len(got) != 1 || got[0].Kind != KickedFromShare || got[0].ShareName != "foo" {
		t.Fatalf("expected one KickedFromShare(foo) notification, got %+v", got)
	}
}

func TestRemoteShareMountAndDuplicateRejected(t *testing.T) {
	s := New(&testCancel{})
	full, err := shares.ParseFull("127.0.0.1/foo")
	if err != nil {
		t.Fatalf("ParseFull: %v", err)
	}
	init, _ := peerInit("10.0.0.6:6000")
	id, err := s.NewPeerJoinRemoteShare(init, full, "/mnt/y")
	if err != nil {
		t.Fatalf("NewPeerJoinRemoteShare: %v", err)
	}
	if len(s.RemoteSharesDTO()) != 1 {
		t.Fatalf("expected 1 remote share, got %d", len(s.RemoteSharesDTO()))
	}
	if _, err := s.NewPeerJoinRemoteShare(init, full, "/mnt/y2"); err == nil {
		t.Fatal("expected RepeatedRemoteShare on second mount of the same full name")
	}
	if err := s.ExitRemoteShare(id, full); err != nil {
		t.Fatalf("ExitRemoteShare: %v", err)
	}
	if len(s.RemoteSharesDTO()) != 0 {
		t.Fatal("remote share should be gone after ExitRemoteShare")
	}
}

func TestRemovePeerUnwindsAllEdges(t *testing.T) {
	s := New(&testCancel{})
	if err := s.CreateShare("foo", "/tmp/foo"); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	init, _ := peerInit("10.0.0.7:7000")
	id, err := s.NewPeerConnectedToShare(init, "foo")
	if err != nil {
		t.Fatalf("NewPeerConnectedToShare: %v", err)
	}
	s.RemovePeer(id)
	if len(s.PeersDTO()) != 0 {
		t.Fatal("peer should be gone after RemovePeer")
	}
	dto := s.SharesDTO()
	if len(dto) != 1 || dto[0].Participants != 0 {
		t.Fatalf("share participant edge should be unwound, got %+v", dto)
	}
	s.RemovePeer(id) // idempotent
}

type notifyFunc func(Notification)

func (f notifyFunc) Notify(n Notification) { f(n) }
