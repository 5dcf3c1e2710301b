package daemon

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/ermitavulpe/rdir/config"
	"github.com/ermitavulpe/rdir/control"
)

func newTestDaemon(t *testing.T) (*Daemon, context.Context) {
	t.Helper()
	d := New(config.Config{TmpDir: os.TempDir()}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go d.owner.Run(ctx)
	return d, ctx
}

func TestDispatchPing(t *testing.T) {
	d, ctx := newTestDaemon(t)
	resp := d.dispatch(ctx, control.ClientMessage{Kind: control.KindPing})
	if resp.Kind != control.RespPong {
		t.Fatalf("got %+v, want Pong", resp)
	}
}

func TestDispatchLsReportsStatus(t *testing.T) {
	d, ctx := newTestDaemon(t)

	resp := d.dispatch(ctx, control.ClientMessage{Kind: control.KindLs})
	if resp.Kind != control.RespStatus {
		t.Fatalf("got kind %v, want RespStatus", resp.Kind)
	}
	if resp.StatusShares != 0 || resp.StatusPeers != 0 || resp.StatusRemoteShares != 0 {
		t.Fatalf("expected zero counts on an empty daemon, got %+v", resp)
	}

	shareResp := d.dispatch(ctx, control.ClientMessage{
		Kind:      control.KindShare,
		ShareKind: control.ShareShare,
		SharePath: "/srv/photos",
		ShareName: "photos",
	})
	if shareResp.Kind != control.RespOk {
		t.Fatalf("share share failed: %+v", shareResp)
	}

	resp = d.dispatch(ctx, control.ClientMessage{Kind: control.KindLs})
	if resp.StatusShares != 1 {
		t.Fatalf("StatusShares = %d, want 1", resp.StatusShares)
	}
}

func TestDispatchShareLifecycle(t *testing.T) {
	d, ctx := newTestDaemon(t)

	ok := d.dispatch(ctx, control.ClientMessage{
		Kind:      control.KindShare,
		ShareKind: control.ShareShare,
		SharePath: "/srv/music",
		ShareName: "music",
	})
	if ok.Kind != control.RespOk {
		t.Fatalf("create share: %+v", ok)
	}

	dup := d.dispatch(ctx, control.ClientMessage{
		Kind:      control.KindShare,
		ShareKind: control.ShareShare,
		SharePath: "/srv/music2",
		ShareName: "music",
	})
	if dup.Kind != control.RespErr || dup.Err.Kind != control.ErrRepeatedShare {
		t.Fatalf("expected ErrRepeatedShare, got %+v", dup)
	}

	ls := d.dispatch(ctx, control.ClientMessage{Kind: control.KindShare, ShareKind: control.ShareLs})
	if len(ls.Shares) != 1 || ls.Shares[0].Name != "music" {
		t.Fatalf("unexpected share listing: %+v", ls.Shares)
	}

	rm := d.dispatch(ctx, control.ClientMessage{
		Kind:       control.KindShare,
		ShareKind:  control.ShareRemove,
		RemoveName: "music",
	})
	if rm.Kind != control.RespOk {
		t.Fatalf("remove share: %+v", rm)
	}

	missing := d.dispatch(ctx, control.ClientMessage{
		Kind:       control.KindShare,
		ShareKind:  control.ShareRemove,
		RemoveName: "music",
	})
	if missing.Kind != control.RespErr || missing.Err.Kind != control.ErrShareDoesntExist {
		t.Fatalf("expected ErrShareDoesntExist, got %+v", missing)
	}
}

func TestDispatchKillSignalsShutdown(t *testing.T) {
	d, ctx := newTestDaemon(t)
	resp := d.dispatch(ctx, control.ClientMessage{Kind: control.KindKill})
	if resp.Kind != control.RespOk {
		t.Fatalf("kill: %+v", resp)
	}
	select {
	case <-d.shutdownCh:
	default:
		t.Fatal("expected shutdownCh to be closed after Kill")
	}
}

func TestDispatchDiscoverNotImplemented(t *testing.T) {
	d, ctx := newTestDaemon(t)
	resp := d.dispatch(ctx, control.ClientMessage{Kind: control.KindDiscover})
	if resp.Kind != control.RespErr || resp.Err.Kind != control.ErrNotImplemented {
		t.Fatalf("got %+v, want ErrNotImplemented", resp)
	}
}
