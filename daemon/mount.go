package daemon

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/ermitavulpe/rdir/control"
	"github.com/ermitavulpe/rdir/membership"
	"github.com/ermitavulpe/rdir/shares"
	"github.com/ermitavulpe/rdir/wire"
)

// mountRemoteShare dials full's peer, completes the Noise initiator
// handshake, runs the peer-init ConnectToShare exchange, and on success
// registers the mount in State and starts the long-lived peer task that
// watches for the host tearing the connection down.
func (d *Daemon) mountRemoteShare(ctx context.Context, full shares.Full, mountPath string) error {
	raddr := net.TCPAddrFromAddrPort(netip.AddrPortFrom(full.Addr, full.Port))

	dialCtx, cancelDial := context.WithTimeout(ctx, wire.HandshakeTimeout)
	defer cancelDial()
	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp4", raddr.String())
	if err != nil {
		return fmt.Errorf("dial %s: %w", raddr, err)
	}

	sc, err := wire.Dial(ctx, conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("handshake with %s: %w", raddr, err)
	}

	initMsg, err := control.EncodePeerInitMessage(control.PeerInitMessage{
		Kind: control.PeerInitConnectToShare,
		Name: string(full.Name),
	})
	if err != nil {
		sc.Close()
		return err
	}
	if err := sc.Write(initMsg); err != nil {
		sc.Close()
		return err
	}

	sc.SetDeadline(time.Now().Add(PeerInitTimeout))
	respPayload, err := sc.Read()
	if err != nil {
		sc.Close()
		return err
	}
	sc.SetDeadline(time.Time{})

	resp, err := control.DecodePeerInitConnectResponse(respPayload)
	if err != nil {
		sc.Close()
		return fmt.Errorf("malformed peer-init response: %w", err)
	}
	if resp.Result == control.PeerInitConnectErr {
		sc.Close()
		return fmt.Errorf("peer refused mount: %s", resp.Reason)
	}

	addr := netip.AddrPortFrom(full.Addr, full.Port)
	notify := make(membership.ChanNotificationSink, 4)
	cancel, cancelCh := membership.NewChanCancelHandle()

	type registration struct {
		id  membership.PeerID
		err error
	}
	reg := membership.Call(d.owner, func(s *membership.State) registration {
		id, err := s.NewPeerJoinRemoteShare(membership.PeerInit{
			Address: addr,
			Cancel:  cancel,
			Notify:  loggingSink{inner: notify, log: d.log, peer: addr.String()},
		}, full, mountPath)
		return registration{id, err}
	})
	if reg.err != nil {
		sc.Close()
		return reg.err
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.runPeerTask(ctx, sc, cancelCh, func() {
			membership.Call(d.owner, func(s *membership.State) struct{} {
				s.UnmountRemoteShare(full)
				return struct{}{}
			})
		})
	}()
	return nil
}
