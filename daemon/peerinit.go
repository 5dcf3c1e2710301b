package daemon

import (
	"context"
	"net"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"github.com/ermitavulpe/rdir/control"
	"github.com/ermitavulpe/rdir/membership"
	"github.com/ermitavulpe/rdir/shares"
	"github.com/ermitavulpe/rdir/wire"
)

// handlePeerConn is the TCP acceptor's per-connection handler: complete
// the Noise responder handshake, then run the peer-init state machine.
func (d *Daemon) handlePeerConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	sc, err := wire.Accept(ctx, conn)
	if err != nil {
		d.log.Warn("peer handshake failed", zap.Error(err))
		return
	}

	sc.SetDeadline(time.Now().Add(PeerInitTimeout))
	payload, err := sc.Read()
	if err != nil {
		d.log.Warn("peer init read failed", zap.Error(err))
		return
	}
	msg, err := control.DecodePeerInitMessage(payload)
	if err != nil {
		d.log.Warn("peer init message undecodable", zap.Error(err))
		return
	}
	sc.SetDeadline(time.Time{})

	addrPort, ok := tcpAddrPort(sc.RemoteAddr())
	if !ok {
		d.log.Warn("peer address unsupported (not IPv4)", zap.String("addr", sc.RemoteAddr().String()))
		return
	}

	switch msg.Kind {
	case control.PeerInitListShares:
		d.handleListShares(sc)
	case control.PeerInitConnectToShare:
		d.handleConnectToShare(ctx, sc, addrPort, shares.Common(msg.Name))
	default:
		d.log.Warn("unknown peer init message kind", zap.Uint8("kind", uint8(msg.Kind)))
	}
}

func (d *Daemon) handleListShares(sc *wire.SecureConn) {
	names := membership.Call(d.owner, func(s *membership.State) []string {
		dtos := s.SharesDTO()
		out := make([]string, len(dtos))
		for i, dto := range dtos {
			out[i] = string(dto.Name)
		}
		return out
	})
	resp, err := control.EncodePeerInitListSharesResponse(control.PeerInitListSharesResponse{Shares: names})
	if err != nil {
		d.log.Error("encode list-shares response", zap.Error(err))
		return
	}
	if err := sc.Write(resp); err != nil {
		d.log.Warn("write list-shares response", zap.Error(err))
	}
}

func (d *Daemon) handleConnectToShare(ctx context.Context, sc *wire.SecureConn, addr netip.AddrPort, name shares.Common) {
	notify := make(membership.ChanNotificationSink, 4)
	cancel, cancelCh := membership.NewChanCancelHandle()

	type registration struct {
		id  membership.PeerID
		err error
	}
	reg := membership.Call(d.owner, func(s *membership.State) registration {
		id, err := s.NewPeerConnectedToShare(membership.PeerInit{
			Address: addr,
			Cancel:  cancel,
			Notify:  loggingSink{inner: notify, log: d.log, peer: addr.String()},
		}, name)
		return registration{id, err}
	})

	if reg.err != nil {
		resp, encErr := control.EncodePeerInitConnectResponse(control.PeerInitConnectToShareResponse{
			Result: control.PeerInitConnectErr,
			Reason: reg.err.Error(),
		})
		if encErr == nil {
			sc.Write(resp)
		}
		return
	}

	resp, err := control.EncodePeerInitConnectResponse(control.PeerInitConnectToShareResponse{Result: control.PeerInitConnectOk})
	if err != nil {
		d.log.Error("encode connect-to-share response", zap.Error(err))
		return
	}
	if err := sc.Write(resp); err != nil {
		d.log.Warn("write connect-to-share response", zap.Error(err))
		return
	}

	d.runPeerTask(ctx, sc, cancelCh, func() {
		membership.Call(d.owner, func(s *membership.State) struct{} {
			s.RemovePeer(reg.id)
			return struct{}{}
		})
	})
}
