package daemon

import (
	"context"
	"net"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ermitavulpe/rdir/control"
	"github.com/ermitavulpe/rdir/membership"
	"github.com/ermitavulpe/rdir/shares"
)

// handleControlConn is the Unix-socket acceptor's per-connection
// handler: one ClientMessage in, one ServerResponse out.
func (d *Daemon) handleControlConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(ControlHeaderTimeout))
	msg, err := control.ReadClientMessage(conn)
	if err != nil {
		// Malformed payload or timeout: close without a response.
		return
	}
	conn.SetReadDeadline(time.Time{})

	resp := d.dispatch(ctx, msg)
	if err := control.WriteServerResponse(conn, resp); err != nil {
		d.log.Warn("write control response", zap.Error(err))
	}
}

func (d *Daemon) dispatch(ctx context.Context, msg control.ClientMessage) control.ServerResponse {
	switch msg.Kind {
	case control.KindPing:
		return control.ServerResponse{Kind: control.RespPong}

	case control.KindKill:
		d.signalShutdown()
		return control.OkResponse()

	case control.KindLs:
		type counts struct{ peers, remoteShares, shares int }
		c := membership.Call(d.owner, func(s *membership.State) counts {
			return counts{s.PeerCount(), s.RemoteShareCount(), s.ShareCount()}
		})
		return control.ServerResponse{
			Kind:               control.RespStatus,
			StatusPeers:        c.peers,
			StatusRemoteShares: c.remoteShares,
			StatusShares:       c.shares,
		}

	case control.KindDiscover:
		return control.ErrResponse(control.ServerErrorDto{
			Kind:   control.ErrNotImplemented,
			Detail: "LAN discovery is not implemented",
		})

	case control.KindShare:
		return d.dispatchShare(msg)

	case control.KindConnect:
		return d.dispatchConnect(ctx, msg)

	default:
		return control.ErrResponse(control.ServerErrorDto{Kind: control.ErrProtocolError, Detail: "unknown request kind"})
	}
}

func (d *Daemon) dispatchShare(msg control.ClientMessage) control.ServerResponse {
	switch msg.ShareKind {
	case control.ShareLs:
		dtos := membership.Call(d.owner, func(s *membership.State) []membership.ShareDTO { return s.SharesDTO() })
		return control.ServerResponse{Kind: control.RespLsShares, Shares: toShareDtos(dtos)}

	case control.ShareRemove:
		name, err := shares.ParseCommon(msg.RemoveName)
		if err != nil {
			return control.ErrResponse(control.FromError(err))
		}
		err = membership.Call(d.owner, func(s *membership.State) error { return s.RemoveShare(name) })
		if err != nil {
			return control.ErrResponse(control.FromError(err))
		}
		return control.OkResponse()

	case control.ShareShare:
		name := msg.ShareName
		if name == "" {
			name = filepath.Base(msg.SharePath)
		}
		common, err := shares.ParseCommon(name)
		if err != nil {
			return control.ErrResponse(control.FromError(err))
		}
		err = membership.Call(d.owner, func(s *membership.State) error { return s.CreateShare(common, msg.SharePath) })
		if err != nil {
			return control.ErrResponse(control.FromError(err))
		}
		return control.OkResponse()

	default:
		return control.ErrResponse(control.ServerErrorDto{Kind: control.ErrProtocolError, Detail: "unknown share sub-verb"})
	}
}

func (d *Daemon) dispatchConnect(ctx context.Context, msg control.ClientMessage) control.ServerResponse {
	switch msg.ConnectKind {
	case control.ConnectLs:
		dtos := membership.Call(d.owner, func(s *membership.State) []membership.RemoteShareDTO { return s.RemoteSharesDTO() })
		return control.ServerResponse{Kind: control.RespLsMountedShares, RemoteShares: toRemoteShareDtos(dtos)}

	case control.ConnectMount:
		full, err := shares.ParseFull(msg.MountName)
		if err != nil {
			return control.ErrResponse(control.FromError(err))
		}
		if err := d.mountRemoteShare(ctx, full, msg.MountPath); err != nil {
			return control.ErrResponse(control.FromError(err))
		}
		return control.OkResponse()

	case control.ConnectUnmount:
		full, err := shares.ParseFull(msg.UnmountName)
		if err != nil {
			return control.ErrResponse(control.FromError(err))
		}
		err = membership.Call(d.owner, func(s *membership.State) error { return s.UnmountRemoteShare(full) })
		if err != nil {
			return control.ErrResponse(control.FromError(err))
		}
		return control.OkResponse()

	default:
		return control.ErrResponse(control.ServerErrorDto{Kind: control.ErrProtocolError, Detail: "unknown connect sub-verb"})
	}
}

func toShareDtos(dtos []membership.ShareDTO) []control.ShareDto {
	out := make([]control.ShareDto, len(dtos))
	for i, d := range dtos {
		out[i] = control.ShareDto{Name: string(d.Name), Path: d.Path, Participants: d.Participants}
	}
	return out
}

func toRemoteShareDtos(dtos []membership.RemoteShareDTO) []control.RemoteShareDto {
	out := make([]control.RemoteShareDto, len(dtos))
	for i, d := range dtos {
		out[i] = control.RemoteShareDto{Owner: d.Owner.String(), Name: string(d.Name), MountPath: d.MountPath}
	}
	return out
}
