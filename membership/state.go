// Package membership implements the single-writer in-memory graph
// relating peers, local shares, and remote shares: State and its
// methods are the only thing allowed to mutate that graph, and every
// method either commits a complete, invariant-preserving edit or
// returns an error and changes nothing.
package membership

import (
	"fmt"
	"sort"

	"github.com/ermitavulpe/rdir/rerr"
	"github.com/ermitavulpe/rdir/shares"
)

// State aggregates the whole membership graph. It is not safe for
// concurrent use: the owner is expected to run every method on a single
// goroutine (see owner.go for the channel-served wrapper that gives
// callers from other goroutines a synchronous-looking API without a
// second writer).
type State struct {
	peers        map[PeerID]*Peer
	peersBySock  map[string]PeerID
	shares       map[shares.Common]*Share
	remoteShares map[shares.Full]*RemoteShare
	nextID       PeerID
	shutdown     CancelHandle
}

// New returns an empty State. shutdown is signalled the first time the
// shutdown predicate becomes true.
func New(shutdown CancelHandle) *State {
	return &State{
		peers:        make(map[PeerID]*Peer),
		peersBySock:  make(map[string]PeerID),
		shares:       make(map[shares.Common]*Share),
		remoteShares: make(map[shares.Full]*RemoteShare),
		shutdown:     shutdown,
	}
}

func sockKey(p PeerInit) string { return p.Address.String() }

// allocID returns a fresh PeerID, advancing the monotonic counter on
// collision until a free slot is found. Collisions only happen after
// wrap-around with a still-very-populated id space, which in practice
// never occurs inside one daemon's lifetime.
func (s *State) allocID() PeerID {
	for {
		id := s.nextID
		s.nextID++
		if _, taken := s.peers[id]; !taken {
			return id
		}
	}
}

// CreateShare registers a new local share.
func (s *State) CreateShare(name shares.Common, path string) error {
	if _, exists := s.shares[name]; exists {
		return fmt.Errorf("%w: %s", rerr.ErrRepeatedShare, name)
	}
	s.shares[name] = &Share{Name: name, Path: path, Participants: make(map[PeerID]struct{})}
	return nil
}

// RemoveShare deletes a share, kicking every participant and running
// try-drop for each, then evaluates the shutdown predicate once.
func (s *State) RemoveShare(name shares.Common) error {
	sh, exists := s.shares[name]
	if !exists {
		return fmt.Errorf("%w: %s", rerr.ErrShareDoesntExist, name)
	}
	delete(s.shares, name)

	for id := range sh.Participants {
		p, ok := s.peers[id]
		if !ok {
			continue
		}
		delete(p.UsedShares, name)
		p.Notify.Notify(Notification{Kind: KickedFromShare, ShareName: name})
		s.tryDrop(id)
	}
	s.evaluateShutdown()
	return nil
}

// NewPeerConnectedToShare registers a brand-new peer bound to one local
// share, atomically: either the peer and the edge both exist afterward,
// or neither does.
func (s *State) NewPeerConnectedToShare(init PeerInit, name shares.Common) (PeerID, error) {
	sh, exists := s.shares[name]
	if !exists {
		return 0, fmt.Errorf("%w: %s", rerr.ErrShareDoesntExist, name)
	}
	key := sockKey(init)
	if _, taken := s.peersBySock[key]; taken {
		return 0, fmt.Errorf("%w: %s", rerr.ErrRepeatedPeer, key)
	}

	id := s.allocID()
	p := newPeer(init)
	p.UsedShares[name] = struct{}{}
	sh.Participants[id] = struct{}{}

	s.peers[id] = p
	s.peersBySock[key] = id
	return id, nil
}

// PeerConnectedToShare adds a second-or-later local-share edge to an
// already-registered peer.
func (s *State) PeerConnectedToShare(id PeerID, name shares.Common) error {
	p, ok := s.peers[id]
	if !ok {
		return fmt.Errorf("%w: peer %d", rerr.ErrShareDoesntExist, id)
	}
	sh, exists := s.shares[name]
	if !exists {
		return fmt.Errorf("%w: %s", rerr.ErrShareDoesntExist, name)
	}
	if _, already := p.UsedShares[name]; already {
		panic(fmt.Sprintf("membership: peer %d already bound to share %s", id, name))
	}
	p.UsedShares[name] = struct{}{}
	sh.Participants[id] = struct{}{}
	return nil
}

// PeerDisconnectedFromShare removes a local-share edge and runs
// try-drop.
func (s *State) PeerDisconnectedFromShare(id PeerID, name shares.Common) error {
	p, ok := s.peers[id]
	if !ok {
		return fmt.Errorf("%w: peer %d", rerr.ErrShareDoesntExist, id)
	}
	sh, exists := s.shares[name]
	if !exists {
		return fmt.Errorf("%w: %s", rerr.ErrShareDoesntExist, name)
	}
	if _, using := p.UsedShares[name]; !using {
		return fmt.Errorf("%w: peer %d, share %s", rerr.ErrPeerNotUsingShare, id, name)
	}
	delete(p.UsedShares, name)
	delete(sh.Participants, id)
	s.tryDrop(id)
	return nil
}

// KickPeerFromShare removes a local-share edge like
// PeerDisconnectedFromShare but also delivers KickedFromShare first.
func (s *State) KickPeerFromShare(id PeerID, name shares.Common) error {
	p, ok := s.peers[id]
	if !ok {
		return fmt.Errorf("%w: peer %d", rerr.ErrShareDoesntExist, id)
	}
	sh, exists := s.shares[name]
	if !exists {
		return fmt.Errorf("%w: %s", rerr.ErrShareDoesntExist, name)
	}
	if _, using := p.UsedShares[name]; !using {
		return fmt.Errorf("%w: peer %d, share %s", rerr.ErrPeerNotUsingShare, id, name)
	}
	delete(p.UsedShares, name)
	delete(sh.Participants, id)
	p.Notify.Notify(Notification{Kind: KickedFromShare, ShareName: name})
	s.tryDrop(id)
	return nil
}

// NewPeerJoinRemoteShare registers a brand-new peer bound to one remote
// mount, the outgoing-mount dual of NewPeerConnectedToShare.
func (s *State) NewPeerJoinRemoteShare(init PeerInit, full shares.Full, mountPath string) (PeerID, error) {
	if _, exists := s.remoteShares[full]; exists {
		return 0, fmt.Errorf("%w: %s", rerr.ErrRepeatedRemoteShare, full)
	}
	key := sockKey(init)
	if existingID, taken := s.peersBySock[key]; taken {
		// Same socket already registered: fold the new edge onto the
		// existing peer instead of rejecting outright, mirroring
		// NewPeerConnectedToShare's same-peer semantics for a peer that
		// both serves and mounts shares.
		return existingID, s.JoinRemoteShare(existingID, full, mountPath)
	}

	id := s.allocID()
	p := newPeer(init)
	p.UsedRemoteShares[full] = struct{}{}

	s.peers[id] = p
	s.peersBySock[key] = id
	s.remoteShares[full] = &RemoteShare{Owner: id, Name: full.Name, MountPath: mountPath}
	return id, nil
}

// JoinRemoteShare adds an additional remote-share edge to an existing
// peer.
func (s *State) JoinRemoteShare(id PeerID, full shares.Full, mountPath string) error {
	p, ok := s.peers[id]
	if !ok {
		return fmt.Errorf("%w: peer %d", rerr.ErrNoSuchRemoteShare, id)
	}
	if _, exists := s.remoteShares[full]; exists {
		return fmt.Errorf("%w: %s", rerr.ErrRepeatedRemoteShare, full)
	}
	p.UsedRemoteShares[full] = struct{}{}
	s.remoteShares[full] = &RemoteShare{Owner: id, Name: full.Name, MountPath: mountPath}
	return nil
}

// ExitRemoteShare removes a remote-share edge, runs try-drop, and
// evaluates the shutdown predicate.
func (s *State) ExitRemoteShare(id PeerID, full shares.Full) error {
	p, ok := s.peers[id]
	if !ok {
		return fmt.Errorf("%w: peer %d", rerr.ErrNoSuchRemoteShare, id)
	}
	if _, exists := s.remoteShares[full]; !exists {
		return fmt.Errorf("%w: %s", rerr.ErrNoSuchRemoteShare, full)
	}
	delete(p.UsedRemoteShares, full)
	delete(s.remoteShares, full)
	s.tryDrop(id)
	s.evaluateShutdown()
	return nil
}

// RemovePeer unwinds every edge a peer holds, as if each of its shares
// had been disconnected and each of its remote-share mounts had been
// exited, removes the peer from both indices directly, and evaluates the
// shutdown predicate. It does not fire the peer's cancellation handle.
// It is the only entry point for an externally triggered removal (a
// dropped TCP connection that was never locally cancelled) — the happy
// path never calls it directly, since try-drop already removes a peer
// once its edge sets are empty. A peer already gone (for instance
// because try-drop beat the caller to it) is not an error.
func (s *State) RemovePeer(id PeerID) {
	p, ok := s.peers[id]
	if !ok {
		return
	}
	for name := range p.UsedShares {
		if sh, exists := s.shares[name]; exists {
			delete(sh.Participants, id)
		}
	}
	for full := range p.UsedRemoteShares {
		delete(s.remoteShares, full)
	}
	delete(s.peers, id)
	delete(s.peersBySock, p.Address.String())
	s.evaluateShutdown()
}

// UnmountRemoteShare looks up the full share name's owning peer and
// exits that edge, for callers (the control-plane Unmount verb) that
// only know the full name, not the PeerID tracking the mount.
func (s *State) UnmountRemoteShare(full shares.Full) error {
	rs, exists := s.remoteShares[full]
	if !exists {
		return fmt.Errorf("%w: %s", rerr.ErrNoSuchRemoteShare, full)
	}
	return s.ExitRemoteShare(rs.Owner, full)
}

// tryDrop removes a peer from both indices and fires its cancellation
// handle once its combined membership set is empty. This is the peer's
// only termination path aside from the server-wide shutdown token.
func (s *State) tryDrop(id PeerID) bool {
	p, ok := s.peers[id]
	if !ok {
		return false
	}
	if p.edgeCount() != 0 {
		return false
	}
	delete(s.peers, id)
	delete(s.peersBySock, p.Address.String())
	p.Cancel.Cancel()
	return true
}

// evaluateShutdown signals the shutdown token iff both peers and shares
// are empty. Not called after peer-initiated connects: an idle daemon
// stays alive only while it has work.
func (s *State) evaluateShutdown() {
	if len(s.peers) == 0 && len(s.shares) == 0 {
		s.shutdown.Cancel()
	}
}

// PeersDTO returns an owned, id-ordered snapshot of every live peer.
func (s *State) PeersDTO() []PeerDTO {
	out := make([]PeerDTO, 0, len(s.peers))
	for id, p := range s.peers {
		out = append(out, PeerDTO{ID: id, Address: p.Address})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SharesDTO returns an owned, name-ordered snapshot of every local
// share.
func (s *State) SharesDTO() []ShareDTO {
	out := make([]ShareDTO, 0, len(s.shares))
	for name, sh := range s.shares {
		out = append(out, ShareDTO{Name: name, Path: sh.Path, Participants: len(sh.Participants)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RemoteSharesDTO returns an owned, name-ordered snapshot of every
// mounted remote share, with the owning peer's socket address resolved
// for display.
func (s *State) RemoteSharesDTO() []RemoteShareDTO {
	out := make([]RemoteShareDTO, 0, len(s.remoteShares))
	for _, rs := range s.remoteShares {
		owner := s.peers[rs.Owner]
		dto := RemoteShareDTO{Name: rs.Name, MountPath: rs.MountPath}
		if owner != nil {
			dto.Owner = owner.Address
		}
		out = append(out, dto)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PeerCount, ShareCount and RemoteShareCount back the Status response.
func (s *State) PeerCount() int        { return len(s.peers) }
func (s *State) ShareCount() int       { return len(s.shares) }
func (s *State) RemoteShareCount() int { return len(s.remoteShares) }
