// Package control implements the binary codec for the local control
// protocol (ClientMessage / ServerResponse) and the peer-init protocol
// (PeerInitMessage and its responses).
// Every message is a tagged struct: a Kind discriminant plus whichever
// fields that kind uses, msgpack-encoded the same way
// github.com/vmihailenco/msgpack/v5 encodes any other Go struct.
package control

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ClientKind discriminates the top-level ClientMessage variants.
type ClientKind uint8

const (
	KindConnect ClientKind = iota
	KindDiscover
	KindKill
	KindLs
	KindPing
	KindShare
)

// ConnectKind discriminates the Connect sub-verbs.
type ConnectKind uint8

const (
	ConnectLs ConnectKind = iota
	ConnectMount
	ConnectUnmount
)

// ShareKind discriminates the Share sub-verbs.
type ShareKind uint8

const (
	ShareLs ShareKind = iota
	ShareRemove
	ShareShare
)

// ClientMessage is the request half of the local control protocol.
type ClientMessage struct {
	Kind ClientKind `msgpack:"kind"`

	// Connect sub-fields.
	ConnectKind ConnectKind `msgpack:"connect_kind,omitempty"`
	MountName   string      `msgpack:"mount_name,omitempty"`
	MountPath   string      `msgpack:"mount_path,omitempty"`
	UnmountName string      `msgpack:"unmount_name,omitempty"`

	// Share sub-fields.
	ShareKind  ShareKind `msgpack:"share_kind,omitempty"`
	RemoveName string    `msgpack:"remove_name,omitempty"`
	SharePath  string    `msgpack:"share_path,omitempty"`
	ShareName  string    `msgpack:"share_name,omitempty"`
}

// ServerErrorKind mirrors the rerr taxonomy for wire transmission.
type ServerErrorKind uint8

const (
	ErrShareDoesntExist ServerErrorKind = iota
	ErrRepeatedShare
	ErrRepeatedPeer
	ErrRepeatedRemoteShare
	ErrPeerNotUsingShare
	ErrNoSuchRemoteShare
	ErrInvalidShareName
	ErrProtocolError
	ErrIO
	ErrCrypto
	ErrNotImplemented
)

// ServerErrorDto carries an error kind plus a human-readable detail
// string across the wire.
type ServerErrorDto struct {
	Kind   ServerErrorKind `msgpack:"kind"`
	Detail string          `msgpack:"detail"`
}

func (e ServerErrorDto) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Kind, e.Detail)
}

// ShareDto describes one local share as exposed to the front-end.
type ShareDto struct {
	Name         string `msgpack:"name"`
	Path         string `msgpack:"path"`
	Participants int    `msgpack:"participants"`
}

// RemoteShareDto describes one mounted remote share.
type RemoteShareDto struct {
	Owner     string `msgpack:"owner"`
	Name      string `msgpack:"name"`
	MountPath string `msgpack:"mount_path"`
}

// ResponseKind discriminates the top-level ServerResponse variants.
type ResponseKind uint8

const (
	RespOk ResponseKind = iota
	RespPong
	RespLsShares
	RespLsMountedShares
	RespStatus
	RespErr
)

// ServerResponse is the reply half of the local control protocol.
type ServerResponse struct {
	Kind ResponseKind `msgpack:"kind"`

	Shares       []ShareDto       `msgpack:"shares,omitempty"`
	RemoteShares []RemoteShareDto `msgpack:"remote_shares,omitempty"`

	StatusPeers        int `msgpack:"status_peers,omitempty"`
	StatusRemoteShares int `msgpack:"status_remote_shares,omitempty"`
	StatusShares       int `msgpack:"status_shares,omitempty"`

	Err *ServerErrorDto `msgpack:"err,omitempty"`
}

// OkResponse builds the plain-Ok response.
func OkResponse() ServerResponse { return ServerResponse{Kind: RespOk} }

// ErrResponse wraps a ServerErrorDto as a response.
func ErrResponse(e ServerErrorDto) ServerResponse {
	return ServerResponse{Kind: RespErr, Err: &e}
}

// EncodeClientMessage and DecodeClientMessage convert between
// ClientMessage and its msgpack wire representation.
func EncodeClientMessage(m ClientMessage) ([]byte, error) { return msgpack.Marshal(m) }

func DecodeClientMessage(b []byte) (ClientMessage, error) {
	var m ClientMessage
	err := msgpack.Unmarshal(b, &m)
	return m, err
}

// EncodeServerResponse and DecodeServerResponse convert between
// ServerResponse and its msgpack wire representation.
func EncodeServerResponse(r ServerResponse) ([]byte, error) { return msgpack.Marshal(r) }

func DecodeServerResponse(b []byte) (ServerResponse, error) {
	var r ServerResponse
	err := msgpack.Unmarshal(b, &r)
	return r, err
}

// PeerInitKind discriminates the two peer-init request variants.
type PeerInitKind uint8

const (
	PeerInitConnectToShare PeerInitKind = iota
	PeerInitListShares
)

// PeerInitMessage is the first plaintext message sent by the connecting
// peer after the Noise handshake completes.
type PeerInitMessage struct {
	Kind PeerInitKind `msgpack:"kind"`
	Name string       `msgpack:"name,omitempty"`
}

// PeerInitConnectResultKind discriminates Ok/Err for a ConnectToShare
// response.
type PeerInitConnectResultKind uint8

const (
	PeerInitConnectOk PeerInitConnectResultKind = iota
	PeerInitConnectErr
)

// PeerInitConnectToShareResponse answers a ConnectToShare request.
type PeerInitConnectToShareResponse struct {
	Result PeerInitConnectResultKind `msgpack:"result"`
	Reason string                    `msgpack:"reason,omitempty"`
}

// PeerInitListSharesResponse answers a ListShares request with the
// current set of local common share names.
type PeerInitListSharesResponse struct {
	Shares []string `msgpack:"shares"`
}

func EncodePeerInitMessage(m PeerInitMessage) ([]byte, error) { return msgpack.Marshal(m) }

func DecodePeerInitMessage(b []byte) (PeerInitMessage, error) {
	var m PeerInitMessage
	err := msgpack.Unmarshal(b, &m)
	return m, err
}

func EncodePeerInitConnectResponse(r PeerInitConnectToShareResponse) ([]byte, error) {
	return msgpack.Marshal(r)
}

func DecodePeerInitConnectResponse(b []byte) (PeerInitConnectToShareResponse, error) {
	var r PeerInitConnectToShareResponse
	err := msgpack.Unmarshal(b, &r)
	return r, err
}

func EncodePeerInitListSharesResponse(r PeerInitListSharesResponse) ([]byte, error) {
	return msgpack.Marshal(r)
}

func DecodePeerInitListSharesResponse(b []byte) (PeerInitListSharesResponse, error) {
	var r PeerInitListSharesResponse
	err := msgpack.Unmarshal(b, &r)
	return r, err
}
