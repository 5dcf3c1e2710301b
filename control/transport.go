package control

import (
	"io"

	"github.com/ermitavulpe/rdir/rerr"
	"github.com/ermitavulpe/rdir/wire"
)

// ErrInvalidData is returned when a frame cannot be decoded as the
// expected message type; the handler closes the connection without
// sending a response.
var ErrInvalidData = rerr.ErrProtocolError

// WriteClientMessage sends one ClientMessage as a length-prefixed frame.
func WriteClientMessage(w io.Writer, m ClientMessage) error {
	b, err := EncodeClientMessage(m)
	if err != nil {
		return err
	}
	return wire.WriteFrame(w, b)
}

// ReadClientMessage reads one length-prefixed frame and decodes it as a
// ClientMessage.
func ReadClientMessage(r io.Reader) (ClientMessage, error) {
	b, err := wire.ReadFrame(r)
	if err != nil {
		return ClientMessage{}, err
	}
	m, err := DecodeClientMessage(b)
	if err != nil {
		return ClientMessage{}, ErrInvalidData
	}
	return m, nil
}

// WriteServerResponse sends one ServerResponse as a length-prefixed
// frame.
func WriteServerResponse(w io.Writer, r ServerResponse) error {
	b, err := EncodeServerResponse(r)
	if err != nil {
		return err
	}
	return wire.WriteFrame(w, b)
}

// ReadServerResponse reads one length-prefixed frame and decodes it as a
// ServerResponse.
func ReadServerResponse(r io.Reader) (ServerResponse, error) {
	b, err := wire.ReadFrame(r)
	if err != nil {
		return ServerResponse{}, err
	}
	resp, err := DecodeServerResponse(b)
	if err != nil {
		return ServerResponse{}, ErrInvalidData
	}
	return resp, nil
}
