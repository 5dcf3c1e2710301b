// Package wire implements the length-prefixed framing shared by the
// local control socket and, one layer down, the Noise-encrypted peer
// transport: a 16-bit big-endian length prefix followed by that many
// bytes of payload.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ermitavulpe/rdir/rerr"
)

const (
	// PrefixLen is the size in bytes of the frame length prefix.
	PrefixLen = 2
	// MaxFrameSize is the largest value a frame's length prefix can
	// carry; writing a longer payload is a programming error.
	MaxFrameSize = 65535
)

// ReadFrame reads one length-prefixed frame from r. A zero-length read
// while reading the prefix is reported as io.EOF; a short read inside
// the payload is an unexpected-EOF transport error.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [PrefixLen]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &rerr.IOError{Kind: rerr.IOUnexpectedEOF, Err: err}
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, &rerr.IOError{Kind: rerr.IOUnexpectedEOF, Err: err}
		}
	}
	return payload, nil
}

// WriteFrame writes payload as one length-prefixed frame. Writing a
// payload longer than MaxFrameSize panics: callers are responsible for
// respecting the per-frame cap before calling WriteFrame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		panic(fmt.Sprintf("wire: frame of %d bytes exceeds MaxFrameSize", len(payload)))
	}
	var lenBuf [PrefixLen]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return &rerr.IOError{Kind: rerr.IOBrokenPipe, Err: err}
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return &rerr.IOError{Kind: rerr.IOBrokenPipe, Err: err}
		}
	}
	return nil
}
