package wire

import (
	"context"
	"net"
	"time"

	"github.com/flynn/noise"

	"github.com/ermitavulpe/rdir/rerr"
)

// HandshakeTimeout bounds how long the Noise_NN handshake may take
// before the connection is abandoned.
const HandshakeTimeout = 5 * time.Second

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherAESGCM, noise.HashBLAKE2b)

// AEADTagLen is the size, in bytes, that AES-GCM appends to every
// encrypted frame. MaxPlaintextLen is the largest payload that still
// fits a ciphertext frame inside MaxFrameSize.
const (
	AEADTagLen      = 16
	MaxPlaintextLen = MaxFrameSize - AEADTagLen
)

// SecureConn is a Noise_NN_25519_AESGCM_BLAKE2b encrypted duplex stream
// layered on top of the length-prefixed frame format: every frame on the
// wire, handshake and transport alike, is one wire.ReadFrame/WriteFrame
// unit.
type SecureConn struct {
	conn net.Conn
	send *noise.CipherState
	recv *noise.CipherState
}

// Dial completes the Noise_NN handshake as the initiator over conn,
// which must already be an established TCP connection. It fails the
// handshake if it does not finish within HandshakeTimeout.
func Dial(ctx context.Context, conn net.Conn) (*SecureConn, error) {
	return handshake(ctx, conn, true)
}

// Accept completes the Noise_NN handshake as the responder over conn.
func Accept(ctx context.Context, conn net.Conn) (*SecureConn, error) {
	return handshake(ctx, conn, false)
}

func handshake(ctx context.Context, conn net.Conn, initiator bool) (*SecureConn, error) {
	ctx, cancel := context.WithTimeout(ctx, HandshakeTimeout)
	defer cancel()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, &rerr.IOError{Kind: rerr.IOOther, Err: err}
	}
	defer conn.SetDeadline(time.Time{})

	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite: cipherSuite,
		Pattern:     noise.HandshakeNN,
		Initiator:   initiator,
	})
	if err != nil {
		return nil, &rerr.CryptoError{Err: err}
	}

	var csA, csB *noise.CipherState

	step := func(write bool) error {
		if write {
			msg, cs0, cs1, err := hs.WriteMessage(nil, nil)
			if err != nil {
				return &rerr.CryptoError{Err: err}
			}
			if err := WriteFrame(conn, msg); err != nil {
				return err
			}
			csA, csB = cs0, cs1
			return nil
		}
		msg, err := ReadFrame(conn)
		if err != nil {
			return err
		}
		_, cs0, cs1, err := hs.ReadMessage(nil, msg)
		if err != nil {
			return &rerr.CryptoError{Err: err}
		}
		csA, csB = cs0, cs1
		return nil
	}

	// Noise_NN is two messages: "-> e", "<- e, ee". The initiator
	// writes first, the responder reads first.
	if initiator {
		if err := step(true); err != nil {
			return nil, err
		}
		if err := step(false); err != nil {
			return nil, err
		}
	} else {
		if err := step(false); err != nil {
			return nil, err
		}
		if err := step(true); err != nil {
			return nil, err
		}
	}

	// flynn/noise hands back (c1, c2) where c1 is the initiator's send
	// cipher and c2 its receive cipher; the responder uses them
	// reversed.
	sc := &SecureConn{conn: conn}
	if initiator {
		sc.send, sc.recv = csA, csB
	} else {
		sc.send, sc.recv = csB, csA
	}
	return sc, nil
}

// Write encrypts and sends one frame. plaintext must be no longer than
// MaxPlaintextLen; a longer payload is a programming error.
func (s *SecureConn) Write(plaintext []byte) error {
	ciphertext := s.send.Encrypt(nil, nil, plaintext)
	return WriteFrame(s.conn, ciphertext)
}

// Read receives and decrypts one frame.
func (s *SecureConn) Read() ([]byte, error) {
	ciphertext, err := ReadFrame(s.conn)
	if err != nil {
		return nil, err
	}
	plaintext, err := s.recv.Decrypt(nil, nil, ciphertext)
	if err != nil {
		return nil, &rerr.CryptoError{Err: err}
	}
	return plaintext, nil
}

// SetDeadline proxies to the underlying connection, used to bound the
// peer-init exchange.
func (s *SecureConn) SetDeadline(t time.Time) error { return s.conn.SetDeadline(t) }

// Close propagates to the underlying TCP connection.
func (s *SecureConn) Close() error { return s.conn.Close() }

// RemoteAddr returns the remote socket address of the underlying
// connection.
func (s *SecureConn) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }
