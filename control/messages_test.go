package control

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ermitavulpe/rdir/rerr"
)

func TestClientMessageRoundTrip(t *testing.T) {
	in := ClientMessage{
		Kind:        KindConnect,
		ConnectKind: ConnectMount,
		MountName:   "192.168.1.5/photos",
		MountPath:   "/mnt/photos",
	}
	b, err := EncodeClientMessage(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeClientMessage(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestServerResponseRoundTripWithErr(t *testing.T) {
	in := ErrResponse(ServerErrorDto{Kind: ErrShareDoesntExist, Detail: "no such share: foo"})
	b, err := EncodeServerResponse(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeServerResponse(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Kind != RespErr || out.Err == nil || *out.Err != *in.Err {
		t.Fatalf("round trip mismatch: got %+v", out)
	}
}

func TestTransportFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	msg := ClientMessage{Kind: KindPing}
	if err := WriteClientMessage(&buf, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadClientMessage(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != msg {
		t.Fatalf("got %+v, want %+v", got, msg)
	}
}

func TestReadClientMessageRejectsGarbage(t *testing.T) {
	var buf bytes.Buffer
	// A well-formed frame whose payload isn't valid msgpack for
	// ClientMessage (a raw string instead of a map/array).
	garbage := []byte("\xa5hello")
	buf.WriteByte(0)
	buf.WriteByte(byte(len(garbage)))
	buf.Write(garbage)

	if _, err := ReadClientMessage(&buf); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestFromErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		kind ServerErrorKind
	}{
		{rerr.ErrShareDoesntExist, ErrShareDoesntExist},
		{rerr.ErrRepeatedShare, ErrRepeatedShare},
		{rerr.ErrInvalidShareName, ErrInvalidShareName},
		{&rerr.IOError{Kind: rerr.IOTimeout, Err: errors.New("boom")}, ErrIO},
		{&rerr.CryptoError{Err: errors.New("bad auth tag")}, ErrCrypto},
	}
	for _, c := range cases {
		got := FromError(c.err)
		if got.Kind != c.kind {
			t.Errorf("FromError(%v) = kind %v, want %v", c.err, got.Kind, c.kind)
		}
	}
}
