package wire

import (
	"bytes"
	"context"
	"net"
	"testing"
)

func TestSecureConnHandshakeAndExchange(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	type result struct {
		sc  *SecureConn
		err error
	}
	clientCh := make(chan result, 1)
	serverCh := make(chan result, 1)

	go func() {
		sc, err := Dial(context.Background(), clientConn)
		clientCh <- result{sc, err}
	}()
	go func() {
		sc, err := Accept(context.Background(), serverConn)
		serverCh <- result{sc, err}
	}()

	cr := <-clientCh
	sr := <-serverCh
	if cr.err != nil {
		t.Fatalf("client handshake: %v", cr.err)
	}
	if sr.err != nil {
		t.Fatalf("server handshake: %v", sr.err)
	}

	chunks := [][]byte{
		bytes.Repeat([]byte{1}, 70000), // split across exchanges below
		[]byte("small"),
		{},
		bytes.Repeat([]byte{9}, MaxPlaintextLen),
	}

	done := make(chan error, 1)
	go func() {
		for _, c := range chunks {
			for off := 0; off < len(c) || off == 0 && len(c) == 0; {
				end := off + MaxPlaintextLen
				if end > len(c) {
					end = len(c)
				}
				if err := cr.sc.Write(c[off:end]); err != nil {
					done <- err
					return
				}
				if end == off {
					break
				}
				off = end
			}
		}
		done <- nil
	}()

	var total int
	for _, c := range chunks {
		remaining := len(c)
		if remaining == 0 {
			got, err := sr.sc.Read()
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("expected empty frame, got %d bytes", len(got))
			}
			continue
		}
		for remaining > 0 {
			got, err := sr.sc.Read()
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			remaining -= len(got)
			total += len(got)
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("write side: %v", err)
	}
	if total < 128*1024 {
		t.Fatalf("exchanged only %d bytes, want at least 128KiB", total)
	}
}
