package shares

import (
	"strings"
	"testing"
)

func TestParseCommonRoundTrip(t *testing.T) {
	cases := []string{"x", "media", strings.Repeat("a", MaxNameLen)}
	for _, c := range cases {
		n, err := Parse(c)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c, err)
		}
		if !n.IsCommon() {
			t.Fatalf("Parse(%q) not recognised as common", c)
		}
		if n.String() != c {
			t.Fatalf("round-trip mismatch: got %q want %q", n.String(), c)
		}
	}
}

func TestParseCommonRejectsOutOfRange(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := Parse(strings.Repeat("a", MaxNameLen+1)); err == nil {
		t.Fatal("expected error for over-long name")
	}
}

func TestParseFullRoundTrip(t *testing.T) {
	cases := []string{"192.168.1.5/foo", "10.0.0.1:12000/bar"}
	for _, c := range cases {
		n, err := Parse(c)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c, err)
		}
		if n.IsCommon() {
			t.Fatalf("Parse(%q) mistaken for common", c)
		}
		if n.String() != c {
			t.Fatalf("round-trip mismatch: got %q want %q", n.String(), c)
		}
	}
}

func TestParseFullDefaultPortNormalises(t *testing.T) {
	n, err := Parse("192.168.1.5:29284/foo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := n.String(), "192.168.1.5/foo"; got != want {
		t.Fatalf("normalised form = %q, want %q", got, want)
	}
}

func TestParseFullRejectsMissingSeparator(t *testing.T) {
	if _, err := ParseFull("192.168.1.5"); err == nil {
		t.Fatal("expected error for missing '/'")
	}
}

func TestParseFullRejectsNonIPv4(t *testing.T) {
	if _, err := ParseFull("not-an-ip/foo"); err == nil {
		t.Fatal("expected error for invalid address")
	}
	if _, err := ParseFull("::1/foo"); err == nil {
		t.Fatal("expected error for IPv6 address")
	}
}
