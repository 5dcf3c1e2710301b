// Package shares implements the share-name grammar: common names (a bare
// string naming a share on the local host) and full names (a remote
// share addressed by peer IPv4, optional port, and common name).
package shares

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/ermitavulpe/rdir/rerr"
)

// MaxNameLen is the maximum length, in bytes, of a common share name.
const MaxNameLen = 60

// DefaultPort is the TCP port the daemon listens on for peer connections
// unless overridden, 0x7264 ("rd").
const DefaultPort = 0x7264

// Common is a bare share name, unique within one host.
type Common string

// Full addresses a share on a remote host: an IPv4 address, an optional
// port (DefaultPort if the address carries none), and a common name.
// Addr is netip.Addr rather than net.IP so Full stays comparable and
// usable as a map key.
type Full struct {
	Addr netip.Addr
	Port uint16
	Name Common
}

func validateCommon(name string) error {
	if len(name) == 0 || len(name) > MaxNameLen {
		return fmt.Errorf("%w: name length %d outside 1..%d", rerr.ErrInvalidShareName, len(name), MaxNameLen)
	}
	return nil
}

// ParseCommon validates a bare share name.
func ParseCommon(s string) (Common, error) {
	if err := validateCommon(s); err != nil {
		return "", err
	}
	return Common(s), nil
}

// String renders a common name back to its wire form; it is always s
// itself, provided for symmetry with Full.String.
func (c Common) String() string { return string(c) }

// ParseFull parses "ADDR[:PORT]/NAME" into a Full share name.
func ParseFull(s string) (Full, error) {
	slash := strings.IndexByte(s, '/')
	if slash < 0 {
		return Full{}, fmt.Errorf("%w: missing '/' separator in %q", rerr.ErrInvalidShareName, s)
	}
	addrPart, namePart := s[:slash], s[slash+1:]

	if err := validateCommon(namePart); err != nil {
		return Full{}, err
	}

	host := addrPart
	port := uint16(DefaultPort)
	if idx := strings.IndexByte(addrPart, ':'); idx >= 0 {
		host = addrPart[:idx]
		p, err := strconv.ParseUint(addrPart[idx+1:], 10, 16)
		if err != nil {
			return Full{}, fmt.Errorf("%w: bad port in %q: %v", rerr.ErrInvalidShareName, s, err)
		}
		port = uint16(p)
	}

	ip, err := netip.ParseAddr(host)
	if err != nil || !ip.Is4() {
		return Full{}, fmt.Errorf("%w: %q is not an IPv4 address", rerr.ErrInvalidShareName, host)
	}

	return Full{Addr: ip, Port: port, Name: Common(namePart)}, nil
}

// String renders a Full share name back to its canonical wire form,
// omitting the port when it equals DefaultPort.
func (f Full) String() string {
	if f.Port == DefaultPort {
		return fmt.Sprintf("%s/%s", f.Addr.String(), f.Name)
	}
	return fmt.Sprintf("%s:%d/%s", f.Addr.String(), f.Port, f.Name)
}

// Name is either a Common or a Full share name, matching the grammar that
// tries a full parse first and falls back to common.
type Name struct {
	full   *Full
	common Common
}

// Parse attempts a Full parse first (requires a '/'); if the string
// contains no '/' it is parsed as a Common name instead.
func Parse(s string) (Name, error) {
	if strings.ContainsRune(s, '/') {
		f, err := ParseFull(s)
		if err != nil {
			return Name{}, err
		}
		return Name{full: &f}, nil
	}
	c, err := ParseCommon(s)
	if err != nil {
		return Name{}, err
	}
	return Name{common: c}, nil
}

// IsCommon reports whether the name has no peer-address component.
func (n Name) IsCommon() bool { return n.full == nil }

// AsFull returns the full share name and true if the name addresses a
// remote share.
func (n Name) AsFull() (Full, bool) {
	if n.full == nil {
		return Full{}, false
	}
	return *n.full, true
}

// AsCommon returns the common share name and true if the name has no
// peer-address component.
func (n Name) AsCommon() (Common, bool) {
	if n.full != nil {
		return "", false
	}
	return n.common, true
}

func (n Name) String() string {
	if n.full != nil {
		return n.full.String()
	}
	return string(n.common)
}
