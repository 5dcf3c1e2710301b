package daemon

import (
	"net"
	"net/netip"
)

// tcpAddrPort converts a net.Addr known to be a *net.TCPAddr into a
// netip.AddrPort, rejecting anything that is not IPv4 (IPv6 peers are
// out of scope).
func tcpAddrPort(addr net.Addr) (netip.AddrPort, bool) {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return netip.AddrPort{}, false
	}
	ip, ok := netip.AddrFromSlice(tcp.IP.To4())
	if !ok {
		return netip.AddrPort{}, false
	}
	return netip.AddrPortFrom(ip, uint16(tcp.Port)), true
}
