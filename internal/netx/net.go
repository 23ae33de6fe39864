// Package netx holds small networking helpers for the embedding
// application.
package netx

import "net"

// LocalIP returns the machine's outbound LAN address, the one peers
// should dial. Dialing UDP only selects a route and source address; no
// packet is sent. Falls back to loopback when no route exists.
func LocalIP() string {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer func() { _ = conn.Close() }()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
