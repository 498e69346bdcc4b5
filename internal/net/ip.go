package net

import (
	"errors"
	"net"
)

var errNoLANAddress = errors.New("no LAN IPv4 address found")

// OutgoingIP returns the address other devices on the LAN should use to
// reach the bridge. The route towards a public address decides when there
// is one; otherwise the first IPv4 address on an up, non-loopback interface
// is used. With neither it returns 127.0.0.1 and an error.
func OutgoingIP() (string, error) {
	if conn, err := net.Dial("udp", "8.8.8.8:80"); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && addr.IP.To4() != nil {
			return addr.IP.String(), nil
		}
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return "127.0.0.1", err
	}
	if ip := firstIPv4(ifaces); ip != nil {
		return ip.String(), nil
	}
	return "127.0.0.1", errNoLANAddress
}

// firstIPv4 skips down and loopback interfaces.
func firstIPv4(ifaces []net.Interface) net.IP {
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	return nil
}
