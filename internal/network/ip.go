package network

import (
	"net"
	"strings"
)

// LocalIP returns the machine's LAN-facing IPv4 address as seen when
// routing toward addr (host:port). The UDP dial sends no packets; it
// only asks the kernel which source address it would use. Falls back
// to interface enumeration if the dial fails.
func LocalIP(addr string) string {
	conn, err := net.Dial("udp", addr)
	if err == nil {
		defer conn.Close()
		localAddr := conn.LocalAddr().(*net.UDPAddr)
		return localAddr.IP.String()
	}

	addrs, _ := net.InterfaceAddrs()
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				ip := ipnet.IP.String()
				if !strings.HasPrefix(ip, "169.254.") {
					return ip
				}
			}
		}
	}
	return "127.0.0.1"
}
