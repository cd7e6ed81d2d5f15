package rendezvous

import (
	"fmt"
	"net"
	"strconv"
)

// Candidate is one peer entry from the match service. Field names follow
// the wire format: "ip" and "p".
type Candidate struct {
	IP   string `json:"ip"`
	Port int    `json:"p"`
}

// Addr returns the host:port dial target for this candidate.
func (c Candidate) Addr() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(c.Port))
}

// URL returns the base URL a client should browse once the candidate
// proves reachable.
func (c Candidate) URL() string {
	return fmt.Sprintf("http://%s:%d", c.IP, c.Port)
}
