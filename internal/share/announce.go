package share

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/grandcat/zeroconf"
)

// MDNSService is the service type discshare advertises and browses.
const MDNSService = "_discshare._tcp"

// announce advertises a running share server over mDNS so peers on
// networks without a reachable match service can still find it. The
// instance name carries a random suffix: several servers may share one
// LAN and instance names must be unique.
func announce(port int) (*zeroconf.Server, error) {
	instance := fmt.Sprintf("discshare-%s", uuid.NewString()[:8])
	return zeroconf.Register(instance, MDNSService, "local.", port, []string{"v=1"}, nil)
}
