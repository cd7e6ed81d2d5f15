package scan

import (
	"context"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/pkg/errors"

	"discshare/internal/logging"
	"discshare/internal/rendezvous"
	"discshare/internal/share"
)

// browseTimeout bounds one mDNS browse round. LAN responses arrive
// within a second or two; anything slower is not there.
const browseTimeout = 4 * time.Second

// browseMDNS collects share servers advertising on the local network and
// returns them as probe candidates, in discovery order.
func browseMDNS(ctx context.Context, log *logging.Logger) ([]rendezvous.Candidate, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating mdns resolver")
	}

	ctx, cancel := context.WithTimeout(ctx, browseTimeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, share.MDNSService, "local.", entries); err != nil {
		return nil, errors.Wrap(err, "browsing mdns")
	}

	var candidates []rendezvous.Candidate
	for entry := range entries {
		if len(entry.AddrIPv4) == 0 {
			continue
		}
		cand := rendezvous.Candidate{IP: entry.AddrIPv4[0].String(), Port: entry.Port}
		log.Debug("mdns candidate", logging.String("addr", cand.Addr()))
		candidates = append(candidates, cand)
	}
	return candidates, nil
}
