package scan

import (
	"context"
	"net"
	"sync"
	"time"

	"discshare/internal/logging"
	"discshare/internal/rendezvous"
)

// defaultProbeTimeout bounds the TCP connect to one candidate. Probes
// are fast-fail: a peer that can't accept within this window is skipped.
const defaultProbeTimeout = 2 * time.Second

// Scanner performs one discovery attempt: ask the match service for
// candidates, probe them in the order received, return the first that
// accepts a connection. Run blocks for as long as the network calls
// take, so it belongs on its own goroutine; the caller polls Complete.
type Scanner struct {
	log          *logging.Logger
	rdv          *rendezvous.Client
	mdnsFallback bool
	probeTimeout time.Duration

	// find is swappable in tests; it defaults to lookup.
	find func(ctx context.Context) string

	mu       sync.Mutex
	complete bool
	url      string
}

// NewScanner builds a scanner. rdv may be nil, in which case only the
// mDNS fallback (if enabled) is consulted.
func NewScanner(rdv *rendezvous.Client, mdnsFallback bool, log *logging.Logger) *Scanner {
	s := &Scanner{
		log:          log,
		rdv:          rdv,
		mdnsFallback: mdnsFallback,
		probeTimeout: defaultProbeTimeout,
	}
	s.find = s.lookup
	return s
}

// Run executes the scan and then marks it complete. It never fails:
// unreachable services, malformed payloads, and dead candidates all
// collapse into an empty result.
func (s *Scanner) Run(ctx context.Context) {
	url := s.find(ctx)

	s.mu.Lock()
	s.url = url
	s.complete = true
	s.mu.Unlock()
}

// Complete reports whether Run has finished.
func (s *Scanner) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// URL returns the discovered base URL, or "" when the scan found no
// reachable peer. Only meaningful once Complete is true.
func (s *Scanner) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *Scanner) lookup(ctx context.Context) string {
	if s.rdv != nil {
		candidates, err := s.rdv.List(ctx)
		if err != nil {
			// Treated exactly like an empty list; discovery just
			// didn't pan out this round.
			s.log.Debug("peer list unavailable", logging.Err(err))
		} else if url := s.probeAll(candidates); url != "" {
			return url
		}
	}

	if s.mdnsFallback {
		candidates, err := browseMDNS(ctx, s.log)
		if err != nil {
			s.log.Debug("mdns browse failed", logging.Err(err))
			return ""
		}
		return s.probeAll(candidates)
	}
	return ""
}

// probeAll walks the candidates strictly in order and returns the URL of
// the first one that accepts a TCP connection. Order is authoritative:
// the first hit wins and later entries are never touched.
func (s *Scanner) probeAll(candidates []rendezvous.Candidate) string {
	for _, cand := range candidates {
		conn, err := net.DialTimeout("tcp", cand.Addr(), s.probeTimeout)
		if err != nil {
			s.log.Debug("candidate unreachable",
				logging.String("addr", cand.Addr()), logging.Err(err))
			continue
		}
		conn.Close()
		s.log.Info("found peer", logging.String("url", cand.URL()))
		return cand.URL()
	}
	return ""
}
