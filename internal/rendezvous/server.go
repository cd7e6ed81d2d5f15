package rendezvous

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"discshare/internal/logging"
	"discshare/internal/middleware"
)

// EntryTTL is how long a registration stays listed without a refresh.
// Servers re-register every 9 minutes, so 15 gives some slack.
const EntryTTL = 15 * time.Minute

type record struct {
	candidate Candidate
	lastSeen  time.Time
}

// Service is a self-hostable match service. Registrations are grouped by
// the public address they arrive from, and a list request only returns
// entries registered from the requester's own public address — devices
// behind the same NAT find each other, nobody else's servers leak in.
type Service struct {
	log *logging.Logger
	now func() time.Time

	mu      sync.Mutex
	entries map[string][]record // public host -> registrations, oldest first
}

// NewService creates an empty match service.
func NewService(log *logging.Logger) *Service {
	return &Service{
		log:     log,
		now:     time.Now,
		entries: make(map[string][]record),
	}
}

// Router returns the HTTP routes for the match protocol.
func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Recover(s.log))
	r.HandleFunc("/match/update", s.handleUpdate).Methods(http.MethodGet)
	r.HandleFunc("/match/list", s.handleList).Methods(http.MethodGet)
	return r
}

// Sweep removes registrations older than EntryTTL. Run it as a goroutine
// alongside the HTTP server.
func (s *Service) Sweep(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.expire()
		}
	}
}

func (s *Service) expire() {
	cutoff := s.now().Add(-EntryTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for host, recs := range s.entries {
		kept := recs[:0]
		for _, rec := range recs {
			if rec.lastSeen.After(cutoff) {
				kept = append(kept, rec)
			}
		}
		if len(kept) == 0 {
			delete(s.entries, host)
			s.log.Debug("expired all registrations", logging.String("host", host))
		} else {
			s.entries[host] = kept
		}
	}
}

func (s *Service) handleUpdate(w http.ResponseWriter, r *http.Request) {
	local := r.URL.Query().Get("local")
	port, err := strconv.Atoi(r.URL.Query().Get("port"))
	if local == "" || err != nil || port <= 0 || port > 65535 {
		http.Error(w, "missing or invalid local/port", http.StatusBadRequest)
		return
	}

	public := publicHost(r)
	cand := Candidate{IP: local, Port: port}

	s.mu.Lock()
	recs := s.entries[public]
	refreshed := false
	for i := range recs {
		if recs[i].candidate == cand {
			recs[i].lastSeen = s.now()
			refreshed = true
			break
		}
	}
	if !refreshed {
		recs = append(recs, record{candidate: cand, lastSeen: s.now()})
	}
	s.entries[public] = recs
	s.mu.Unlock()

	s.log.Info("registration",
		logging.String("public", public),
		logging.String("local", local),
		logging.Int("port", port))
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	public := publicHost(r)
	cutoff := s.now().Add(-EntryTTL)

	s.mu.Lock()
	recs := s.entries[public]
	// Newest first, so the most recently refreshed server is probed first.
	list := make([]Candidate, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		if recs[i].lastSeen.After(cutoff) {
			list = append(list, recs[i].candidate)
		}
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(list); err != nil {
		s.log.Error("encoding peer list", logging.Err(err))
	}
}

func publicHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
