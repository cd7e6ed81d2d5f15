package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"discshare/internal/logging"
	"discshare/internal/rendezvous"
)

// matchService spins up a fake match service whose /match/list returns
// the given candidates.
func matchService(t *testing.T, candidates []rendezvous.Candidate) *rendezvous.Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(candidates)
	}))
	t.Cleanup(ts.Close)
	return rendezvous.NewClient(ts.Listener.Addr().String(), logging.NewNop())
}

// countingListener accepts TCP connections and counts them.
func countingListener(t *testing.T) (rendezvous.Candidate, *atomic.Int64) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	var count atomic.Int64
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			count.Add(1)
			conn.Close()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return rendezvous.Candidate{IP: "127.0.0.1", Port: addr.Port}, &count
}

// deadCandidate returns an address nothing listens on.
func deadCandidate(t *testing.T) rendezvous.Candidate {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()
	return rendezvous.Candidate{IP: "127.0.0.1", Port: addr.Port}
}

func TestScanFirstReachableWins(t *testing.T) {
	dead := deadCandidate(t)
	second, secondCount := countingListener(t)
	third, thirdCount := countingListener(t)

	rdv := matchService(t, []rendezvous.Candidate{dead, second, third})
	s := NewScanner(rdv, false, logging.NewNop())
	s.Run(context.Background())

	if !s.Complete() {
		t.Fatal("scan should be complete")
	}
	if got := s.URL(); got != second.URL() {
		t.Errorf("expected %s, got %q", second.URL(), got)
	}
	// The listener goroutine records accepts asynchronously; give it a
	// moment to observe the probe before asserting.
	deadline := time.Now().Add(time.Second)
	for secondCount.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if secondCount.Load() == 0 {
		t.Error("second candidate was never probed")
	}
	if thirdCount.Load() != 0 {
		t.Error("third candidate must not be probed after a hit")
	}
}

func TestScanEmptyList(t *testing.T) {
	rdv := matchService(t, nil)
	s := NewScanner(rdv, false, logging.NewNop())
	s.Run(context.Background())

	if !s.Complete() {
		t.Fatal("scan should be complete")
	}
	if s.URL() != "" {
		t.Errorf("expected empty result, got %q", s.URL())
	}
}

func TestScanAllUnreachable(t *testing.T) {
	rdv := matchService(t, []rendezvous.Candidate{deadCandidate(t), deadCandidate(t)})
	s := NewScanner(rdv, false, logging.NewNop())
	s.Run(context.Background())

	if !s.Complete() || s.URL() != "" {
		t.Errorf("expected complete empty scan, complete=%v url=%q", s.Complete(), s.URL())
	}
}

func TestScanUnreachableService(t *testing.T) {
	rdv := rendezvous.NewClient("127.0.0.1:1", logging.NewNop())
	s := NewScanner(rdv, false, logging.NewNop())
	s.Run(context.Background())

	if !s.Complete() || s.URL() != "" {
		t.Errorf("expected complete empty scan, complete=%v url=%q", s.Complete(), s.URL())
	}
}

func TestScanMalformedPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "certainly not json")
	}))
	defer ts.Close()

	rdv := rendezvous.NewClient(ts.Listener.Addr().String(), logging.NewNop())
	s := NewScanner(rdv, false, logging.NewNop())
	s.Run(context.Background())

	if !s.Complete() || s.URL() != "" {
		t.Errorf("expected complete empty scan, complete=%v url=%q", s.Complete(), s.URL())
	}
}

func TestScanNoSourcesConfigured(t *testing.T) {
	s := NewScanner(nil, false, logging.NewNop())

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scan with no sources should return immediately")
	}
	if s.URL() != "" {
		t.Errorf("expected empty result, got %q", s.URL())
	}
}
