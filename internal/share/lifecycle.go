package share

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"discshare/internal/logging"
	"discshare/internal/network"
	"discshare/internal/rendezvous"
)

// Status is the lifecycle state of a share server.
type Status int

const (
	Stopped Status = iota
	Starting
	Running
	Stopping
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return "unknown"
}

var (
	// ErrAlreadyActive is returned by Start when the server is not
	// fully stopped. Callers treat it as a no-op, not a failure.
	ErrAlreadyActive = errors.New("share: server already active")
	// ErrNotRunning is returned by Stop when there is nothing to stop.
	ErrNotRunning = errors.New("share: server not running")
)

// registerInterval is how often a running server re-announces itself to
// the match service.
const registerInterval = 540 * time.Second

// Options configures one share server.
type Options struct {
	// Files is the candidate list the path table is built from.
	Files []string

	// Port is the preferred listen port; 0 or a busy port falls back
	// to an ephemeral one.
	Port int

	// Rendezvous, when non-nil, is used for the registration
	// heartbeat.
	Rendezvous *rendezvous.Client

	// AnnounceMDNS additionally advertises the server over mDNS.
	AnnounceMDNS bool

	// OnBound is called from the serving goroutine with the actually
	// bound port, so the caller can persist it. May be nil.
	OnBound func(port int)

	// RegisterInterval overrides the heartbeat cadence. Zero means
	// the default 540s.
	RegisterInterval time.Duration
}

// Server owns one serving run: the path table, the listener, and the
// background goroutine driving them. State transitions happen under a
// single lock and every transition broadcasts on the condition variable,
// so pollers and WaitFor callers always wake up.
type Server struct {
	log  *logging.Logger
	opts Options

	mu     sync.Mutex
	cond   *sync.Cond
	status Status
	port   int
	stop   chan struct{}
}

// NewServer creates a share server in the Stopped state.
func NewServer(opts Options, log *logging.Logger) *Server {
	if opts.RegisterInterval == 0 {
		opts.RegisterInterval = registerInterval
	}
	s := &Server{log: log, opts: opts}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Start spawns the serving goroutine. Only one run may exist at a time:
// if the server is starting, running, or still winding down, Start
// returns ErrAlreadyActive and spawns nothing. It does not wait for the
// listener to bind; watch Status or use WaitFor for that.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != Stopped {
		return ErrAlreadyActive
	}
	s.status = Starting
	s.stop = make(chan struct{})
	s.cond.Broadcast()

	go s.run(s.stop)
	return nil
}

// Stop requests a cooperative shutdown. It only flips the state: the
// serving goroutine notices and exits on its own schedule, reaching
// Stopped within one polling slice. Stopping twice, or stopping a
// stopped server, returns ErrNotRunning.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != Running {
		return ErrNotRunning
	}
	s.status = Stopping
	s.cond.Broadcast()
	close(s.stop)
	return nil
}

// Status returns the current lifecycle state.
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Port returns the bound port of the current or last run.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// WaitFor blocks until the server reaches the given status or the
// timeout elapses. Returns true if the status was reached.
func (s *Server) WaitFor(want Status, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	// Wake the cond waiter periodically so a timeout can't strand us.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.cond.Broadcast()
			}
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.status != want {
		if time.Now().After(deadline) {
			return false
		}
		s.cond.Wait()
	}
	return true
}

func (s *Server) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.cond.Broadcast()
	s.mu.Unlock()
}

// run is the serving goroutine: bind, announce, serve until stopped.
func (s *Server) run(stop <-chan struct{}) {
	defer s.setStatus(Stopped)

	table := BuildTable(s.opts.Files)
	s.log.Info("share server starting", logging.Int("files", len(table)))

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.opts.Port))
	if err != nil {
		// Preferred port unavailable, take whatever is free.
		ln, err = net.Listen("tcp", ":0")
	}
	if err != nil {
		s.log.Error("listen failed", logging.Err(err))
		return
	}

	port := ln.Addr().(*net.TCPAddr).Port
	s.mu.Lock()
	s.port = port
	s.status = Running
	s.cond.Broadcast()
	s.mu.Unlock()

	if s.opts.OnBound != nil {
		s.opts.OnBound(port)
	}
	s.log.Info("share server listening", logging.Int("port", port))

	srv := &http.Server{Handler: newRouter(s.log, table)}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("serve failed", logging.Err(err))
		}
	}()

	if s.opts.AnnounceMDNS {
		if mdns, err := announce(port); err != nil {
			s.log.Warn("mdns announce failed", logging.Err(err))
		} else {
			defer mdns.Shutdown()
		}
	}

	// First registration happens right after binding; later ones on the
	// heartbeat ticker, interleaved with serving.
	s.register(port)
	ticker := time.NewTicker(s.opts.RegisterInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := srv.Shutdown(ctx); err != nil {
				s.log.Warn("shutdown incomplete", logging.Err(err))
			}
			cancel()
			s.log.Info("share server stopped")
			return
		case <-ticker.C:
			s.register(port)
		}
	}
}

// register performs one heartbeat. Unreachable match service is a silent
// no-op: the server keeps serving and tries again next interval.
func (s *Server) register(port int) {
	if s.opts.Rendezvous == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ip := network.LocalIP(s.opts.Rendezvous.Host())
	s.opts.Rendezvous.Register(ctx, ip, port)
}
