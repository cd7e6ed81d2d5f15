package scan

import (
	"context"
	"time"

	"discshare/internal/logging"
)

// retryAfter is how long the watcher waits after an empty scan before
// launching the next one.
const retryAfter = 30 * time.Second

// Watcher drives scans until one finds a peer. Each poll tick inspects
// the current scan: a URL is handed to the callback exactly once; an
// empty result arms a retry deadline, and once the deadline passes a
// fresh scanner is launched. Scans never overlap — a new one only starts
// after the previous reported complete.
type Watcher struct {
	log        *logging.Logger
	newScanner func() *Scanner
	onFound    func(url string)
	retryAfter time.Duration
	now        func() time.Time

	scanner   *Scanner
	nextRetry time.Time
	handed    bool
}

// NewWatcher creates a watcher and launches the first scan immediately.
func NewWatcher(ctx context.Context, newScanner func() *Scanner, onFound func(url string), log *logging.Logger) *Watcher {
	w := &Watcher{
		log:        log,
		newScanner: newScanner,
		onFound:    onFound,
		retryAfter: retryAfter,
		now:        time.Now,
	}
	w.launch(ctx)
	return w
}

func (w *Watcher) launch(ctx context.Context) {
	w.scanner = w.newScanner()
	go w.scanner.Run(ctx)
}

// Tick advances the watcher. Call it from a polling loop; Run does this
// for you.
func (w *Watcher) Tick(ctx context.Context) {
	if !w.scanner.Complete() {
		return
	}

	if url := w.scanner.URL(); url != "" {
		if !w.handed {
			w.handed = true
			w.onFound(url)
		}
		return
	}

	switch {
	case w.nextRetry.IsZero():
		w.nextRetry = w.now().Add(w.retryAfter)
		w.log.Debug("no peer found, retry armed",
			logging.Duration("in", w.retryAfter))
	case w.now().After(w.nextRetry):
		w.nextRetry = time.Time{}
		w.log.Debug("retrying scan")
		w.launch(ctx)
	}
}

// Run polls at the given interval until a peer is handed off or the
// context is cancelled.
func (w *Watcher) Run(ctx context.Context, poll time.Duration) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick(ctx)
			if w.handed {
				return
			}
		}
	}
}
