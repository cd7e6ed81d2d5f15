package scan

import (
	"context"
	"testing"
	"time"

	"discshare/internal/logging"
)

// stubScanner builds a scanner that completes instantly with a canned
// result, without touching the network.
func stubScanner(url string) *Scanner {
	s := NewScanner(nil, false, logging.NewNop())
	s.find = func(context.Context) string { return url }
	return s
}

func waitComplete(t *testing.T, w *Watcher) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !w.scanner.Complete() {
		if time.Now().After(deadline) {
			t.Fatal("scanner never completed")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWatcherHandsOffOnce(t *testing.T) {
	var handed []string
	ctx := context.Background()

	launches := 0
	w := NewWatcher(ctx, func() *Scanner {
		launches++
		return stubScanner("http://192.168.1.50:8111")
	}, func(url string) {
		handed = append(handed, url)
	}, logging.NewNop())

	waitComplete(t, w)
	w.Tick(ctx)
	w.Tick(ctx)
	w.Tick(ctx)

	if len(handed) != 1 {
		t.Fatalf("expected exactly one hand-off, got %d", len(handed))
	}
	if handed[0] != "http://192.168.1.50:8111" {
		t.Errorf("unexpected URL: %s", handed[0])
	}
	if launches != 1 {
		t.Errorf("a successful scan must not be relaunched, got %d launches", launches)
	}
}

func TestWatcherRetriesAfterDeadline(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	launches := 0
	results := []string{"", "", "http://192.168.1.50:8111"}
	var handed string
	w := NewWatcher(ctx, func() *Scanner {
		s := stubScanner(results[launches])
		launches++
		return s
	}, func(url string) {
		handed = url
	}, logging.NewNop())
	w.now = func() time.Time { return now }

	// First empty completion arms the deadline but does not relaunch.
	waitComplete(t, w)
	w.Tick(ctx)
	if launches != 1 {
		t.Fatalf("expected no relaunch yet, got %d launches", launches)
	}

	// Still before the deadline: nothing happens.
	now = now.Add(10 * time.Second)
	w.Tick(ctx)
	if launches != 1 {
		t.Fatalf("relaunched before the deadline, %d launches", launches)
	}

	// Past the deadline: a fresh scan is launched.
	now = now.Add(25 * time.Second)
	w.Tick(ctx)
	if launches != 2 {
		t.Fatalf("expected relaunch after deadline, got %d launches", launches)
	}

	// Second scan is empty too; arm and pass another deadline.
	waitComplete(t, w)
	w.Tick(ctx)
	now = now.Add(31 * time.Second)
	w.Tick(ctx)
	if launches != 3 {
		t.Fatalf("expected third launch, got %d", launches)
	}

	// Third scan found a peer.
	waitComplete(t, w)
	w.Tick(ctx)
	if handed != "http://192.168.1.50:8111" {
		t.Errorf("expected hand-off from third scan, got %q", handed)
	}
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	w := NewWatcher(ctx, func() *Scanner {
		return stubScanner("")
	}, func(string) {}, logging.NewNop())

	done := make(chan struct{})
	go func() {
		w.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}

func TestWatcherRunHandsOff(t *testing.T) {
	ctx := context.Background()
	found := make(chan string, 1)

	w := NewWatcher(ctx, func() *Scanner {
		return stubScanner("http://10.0.0.2:9000")
	}, func(url string) {
		found <- url
	}, logging.NewNop())

	go w.Run(ctx, 5*time.Millisecond)

	select {
	case url := <-found:
		if url != "http://10.0.0.2:9000" {
			t.Errorf("unexpected URL %q", url)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run never handed off the result")
	}
}
