package menu

import (
	"context"
	"sync"
)

// Tracker makes the latest request for a view win. Beginning a request
// cancels the one in flight for the same view, and only the latest
// generation may commit its result.
type Tracker struct {
	mu    sync.Mutex
	next  uint64
	views map[string]*inflight
}

type inflight struct {
	gen    uint64
	cancel context.CancelFunc
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{views: make(map[string]*inflight)}
}

// Begin registers a new request for key. The returned context is cancelled
// when a newer request for key begins or when release is called. release
// must be called once the request is done.
func (t *Tracker) Begin(parent context.Context, key string) (ctx context.Context, gen uint64, release func()) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	t.next++
	gen = t.next
	if prev, ok := t.views[key]; ok {
		prev.cancel()
	}
	t.views[key] = &inflight{gen: gen, cancel: cancel}
	t.mu.Unlock()

	release = func() {
		cancel()
		t.mu.Lock()
		if cur, ok := t.views[key]; ok && cur.gen == gen {
			delete(t.views, key)
		}
		t.mu.Unlock()
	}
	return ctx, gen, release
}

// Commit reports whether gen is still the latest request for key.
func (t *Tracker) Commit(key string, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.views[key]
	return ok && cur.gen == gen
}

// InFlight returns the number of views with a running request.
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.views)
}
