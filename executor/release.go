package executor

import (
	"errors"
	"fmt"
	"sync"
)

type pendingRelease struct {
	name string
	fn   func() error
}

// ReleaseQueue collects resource releases that must not run at the point
// where their owner is closed, typically because the render loop may still
// reference them. The render-loop owner calls Flush once it is safe.
type ReleaseQueue struct {
	mu      sync.Mutex
	pending []pendingRelease
}

// Defer queues fn for the next Flush.
func (q *ReleaseQueue) Defer(name string, fn func() error) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, pendingRelease{name: name, fn: fn})
	q.mu.Unlock()
}

// Len returns the number of queued releases.
func (q *ReleaseQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush runs every queued release in FIFO order and empties the queue. All
// releases run even if some fail; the failures are joined.
func (q *ReleaseQueue) Flush() error {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	var errs []error
	for _, r := range pending {
		if err := r.fn(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", r.name, err))
		}
	}
	return errors.Join(errs...)
}
