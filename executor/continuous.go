package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/richinsley/goshaderdemo/params"
)

// Continuous is an executor that renders from its own render-loop callback.
// The frame driver only publishes parameters through UpdateParameters; the
// loop calls Render (directly or through RunLoop) whenever it wants a frame.
//
// Published blocks go into a two slot buffer: UpdateParameters writes the
// write slot and Render swaps it in, so a publisher never waits for a render
// in progress.
type Continuous struct {
	core

	updates  atomic.Int64
	rejected atomic.Int64

	slotMu     sync.Mutex
	slots      [2]params.Block
	readIndex  int
	writeIndex int
	pending    bool
	published  bool
}

// NewContinuous creates a continuous executor rendering at size.
func NewContinuous(backend Backend, size params.IntPoint, opts Options) (*Continuous, error) {
	c := &Continuous{writeIndex: 1}
	if err := c.init(ModeContinuous, backend, size, opts); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateParameters publishes b for the next Render. It does not render. A
// block that was published but not yet rendered is replaced, and its save
// requests are dropped with it.
func (c *Continuous) UpdateParameters(b params.Block) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.updates.Add(1)
	if err := c.checkBlock(b); err != nil {
		c.rejected.Add(1)
		return err
	}

	c.slotMu.Lock()
	if c.pending && c.slots[c.writeIndex].HasSaveRequest() {
		logger.Debugf("unrendered parameters replaced, dropping their save requests")
	}
	c.slots[c.writeIndex] = b
	c.pending = true
	c.published = true
	c.slotMu.Unlock()
	return nil
}

// Render draws one frame from the most recently published parameters. When
// nothing new was published since the last Render, the previous parameters
// are rendered again without advancing simulation time or repeating saves.
func (c *Continuous) Render() error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.slotMu.Lock()
	if !c.published {
		c.slotMu.Unlock()
		return ErrNoParameters
	}
	fresh := c.pending
	if fresh {
		c.readIndex, c.writeIndex = c.writeIndex, c.readIndex
		c.pending = false
	}
	b := c.slots[c.readIndex]
	c.slots[c.readIndex] = b.WithoutSaveRequests()
	c.slotMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.render(b, fresh)
}

// RunLoop calls Render every interval until ctx is done or the executor is
// closed. Render errors other than ErrNoParameters are logged and the loop
// keeps going. The backend must tolerate being driven from the calling
// goroutine.
func (c *Continuous) RunLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := c.Render()
			switch {
			case err == nil, errors.Is(err, ErrNoParameters):
			case errors.Is(err, ErrClosed):
				return err
			default:
				logger.Warningf("render failed: %v", err)
			}
		}
	}
}

// Stats returns a snapshot of the executor counters.
func (c *Continuous) Stats() Stats {
	c.mu.Lock()
	s := c.stats
	c.mu.Unlock()

	s.Updates = c.updates.Load()
	s.InvalidTargets += c.rejected.Load()
	return s
}
