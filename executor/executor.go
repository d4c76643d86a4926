// Package executor drives a shader backend from per-frame parameter blocks in
// one of two modes: continuous (parameters are published every tick and a
// separate render loop picks them up) or on-demand (every Draw call renders
// synchronously).
package executor

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/richinsley/goshaderdemo/capture"
	"github.com/richinsley/goshaderdemo/log"
	"github.com/richinsley/goshaderdemo/params"
)

var logger = log.New("executor")

// Executor is implemented by *Continuous and *OnDemand.
type Executor interface {
	// Mode returns the mode fixed at construction.
	Mode() Mode

	// Size returns the render target resolution fixed at construction.
	Size() params.IntPoint

	// Stats returns a snapshot of the running counters.
	Stats() Stats

	// Close releases the backend. It is safe to call more than once.
	Close() error
}

// New creates an executor of the requested mode.
func New(mode Mode, backend Backend, size params.IntPoint, opts Options) (Executor, error) {
	switch mode {
	case ModeContinuous:
		return NewContinuous(backend, size, opts)
	case ModeOnDemand:
		return NewOnDemand(backend, size, opts)
	default:
		return nil, fmt.Errorf("executor: unsupported mode %d", int(mode))
	}
}

// core holds the state shared by both executor variants. mu serializes
// renders; everything below it is guarded by mu.
type core struct {
	mode    Mode
	backend Backend
	size    params.IntPoint
	opts    Options

	closed atomic.Bool

	mu      sync.Mutex
	simTime float64
	frame   int64
	stats   Stats
}

func (c *core) init(mode Mode, backend Backend, size params.IntPoint, opts Options) error {
	if backend == nil {
		return ErrNoBackend
	}
	if !size.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}
	c.mode = mode
	c.backend = backend
	c.size = size
	c.opts = opts
	return nil
}

func (c *core) Mode() Mode {
	return c.mode
}

func (c *core) Size() params.IntPoint {
	return c.size
}

func (c *core) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	if c.opts.Releases != nil {
		logger.Debugf("deferring release of %s executor backend", c.mode)
		c.opts.Releases.Defer(c.mode.String()+" executor backend", c.backend.Release)
		return nil
	}

	logger.Debugf("releasing %s executor backend", c.mode)
	if err := c.backend.Release(); err != nil {
		return fmt.Errorf("executor: release backend: %w", err)
	}
	return nil
}

// checkBlock rejects blocks whose target or resolution does not match the
// executor.
func (c *core) checkBlock(b params.Block) error {
	if b.Target == nil {
		return fmt.Errorf("%w: no target", ErrInvalidTarget)
	}
	if !b.Target.Valid() {
		return fmt.Errorf("%w: target released", ErrInvalidTarget)
	}
	if ts := b.Target.Size(); ts != c.size {
		return fmt.Errorf("%w: target is %s, executor is %s", ErrInvalidTarget, ts, c.size)
	}
	if b.Size != c.size {
		return fmt.Errorf("%w: block is %s, executor is %s", ErrInvalidTarget, b.Size, c.size)
	}
	return nil
}

// render runs both passes for b. Save requests and simulation time are only
// honored for fresh blocks. Callers hold c.mu.
func (c *core) render(b params.Block, fresh bool) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.checkBlock(b); err != nil {
		c.stats.InvalidTargets++
		return err
	}

	if fresh {
		c.simTime += b.DeltaTime * b.SimulationSpeed
	} else {
		c.stats.StaleFrames++
	}

	pass := Pass{Block: b, SimTime: c.simTime, Frame: c.frame}
	if err := c.backend.Compute(pass); err != nil {
		return fmt.Errorf("executor: compute pass: %w", err)
	}
	if err := c.backend.Pixel(pass, b.Target); err != nil {
		return fmt.Errorf("executor: pixel pass: %w", err)
	}
	c.frame++
	c.stats.Frames++
	c.stats.SimTime = c.simTime

	if fresh && b.SaveComputeOutput {
		if c.save(capture.ComputeOutput, pass.Frame, c.backend.ReadCompute) {
			c.stats.ComputeSaves++
		}
	}

	// The pixel readback is shared by the save and the sink.
	var pixels image.Image
	var pixelErr error
	readPixel := func() (image.Image, error) {
		if pixels == nil && pixelErr == nil {
			pixels, pixelErr = c.backend.ReadPixel(b.Target)
		}
		return pixels, pixelErr
	}

	if fresh && b.SavePixelOutput {
		if c.save(capture.PixelOutput, pass.Frame, readPixel) {
			c.stats.PixelSaves++
		}
	}

	if c.opts.Sink != nil {
		img, err := readPixel()
		if err == nil {
			err = c.opts.Sink.WriteFrame(img)
		}
		if err != nil {
			logger.Warningf("frame %d not forwarded to sink: %v", pass.Frame, err)
		}
	}
	return nil
}

// save performs a single save attempt. A failed attempt is logged and
// dropped.
func (c *core) save(kind capture.Kind, frame int64, read func() (image.Image, error)) bool {
	if c.opts.Saver == nil {
		logger.Warningf("dropping %s save request for frame %d: no saver configured", kind, frame)
		c.stats.SaveFailures++
		return false
	}

	img, err := read()
	if err != nil {
		logger.Warningf("dropping %s save request for frame %d: %v", kind, frame, err)
		c.stats.SaveFailures++
		return false
	}

	path, err := c.opts.Saver.Save(kind, frame, img)
	if err != nil {
		logger.Warningf("dropping %s save request for frame %d: %v", kind, frame, err)
		c.stats.SaveFailures++
		return false
	}

	logger.Infof("saved %s output of frame %d to %s", kind, frame, path)
	return true
}
