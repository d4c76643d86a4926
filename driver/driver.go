// Package driver advances the demo's scalar simulation state once per tick
// and hands the resulting parameter block to a shader executor.
package driver

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/richinsley/goshaderdemo/executor"
	"github.com/richinsley/goshaderdemo/log"
	"github.com/richinsley/goshaderdemo/params"
)

var logger = log.New("driver")

type parameterUpdater interface {
	UpdateParameters(b params.Block) error
}

type drawer interface {
	Draw(b params.Block) error
}

// Config describes what a Driver renders into.
type Config struct {
	// Resolution of the blocks. Zero uses the executor's size, or
	// params.DefaultSize without an executor. A non-zero size must match the
	// executor's.
	Size         params.IntPoint
	FeatureLevel params.FeatureLevel
	Target       params.RenderTarget

	// Starting state. Nil uses DefaultState.
	Initial *State
}

// Driver owns the simulation state and the executor it feeds. The executor
// is released by Close and by nothing else.
type Driver struct {
	mu       sync.Mutex
	cfg      Config
	state    State
	last     params.Block
	ex       executor.Executor
	dispatch func(params.Block) error
	ticks    int64
	failed   int64
}

// New creates a driver feeding ex. A nil executor is allowed: the state still
// advances every tick but nothing is rendered.
func New(cfg Config, ex executor.Executor) (*Driver, error) {
	if cfg.Size == (params.IntPoint{}) {
		cfg.Size = params.DefaultSize
		if ex != nil {
			cfg.Size = ex.Size()
		}
	}
	if !cfg.Size.Valid() {
		return nil, fmt.Errorf("driver: invalid size %s", cfg.Size)
	}
	if ex != nil && cfg.Size != ex.Size() {
		return nil, fmt.Errorf("driver: size %s does not match executor size %s", cfg.Size, ex.Size())
	}

	d := &Driver{cfg: cfg, state: DefaultState(), ex: ex}
	if cfg.Initial != nil {
		d.state = *cfg.Initial
	}

	if ex != nil {
		dispatch, err := bindDispatch(ex)
		if err != nil {
			return nil, err
		}
		d.dispatch = dispatch
	}
	return d, nil
}

// bindDispatch picks the single executor entry point used for the lifetime of
// the driver.
func bindDispatch(ex executor.Executor) (func(params.Block) error, error) {
	switch ex.Mode() {
	case executor.ModeContinuous:
		u, ok := ex.(parameterUpdater)
		if !ok {
			return nil, fmt.Errorf("driver: %T does not accept parameter updates", ex)
		}
		return u.UpdateParameters, nil
	case executor.ModeOnDemand:
		dr, ok := ex.(drawer)
		if !ok {
			return nil, fmt.Errorf("driver: %T cannot draw", ex)
		}
		return dr.Draw, nil
	default:
		return nil, fmt.Errorf("driver: unsupported executor mode %s", ex.Mode())
	}
}

// Tick advances the state by dt seconds and dispatches the new block. Save
// requests are cleared afterwards whether or not they were honored. Without
// an executor only the elapsed time advances.
func (d *Driver) Tick(dt float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	advance := Advance
	if d.dispatch == nil {
		advance = AdvanceClock
	}
	next, b := advance(d.state, dt, d.cfg.Size, d.cfg.FeatureLevel, d.cfg.Target)
	d.last = b
	d.ticks++

	if d.dispatch != nil {
		if err := d.dispatch(b); err != nil {
			d.failed++
			logger.Warningf("tick %d: %v", d.ticks, err)
		}
	} else if b.HasSaveRequest() {
		logger.Debugf("tick %d: no executor, dropping save requests", d.ticks)
	}

	d.state = next.ClearSaveRequests()
}

// RequestPixelSave asks for the pixel output of the next tick to be saved.
func (d *Driver) RequestPixelSave() {
	d.mu.Lock()
	d.state.SavePixelOutput = true
	d.mu.Unlock()
}

// RequestComputeSave asks for the simulation output of the next tick to be
// saved.
func (d *Driver) RequestComputeSave() {
	d.mu.Lock()
	d.state.SaveComputeOutput = true
	d.mu.Unlock()
}

// SetBlendVelocity sets the rate of change of the blend factor. It is not
// clamped.
func (d *Driver) SetBlendVelocity(v float64) {
	d.mu.Lock()
	d.state.BlendVelocity = v
	d.mu.Unlock()
}

func (d *Driver) SetSimulationSpeed(s float64) {
	d.mu.Lock()
	d.state.SimulationSpeed = s
	d.mu.Unlock()
}

func (d *Driver) SetStartColor(c color.RGBA) {
	d.mu.Lock()
	d.state.StartColor = c
	d.mu.Unlock()
}

// SetTarget replaces the render target used for subsequent blocks.
func (d *Driver) SetTarget(t params.RenderTarget) {
	d.mu.Lock()
	d.cfg.Target = t
	d.mu.Unlock()
}

// State returns a copy of the current state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// LastBlock returns the block assembled by the most recent Tick.
func (d *Driver) LastBlock() params.Block {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Ticks returns the number of ticks run and how many of their dispatches
// failed.
func (d *Driver) Ticks() (total, failed int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ticks, d.failed
}

// Executor returns the executor being fed, or nil.
func (d *Driver) Executor() executor.Executor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ex
}

// Close releases the executor. Later ticks keep advancing the state without
// dispatching.
func (d *Driver) Close() error {
	d.mu.Lock()
	ex := d.ex
	d.ex = nil
	d.dispatch = nil
	d.mu.Unlock()

	if ex == nil {
		return nil
	}
	return ex.Close()
}
