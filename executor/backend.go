package executor

import (
	"image"

	"github.com/richinsley/goshaderdemo/capture"
	"github.com/richinsley/goshaderdemo/params"
)

// Pass is what a backend sees for a single render.
type Pass struct {
	Block params.Block

	// Simulation time accumulated by the executor (DeltaTime scaled by
	// SimulationSpeed, summed over every fresh block).
	SimTime float64

	// Zero-based index of the render.
	Frame int64
}

// Backend owns the GPU (or CPU) side of the shader pair: a simulation
// ("compute") pass and a pixel pass writing into a render target.
type Backend interface {
	// Compute advances the simulation state.
	Compute(p Pass) error

	// Pixel renders the visible output into target.
	Pixel(p Pass, target params.RenderTarget) error

	// ReadCompute returns a snapshot of the current simulation state.
	ReadCompute() (image.Image, error)

	// ReadPixel returns a snapshot of target.
	ReadPixel(target params.RenderTarget) (image.Image, error)

	// Release frees every resource held by the backend.
	Release() error
}

// Saver persists a single output snapshot. A save request is handed to the
// saver exactly once; failures are not retried.
type Saver interface {
	Save(kind capture.Kind, frame int64, img image.Image) (string, error)
}

// FrameSink receives the pixel output of every rendered frame.
type FrameSink interface {
	WriteFrame(img image.Image) error
}

// Options carries the optional collaborators of an executor.
type Options struct {
	Saver Saver
	Sink  FrameSink

	// When set, Close hands the backend release to this queue instead of
	// running it immediately.
	Releases *ReleaseQueue
}
