// Package params holds the per-frame input handed from the frame driver to a
// shader executor.
package params

import (
	"fmt"
	"image/color"
)

// IntPoint is an integer 2D size or coordinate.
type IntPoint struct {
	X int
	Y int
}

// DefaultSize is the render target resolution used by the demo character.
var DefaultSize = IntPoint{X: 1024, Y: 1024}

// Valid reports whether p can be used as a render target resolution.
func (p IntPoint) Valid() bool {
	return p.X > 0 && p.Y > 0
}

func (p IntPoint) String() string {
	return fmt.Sprintf("%dx%d", p.X, p.Y)
}

// FeatureLevel describes the rendering capabilities of the scene the
// parameters were built for. Executors pass it through to their backend
// without interpreting it.
type FeatureLevel string

const (
	FeatureLevelES31 FeatureLevel = "ES3_1"
	FeatureLevelSM5  FeatureLevel = "SM5"
)

// RenderTarget is an opaque handle to the texture a pixel pass writes into.
// Downstream consumers (materials, capture) read from it.
type RenderTarget interface {
	// Size returns the resolution of the target.
	Size() IntPoint

	// Valid returns false once the target's resources have been released.
	Valid() bool
}

// Block is the frozen input for a single shader pass. It is rebuilt every
// frame and carries no identity beyond that frame; executors must not keep
// references to it past the call it was handed to.
type Block struct {
	FeatureLevel FeatureLevel
	Target       RenderTarget
	Size         IntPoint

	// Seconds since the previous frame and the running sum of all deltas.
	DeltaTime        float64
	TotalElapsedTime float64

	SimulationSpeed float64

	// Interpolation weight in [0,1] between the previous and the freshly
	// computed simulation state.
	BlendFactor float64

	// Gradient endpoints for the pixel pass.
	StartColor color.RGBA
	EndColor   color.RGBA

	// One-shot output save requests. Each is honored at most once.
	SaveComputeOutput bool
	SavePixelOutput   bool
}

// HasSaveRequest reports whether any one-shot save flag is set.
func (b Block) HasSaveRequest() bool {
	return b.SaveComputeOutput || b.SavePixelOutput
}

// WithoutSaveRequests returns a copy of b with both save flags cleared.
func (b Block) WithoutSaveRequests() Block {
	b.SaveComputeOutput = false
	b.SavePixelOutput = false
	return b
}
