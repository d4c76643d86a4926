package driver

import (
	"image/color"
	"math"

	"github.com/richinsley/goshaderdemo/params"
)

// State is the scalar simulation state owned by a Driver. It is a plain value:
// Advance takes one and returns the next.
type State struct {
	TotalElapsedTime float64

	// ColorBuildup ping-pongs in [0,1] and drives the red channel of the end
	// color. ColorBuildupDirection is +1 or -1.
	ColorBuildup          float64
	ColorBuildupDirection float64

	BlendFactor   float64
	BlendVelocity float64

	SimulationSpeed float64
	StartColor      color.RGBA

	SaveComputeOutput bool
	SavePixelOutput   bool
}

// DefaultState returns the state a freshly spawned demo character starts
// with.
func DefaultState() State {
	return State{
		ColorBuildupDirection: 1,
		BlendFactor:           0.5,
		SimulationSpeed:       1,
		StartColor:            color.RGBA{R: 0, G: 255, B: 0, A: 255},
	}
}

// ClearSaveRequests returns s with both one-shot save flags reset.
func (s State) ClearSaveRequests() State {
	s.SaveComputeOutput = false
	s.SavePixelOutput = false
	return s
}

func clampUnit(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

// Advance moves s forward by dt seconds and assembles the parameter block for
// the new state. Negative deltas are treated as zero.
func Advance(s State, dt float64, size params.IntPoint, feature params.FeatureLevel, target params.RenderTarget) (State, params.Block) {
	dt = math.Max(dt, 0)
	s.TotalElapsedTime += dt

	s.ColorBuildup = clampUnit(s.ColorBuildup + dt*s.ColorBuildupDirection)
	if s.ColorBuildup >= 1 || s.ColorBuildup <= 0 {
		s.ColorBuildupDirection = -s.ColorBuildupDirection
	}

	s.BlendFactor = clampUnit(s.BlendFactor + s.BlendVelocity*dt)

	return s, s.block(dt, size, feature, target)
}

// AdvanceClock moves only the elapsed time of s forward. It is the tick
// without an executor: color buildup and blend factor hold still.
func AdvanceClock(s State, dt float64, size params.IntPoint, feature params.FeatureLevel, target params.RenderTarget) (State, params.Block) {
	dt = math.Max(dt, 0)
	s.TotalElapsedTime += dt
	return s, s.block(dt, size, feature, target)
}

func (s State) block(dt float64, size params.IntPoint, feature params.FeatureLevel, target params.RenderTarget) params.Block {
	return params.Block{
		FeatureLevel:      feature,
		Target:            target,
		Size:              size,
		DeltaTime:         dt,
		TotalElapsedTime:  s.TotalElapsedTime,
		SimulationSpeed:   s.SimulationSpeed,
		BlendFactor:       s.BlendFactor,
		StartColor:        s.StartColor,
		EndColor:          color.RGBA{R: uint8(s.ColorBuildup * 255), A: 255},
		SaveComputeOutput: s.SaveComputeOutput,
		SavePixelOutput:   s.SavePixelOutput,
	}
}
