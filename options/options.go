// Package options holds the demo configuration: defaults, YAML loading,
// validation and a file watcher for live tuning.
package options

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/richinsley/goshaderdemo/capture"
	"github.com/richinsley/goshaderdemo/executor"
	"github.com/richinsley/goshaderdemo/params"
)

const (
	BackendGL       = "gl"
	BackendEGL      = "egl"
	BackendSoftware = "software"
)

// DemoOptions is the full configuration of a demo run.
type DemoOptions struct {
	// "continuous" or "on-demand"
	Mode    string `yaml:"mode"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Backend string `yaml:"backend"`
	FPS     int    `yaml:"fps"`

	// Number of ticks to run. Zero runs until interrupted.
	Frames       int    `yaml:"frames"`
	FeatureLevel string `yaml:"feature_level"`

	SimulationSpeed float64   `yaml:"simulation_speed"`
	Blend           float64   `yaml:"blend"`
	BlendVelocity   float64   `yaml:"blend_velocity"`
	StartColor      YAMLColor `yaml:"start_color"`

	SaveDir    string `yaml:"save_dir"`
	SaveFormat string `yaml:"save_format"`

	// Tick indices at which a one-shot save is requested.
	SavePixelAt   []int `yaml:"save_pixel_at,omitempty"`
	SaveComputeAt []int `yaml:"save_compute_at,omitempty"`

	RecordFile string `yaml:"record_file"`
	FFmpegPath string `yaml:"ffmpeg_path"`
	Codec      string `yaml:"codec"`

	// Show a window (GL backend, continuous mode).
	Visible bool `yaml:"visible"`

	// Hand executor teardown to the render-loop owner instead of releasing
	// at close.
	DeferRelease bool `yaml:"defer_release"`
}

// Default returns the configuration of the stock demo character.
func Default() *DemoOptions {
	return &DemoOptions{
		Mode:            executor.ModeContinuous.String(),
		Width:           params.DefaultSize.X,
		Height:          params.DefaultSize.Y,
		Backend:         BackendSoftware,
		FPS:             60,
		Frames:          120,
		FeatureLevel:    string(params.FeatureLevelES31),
		SimulationSpeed: 1,
		Blend:           0.5,
		StartColor:      YAMLColor{R: 0, G: 255, B: 0, A: 255},
		SaveDir:         "output",
		SaveFormat:      string(capture.PNG),
		Codec:           "libx264",
	}
}

// Load reads path on top of Default.
func Load(path string) (*DemoOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*DemoOptions, error) {
	o := Default()
	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Marshal encodes o as YAML.
func (o *DemoOptions) Marshal() ([]byte, error) {
	return yaml.Marshal(o)
}

// Size returns the render target resolution.
func (o *DemoOptions) Size() params.IntPoint {
	return params.IntPoint{X: o.Width, Y: o.Height}
}

// ExecutorMode parses Mode.
func (o *DemoOptions) ExecutorMode() (executor.Mode, error) {
	return executor.ParseMode(o.Mode)
}

// ImageFormat parses SaveFormat.
func (o *DemoOptions) ImageFormat() (capture.Format, error) {
	return capture.ParseFormat(o.SaveFormat)
}

// Validate checks every field and joins all problems found.
func (o *DemoOptions) Validate() error {
	var errs []error
	if _, err := o.ExecutorMode(); err != nil {
		errs = append(errs, err)
	}
	if !o.Size().Valid() {
		errs = append(errs, fmt.Errorf("invalid size %dx%d", o.Width, o.Height))
	}
	switch o.Backend {
	case BackendGL, BackendEGL, BackendSoftware:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", o.Backend))
	}
	if o.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", o.FPS))
	}
	if o.Frames < 0 {
		errs = append(errs, fmt.Errorf("frames must not be negative, got %d", o.Frames))
	}
	switch params.FeatureLevel(o.FeatureLevel) {
	case params.FeatureLevelES31, params.FeatureLevelSM5:
	default:
		errs = append(errs, fmt.Errorf("unknown feature level %q", o.FeatureLevel))
	}
	if o.Blend < 0 || o.Blend > 1 {
		errs = append(errs, fmt.Errorf("blend must be in [0,1], got %g", o.Blend))
	}
	if o.SimulationSpeed < 0 {
		errs = append(errs, fmt.Errorf("simulation speed must not be negative, got %g", o.SimulationSpeed))
	}
	if _, err := o.ImageFormat(); err != nil {
		errs = append(errs, err)
	}
	for _, at := range append(append([]int(nil), o.SavePixelAt...), o.SaveComputeAt...) {
		if at < 0 {
			errs = append(errs, fmt.Errorf("save tick %d is negative", at))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	return nil
}

// Tunables are the values that may change while an executor is running.
type Tunables struct {
	SimulationSpeed float64
	BlendVelocity   float64
	StartColor      YAMLColor
}

func (o *DemoOptions) Tunables() Tunables {
	return Tunables{
		SimulationSpeed: o.SimulationSpeed,
		BlendVelocity:   o.BlendVelocity,
		StartColor:      o.StartColor,
	}
}

// FixedChanges lists the fields of next that differ from o but are fixed
// for the lifetime of a running executor.
func (o *DemoOptions) FixedChanges(next *DemoOptions) []string {
	var changed []string
	if o.Mode != next.Mode {
		changed = append(changed, "mode")
	}
	if o.Width != next.Width || o.Height != next.Height {
		changed = append(changed, "size")
	}
	if o.Backend != next.Backend {
		changed = append(changed, "backend")
	}
	if o.FeatureLevel != next.FeatureLevel {
		changed = append(changed, "feature_level")
	}
	return changed
}
