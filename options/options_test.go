package options

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshaderdemo/capture"
	"github.com/richinsley/goshaderdemo/executor"
	"github.com/richinsley/goshaderdemo/params"
)

func TestDefaultIsValid(t *testing.T) {
	o := Default()
	require.NoError(t, o.Validate())
	assert.Equal(t, params.DefaultSize, o.Size())

	mode, err := o.ExecutorMode()
	require.NoError(t, err)
	assert.Equal(t, executor.ModeContinuous, mode)

	format, err := o.ImageFormat()
	require.NoError(t, err)
	assert.Equal(t, capture.PNG, format)
}

func TestParseOverridesDefaults(t *testing.T) {
	o, err := Parse([]byte(`
mode: on-demand
width: 256
height: 128
backend: gl
start_color: "#ff000080"
blend_velocity: -0.25
save_pixel_at: [3, 10]
save_format: tiff
`))
	require.NoError(t, err)

	assert.Equal(t, "on-demand", o.Mode)
	assert.Equal(t, params.IntPoint{X: 256, Y: 128}, o.Size())
	assert.Equal(t, BackendGL, o.Backend)
	assert.Equal(t, YAMLColor{R: 255, A: 128}, o.StartColor)
	assert.Equal(t, -0.25, o.BlendVelocity)
	assert.Equal(t, []int{3, 10}, o.SavePixelAt)
	assert.Equal(t, 60, o.FPS)
	assert.Equal(t, 1.0, o.SimulationSpeed)
}

func TestValidateJoinsErrors(t *testing.T) {
	o := Default()
	o.Mode = "sometimes"
	o.Width = 0
	o.Backend = "vulkan"
	o.Blend = 2
	o.SaveFormat = "gif"
	o.SaveComputeAt = []int{-1}

	err := o.Validate()
	require.Error(t, err)
	for _, want := range []string{"sometimes", "invalid size", "vulkan", "blend", "gif", "save tick -1"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseRejectsBadColor(t *testing.T) {
	_, err := Parse([]byte(`start_color: "#12345"`))
	assert.Error(t, err)

	_, err = Parse([]byte(`start_color: [1, 2, 3]`))
	assert.Error(t, err)
}

func TestColorStrings(t *testing.T) {
	c, err := ParseColor("00ff00")
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", c.String())

	c, err = ParseColor("#0a0b0c0d")
	require.NoError(t, err)
	assert.Equal(t, YAMLColor{R: 10, G: 11, B: 12, A: 13}, c)
	assert.Equal(t, "#0a0b0c0d", c.String())

	_, err = ParseColor("zz0000")
	assert.Error(t, err)
}

func TestMarshalLoadsBack(t *testing.T) {
	o := Default()
	o.StartColor = YAMLColor{R: 1, G: 2, B: 3, A: 255}
	data, err := o.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "#010203")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, o, back)
}

func TestFixedChanges(t *testing.T) {
	a := Default()
	b := Default()
	b.SimulationSpeed = 3
	b.StartColor = YAMLColor{B: 255, A: 255}
	assert.Empty(t, a.FixedChanges(b))

	b.Mode = "on-demand"
	b.Width = 64
	assert.Equal(t, []string{"mode", "size"}, a.FixedChanges(b))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation_speed: 1\n"), 0o644))

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("simulation_speed: 2.5\n"), 0o644))

	select {
	case o := <-w.Updates:
		require.NotNil(t, o)
		assert.Equal(t, 2.5, o.SimulationSpeed)
	case err := <-w.Errors:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}
}

func TestWatcherReportsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fps: 30\n"), 0o644))

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("fps: -1\n"), 0o644))

	select {
	case err := <-w.Errors:
		assert.Contains(t, err.Error(), "fps")
	case o := <-w.Updates:
		t.Fatalf("unexpected reload: %+v", o)
	case <-time.After(5 * time.Second):
		t.Fatal("no error reported")
	}
}
