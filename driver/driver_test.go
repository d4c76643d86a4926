package driver

import (
	"errors"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshaderdemo/executor"
	"github.com/richinsley/goshaderdemo/params"
)

var testSize = params.IntPoint{X: 16, Y: 16}

type fakeTarget struct{}

func (fakeTarget) Size() params.IntPoint { return testSize }
func (fakeTarget) Valid() bool           { return true }

// fakeExecutor implements both entry points so tests can check that only the
// one matching its mode is ever used.
type fakeExecutor struct {
	mode    executor.Mode
	updates []params.Block
	draws   []params.Block
	closed  int
	err     error
}

func (f *fakeExecutor) Mode() executor.Mode   { return f.mode }
func (f *fakeExecutor) Size() params.IntPoint { return testSize }
func (f *fakeExecutor) Stats() executor.Stats { return executor.Stats{} }
func (f *fakeExecutor) Close() error          { f.closed++; return nil }

func (f *fakeExecutor) UpdateParameters(b params.Block) error {
	f.updates = append(f.updates, b)
	return f.err
}

func (f *fakeExecutor) Draw(b params.Block) error {
	f.draws = append(f.draws, b)
	return f.err
}

func newDriver(t *testing.T, ex executor.Executor, initial *State) *Driver {
	t.Helper()
	d, err := New(Config{Target: fakeTarget{}, FeatureLevel: params.FeatureLevelSM5, Initial: initial}, ex)
	require.NoError(t, err)
	return d
}

func TestDefaultState(t *testing.T) {
	s := DefaultState()
	assert.Equal(t, 0.0, s.ColorBuildup)
	assert.Equal(t, 1.0, s.ColorBuildupDirection)
	assert.Equal(t, 0.5, s.BlendFactor)
	assert.Equal(t, 1.0, s.SimulationSpeed)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, s.StartColor)
	assert.False(t, s.SaveComputeOutput || s.SavePixelOutput)
}

func TestAdvanceStaysInUnitRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := DefaultState()
	s.BlendVelocity = 3

	for i := 0; i < 2000; i++ {
		if i%97 == 0 {
			s.BlendVelocity = -s.BlendVelocity
		}
		var b params.Block
		s, b = Advance(s, rng.Float64()*1.7, testSize, "", nil)

		require.GreaterOrEqual(t, s.BlendFactor, 0.0)
		require.LessOrEqual(t, s.BlendFactor, 1.0)
		require.GreaterOrEqual(t, s.ColorBuildup, 0.0)
		require.LessOrEqual(t, s.ColorBuildup, 1.0)
		require.Equal(t, s.BlendFactor, b.BlendFactor)
	}
}

func TestAdvanceFlipsOnOvershoot(t *testing.T) {
	s := DefaultState()
	s.ColorBuildup = 0.9

	s, b := Advance(s, 0.4, testSize, "", nil)
	assert.Equal(t, 1.0, s.ColorBuildup)
	assert.Equal(t, -1.0, s.ColorBuildupDirection)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, b.EndColor)

	s, _ = Advance(s, 0.25, testSize, "", nil)
	assert.InDelta(t, 0.75, s.ColorBuildup, 1e-12)
	assert.Equal(t, -1.0, s.ColorBuildupDirection)
}

func TestAdvanceFlipsAtZero(t *testing.T) {
	s := DefaultState()
	s.ColorBuildupDirection = -1

	s, _ = Advance(s, 0.01, testSize, "", nil)
	assert.Equal(t, 0.0, s.ColorBuildup)
	assert.Equal(t, 1.0, s.ColorBuildupDirection)
}

func TestAdvanceNegativeDelta(t *testing.T) {
	s := DefaultState()
	s.ColorBuildup = 0.5
	s.BlendVelocity = 1

	next, b := Advance(s, -2, testSize, "", nil)
	assert.Equal(t, 0.0, b.DeltaTime)
	assert.Equal(t, 0.0, next.TotalElapsedTime)
	assert.Equal(t, 0.5, next.ColorBuildup)
	assert.Equal(t, 0.5, next.BlendFactor)
}

func TestEndColorTruncates(t *testing.T) {
	s := DefaultState()
	s, b := Advance(s, 0.5, testSize, "", nil)
	assert.Equal(t, 0.5, s.ColorBuildup)
	assert.Equal(t, color.RGBA{R: 127, A: 255}, b.EndColor)
}

func TestTotalElapsedIsExactSum(t *testing.T) {
	d := newDriver(t, nil, nil)
	deltas := []float64{0.016, 0.033, 0.1, 0, 1.25, 0.0001, 0.7}

	var want float64
	for _, dt := range deltas {
		d.Tick(dt)
		want += dt
	}
	assert.Equal(t, want, d.State().TotalElapsedTime)
	assert.Equal(t, want, d.LastBlock().TotalElapsedTime)
}

func TestBlendScenario(t *testing.T) {
	initial := DefaultState()
	initial.BlendFactor = 0
	initial.BlendVelocity = 0.5
	d := newDriver(t, &fakeExecutor{mode: executor.ModeContinuous}, &initial)

	var got []float64
	for i := 0; i < 5; i++ {
		d.Tick(0.5)
		got = append(got, d.LastBlock().BlendFactor)
	}
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1.0, 1.0}, got)
}

func TestColorOscillationScenario(t *testing.T) {
	d := newDriver(t, &fakeExecutor{mode: executor.ModeOnDemand}, nil)

	var buildup, direction []float64
	for i := 0; i < 4; i++ {
		d.Tick(1)
		s := d.State()
		buildup = append(buildup, s.ColorBuildup)
		direction = append(direction, s.ColorBuildupDirection)
	}
	assert.Equal(t, []float64{1, 0, 1, 0}, buildup)
	assert.Equal(t, []float64{-1, 1, -1, 1}, direction)
}

func TestContinuousModeOnlyUpdates(t *testing.T) {
	ex := &fakeExecutor{mode: executor.ModeContinuous}
	d := newDriver(t, ex, nil)

	for i := 0; i < 7; i++ {
		d.Tick(0.016)
	}
	assert.Len(t, ex.updates, 7)
	assert.Empty(t, ex.draws)
}

func TestOnDemandModeOnlyDraws(t *testing.T) {
	ex := &fakeExecutor{mode: executor.ModeOnDemand}
	d := newDriver(t, ex, nil)

	for i := 0; i < 5; i++ {
		d.Tick(0.016)
	}
	assert.Len(t, ex.draws, 5)
	assert.Empty(t, ex.updates)
}

func TestBlocksCarryConfig(t *testing.T) {
	ex := &fakeExecutor{mode: executor.ModeOnDemand}
	d := newDriver(t, ex, nil)
	d.Tick(0.1)

	require.Len(t, ex.draws, 1)
	b := ex.draws[0]
	assert.Equal(t, testSize, b.Size)
	assert.Equal(t, params.FeatureLevelSM5, b.FeatureLevel)
	assert.Equal(t, fakeTarget{}, b.Target)
	assert.Equal(t, 0.1, b.DeltaTime)
}

func TestSaveFlagsAreOneShot(t *testing.T) {
	ex := &fakeExecutor{mode: executor.ModeContinuous}
	d := newDriver(t, ex, nil)

	d.RequestPixelSave()
	d.RequestComputeSave()
	d.Tick(0.1)
	d.Tick(0.1)

	require.Len(t, ex.updates, 2)
	assert.True(t, ex.updates[0].SavePixelOutput)
	assert.True(t, ex.updates[0].SaveComputeOutput)
	assert.False(t, ex.updates[1].HasSaveRequest())
}

func TestSaveFlagsDroppedWithoutExecutor(t *testing.T) {
	d := newDriver(t, nil, nil)

	d.RequestPixelSave()
	d.Tick(0.1)
	assert.True(t, d.LastBlock().SavePixelOutput)
	assert.False(t, d.State().SavePixelOutput)

	d.Tick(0.1)
	assert.False(t, d.LastBlock().HasSaveRequest())
}

func TestWithoutExecutorOnlyTimeAdvances(t *testing.T) {
	initial := DefaultState()
	initial.BlendVelocity = 0.5
	d := newDriver(t, nil, &initial)

	d.Tick(0.25)
	d.Tick(0.5)

	s := d.State()
	assert.Equal(t, 0.75, s.TotalElapsedTime)
	assert.Equal(t, 0.0, s.ColorBuildup)
	assert.Equal(t, 1.0, s.ColorBuildupDirection)
	assert.Equal(t, 0.5, s.BlendFactor)

	b := d.LastBlock()
	assert.Equal(t, 0.75, b.TotalElapsedTime)
	assert.Equal(t, 0.5, b.DeltaTime)
	assert.Equal(t, color.RGBA{A: 255}, b.EndColor)
}

func TestAdvanceClock(t *testing.T) {
	s := DefaultState()
	s.ColorBuildup = 0.3
	s.BlendVelocity = 2

	next, b := AdvanceClock(s, 0.2, testSize, "", nil)
	assert.Equal(t, 0.2, next.TotalElapsedTime)
	assert.Equal(t, 0.3, next.ColorBuildup)
	assert.Equal(t, 0.5, next.BlendFactor)
	assert.Equal(t, 0.2, b.DeltaTime)

	next, b = AdvanceClock(next, -1, testSize, "", nil)
	assert.Equal(t, 0.2, next.TotalElapsedTime)
	assert.Equal(t, 0.0, b.DeltaTime)
}

func TestSaveFlagsDroppedOnDispatchError(t *testing.T) {
	ex := &fakeExecutor{mode: executor.ModeOnDemand, err: errors.New("target lost")}
	d := newDriver(t, ex, nil)

	d.RequestComputeSave()
	d.Tick(0.1)
	d.Tick(0.1)

	require.Len(t, ex.draws, 2)
	assert.False(t, ex.draws[1].SaveComputeOutput)
	total, failed := d.Ticks()
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(2), failed)
}

func TestTunables(t *testing.T) {
	d := newDriver(t, &fakeExecutor{mode: executor.ModeOnDemand}, nil)
	d.SetSimulationSpeed(2.5)
	d.SetStartColor(color.RGBA{B: 200, A: 255})
	d.SetBlendVelocity(-1)
	d.Tick(0.25)

	b := d.LastBlock()
	assert.Equal(t, 2.5, b.SimulationSpeed)
	assert.Equal(t, color.RGBA{B: 200, A: 255}, b.StartColor)
	assert.Equal(t, 0.25, b.BlendFactor)
}

func TestCloseReleasesExecutorOnce(t *testing.T) {
	ex := &fakeExecutor{mode: executor.ModeContinuous}
	d := newDriver(t, ex, nil)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.Equal(t, 1, ex.closed)
	assert.Nil(t, d.Executor())

	d.Tick(0.5)
	assert.Empty(t, ex.updates)
	assert.Equal(t, 0.5, d.State().TotalElapsedTime)
}

func TestDefaultsSizeFromExecutor(t *testing.T) {
	onDemand := &fakeExecutor{mode: executor.ModeOnDemand}

	for _, tc := range []struct {
		name    string
		size    params.IntPoint
		ex      executor.Executor
		want    params.IntPoint
		wantErr bool
	}{
		{name: "executor size", ex: onDemand, want: testSize},
		{name: "matching explicit size", size: testSize, ex: onDemand, want: testSize},
		{name: "no executor", want: params.DefaultSize},
		{name: "explicit size without executor", size: params.IntPoint{X: 8, Y: 4}, want: params.IntPoint{X: 8, Y: 4}},
		{name: "negative size", size: params.IntPoint{X: -1, Y: 3}, wantErr: true},
		{name: "size differs from executor", size: params.IntPoint{X: 32, Y: 32}, ex: onDemand, wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New(Config{Size: tc.size}, tc.ex)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			d.Tick(0)
			assert.Equal(t, tc.want, d.LastBlock().Size)
		})
	}
}

func TestMismatchedSizeNeverTicks(t *testing.T) {
	od, err := executor.NewOnDemand(&countingBackend{}, params.IntPoint{X: 8, Y: 8}, executor.Options{})
	require.NoError(t, err)

	_, err = New(Config{Size: testSize, Target: fakeTarget{}}, od)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "16x16")
	assert.Equal(t, int64(0), od.Stats().Draws)
}

func TestDriverWithRealExecutors(t *testing.T) {
	be := &countingBackend{}
	tgt := fakeTarget{}

	cont, err := executor.NewContinuous(be, testSize, executor.Options{})
	require.NoError(t, err)
	d, err := New(Config{Target: tgt}, cont)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		d.Tick(0.1)
	}
	assert.Equal(t, 0, be.computes)
	require.NoError(t, cont.Render())
	assert.Equal(t, 1, be.computes)
	assert.Equal(t, int64(3), cont.Stats().Updates)

	od, err := executor.NewOnDemand(be, testSize, executor.Options{})
	require.NoError(t, err)
	d, err = New(Config{Target: tgt}, od)
	require.NoError(t, err)
	d.Tick(0.1)
	d.Tick(0.1)
	assert.Equal(t, 3, be.computes)
	assert.Equal(t, int64(2), od.Stats().Draws)
}
