package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli"

	"github.com/richinsley/goshaderdemo/capture"
	"github.com/richinsley/goshaderdemo/driver"
	"github.com/richinsley/goshaderdemo/executor"
	"github.com/richinsley/goshaderdemo/options"
	"github.com/richinsley/goshaderdemo/params"
	"github.com/richinsley/goshaderdemo/software"
)

// saveSchedule maps tick indices to save requests.
type saveSchedule struct {
	pixel   map[int]bool
	compute map[int]bool
}

func newSaveSchedule(opts *options.DemoOptions) saveSchedule {
	s := saveSchedule{pixel: map[int]bool{}, compute: map[int]bool{}}
	for _, at := range opts.SavePixelAt {
		s.pixel[at] = true
	}
	for _, at := range opts.SaveComputeAt {
		s.compute[at] = true
	}
	return s
}

func (s saveSchedule) apply(tick int, d *driver.Driver) {
	if s.pixel[tick] {
		d.RequestPixelSave()
	}
	if s.compute[tick] {
		d.RequestComputeSave()
	}
}

// applyReload copies the live tunables of next into the driver. Fields that
// are fixed for the executor's lifetime are reported and ignored.
func applyReload(current, next *options.DemoOptions, d *driver.Driver) {
	for _, field := range current.FixedChanges(next) {
		logger.Warningf("config change of %s ignored until restart", field)
	}

	t := next.Tunables()
	d.SetSimulationSpeed(t.SimulationSpeed)
	d.SetBlendVelocity(t.BlendVelocity)
	d.SetStartColor(t.StartColor.Color())
	logger.Noticef("reloaded tunables: speed %g, blend velocity %g, start color %s",
		t.SimulationSpeed, t.BlendVelocity, t.StartColor)
}

// frameClock measures the time between ticks so the simulation follows the
// wall clock when ticks are late or dropped.
type frameClock struct {
	last time.Time
}

func newFrameClock(start time.Time) *frameClock {
	return &frameClock{last: start}
}

// next returns the seconds elapsed since the previous call. A clock that
// steps backwards yields zero.
func (c *frameClock) next(now time.Time) float64 {
	dt := now.Sub(c.last).Seconds()
	c.last = now
	if dt < 0 {
		return 0
	}
	return dt
}

// tickLoop waits for ticker ticks and config events. Only ticks advance the
// demo; config events are handled in between.
type tickLoop struct {
	ticks      <-chan time.Time
	reloads    <-chan *options.DemoOptions
	reloadErrs <-chan error

	// Number of ticks to run. Zero runs until ctx ends.
	frames int
	clock  *frameClock
}

// run calls onTick with the tick index and the measured delta. It stops when
// onTick returns false or when the frame count or ctx runs out, and returns
// the number of ticks run.
func (l tickLoop) run(ctx context.Context, onReload func(*options.DemoOptions), onTick func(tick int, dt float64) bool) int {
	tick := 0
	for l.frames == 0 || tick < l.frames {
		select {
		case <-ctx.Done():
			logger.Notice("interrupted")
			return tick
		case next, ok := <-l.reloads:
			if !ok {
				l.reloads = nil
				continue
			}
			onReload(next)
		case err, ok := <-l.reloadErrs:
			if !ok {
				l.reloadErrs = nil
				continue
			}
			logger.Warningf("config reload failed: %v", err)
		case now := <-l.ticks:
			if !onTick(tick, l.clock.next(now)) {
				return tick
			}
			tick++
		}
	}
	return tick
}

func initialState(opts *options.DemoOptions) driver.State {
	s := driver.DefaultState()
	s.SimulationSpeed = opts.SimulationSpeed
	s.BlendFactor = opts.Blend
	s.BlendVelocity = opts.BlendVelocity
	s.StartColor = opts.StartColor.Color()
	return s
}

func runDemo(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := loadOptions(ctx)
	if err != nil {
		return err
	}
	mode, _ := opts.ExecutorMode()
	format, _ := opts.ImageFormat()
	size := opts.Size()

	releases := &executor.ReleaseQueue{}
	exOpts := executor.Options{
		Saver: &capture.DiskSaver{Dir: opts.SaveDir, Format: format},
	}
	if opts.DeferRelease {
		exOpts.Releases = releases
	}

	if opts.RecordFile != "" {
		rec, err := capture.NewRecorder(capture.RecorderOptions{
			OutputFile: opts.RecordFile,
			Width:      size.X,
			Height:     size.Y,
			FPS:        opts.FPS,
			Codec:      opts.Codec,
			FFmpegPath: opts.FFmpegPath,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Errorf("recording failed: %v", err)
			}
		}()
		exOpts.Sink = rec
	}

	var (
		backend executor.Backend
		rt      params.RenderTarget
		gfx     *glStack
	)
	switch opts.Backend {
	case options.BackendGL, options.BackendEGL:
		if gfx, err = newGLStack(size, opts.Backend == options.BackendEGL, opts.Visible); err != nil {
			return err
		}
		defer gfx.close()
		backend, rt = gfx.renderer, gfx.target
	default:
		swBackend, err := software.NewBackend(size)
		if err != nil {
			return err
		}
		swTarget := software.NewTarget(size)
		defer swTarget.Release()
		backend, rt = swBackend, swTarget
	}

	ex, err := executor.New(mode, backend, size, exOpts)
	if err != nil {
		backend.Release()
		return err
	}

	state := initialState(opts)
	drv, err := driver.New(driver.Config{
		Size:         size,
		FeatureLevel: params.FeatureLevel(opts.FeatureLevel),
		Target:       rt,
		Initial:      &state,
	}, ex)
	if err != nil {
		ex.Close()
		return err
	}
	if gfx != nil {
		gfx.bindKeys(drv)
	}

	var reloads <-chan *options.DemoOptions
	var reloadErrs <-chan error
	if path := ctx.String("config"); path != "" && ctx.Bool("watch") {
		w, err := options.Watch(path)
		if err != nil {
			logger.Warningf("not watching %s: %v", path, err)
		} else {
			defer w.Close()
			reloads, reloadErrs = w.Updates, w.Errors
		}
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loopCtx, cancelLoop := context.WithCancel(sigCtx)
	loopDone := make(chan error, 1)

	frameDuration := time.Second / time.Duration(opts.FPS)
	cont, _ := ex.(*executor.Continuous)
	// The software backend can be driven from its own goroutine. GL calls
	// stay on this thread, so a GL continuous executor renders inline below.
	if cont != nil && gfx == nil {
		go func() { loopDone <- cont.RunLoop(loopCtx, frameDuration) }()
	} else {
		loopDone <- nil
	}

	logger.Noticef("running %s executor on %s backend at %s, %d fps", mode, opts.Backend, size, opts.FPS)
	schedule := newSaveSchedule(opts)
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	loop := tickLoop{
		ticks:      ticker.C,
		reloads:    reloads,
		reloadErrs: reloadErrs,
		frames:     opts.Frames,
		clock:      newFrameClock(time.Now()),
	}
	loop.run(sigCtx, func(next *options.DemoOptions) {
		applyReload(opts, next, drv)
	}, func(tick int, dt float64) bool {
		if gfx != nil && gfx.shouldClose() {
			return false
		}

		schedule.apply(tick, drv)
		drv.Tick(dt)

		if gfx != nil {
			if cont != nil {
				if err := cont.Render(); err != nil && !errors.Is(err, executor.ErrNoParameters) {
					logger.Warningf("render failed: %v", err)
				}
			}
			gfx.present()
		}
		return true
	})

	cancelLoop()
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Warningf("render loop: %v", err)
	}

	stats := ex.Stats()
	ticks, failed := drv.Ticks()
	if err := drv.Close(); err != nil {
		logger.Errorf("executor teardown: %v", err)
	}
	if n := releases.Len(); n > 0 {
		logger.Infof("flushing %d deferred releases", n)
	}
	if err := releases.Flush(); err != nil {
		logger.Errorf("deferred release: %v", err)
	}

	displayStats(mode, stats, ticks, failed)
	return nil
}
