package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/richinsley/goshaderdemo/options"
)

var runFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "YAML configuration file",
	},
	cli.BoolFlag{
		Name:  "watch",
		Usage: "reload live tunables when the configuration file changes",
	},
	cli.StringFlag{
		Name:  "mode, m",
		Usage: "executor mode: continuous or on-demand",
	},
	cli.StringFlag{
		Name:  "backend, b",
		Usage: "render backend: gl, egl or software",
	},
	cli.IntFlag{
		Name:  "width",
		Usage: "render target width",
	},
	cli.IntFlag{
		Name:  "height",
		Usage: "render target height",
	},
	cli.IntFlag{
		Name:  "fps",
		Usage: "ticks per second",
	},
	cli.IntFlag{
		Name:  "frames, n",
		Usage: "number of ticks to run, 0 runs until interrupted",
	},
	cli.StringFlag{
		Name:  "feature-level",
		Usage: "feature level passed through to the backend (ES3_1 or SM5)",
	},
	cli.Float64Flag{
		Name:  "speed",
		Usage: "simulation speed multiplier",
	},
	cli.Float64Flag{
		Name:  "blend",
		Usage: "initial blend factor",
	},
	cli.Float64Flag{
		Name:  "blend-velocity",
		Usage: "blend factor change per second",
	},
	cli.StringFlag{
		Name:  "start-color",
		Usage: "gradient start color as #rrggbb[aa]",
	},
	cli.StringFlag{
		Name:  "save-dir",
		Usage: "directory for saved outputs",
	},
	cli.StringFlag{
		Name:  "save-format",
		Usage: "image format for saved outputs (png, bmp, tiff)",
	},
	cli.IntSliceFlag{
		Name:  "save-pixel-at",
		Value: &cli.IntSlice{},
		Usage: "request a pixel output save at this tick",
	},
	cli.IntSliceFlag{
		Name:  "save-compute-at",
		Value: &cli.IntSlice{},
		Usage: "request a simulation output save at this tick",
	},
	cli.StringFlag{
		Name:  "record, o",
		Usage: "record the pixel output to this video file through ffmpeg",
	},
	cli.StringFlag{
		Name:  "ffmpeg",
		Usage: "path to the ffmpeg executable",
	},
	cli.StringFlag{
		Name:  "codec",
		Usage: "video codec for recording",
	},
	cli.BoolFlag{
		Name:  "visible",
		Usage: "show a window (gl backend)",
	},
	cli.BoolFlag{
		Name:  "defer-release",
		Usage: "queue executor teardown until the render loop has stopped",
	},
}

// loadOptions builds the configuration from defaults, the config file and
// the flags that were set explicitly, in that order.
func loadOptions(ctx *cli.Context) (*options.DemoOptions, error) {
	opts := options.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if opts, err = options.Load(path); err != nil {
			return nil, err
		}
	}

	if ctx.IsSet("mode") {
		opts.Mode = ctx.String("mode")
	}
	if ctx.IsSet("backend") {
		opts.Backend = ctx.String("backend")
	}
	if ctx.IsSet("width") {
		opts.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		opts.Height = ctx.Int("height")
	}
	if ctx.IsSet("fps") {
		opts.FPS = ctx.Int("fps")
	}
	if ctx.IsSet("frames") {
		opts.Frames = ctx.Int("frames")
	}
	if ctx.IsSet("feature-level") {
		opts.FeatureLevel = ctx.String("feature-level")
	}
	if ctx.IsSet("speed") {
		opts.SimulationSpeed = ctx.Float64("speed")
	}
	if ctx.IsSet("blend") {
		opts.Blend = ctx.Float64("blend")
	}
	if ctx.IsSet("blend-velocity") {
		opts.BlendVelocity = ctx.Float64("blend-velocity")
	}
	if ctx.IsSet("start-color") {
		c, err := options.ParseColor(ctx.String("start-color"))
		if err != nil {
			return nil, err
		}
		opts.StartColor = c
	}
	if ctx.IsSet("save-dir") {
		opts.SaveDir = ctx.String("save-dir")
	}
	if ctx.IsSet("save-format") {
		opts.SaveFormat = ctx.String("save-format")
	}
	if ctx.IsSet("save-pixel-at") {
		opts.SavePixelAt = ctx.IntSlice("save-pixel-at")
	}
	if ctx.IsSet("save-compute-at") {
		opts.SaveComputeAt = ctx.IntSlice("save-compute-at")
	}
	if ctx.IsSet("record") {
		opts.RecordFile = ctx.String("record")
	}
	if ctx.IsSet("ffmpeg") {
		opts.FFmpegPath = ctx.String("ffmpeg")
	}
	if ctx.IsSet("codec") {
		opts.Codec = ctx.String("codec")
	}
	if ctx.IsSet("visible") {
		opts.Visible = ctx.Bool("visible")
	}
	if ctx.IsSet("defer-release") {
		opts.DeferRelease = ctx.Bool("defer-release")
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func printConfig(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := loadOptions(ctx)
	if err != nil {
		return err
	}
	data, err := opts.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, string(data))
	return nil
}
