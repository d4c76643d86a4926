package main

import (
	"os"
	"runtime"

	"github.com/urfave/cli"

	"github.com/richinsley/goshaderdemo/log"
)

var logger = log.New("goshaderdemo")

func init() {
	// GLFW and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	app := cli.NewApp()
	app.Name = "goshaderdemo"
	app.Usage = "drive a simulation/pixel shader pair from a per-frame parameter block"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "run the demo",
			Description: `
Advance the demo state once per tick and hand the resulting parameter block to
a shader executor. In continuous mode the executor renders from its own loop
and only receives parameter updates; in on-demand mode every tick draws.

Settings come from the YAML file given with --config; flags override it.`,
			Flags:  runFlags,
			Action: runDemo,
		},
		{
			Name:   "config",
			Usage:  "print the effective configuration as YAML",
			Flags:  runFlags,
			Action: printConfig,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
