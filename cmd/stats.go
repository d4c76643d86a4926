package main

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/richinsley/goshaderdemo/executor"
)

func displayStats(mode executor.Mode, stats executor.Stats, ticks, failedTicks int64) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Counter", "Value"})
	rows := [][]string{
		{"Ticks", fmt.Sprintf("%d", ticks)},
		{"Failed dispatches", fmt.Sprintf("%d", failedTicks)},
		{"Parameter updates", fmt.Sprintf("%d", stats.Updates)},
		{"Draws", fmt.Sprintf("%d", stats.Draws)},
		{"Rendered frames", fmt.Sprintf("%d", stats.Frames)},
		{"Stale frames", fmt.Sprintf("%d", stats.StaleFrames)},
		{"Compute saves", fmt.Sprintf("%d", stats.ComputeSaves)},
		{"Pixel saves", fmt.Sprintf("%d", stats.PixelSaves)},
		{"Dropped saves", fmt.Sprintf("%d", stats.SaveFailures)},
		{"Rejected targets", fmt.Sprintf("%d", stats.InvalidTargets)},
	}
	table.AppendBulk(rows)
	table.SetFooter([]string{"Simulation time", fmt.Sprintf("%.3fs", stats.SimTime)})

	table.Render()
	logger.Noticef("%s executor statistics\n%s", mode, buf.String())
}
