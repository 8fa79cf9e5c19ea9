package main

import (
	"fmt"
	"image/color"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// writeDecayPlot renders the post-release yaw velocity against tick index.
func writeDecayPlot(path string, r *replayResult) error {
	p := plot.New()
	p.Title.Text = "Post-release yaw velocity decay"
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "yaw rate (rad/tick)"

	pts := make(plotter.XYs, 0, len(r.decayRates))
	for i, v := range r.decayRates {
		pts = append(pts, plotter.XY{X: float64(i), Y: v})
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("building decay line: %w", err)
	}
	line.Width = vg.Points(1)
	line.Color = color.RGBA{R: 196, B: 64, A: 255}
	p.Add(line)
	p.Add(plotter.NewGrid())

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving decay plot: %w", err)
	}
	return nil
}

// writeReport renders an HTML report with the in-gesture deltas and the decay
// curve as interactive line charts.
func writeReport(path, label string, r *replayResult) error {
	deltas := charts.NewLine()
	deltas.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Gesture Replay", Width: "1200px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Cumulative rotation deltas", Subtitle: fmt.Sprintf("session=%s frames=%d", label, len(r.updates))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "radians"}),
	)

	frames := make([]string, 0, len(r.updates))
	yaw := make([]opts.LineData, 0, len(r.updates))
	pitch := make([]opts.LineData, 0, len(r.updates))
	for i, s := range r.updates {
		frames = append(frames, fmt.Sprintf("%d", i))
		yaw = append(yaw, opts.LineData{Value: s.YawDelta})
		pitch = append(pitch, opts.LineData{Value: s.PitchDelta})
	}
	deltas.SetXAxis(frames).
		AddSeries("yaw", yaw).
		AddSeries("pitch", pitch)

	decay := charts.NewLine()
	decay.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Yaw velocity decay", Subtitle: fmt.Sprintf("ticks=%d", len(r.decayRates))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "rad/tick"}),
	)

	ticks := make([]string, 0, len(r.decayRates))
	rates := make([]opts.LineData, 0, len(r.decayRates))
	for i, v := range r.decayRates {
		ticks = append(ticks, fmt.Sprintf("%d", i))
		rates = append(rates, opts.LineData{Value: v})
	}
	decay.SetXAxis(ticks).AddSeries("yaw rate", rates)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	page := components.NewPage()
	page.AddCharts(deltas, decay)
	if err := page.Render(f); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}
