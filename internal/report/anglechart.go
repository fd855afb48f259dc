// Package report renders diagnostic views of the per-frame angle signal: a
// PNG line plot and an interactive HTML chart with the rep detection
// threshold. Both are derived read-only from the analysis and never gate
// what the fixture serializer emits.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pose.report/internal/fsutil"
)

// SavePNG writes a line plot of the angle samples to path.
func SavePNG(path, title string, samples []float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Angle (deg)"

	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i] = plotter.XY{X: float64(i), Y: s}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

// RenderHTML writes an ECharts line chart of the angle samples to w, with a
// constant threshold series and the approximate rep count in the subtitle.
func RenderHTML(w io.Writer, title string, samples []float64, threshold float64, reps int) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples to chart")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("threshold=%.1f° approx reps=%d samples=%d", threshold, reps, len(samples)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Angle (deg)"}),
	)

	xs := make([]string, len(samples))
	angleData := make([]opts.LineData, len(samples))
	thresholdData := make([]opts.LineData, len(samples))
	for i, s := range samples {
		xs[i] = strconv.Itoa(i)
		angleData[i] = opts.LineData{Value: s}
		thresholdData[i] = opts.LineData{Value: threshold}
	}

	line.SetXAxis(xs).
		AddSeries("angle", angleData).
		AddSeries("threshold", thresholdData)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// SaveHTML renders the chart fully in memory and writes it through fs.
func SaveHTML(fs fsutil.FileSystem, path, title string, samples []float64, threshold float64, reps int) error {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, title, samples, threshold, reps); err != nil {
		return err
	}
	if err := fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
