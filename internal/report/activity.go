package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// activity bins: two-hour buckets over a noon-wrapped day, so nocturnal
// activity around midnight plots contiguously in the middle.
const (
	activityBinHours = 2
	activityBinCount = 24 / activityBinHours
)

// noonWrappedHour maps an hour of day into [-12, 12): afternoon and evening
// hours become negative so midnight sits at 0.
func noonWrappedHour(hour float64) float64 {
	if hour < 12 {
		return hour
	}
	return hour - 24
}

// activityBin places a noon-wrapped hour into its histogram bin.
func activityBin(hour float64) int {
	bin := int((hour + 12) / activityBinHours)
	if bin < 0 {
		bin = 0
	}
	if bin >= activityBinCount {
		bin = activityBinCount - 1
	}
	return bin
}

// CameraActivityPNG writes a stacked per-class histogram of visit times for
// one camera, binned by the hour of each visit's midpoint. Visits are
// bucketed by ground-truth tag.
func (r *Report) CameraActivityPNG(camera, path string) error {
	perClass := make(map[string]plotter.Values, len(r.Classes))
	for _, class := range r.Classes {
		perClass[class] = make(plotter.Values, activityBinCount)
	}

	for _, visit := range r.Visits {
		if visit.Camera() != camera {
			continue
		}
		values, known := perClass[visit.TrueTag()]
		if !known {
			continue
		}
		mid := visit.MidTime()
		hour := noonWrappedHour(float64(mid.Hour()) + float64(mid.Minute())/60)
		values[activityBin(hour)]++
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s activity", camera)
	p.X.Label.Text = "hours around midnight"
	p.Y.Label.Text = "visits"

	var previous *plotter.BarChart
	for i, class := range r.Classes {
		bars, err := plotter.NewBarChart(perClass[class], vg.Points(20))
		if err != nil {
			return fmt.Errorf("failed to build bars for %s: %w", class, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		if previous != nil {
			bars.StackOn(previous)
		}
		p.Add(bars)
		p.Legend.Add(class, bars)
		previous = bars
	}

	labels := make([]string, activityBinCount)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", -12+i*activityBinHours)
	}
	p.NominalX(labels...)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save activity plot: %w", err)
	}
	return nil
}
