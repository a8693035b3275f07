package report

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/wildlife.report/internal/fsutil"
	"github.com/banshee-data/wildlife.report/internal/metrics"
)

// confidence histograms use 0.5-wide bins over the 0-10 display scale.
const histogramBins = 20

// RenderSummaryHTML writes summary.html: the predicted-visit counts chart.
func (r *Report) RenderSummaryHTML(fs fsutil.FileSystem, dir string) error {
	page := components.NewPage()
	page.AddCharts(r.visitCountsBar())
	return renderPage(fs, page, filepath.Join(dir, "summary.html"))
}

// RenderEvaluationHTML writes evaluation.html: per-level confusion-matrix
// heatmaps, F1 bars, and correct-vs-error confidence histograms, plus the
// predicted-visit counts.
func (r *Report) RenderEvaluationHTML(fs fsutil.FileSystem, dir string) error {
	if r.Results == nil {
		return fmt.Errorf("no evaluation results to render")
	}

	page := components.NewPage()
	for _, level := range []struct {
		title string
		b     *metrics.Breakdown
	}{
		{"Track", &r.Results.Tracks},
		{"Clip", &r.Results.Clips},
		{"Visit", &r.Results.Visits},
	} {
		page.AddCharts(
			r.confusionHeatmap(level.title+" Confusion Matrix", level.b.Matrix),
			r.f1Bar(level.title+" F1 Scores", level.b),
			r.confidenceHistogram(level.title+" Errors by Confidence", level.b),
		)
	}
	page.AddCharts(r.visitCountsBar())

	return renderPage(fs, page, filepath.Join(dir, "evaluation.html"))
}

// renderPage renders an echarts page into the filesystem, creating dir as
// needed.
func renderPage(fs fsutil.FileSystem, page *components.Page, path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	if err := fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// confusionHeatmap plots raw confusion counts; truth on the Y axis,
// predictions on the X axis.
func (r *Report) confusionHeatmap(title string, cm *metrics.ConfusionMatrix) *charts.HeatMap {
	n := len(cm.Labels)
	data := make([]opts.HeatMapData, 0, n*n)
	maxCount := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			count := cm.Counts.At(i, j)
			if count > maxCount {
				maxCount = count
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, count}})
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: r.header()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "predicted"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: cm.Labels, Name: "true"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxCount),
		}),
	)
	hm.SetXAxis(cm.Labels).
		AddSeries("counts", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
		)
	return hm
}

// f1Bar plots per-class F1 as percentages.
func (r *Report) f1Bar(title string, b *metrics.Breakdown) *charts.Bar {
	data := make([]opts.BarData, len(b.F1))
	for i, f1 := range b.F1 {
		data[i] = opts.BarData{Value: f1 * 100}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("final score %.1f | accuracy %.2f%%", b.FinalScore*100, b.Accuracy*100),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(b.Matrix.Labels).
		AddSeries("F1", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// confidenceHistogram plots correct and incorrect predictions binned by
// confidence on the 0-10 display scale.
func (r *Report) confidenceHistogram(title string, b *metrics.Breakdown) *charts.Bar {
	labels := make([]string, histogramBins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.1f", float64(i)*0.5)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: r.header()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("correct", binConfidences(b.CorrectConfidences)).
		AddSeries("error", binConfidences(b.ErrorConfidences))
	return bar
}

// binConfidences counts confidences (scaled to 0-10) into histogram bins.
func binConfidences(confidences []float64) []opts.BarData {
	counts := make([]int, histogramBins)
	for _, confidence := range confidences {
		bin := int(confidence * 10 / 0.5)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		if bin < 0 {
			bin = 0
		}
		counts[bin]++
	}

	data := make([]opts.BarData, histogramBins)
	for i, count := range counts {
		data[i] = opts.BarData{Value: count}
	}
	return data
}

// visitCountsBar plots how many visits were predicted for each class.
func (r *Report) visitCountsBar() *charts.Bar {
	counts := metrics.PredictedVisitCounts(r.Visits, r.Classes)
	data := make([]opts.BarData, len(r.Classes))
	for i, class := range r.Classes {
		data[i] = opts.BarData{Value: counts[class]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Predicted Visits by Class",
			Subtitle: fmt.Sprintf("%d visits | %s", len(r.Visits), r.header()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(r.Classes).
		AddSeries("visits", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
