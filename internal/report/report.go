// Package report renders computed evaluation statistics for people: plain
// text summaries, HTML charts, and PNG activity plots. It consumes the
// outputs of the metrics and visits packages and performs no analysis of
// its own.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/wildlife.report/internal/metrics"
	"github.com/banshee-data/wildlife.report/internal/version"
	"github.com/banshee-data/wildlife.report/internal/visits"
)

// Report bundles everything one evaluation run produced.
type Report struct {
	RunID       string
	Version     string
	GeneratedAt time.Time
	Classes     []string
	Visits      []*visits.VisitRecord
	Results     *metrics.Results // nil in label-free summary mode
	Warnings    map[string]int
}

// New assembles a report with a fresh run ID. results may be nil when only
// the label-free summary is wanted.
func New(clustered []*visits.VisitRecord, classes []string, results *metrics.Results, warnings map[string]int) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		Version:     version.Version,
		GeneratedAt: time.Now(),
		Classes:     classes,
		Visits:      clustered,
		Results:     results,
		Warnings:    warnings,
	}
}

const rule = "------------------------------------------------------------"

// WriteSummary prints the label-free summary: how many visits each class
// was predicted for. It needs no ground truth.
func (r *Report) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "Found %d visits.\n", len(r.Visits))

	counts := metrics.PredictedVisitCounts(r.Visits, r.Classes)
	for _, class := range r.Classes {
		fmt.Fprintf(w, "%-10s %d\n", class, counts[class])
	}

	r.writeWarnings(w)
}

// WriteEvaluation prints the ground-truth evaluation: a breakdown at track,
// clip, and visit level, followed by the error tree of misclassified
// visits.
func (r *Report) WriteEvaluation(w io.Writer) {
	if r.Results == nil {
		fmt.Fprintln(w, "no evaluation results")
		return
	}

	writeBreakdown(w, "Tracks", &r.Results.Tracks)
	writeBreakdown(w, "Clips", &r.Results.Clips)
	writeBreakdown(w, "Visits", &r.Results.Visits)

	if r.Results.Visits.MaxErrorConfidence > 0 {
		fmt.Fprintf(w, "Max confidence on misclassified visit %.2f\n", r.Results.Visits.MaxErrorConfidence)
	}

	r.WriteErrorTree(w)
	r.writeWarnings(w)
}

// writeWarnings surfaces the recoverable-problem totals for the run, so
// skipped files and excluded clips are never silently dropped.
func (r *Report) writeWarnings(w io.Writer) {
	if len(r.Warnings) == 0 {
		return
	}
	categories := make([]string, 0, len(r.Warnings))
	for category := range r.Warnings {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	fmt.Fprintln(w)
	for _, category := range categories {
		fmt.Fprintf(w, "Warnings (%s): %d\n", category, r.Warnings[category])
	}
}

// writeBreakdown prints one granularity: totals, the confusion matrix, F1
// scores, accuracy, and the final score.
func writeBreakdown(w io.Writer, title string, b *metrics.Breakdown) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintf(w, "Total %s: %d  %.1fh\n", b.Level, b.Count, b.TotalDuration.Hours())
	fmt.Fprintln(w, rule)

	writeMatrix(w, b.Matrix)

	fmt.Fprintln(w, "F1 scores:")
	for i, label := range b.Matrix.Labels {
		fmt.Fprintf(w, "%-20s %.1f\n", label, b.F1[i]*100)
	}
	fmt.Fprintln(w)

	correct := int(b.Accuracy*float64(b.Count) + 0.5)
	fmt.Fprintf(w, "Correctly classified %d / %d = %.2f%%\n", correct, b.Count, b.Accuracy*100)
	fmt.Fprintf(w, "Final score: %.1f\n\n", b.FinalScore*100)
}

// writeMatrix prints the normalized confusion matrix with its label axis.
// Rows with no ground-truth instances print as NaN, which is the documented
// normalization boundary.
func writeMatrix(w io.Writer, cm *metrics.ConfusionMatrix) {
	normalized := cm.Normalized()

	fmt.Fprintf(w, "%-12s", "")
	for _, label := range cm.Labels {
		fmt.Fprintf(w, "%10s", label)
	}
	fmt.Fprintln(w)

	for i, label := range cm.Labels {
		fmt.Fprintf(w, "%-12s", label)
		for j := range cm.Labels {
			fmt.Fprintf(w, "%10.2f", normalized.At(i, j))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

// WriteErrorTree prints every misclassified visit as a tree of its clips
// and tracks, confidences scaled to one decimal out of ten as in the
// classifier's own logs.
func (r *Report) WriteErrorTree(w io.Writer) {
	for _, visit := range r.Visits {
		if visit.TrueTag() == visit.PredictedTag() {
			continue
		}
		fmt.Fprintf(w, "-%s %s %.1f\n", visit.TrueTag(), visit.PredictedTag(), visit.PredictedConfidence()*10)
		for _, clip := range visit.Clips() {
			fmt.Fprintf(w, "\t-%s %s %.1f\n", clip.TrueTag, clip.BestGuessLabel, clip.BestGuessConfidence*10)
			for _, track := range clip.Tracks {
				fmt.Fprintf(w, "\t\t-%s %.1f clarity %.1f\n", track.Label, track.Score*10, track.Clarity*10)
			}
		}
	}
}

// Cameras lists the distinct cameras across the report's visits, sorted.
func (r *Report) Cameras() []string {
	seen := make(map[string]bool)
	for _, visit := range r.Visits {
		seen[visit.Camera()] = true
	}
	cameras := make([]string, 0, len(seen))
	for camera := range seen {
		cameras = append(cameras, camera)
	}
	sort.Strings(cameras)
	return cameras
}

// header is the common chart subtitle carrying run provenance.
func (r *Report) header() string {
	return fmt.Sprintf("run %s | %s | %s", shortID(r.RunID), r.Version, r.GeneratedAt.Format("2006-01-02 15:04"))
}

func shortID(id string) string {
	if idx := strings.Index(id, "-"); idx > 0 {
		return id[:idx]
	}
	return id
}
