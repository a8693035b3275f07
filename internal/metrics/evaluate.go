package metrics

import (
	"fmt"
	"time"

	"github.com/banshee-data/wildlife.report/internal/visits"
)

// Breakdown holds the statistics for one evaluation granularity.
type Breakdown struct {
	Level         string
	Matrix        *ConfusionMatrix
	F1            []float64 // aligned with Matrix.Labels
	Accuracy      float64
	FinalScore    float64
	Count         int
	TotalDuration time.Duration

	// Confidence of correct and incorrect predictions at this level, for
	// error-by-confidence histograms. MaxErrorConfidence is the most
	// confident wrong answer, 0 when nothing was wrong.
	CorrectConfidences []float64
	ErrorConfidences   []float64
	MaxErrorConfidence float64
}

// Results bundles the three per-granularity breakdowns of a run.
type Results struct {
	Tracks Breakdown
	Clips  Breakdown
	Visits Breakdown
}

// labelled is one (truth, prediction, confidence, duration) sample.
type labelled struct {
	truth      string
	predicted  string
	confidence float64
	duration   time.Duration
}

// Evaluate computes track, clip, and visit level breakdowns from clustered
// visits. Zero visits is an aggregation failure: the whole run has nothing
// to report, so ErrNoData propagates as a hard error.
func Evaluate(clustered []*visits.VisitRecord, labels []string) (*Results, error) {
	if len(clustered) == 0 {
		return nil, fmt.Errorf("evaluating run: %w", ErrNoData)
	}

	var trackSamples, clipSamples, visitSamples []labelled
	for _, visit := range clustered {
		visitSamples = append(visitSamples, labelled{
			truth:      visit.TrueTag(),
			predicted:  visit.PredictedTag(),
			confidence: visit.PredictedConfidence(),
			duration:   visit.Duration(),
		})
		for _, clip := range visit.Clips() {
			clipSamples = append(clipSamples, labelled{
				truth:      clip.TrueTag,
				predicted:  clip.BestGuessLabel,
				confidence: clip.BestGuessConfidence,
				duration:   clip.Duration(),
			})
			for _, track := range clip.Tracks {
				// A track is judged against the tag of its owning clip.
				trackSamples = append(trackSamples, labelled{
					truth:      clip.TrueTag,
					predicted:  track.Label,
					confidence: track.Confidence(),
					duration:   track.Duration(),
				})
			}
		}
	}

	results := &Results{}
	var err error
	if results.Tracks, err = breakdown("tracks", trackSamples, labels); err != nil {
		return nil, fmt.Errorf("track breakdown: %w", err)
	}
	if results.Clips, err = breakdown("clips", clipSamples, labels); err != nil {
		return nil, fmt.Errorf("clip breakdown: %w", err)
	}
	if results.Visits, err = breakdown("visits", visitSamples, labels); err != nil {
		return nil, fmt.Errorf("visit breakdown: %w", err)
	}
	return results, nil
}

// breakdown computes the statistics for one granularity.
func breakdown(level string, samples []labelled, labels []string) (Breakdown, error) {
	truth := make([]string, len(samples))
	predicted := make([]string, len(samples))
	for i, s := range samples {
		truth[i] = s.truth
		predicted[i] = s.predicted
	}

	matrix, err := NewConfusionMatrix(truth, predicted, labels)
	if err != nil {
		return Breakdown{}, err
	}
	accuracy, err := OverallAccuracy(truth, predicted)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Level:    level,
		Matrix:   matrix,
		F1:       matrix.PerClassF1(),
		Accuracy: accuracy,
		Count:    len(samples),
	}
	b.FinalScore = FinalScore(b.F1)

	for _, s := range samples {
		b.TotalDuration += s.duration
		if s.truth == s.predicted {
			b.CorrectConfidences = append(b.CorrectConfidences, s.confidence)
		} else {
			b.ErrorConfidences = append(b.ErrorConfidences, s.confidence)
			if s.confidence > b.MaxErrorConfidence {
				b.MaxErrorConfidence = s.confidence
			}
		}
	}

	return b, nil
}

// PredictedVisitCounts tallies visits by predicted tag, one entry per
// configured label. This powers the label-free summary mode, which needs no
// ground truth.
func PredictedVisitCounts(clustered []*visits.VisitRecord, labels []string) map[string]int {
	counts := make(map[string]int, len(labels))
	for _, label := range labels {
		counts[label] = 0
	}
	for _, visit := range clustered {
		counts[visit.PredictedTag()]++
	}
	return counts
}
