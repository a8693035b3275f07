package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/banshee-data/wildlife.report/internal/testutil"
	"github.com/banshee-data/wildlife.report/internal/visits"
)

var evalEpoch = time.Date(2017, 12, 21, 10, 0, 0, 0, time.UTC)

// buildVisit assembles a visit from (trueTag, guess, confidence) clip
// tuples, each clip 30s long and 60s apart, each carrying one matching track.
func buildVisit(t *testing.T, camera string, clips ...[3]interface{}) *visits.VisitRecord {
	t.Helper()
	var visit *visits.VisitRecord
	for i, tuple := range clips {
		start := evalEpoch.Add(time.Duration(i) * 60 * time.Second)
		trueTag := tuple[0].(string)
		guess := tuple[1].(string)
		confidence := tuple[2].(float64)
		clip := &visits.ClipRecord{
			Source:              camera,
			Camera:              camera,
			TrueTag:             trueTag,
			StartTime:           start,
			EndTime:             start.Add(30 * time.Second),
			BestGuessLabel:      guess,
			BestGuessConfidence: confidence,
			Tracks: []visits.TrackObservation{
				{Label: guess, Score: confidence, Clarity: confidence, StartTime: start, EndTime: start.Add(10 * time.Second)},
			},
		}
		if visit == nil {
			visit = visits.NewVisitRecord(clip)
		} else {
			visit.Add(clip)
		}
	}
	return visit
}

func TestEvaluateThreeLevels(t *testing.T) {
	clustered := []*visits.VisitRecord{
		buildVisit(t, "cam1",
			[3]interface{}{"bird", "bird", 0.9},
			[3]interface{}{"bird", "none", 0.3},
		),
		buildVisit(t, "cam1",
			[3]interface{}{"rat", "rat", 0.8},
		),
	}

	results, err := Evaluate(clustered, testLabels)
	testutil.AssertNoError(t, err)

	// Visit level: both visits predicted correctly (visit 1 takes the 0.9
	// bird clip).
	if results.Visits.Count != 2 {
		t.Errorf("visit count = %d, want 2", results.Visits.Count)
	}
	testutil.AssertFloatNear(t, results.Visits.Accuracy, 1.0, 1e-12)

	// Clip level: 2 of 3 correct.
	if results.Clips.Count != 3 {
		t.Errorf("clip count = %d, want 3", results.Clips.Count)
	}
	testutil.AssertFloatNear(t, results.Clips.Accuracy, 2.0/3.0, 1e-12)

	// Track level mirrors clip level here (one track per clip).
	if results.Tracks.Count != 3 {
		t.Errorf("track count = %d, want 3", results.Tracks.Count)
	}

	// Durations accumulate per level: clips are 30s, tracks 10s.
	if got := results.Clips.TotalDuration; got != 90*time.Second {
		t.Errorf("clip TotalDuration = %v, want 90s", got)
	}
	if got := results.Tracks.TotalDuration; got != 30*time.Second {
		t.Errorf("track TotalDuration = %v, want 30s", got)
	}
}

func TestEvaluateConfidenceSplit(t *testing.T) {
	clustered := []*visits.VisitRecord{
		buildVisit(t, "cam1", [3]interface{}{"bird", "bird", 0.9}),
		buildVisit(t, "cam2", [3]interface{}{"rat", "possum", 0.7}),
	}

	results, err := Evaluate(clustered, testLabels)
	testutil.AssertNoError(t, err)

	if len(results.Visits.CorrectConfidences) != 1 || len(results.Visits.ErrorConfidences) != 1 {
		t.Fatalf("confidence split = %d correct / %d error, want 1/1",
			len(results.Visits.CorrectConfidences), len(results.Visits.ErrorConfidences))
	}
	testutil.AssertFloatNear(t, results.Visits.MaxErrorConfidence, 0.7, 1e-12)
}

func TestEvaluateNoVisitsIsFatal(t *testing.T) {
	_, err := Evaluate(nil, testLabels)
	testutil.AssertError(t, err)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("error %v does not wrap ErrNoData", err)
	}
}

func TestPredictedVisitCounts(t *testing.T) {
	clustered := []*visits.VisitRecord{
		buildVisit(t, "cam1", [3]interface{}{"bird", "bird", 0.9}),
		buildVisit(t, "cam2", [3]interface{}{"rat", "bird", 0.6}),
		buildVisit(t, "cam3", [3]interface{}{"none", "none", 0.5}),
	}

	counts := PredictedVisitCounts(clustered, testLabels)

	if counts["bird"] != 2 {
		t.Errorf("bird visits = %d, want 2", counts["bird"])
	}
	if counts["none"] != 1 {
		t.Errorf("none visits = %d, want 1", counts["none"])
	}
	// Every configured label appears even with zero visits.
	if _, ok := counts["hedgehog"]; !ok {
		t.Error("hedgehog missing from counts")
	}
}
