package visits

import (
	"math"
	"testing"
	"time"

	"github.com/banshee-data/wildlife.report/internal/statsfile"
)

func testOptions() Options {
	return NewOptions(
		[]string{"bird", "possum", "rat", "hedgehog", "none"},
		[]string{"false-positive", "none", "no-tag"},
	)
}

func obs(label string, score, clarity float64) TrackObservation {
	return TrackObservation{Label: label, Score: score, Clarity: clarity}
}

func TestTrackConfidence(t *testing.T) {
	tests := []struct {
		name           string
		score, clarity float64
		want           float64
	}{
		{"perfect", 1.0, 1.0, 1.0},
		{"worthless", 0.0, 0.0, 0.0},
		{"perfect score carries", 1.0, 0.0, 1.0},
		{"perfect clarity carries", 0.0, 1.0, 1.0},
		{"soft AND", 0.8, 0.5, 1 - math.Sqrt(0.2*0.5)},
		{"symmetric", 0.5, 0.8, 1 - math.Sqrt(0.5*0.2)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := obs("bird", tc.score, tc.clarity).Confidence()
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Confidence() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTrackConfidenceStaysInRange(t *testing.T) {
	for score := 0.0; score <= 1.0; score += 0.1 {
		for clarity := 0.0; clarity <= 1.0; clarity += 0.1 {
			got := obs("bird", score, clarity).Confidence()
			if got < 0 || got > 1 {
				t.Fatalf("Confidence(score=%v, clarity=%v) = %v outside [0,1]", score, clarity, got)
			}
		}
	}
}

func TestBestGuessEmpty(t *testing.T) {
	label, confidence := bestGuess(nil)
	if label != NoneLabel || confidence != 0 {
		t.Errorf("bestGuess(nil) = (%q, %v), want (none, 0)", label, confidence)
	}
}

func TestBestGuessSingleTrack(t *testing.T) {
	label, confidence := bestGuess([]TrackObservation{obs("possum", 1, 1)})
	if label != "possum" || confidence != 1 {
		t.Errorf("bestGuess = (%q, %v), want (possum, 1)", label, confidence)
	}
}

func TestBestGuessNoneWeighting(t *testing.T) {
	// A perfect false-positive track is halved, so a decent animal track
	// still comes across.
	tracks := []TrackObservation{
		obs(NoneLabel, 1, 1),    // weighted to 0.5
		obs("rat", 0.75, 0.75),  // confidence 0.75
		obs("bird", 0.3, 0.3),   // confidence 0.3
	}
	label, confidence := bestGuess(tracks)
	if label != "rat" {
		t.Errorf("label = %q, want rat", label)
	}
	if math.Abs(confidence-0.75) > 1e-12 {
		t.Errorf("confidence = %v, want 0.75", confidence)
	}
}

func TestBestGuessPerLabelMax(t *testing.T) {
	// Two tracks of the same label keep the maximum, not the last.
	tracks := []TrackObservation{
		obs("bird", 0.9, 0.9),
		obs("bird", 0.1, 0.1),
	}
	label, confidence := bestGuess(tracks)
	want := 1 - math.Sqrt(0.1*0.1)
	if label != "bird" || math.Abs(confidence-want) > 1e-12 {
		t.Errorf("bestGuess = (%q, %v), want (bird, %v)", label, confidence, want)
	}
}

func TestBestGuessTieKeepsEarliestAtMax(t *testing.T) {
	// possum and rat both reach the same maximum; possum reached it first.
	tracks := []TrackObservation{
		obs("possum", 0.8, 0.8),
		obs("rat", 0.8, 0.8),
	}
	label, _ := bestGuess(tracks)
	if label != "possum" {
		t.Errorf("label = %q, want possum (earliest at max)", label)
	}

	// Order matters deterministically: reversed input flips the winner.
	reversed := []TrackObservation{tracks[1], tracks[0]}
	label, _ = bestGuess(reversed)
	if label != "rat" {
		t.Errorf("label = %q, want rat for reversed input", label)
	}
}

func TestBestGuessZeroConfidenceNeverWins(t *testing.T) {
	label, confidence := bestGuess([]TrackObservation{obs("bird", 0, 0)})
	if label != NoneLabel || confidence != 0 {
		t.Errorf("bestGuess = (%q, %v), want (none, 0)", label, confidence)
	}
}

func TestNewClipRecordCanonicalisesNullTags(t *testing.T) {
	start := time.Date(2017, 12, 21, 10, 0, 0, 0, time.UTC)
	clip := &statsfile.Clip{
		Source:      "20171220-210000-akaroa09.txt",
		Camera:      "akaroa09",
		OriginalTag: "false-positive",
		StartTime:   start,
		EndTime:     start.Add(30 * time.Second),
		Tracks: []statsfile.Track{
			{Label: "no-tag", Score: 0.9, Clarity: 0.9, StartTime: start, EndTime: start.Add(10 * time.Second)},
		},
	}

	record := NewClipRecord(clip, testOptions())

	if record.TrueTag != NoneLabel {
		t.Errorf("TrueTag = %q, want none", record.TrueTag)
	}
	if record.Tracks[0].Label != NoneLabel {
		t.Errorf("track label = %q, want none", record.Tracks[0].Label)
	}
	// Canonicalised none track gets the 0.5 weighting.
	if record.BestGuessLabel != NoneLabel {
		t.Errorf("BestGuessLabel = %q, want none", record.BestGuessLabel)
	}
	wantConfidence := (1 - math.Sqrt(0.1*0.1)) * NoneWeight
	if math.Abs(record.BestGuessConfidence-wantConfidence) > 1e-12 {
		t.Errorf("BestGuessConfidence = %v, want %v", record.BestGuessConfidence, wantConfidence)
	}
}

func TestClipDuration(t *testing.T) {
	start := time.Date(2017, 12, 21, 10, 0, 0, 0, time.UTC)
	record := &ClipRecord{StartTime: start, EndTime: start.Add(45 * time.Second)}
	if got := record.Duration(); got != 45*time.Second {
		t.Errorf("Duration() = %v, want 45s", got)
	}
}
