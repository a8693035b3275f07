// Package visits holds the evaluation data model: track observations,
// clip records, and the clustering of clips into visits. A visit is a
// maximal run of temporally-close, same-camera, same-tag clips,
// representing one continuous animal presence at a camera.
package visits

import (
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/wildlife.report/internal/statsfile"
)

// NoneLabel is the canonical "no animal" label. Source exports use several
// aliases for it (false-positive, none, no-tag); they are folded into this
// label when records are constructed and never reversed.
const NoneLabel = "none"

// NoneWeight halves the confidence of none-labelled tracks before
// aggregation so a confident false-positive track cannot mask a real
// detection in the same clip.
const NoneWeight = 0.5

// Options carries the label configuration shared by record construction and
// clustering. There is no process-wide label state; every component takes
// its Options explicitly.
type Options struct {
	classes  map[string]bool
	nullTags map[string]bool
}

// NewOptions builds Options from the closed class set and the null-tag
// aliases that canonicalise to NoneLabel.
func NewOptions(classes, nullTags []string) Options {
	opts := Options{
		classes:  make(map[string]bool, len(classes)),
		nullTags: make(map[string]bool, len(nullTags)),
	}
	for _, class := range classes {
		opts.classes[class] = true
	}
	for _, tag := range nullTags {
		opts.nullTags[tag] = true
	}
	return opts
}

// IsClass reports whether label belongs to the closed class set.
func (o Options) IsClass(label string) bool { return o.classes[label] }

// Canonical maps null-tag aliases to NoneLabel and leaves other labels as-is.
func (o Options) Canonical(label string) string {
	if o.nullTags[label] {
		return NoneLabel
	}
	return label
}

// LabelError reports a label outside the known closed set. It excludes the
// offending clip from clustering but is not a hard failure; callers count
// these and surface the total at the end of a run.
type LabelError struct {
	Source string
	Field  string
	Label  string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("%s: %s %q not in known classes", e.Source, e.Field, e.Label)
}

// TrackObservation is one normalised classifier detection: a label with a
// raw score and an independent clarity measure, spanning a sub-interval of
// its clip.
type TrackObservation struct {
	Label     string
	Score     float64
	Clarity   float64
	StartTime time.Time
	EndTime   time.Time
}

// Confidence combines score and clarity into a single figure:
//
//	1 - sqrt((1-score) * (1-clarity))
//
// a soft-AND where either a low score or low clarity drags the result down.
// Both inputs in [0,1] keep the result in [0,1].
func (t TrackObservation) Confidence() float64 {
	return 1 - math.Sqrt((1-t.Score)*(1-t.Clarity))
}

// Duration returns the track's time span.
func (t TrackObservation) Duration() time.Duration {
	return t.EndTime.Sub(t.StartTime)
}

// ClipRecord is one source recording: its ground-truth tag and the
// classifier's tracks, with the clip-level best guess derived at
// construction.
type ClipRecord struct {
	Source    string
	Camera    string
	TrueTag   string
	StartTime time.Time
	EndTime   time.Time
	Tracks    []TrackObservation

	BestGuessLabel      string
	BestGuessConfidence float64
}

// NewClipRecord builds a ClipRecord from a parsed stats file, canonicalising
// null tags on both the ground truth and every track label.
func NewClipRecord(clip *statsfile.Clip, opts Options) *ClipRecord {
	record := &ClipRecord{
		Source:    clip.Source,
		Camera:    clip.Camera,
		TrueTag:   opts.Canonical(clip.OriginalTag),
		StartTime: clip.StartTime,
		EndTime:   clip.EndTime,
	}

	for _, track := range clip.Tracks {
		record.Tracks = append(record.Tracks, TrackObservation{
			Label:     opts.Canonical(track.Label),
			Score:     track.Score,
			Clarity:   track.Clarity,
			StartTime: track.StartTime,
			EndTime:   track.EndTime,
		})
	}

	record.BestGuessLabel, record.BestGuessConfidence = bestGuess(record.Tracks)
	return record
}

// Duration returns the clip's time span.
func (c *ClipRecord) Duration() time.Duration {
	return c.EndTime.Sub(c.StartTime)
}

// bestGuess folds a clip's tracks into a single (label, confidence) pair.
// Per label it accumulates the maximum weighted confidence and the track
// index at which that maximum was first reached; the winner is the label
// with the highest final value, ties going to whichever label reached the
// shared maximum first. No tracks means ("none", 0).
func bestGuess(tracks []TrackObservation) (string, float64) {
	type labelMax struct {
		confidence float64
		reachedAt  int
	}

	best := make(map[string]labelMax)
	var order []string
	for i, track := range tracks {
		confidence := track.Confidence()
		if track.Label == NoneLabel {
			confidence *= NoneWeight
		}

		current, seen := best[track.Label]
		if !seen {
			order = append(order, track.Label)
		}
		if !seen || confidence > current.confidence {
			best[track.Label] = labelMax{confidence: confidence, reachedAt: i}
		}
	}

	// A label only wins by strictly exceeding zero, so all-zero clips keep
	// the ("none", 0) default.
	winner, winning, found := NoneLabel, labelMax{}, false
	for _, label := range order {
		candidate := best[label]
		switch {
		case candidate.confidence > winning.confidence:
			winner, winning, found = label, candidate, true
		case found && candidate.confidence == winning.confidence && candidate.reachedAt < winning.reachedAt:
			winner, winning = label, candidate
		}
	}
	return winner, winning.confidence
}
