package visits

import (
	"sort"
	"time"
)

// VisitRecord groups the clips of one continuous animal presence at a
// camera. All member clips share the same camera and true tag; the
// clustering rule enforces this at construction time.
//
// The clip list stays sorted by start time. Clustering feeds clips in
// already-sorted order, so Add only re-sorts when given an out-of-order
// clip instead of sorting on every append.
type VisitRecord struct {
	clips []*ClipRecord
}

// NewVisitRecord seeds a visit from its first clip.
func NewVisitRecord(seed *ClipRecord) *VisitRecord {
	return &VisitRecord{clips: []*ClipRecord{seed}}
}

// Add appends a clip to the visit, keeping the start-time order invariant.
func (v *VisitRecord) Add(clip *ClipRecord) {
	v.clips = append(v.clips, clip)
	if len(v.clips) > 1 && clip.StartTime.Before(v.clips[len(v.clips)-2].StartTime) {
		sort.SliceStable(v.clips, func(i, j int) bool {
			return v.clips[i].StartTime.Before(v.clips[j].StartTime)
		})
	}
}

// Clips returns the member clips in start-time order.
func (v *VisitRecord) Clips() []*ClipRecord { return v.clips }

// Camera returns the camera shared by every member clip.
func (v *VisitRecord) Camera() string { return v.clips[0].Camera }

// TrueTag returns the ground-truth tag shared by every member clip.
func (v *VisitRecord) TrueTag() string { return v.clips[0].TrueTag }

// StartTime is the start of the earliest clip.
func (v *VisitRecord) StartTime() time.Time { return v.clips[0].StartTime }

// EndTime is the end of the latest clip.
func (v *VisitRecord) EndTime() time.Time { return v.clips[len(v.clips)-1].EndTime }

// Duration is the visit's total time span.
func (v *VisitRecord) Duration() time.Duration { return v.EndTime().Sub(v.StartTime()) }

// MidTime is the visit's temporal midpoint, used when binning visits by
// time of day.
func (v *VisitRecord) MidTime() time.Time { return v.StartTime().Add(v.Duration() / 2) }

// bestClip returns the member clip with the highest best-guess confidence.
// When several clips share the maximum, the latest in start-time order wins.
func (v *VisitRecord) bestClip() *ClipRecord {
	best := v.clips[0]
	for _, clip := range v.clips[1:] {
		if clip.BestGuessConfidence >= best.BestGuessConfidence {
			best = clip
		}
	}
	return best
}

// PredictedTag is the visit-level prediction: the best-guess label of the
// member clip with the highest best-guess confidence.
func (v *VisitRecord) PredictedTag() string { return v.bestClip().BestGuessLabel }

// PredictedConfidence is the best-guess confidence of the same clip that
// determines PredictedTag.
func (v *VisitRecord) PredictedConfidence() float64 { return v.bestClip().BestGuessConfidence }
