package visits

import (
	"sort"
	"time"

	"github.com/banshee-data/wildlife.report/internal/monitoring"
)

// WarnLabel is the warning category used when a clip is excluded because a
// label falls outside the closed class set.
const WarnLabel = "label"

// Clusterer partitions time-ordered clips into visits, one camera at a
// time. Two clips belong to the same visit when they share a camera and
// true tag and start less than the gap threshold after the previous clip
// ended. Cameras never interact; a visit cannot span cameras.
type Clusterer struct {
	gap      time.Duration
	opts     Options
	warnings *monitoring.WarningCounter
}

// NewClusterer builds a Clusterer with the given gap threshold and label
// configuration. Excluded-clip warnings are counted against warnings.
func NewClusterer(gap time.Duration, opts Options, warnings *monitoring.WarningCounter) *Clusterer {
	return &Clusterer{gap: gap, opts: opts, warnings: warnings}
}

// eligible reports whether a clip may take part in clustering: both its
// ground truth and its best guess must be in the closed class set. An
// ineligible clip is counted as a label warning and dropped; it never seeds
// or joins a visit.
func (c *Clusterer) eligible(clip *ClipRecord) bool {
	if !c.opts.IsClass(clip.TrueTag) {
		c.warnings.Warnf(WarnLabel, "%v", &LabelError{Source: clip.Source, Field: "true tag", Label: clip.TrueTag})
		return false
	}
	if !c.opts.IsClass(clip.BestGuessLabel) {
		c.warnings.Warnf(WarnLabel, "%v", &LabelError{Source: clip.Source, Field: "best guess", Label: clip.BestGuessLabel})
		return false
	}
	return true
}

// Cluster partitions clips into visits. Each camera's clips are sorted by
// start time and walked once; a new visit starts at the first clip, at any
// gap of at least the threshold (the boundary itself starts a new visit),
// and at any change of true tag. Visits are registered as soon as they are
// seeded and are never merged retroactively, even if a later gap would have
// bridged them.
//
// The result is ordered by camera name and, within a camera, by discovery
// order, so repeated runs over the same input produce identical partitions.
func (c *Clusterer) Cluster(clips []*ClipRecord) []*VisitRecord {
	byCamera := make(map[string][]*ClipRecord)
	for _, clip := range clips {
		if !c.eligible(clip) {
			continue
		}
		byCamera[clip.Camera] = append(byCamera[clip.Camera], clip)
	}

	cameras := make([]string, 0, len(byCamera))
	for camera := range byCamera {
		cameras = append(cameras, camera)
	}
	sort.Strings(cameras)

	var visits []*VisitRecord
	for _, camera := range cameras {
		visits = append(visits, c.clusterCamera(byCamera[camera])...)
	}
	return visits
}

// clusterCamera runs the gap/tag-change rule over one camera's clips.
func (c *Clusterer) clusterCamera(clips []*ClipRecord) []*VisitRecord {
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].StartTime.Before(clips[j].StartTime)
	})

	var visits []*VisitRecord
	var current *VisitRecord
	var previousEnd time.Time
	havePrevious := false

	for _, clip := range clips {
		switch {
		case current == nil:
			current = NewVisitRecord(clip)
			visits = append(visits, current)
		default:
			gap := time.Duration(0)
			if havePrevious {
				gap = clip.StartTime.Sub(previousEnd)
			}
			if gap >= c.gap || clip.TrueTag != current.TrueTag() {
				current = NewVisitRecord(clip)
				visits = append(visits, current)
			} else {
				current.Add(clip)
			}
		}
		previousEnd = clip.EndTime
		havePrevious = true
	}

	return visits
}
