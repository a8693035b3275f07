// Package statsfile reads the per-clip stats files exported by the
// classifier. Each stats file is one JSON object describing a clip and the
// tracks the classifier found in it.
//
// Stats files are named <date>-<time>-<camera>.txt. Per-track stats files
// with a fourth name segment live in the same folder and are skipped.
package statsfile

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/wildlife.report/internal/fsutil"
	"github.com/banshee-data/wildlife.report/internal/monitoring"
)

// WarnParse is the warning category used when a stats file is skipped.
const WarnParse = "parse"

// ParseError reports a malformed or incomplete stats file. A ParseError
// aborts processing of that one file only; the batch continues.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("stats file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// rawTrack mirrors one element of the "tracks" array in the export format.
// The exported "confidence" field is the raw classifier score, distinct from
// the combined confidence derived later.
type rawTrack struct {
	StartTime  *string  `json:"start_time"`
	EndTime    *string  `json:"end_time"`
	Label      *string  `json:"label"`
	Confidence *float64 `json:"confidence"`
	Clarity    *float64 `json:"clarity"`
}

// rawClip mirrors the top-level stats object in the export format.
type rawClip struct {
	StartTime   *string    `json:"start_time"`
	EndTime     *string    `json:"end_time"`
	Camera      *string    `json:"camera"`
	OriginalTag *string    `json:"original_tag"`
	Tracks      []rawTrack `json:"tracks"`
}

// Track is one classifier detection parsed from a stats file.
type Track struct {
	StartTime time.Time
	EndTime   time.Time
	Label     string
	Score     float64
	Clarity   float64
}

// Clip is one parsed stats file: a source recording with its ground-truth
// tag and the classifier's tracks.
type Clip struct {
	Source      string
	StartTime   time.Time
	EndTime     time.Time
	Camera      string
	OriginalTag string
	Tracks      []Track
}

// IsStatsFile reports whether filename looks like a clip stats file:
// a .txt extension and three dash-separated name parts. Track stats files
// have four parts (date-time-camera-track) and are not clip stats.
func IsStatsFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	parts := strings.Split(filename, "-")
	return ext == ".txt" && len(parts) == 3
}

// timestampLayouts are tried in order when parsing export timestamps. The
// export strips timezone information, so zone-less layouts come last.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses an export timestamp and applies the configured
// offset that restores the timezone the export stripped.
func parseTimestamp(value string, offset time.Duration) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.Add(offset), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// ReadStatsFile parses the stats file at path. The timezone offset is added
// to every timestamp in the file. Any missing field, malformed timestamp, or
// out-of-range score yields a *ParseError.
func ReadStatsFile(fs fsutil.FileSystem, path string, offset time.Duration) (*Clip, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var raw rawClip
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	if raw.StartTime == nil || raw.EndTime == nil || raw.Camera == nil || raw.OriginalTag == nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("missing required clip field")}
	}

	clip := &Clip{
		Source:      filepath.Base(path),
		Camera:      *raw.Camera,
		OriginalTag: *raw.OriginalTag,
	}

	if clip.StartTime, err = parseTimestamp(*raw.StartTime, offset); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if clip.EndTime, err = parseTimestamp(*raw.EndTime, offset); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if clip.EndTime.Before(clip.StartTime) {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("clip end_time before start_time")}
	}

	for i, rt := range raw.Tracks {
		if rt.StartTime == nil || rt.EndTime == nil || rt.Label == nil || rt.Confidence == nil || rt.Clarity == nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("track %d: missing required field", i)}
		}

		track := Track{
			Label:   *rt.Label,
			Score:   *rt.Confidence,
			Clarity: *rt.Clarity,
		}
		if track.Score < 0 || track.Score > 1 {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("track %d: confidence %f outside [0,1]", i, track.Score)}
		}
		if track.Clarity < 0 || track.Clarity > 1 {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("track %d: clarity %f outside [0,1]", i, track.Clarity)}
		}
		if track.StartTime, err = parseTimestamp(*rt.StartTime, offset); err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("track %d: %w", i, err)}
		}
		if track.EndTime, err = parseTimestamp(*rt.EndTime, offset); err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("track %d: %w", i, err)}
		}
		if track.EndTime.Before(track.StartTime) {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("track %d: end_time before start_time", i)}
		}

		clip.Tracks = append(clip.Tracks, track)
	}

	return clip, nil
}

// ScanFolder reads every clip stats file in folder. Files that fail to parse
// are logged, counted against warnings, and skipped; the rest of the batch
// continues. The returned slice follows directory order, which ReadDir keeps
// sorted by name, so repeated scans are deterministic.
func ScanFolder(fs fsutil.FileSystem, folder string, offset time.Duration, warnings *monitoring.WarningCounter) ([]*Clip, error) {
	entries, err := fs.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read source folder %s: %w", folder, err)
	}

	var clips []*Clip
	for _, entry := range entries {
		if entry.IsDir() || !IsStatsFile(entry.Name()) {
			continue
		}

		clip, err := ReadStatsFile(fs, filepath.Join(folder, entry.Name()), offset)
		if err != nil {
			warnings.Warnf(WarnParse, "skipping %s: %v", entry.Name(), err)
			continue
		}
		clips = append(clips, clip)
	}

	return clips, nil
}
