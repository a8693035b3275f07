package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EvalConfig represents the root configuration for an evaluation run.
// All fields are pointers so a partial JSON file only overrides the
// values it names; the Get* accessors supply defaults for the rest.
type EvalConfig struct {
	// SourceFolder holds the folder containing classifier stats files.
	SourceFolder *string `json:"source_folder,omitempty"`

	// VisitGapSeconds is the minimum gap between clips that starts a new visit.
	VisitGapSeconds *float64 `json:"visit_gap_seconds,omitempty"`

	// Classes is the closed label set used for clustering and evaluation.
	Classes []string `json:"classes,omitempty"`

	// NullTags lists source labels that all mean "no animal". They are
	// canonicalised to "none" when records are loaded.
	NullTags []string `json:"null_tags,omitempty"`

	// TimezoneOffsetHours is added to every parsed timestamp. The classifier
	// export strips timezones, so this restores local time. It is a
	// workaround for an upstream defect, not a protocol guarantee, hence
	// configurable.
	TimezoneOffsetHours *float64 `json:"timezone_offset_hours,omitempty"`

	// ReportDir is where rendered reports (HTML, PNG) are written.
	ReportDir *string `json:"report_dir,omitempty"`
}

// Defaults mirrored by the Get* accessors.
const (
	DefaultVisitGapSeconds     = 180.0
	DefaultTimezoneOffsetHours = 13.0
	DefaultReportDir           = "reports"
)

// DefaultClasses is the closed label set evaluated when none is configured.
var DefaultClasses = []string{"bird", "possum", "rat", "hedgehog", "none"}

// DefaultNullTags are the source labels canonicalised to "none".
var DefaultNullTags = []string{"false-positive", "none", "no-tag"}

// EmptyEvalConfig returns an EvalConfig with all fields unset.
func EmptyEvalConfig() *EvalConfig {
	return &EvalConfig{}
}

// LoadEvalConfig loads an EvalConfig from a JSON file. The file must have a
// .json extension and be under the max file size. Fields omitted from the
// JSON retain their defaults, so partial configs are safe.
func LoadEvalConfig(path string) (*EvalConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyEvalConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *EvalConfig) Validate() error {
	if c.VisitGapSeconds != nil && *c.VisitGapSeconds <= 0 {
		return fmt.Errorf("visit_gap_seconds must be positive, got %f", *c.VisitGapSeconds)
	}

	if c.Classes != nil {
		if len(c.Classes) == 0 {
			return fmt.Errorf("classes must not be empty when set")
		}
		seen := make(map[string]bool, len(c.Classes))
		for _, class := range c.Classes {
			if class == "" {
				return fmt.Errorf("classes must not contain empty labels")
			}
			if seen[class] {
				return fmt.Errorf("duplicate class %q", class)
			}
			seen[class] = true
		}
	}

	if c.TimezoneOffsetHours != nil {
		if *c.TimezoneOffsetHours < -24 || *c.TimezoneOffsetHours > 24 {
			return fmt.Errorf("timezone_offset_hours must be within [-24, 24], got %f", *c.TimezoneOffsetHours)
		}
	}

	return nil
}

// GetSourceFolder returns the source folder or the empty string.
func (c *EvalConfig) GetSourceFolder() string {
	if c.SourceFolder == nil {
		return ""
	}
	return *c.SourceFolder
}

// GetVisitGap returns the visit gap threshold as a time.Duration.
func (c *EvalConfig) GetVisitGap() time.Duration {
	seconds := DefaultVisitGapSeconds
	if c.VisitGapSeconds != nil {
		seconds = *c.VisitGapSeconds
	}
	return time.Duration(seconds * float64(time.Second))
}

// GetClasses returns the configured class list or the default set.
func (c *EvalConfig) GetClasses() []string {
	if c.Classes == nil {
		return append([]string(nil), DefaultClasses...)
	}
	return append([]string(nil), c.Classes...)
}

// GetNullTags returns the configured null-tag aliases or the default set.
func (c *EvalConfig) GetNullTags() []string {
	if c.NullTags == nil {
		return append([]string(nil), DefaultNullTags...)
	}
	return append([]string(nil), c.NullTags...)
}

// GetTimezoneOffset returns the timestamp correction as a time.Duration.
func (c *EvalConfig) GetTimezoneOffset() time.Duration {
	hours := DefaultTimezoneOffsetHours
	if c.TimezoneOffsetHours != nil {
		hours = *c.TimezoneOffsetHours
	}
	return time.Duration(hours * float64(time.Hour))
}

// GetReportDir returns the report output directory or the default.
func (c *EvalConfig) GetReportDir() string {
	if c.ReportDir == nil || *c.ReportDir == "" {
		return DefaultReportDir
	}
	return *c.ReportDir
}
