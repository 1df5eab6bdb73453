package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	validStrategies   = []string{StrategyCumulative, StrategyRemap, StrategyGap, StrategyAlign, StrategyOverlap, StrategyCompact}
	validSimilarities = []string{SimilaritySequence, SimilarityToken}
	validModes        = []string{ModeCopy, ModeReencode}
	validLogFormats   = []string{"console", "json"}
	validLogLevels    = []string{"debug", "info", "warn", "error"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePlanner(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Jobs.StaleWorkHours < 0 {
		return errors.New("jobs.stale_work_hours must be >= 0")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

// ValidStrategy reports whether name is a known planner strategy.
func ValidStrategy(name string) bool {
	return slices.Contains(validStrategies, name)
}

// Strategies returns the known strategy names in display order.
func Strategies() []string {
	return slices.Clone(validStrategies)
}

func (c *Config) validatePlanner() error {
	p := c.Planner
	if !ValidStrategy(p.Strategy) {
		return fmt.Errorf("planner.strategy must be one of %v, got %q", validStrategies, p.Strategy)
	}
	if !slices.Contains(validSimilarities, p.Similarity) {
		return fmt.Errorf("planner.similarity must be one of %v, got %q", validSimilarities, p.Similarity)
	}
	if p.MergeGap < 0 {
		return errors.New("planner.merge_gap must be >= 0")
	}

	unit := []struct {
		key   string
		value float64
	}{
		{"planner.cumulative.match_threshold", p.Cumulative.MatchThreshold},
		{"planner.remap.match_threshold", p.Remap.MatchThreshold},
		{"planner.gap.match_threshold", p.Gap.MatchThreshold},
		{"planner.align.match_threshold", p.Align.MatchThreshold},
		{"planner.align.text_floor", p.Align.TextFloor},
		{"planner.align.text_weight", p.Align.TextWeight},
		{"planner.compact.match_threshold", p.Compact.MatchThreshold},
		{"planner.compact.time_weight", p.Compact.TimeWeight},
	}
	for _, field := range unit {
		if field.value < 0 || field.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", field.key)
		}
	}

	if p.Cumulative.Threshold < 0 {
		return errors.New("planner.cumulative.threshold must be >= 0")
	}
	windows := []struct {
		key   string
		value int
	}{
		{"planner.cumulative.window_radius", p.Cumulative.WindowRadius},
		{"planner.gap.window_radius", p.Gap.WindowRadius},
		{"planner.align.window_radius", p.Align.WindowRadius},
	}
	for _, field := range windows {
		if field.value < 0 {
			return fmt.Errorf("%s must be >= 0", field.key)
		}
	}
	if p.Overlap.MinOverlap < 0 {
		return errors.New("planner.overlap.min_overlap must be >= 0")
	}
	if p.Overlap.MergeGap < 0 {
		return errors.New("planner.overlap.merge_gap must be >= 0")
	}
	if !(p.Compact.MaxTimeDiff > 0) {
		return errors.New("planner.compact.max_time_diff must be > 0")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	e := c.Extraction
	if !slices.Contains(validModes, e.Mode) {
		return fmt.Errorf("extraction.mode must be one of %v, got %q", validModes, e.Mode)
	}
	if e.Workers < 1 {
		return errors.New("extraction.workers must be >= 1")
	}
	if e.SegmentTimeout <= 0 {
		return errors.New("extraction.segment_timeout must be positive")
	}
	if e.ConcatTimeout <= 0 {
		return errors.New("extraction.concat_timeout must be positive")
	}
	if e.ProbeTimeout <= 0 {
		return errors.New("extraction.probe_timeout must be positive")
	}
	if e.MinSegmentBytes < 0 {
		return errors.New("extraction.min_segment_bytes must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of %v, got %q", validLogFormats, c.Logging.Format)
	}
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v, got %q", validLogLevels, c.Logging.Level)
	}
	return nil
}
