package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working, output, and log directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Cumulative tunes the cumulative-offset strategy.
type Cumulative struct {
	// Threshold is the start-time difference (seconds) below which the
	// original interval is kept unchanged.
	Threshold      float64 `toml:"threshold"`
	MatchThreshold float64 `toml:"match_threshold"`
	WindowRadius   int     `toml:"window_radius"`
}

// Remap tunes the timeline-remap strategy. Matching is global.
type Remap struct {
	MatchThreshold float64 `toml:"match_threshold"`
}

// Gap tunes the gap-preserving strategy.
type Gap struct {
	MatchThreshold float64 `toml:"match_threshold"`
	WindowRadius   int     `toml:"window_radius"`
}

// Align tunes the timeline-align strategy, which blends text and duration
// similarity.
type Align struct {
	MatchThreshold float64 `toml:"match_threshold"`
	TextFloor      float64 `toml:"text_floor"`
	TextWeight     float64 `toml:"text_weight"`
	WindowRadius   int     `toml:"window_radius"`
}

// Overlap tunes the overlap-merge strategy.
type Overlap struct {
	MinOverlap float64 `toml:"min_overlap"`
	MergeGap   float64 `toml:"merge_gap"`
}

// Compact tunes the compact strategy, which matches by start-time proximity
// after the running duration offset and keeps original intervals.
type Compact struct {
	MatchThreshold float64 `toml:"match_threshold"`
	MaxTimeDiff    float64 `toml:"max_time_diff"`
	TimeWeight     float64 `toml:"time_weight"`
}

// Planner selects the default strategy and holds per-strategy settings.
type Planner struct {
	Strategy   string     `toml:"strategy"`
	Similarity string     `toml:"similarity"`
	Merge      bool       `toml:"merge"`
	MergeGap   float64    `toml:"merge_gap"`
	Cumulative Cumulative `toml:"cumulative"`
	Remap      Remap      `toml:"remap"`
	Gap        Gap        `toml:"gap"`
	Align      Align      `toml:"align"`
	Overlap    Overlap    `toml:"overlap"`
	Compact    Compact    `toml:"compact"`
}

// Extraction controls how planned segments are cut and assembled.
type Extraction struct {
	Mode            string `toml:"mode"`
	Workers         int    `toml:"workers"`
	SegmentTimeout  int    `toml:"segment_timeout"`
	ConcatTimeout   int    `toml:"concat_timeout"`
	ProbeTimeout    int    `toml:"probe_timeout"`
	MinSegmentBytes int64  `toml:"min_segment_bytes"`
	Container       string `toml:"container"`
}

// Tools names the external media binaries.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Jobs controls the persistent job history.
type Jobs struct {
	Enabled        bool `toml:"enabled"`
	StaleWorkHours int  `toml:"stale_work_hours"`
}

// Config encapsulates all configuration values for subsplice.
//
// Configuration sections by subsystem:
//   - Paths: work, output, and log directories
//   - Planner: default strategy, merge pass, and per-strategy thresholds
//   - Extraction: cut mode, worker count, timeouts, and size sentinel
//   - Tools: ffmpeg/ffprobe binaries
//   - Logging: log format and level
//   - Jobs: job history database and stale work cleanup
type Config struct {
	Paths      Paths      `toml:"paths"`
	Planner    Planner    `toml:"planner"`
	Extraction Extraction `toml:"extraction"`
	Tools      Tools      `toml:"tools"`
	Logging    Logging    `toml:"logging"`
	Jobs       Jobs       `toml:"jobs"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subsplice.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work, output, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for extraction and concat.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFmpeg); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for duration probes.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFprobe); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// SegmentTimeout returns the per-segment extraction timeout.
func (c *Config) SegmentTimeout() time.Duration {
	return time.Duration(c.Extraction.SegmentTimeout) * time.Second
}

// ConcatTimeout returns the timeout applied to the final concatenation.
func (c *Config) ConcatTimeout() time.Duration {
	return time.Duration(c.Extraction.ConcatTimeout) * time.Second
}

// ProbeTimeout returns the timeout applied to duration probes.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Extraction.ProbeTimeout) * time.Second
}

// StaleWorkAge returns the age after which leftover run directories are removed.
func (c *Config) StaleWorkAge() time.Duration {
	return time.Duration(c.Jobs.StaleWorkHours) * time.Hour
}

// JobsDBPath returns the location of the job history database.
func (c *Config) JobsDBPath() string {
	return filepath.Join(c.Paths.LogDir, "jobs.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
