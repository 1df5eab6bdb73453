package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"subsplice/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "subsplice", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.JobsDBPath() != filepath.Join(tempHome, ".local", "share", "subsplice", "logs", "jobs.db") {
		t.Fatalf("unexpected jobs db path: %q", cfg.JobsDBPath())
	}
	if cfg.Planner.Strategy != config.StrategyGap {
		t.Fatalf("expected gap strategy by default, got %q", cfg.Planner.Strategy)
	}
	if cfg.Planner.Gap.WindowRadius != 20 {
		t.Fatalf("expected gap window radius 20, got %d", cfg.Planner.Gap.WindowRadius)
	}
	if cfg.Planner.Align.MatchThreshold != 0.4 {
		t.Fatalf("expected align threshold 0.4, got %v", cfg.Planner.Align.MatchThreshold)
	}
	if cfg.Planner.Cumulative.Threshold != 0.5 {
		t.Fatalf("expected cumulative threshold 0.5, got %v", cfg.Planner.Cumulative.Threshold)
	}
	if cfg.Extraction.Mode != config.ModeCopy {
		t.Fatalf("expected copy mode, got %q", cfg.Extraction.Mode)
	}
	if cfg.SegmentTimeout().Seconds() != 300 {
		t.Fatalf("expected 300s segment timeout, got %v", cfg.SegmentTimeout())
	}
	if cfg.ConcatTimeout().Seconds() != 600 {
		t.Fatalf("expected 600s concat timeout, got %v", cfg.ConcatTimeout())
	}
	if cfg.Extraction.MinSegmentBytes != 1000 {
		t.Fatalf("expected 1000 byte sentinel, got %d", cfg.Extraction.MinSegmentBytes)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subsplice.toml")

	type payload struct {
		Paths struct {
			WorkDir string `toml:"work_dir"`
		} `toml:"paths"`
		Planner struct {
			Strategy string `toml:"strategy"`
			Remap    struct {
				MatchThreshold float64 `toml:"match_threshold"`
			} `toml:"remap"`
		} `toml:"planner"`
		Extraction struct {
			Mode    string `toml:"mode"`
			Workers int    `toml:"workers"`
		} `toml:"extraction"`
	}
	custom := payload{}
	custom.Paths.WorkDir = filepath.Join(tempDir, "scratch")
	custom.Planner.Strategy = " Remap "
	custom.Planner.Remap.MatchThreshold = 0.55
	custom.Extraction.Mode = "re-encode"
	custom.Extraction.Workers = 4

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config to be read from %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.WorkDir != filepath.Join(tempDir, "scratch") {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	if cfg.Planner.Strategy != config.StrategyRemap {
		t.Fatalf("expected remap strategy, got %q", cfg.Planner.Strategy)
	}
	if cfg.Planner.Remap.MatchThreshold != 0.55 {
		t.Fatalf("expected remap threshold 0.55, got %v", cfg.Planner.Remap.MatchThreshold)
	}
	if cfg.Extraction.Mode != config.ModeReencode {
		t.Fatalf("expected reencode mode, got %q", cfg.Extraction.Mode)
	}
	if cfg.Extraction.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.Extraction.Workers)
	}
	// Untouched sections keep defaults.
	if cfg.Planner.Gap.WindowRadius != 20 {
		t.Fatalf("expected default gap window radius, got %d", cfg.Planner.Gap.WindowRadius)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subsplice.toml")
	if err := os.WriteFile(configPath, []byte("[planner]\nstrategyy = \"gap\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestToolEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SUBSPLICE_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("SUBSPLICE_LOG_LEVEL", "DEBUG")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected ffmpeg from env, got %q", cfg.FFmpegBinary())
	}
	if cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("expected default ffprobe, got %q", cfg.FFprobeBinary())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level from env, got %q", cfg.Logging.Level)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[planner.align]") {
		t.Fatalf("sample config missing align section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.WorkDir, "subsplice") {
		t.Fatalf("expected work dir to contain subsplice, got %q", cfg.Paths.WorkDir)
	}
	if cfg.Planner.Overlap.MergeGap != 2.0 {
		t.Fatalf("expected overlap merge gap 2.0 in sample, got %v", cfg.Planner.Overlap.MergeGap)
	}
	if cfg.Planner.Compact.MaxTimeDiff != 10 || cfg.Planner.Compact.TimeWeight != 0.7 {
		t.Fatalf("unexpected compact section in sample: %+v", cfg.Planner.Compact)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown strategy", func(c *config.Config) { c.Planner.Strategy = "fastest" }},
		{"unknown similarity", func(c *config.Config) { c.Planner.Similarity = "fuzzy" }},
		{"threshold above one", func(c *config.Config) { c.Planner.Align.MatchThreshold = 1.2 }},
		{"negative threshold", func(c *config.Config) { c.Planner.Gap.MatchThreshold = -0.1 }},
		{"negative window", func(c *config.Config) { c.Planner.Cumulative.WindowRadius = -1 }},
		{"negative merge gap", func(c *config.Config) { c.Planner.MergeGap = -1 }},
		{"zero compact cutoff", func(c *config.Config) { c.Planner.Compact.MaxTimeDiff = 0 }},
		{"compact weight above one", func(c *config.Config) { c.Planner.Compact.TimeWeight = 1.5 }},
		{"unknown mode", func(c *config.Config) { c.Extraction.Mode = "lossy" }},
		{"zero workers", func(c *config.Config) { c.Extraction.Workers = 0 }},
		{"zero segment timeout", func(c *config.Config) { c.Extraction.SegmentTimeout = 0 }},
		{"zero concat timeout", func(c *config.Config) { c.Extraction.ConcatTimeout = 0 }},
		{"negative sentinel", func(c *config.Config) { c.Extraction.MinSegmentBytes = -5 }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"empty work dir", func(c *config.Config) { c.Paths.WorkDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", dir, err)
		}
	}
}
