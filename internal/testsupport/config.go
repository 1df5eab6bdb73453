package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"subsplice/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(t testing.TB, base string, cfg *config.Config)

// NewConfig returns defaults with every directory under a fresh temp dir
// and a small segment size sentinel so tiny fixture files count as real
// output.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Extraction.MinSegmentBytes = 16

	for _, opt := range opts {
		opt(t, base, &cfg)
	}
	return &cfg
}

// WithStrategy overrides the default planner strategy.
func WithStrategy(name string) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Planner.Strategy = name
	}
}

// WithStubbedBinaries points tools.ffmpeg and tools.ffprobe at shell stubs
// that print a version banner and exit 0.
func WithStubbedBinaries() ConfigOption {
	return func(t testing.TB, base string, cfg *config.Config) {
		binDir := filepath.Join(base, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			t.Fatalf("mkdir bin dir: %v", err)
		}
		stub := func(name string) string {
			target := filepath.Join(binDir, name)
			script := "#!/bin/sh\necho \"" + name + " version 7.1-stub\"\n"
			if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
			return target
		}
		cfg.Tools.FFmpeg = stub("ffmpeg")
		cfg.Tools.FFprobe = stub("ffprobe")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
