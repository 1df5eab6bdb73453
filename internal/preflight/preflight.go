package preflight

import (
	"context"
	"strings"

	"subsplice/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config. Directories
// are created first so a fresh install passes.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	_ = cfg.EnsureDirectories()

	var results []Result
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckFreeSpace("Work disk space", cfg.Paths.WorkDir, minFreeBytes))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckBinaries(ctx, cfg)...)
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
