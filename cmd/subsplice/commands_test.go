package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subsplice/internal/queue"
	"subsplice/internal/services"
	"subsplice/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting an existing file")
	}
}

func TestConfigShowPrintsTOML(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[planner]")
	requireContains(t, out, env.cfg.Paths.WorkDir)
}

func TestPlanCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)
	original, updated := writeTracks(t, env.baseDir)

	out, _, err := runCLI(t, []string{"plan", original, updated, "--duration", "60", "--cues"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "Strategy:   gap")
	requireContains(t, out, "Matched:    2/2")
	requireContains(t, out, "Source start")
	requireContains(t, out, "We leave at dawn")
}

func TestPlanCommandCompactReportsTimeSaved(t *testing.T) {
	env := setupCLITestEnv(t)
	original, updated := writeTracks(t, env.baseDir)

	out, _, err := runCLI(t, []string{"plan", original, updated, "--duration", "60", "-s", "compact"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "Strategy:   compact")
	requireContains(t, out, "Matched:    2/2")
	// The second new cue runs 0.5s longer than the original it lands on.
	requireContains(t, out, "Offset:     -0.500s cumulative, 500ms saved")
}

func TestPlanCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	original, updated := writeTracks(t, env.baseDir)

	out, _, err := runCLI(t, []string{"plan", original, updated, "-d", "60", "--strategy", "remap", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	var payload struct {
		Report struct {
			Strategy     string `json:"strategy"`
			MatchedCount int    `json:"matchedCount"`
		} `json:"report"`
		Segments []struct {
			SourceStart float64 `json:"sourceStart"`
		} `json:"segments"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode plan json: %v\n%s", err, out)
	}
	if payload.Report.Strategy != "remap" || payload.Report.MatchedCount != 2 {
		t.Fatalf("unexpected report: %+v", payload.Report)
	}
	if len(payload.Segments) != 2 || payload.Segments[1].SourceStart != 10 {
		t.Fatalf("unexpected segments: %+v", payload.Segments)
	}
}

func TestPlanCommandRejectsUnknownStrategy(t *testing.T) {
	env := setupCLITestEnv(t)
	original, updated := writeTracks(t, env.baseDir)

	_, _, err := runCLI(t, []string{"plan", original, updated, "-d", "60", "-s", "shuffle"}, env.configPath)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if code := exitCode(err); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	original, updated := writeTracks(t, env.baseDir)

	out, _, err := runCLI(t, []string{"analyze", original, updated}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "Compared 2 cue pairs")
	requireContains(t, out, "Suggested merge gap")

	out, _, err = runCLI(t, []string{"analyze", original, updated, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("analyze --json: %v", err)
	}
	var payload struct {
		Compared int `json:"compared"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil || payload.Compared != 2 {
		t.Fatalf("unexpected analysis json (%v): %s", err, out)
	}
}

func TestJobsCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"jobs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "No jobs recorded")

	store := testsupport.MustOpenStore(t, env.cfg)
	job := testsupport.NewJob(t, store, "gap")
	if err := store.Transition(context.Background(), job, queue.StatusFailed, "ffmpeg exploded"); err != nil {
		t.Fatalf("transition: %v", err)
	}

	out, _, err = runCLI(t, []string{"jobs", "list", "--status", "failed"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "failed")

	out, _, err = runCLI(t, []string{"jobs", "show", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs show: %v", err)
	}
	requireContains(t, out, "ffmpeg exploded")
	requireContains(t, out, "no report recorded")

	if _, _, err := runCLI(t, []string{"jobs", "list", "--status", "bogus"}, env.configPath); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid status error, got %v", err)
	}

	out, _, err = runCLI(t, []string{"jobs", "clear", "--failed"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 failed jobs")

	if _, _, err := runCLI(t, []string{"jobs", "show", "1"}, env.configPath); err == nil {
		t.Fatal("expected missing job error")
	}
}

func TestCleanCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	stale := filepath.Join(env.cfg.Paths.WorkDir, "run-stale")
	fresh := filepath.Join(env.cfg.Paths.WorkDir, "run-fresh")
	testsupport.WriteFile(t, filepath.Join(stale, "segment_0000.mp4"), 64)
	testsupport.WriteFile(t, filepath.Join(fresh, "segment_0000.mp4"), 64)
	past := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	out, _, err := runCLI(t, []string{"clean", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("clean --dry-run: %v", err)
	}
	requireContains(t, out, "run-stale")
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("dry run removed directory: %v", err)
	}

	out, _, err = runCLI(t, []string{"clean"}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Removed 1 run directories")
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale dir removed, stat err = %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("expected fresh dir kept: %v", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.Wrap(services.ErrInvalidInput, "planning", "x", "bad", nil), 2},
		{services.Wrap(services.ErrNoMatchFound, "planning", "x", "none", nil), 3},
		{services.Wrap(services.ErrNoSegmentsExtracted, "extracting", "x", "none", nil), 3},
		{services.Wrap(services.ErrCanceled, "extracting", "x", "stop", context.Canceled), 130},
		{errors.New("boom"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo world", 5); got != "héll…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if strings.Contains(formatDuration(0), "-") {
		t.Fatal("formatDuration should not go negative")
	}
}
