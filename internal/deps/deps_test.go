package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"subsplice/internal/config"
)

func TestCheck(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\necho \"present version 6.1\"\necho second line\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present, VersionArgs: []string{"-version"}},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	}

	results := Check(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Version != "present version 6.1" {
		t.Fatalf("version = %q", results[0].Version)
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}

	missing := MissingRequired(results)
	if len(missing) != 1 || missing[0] != "Missing" {
		t.Fatalf("MissingRequired = %v", missing)
	}
}

func TestMediaRequirementsFollowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.FFmpeg = "/opt/ffmpeg/bin/ffmpeg"
	reqs := MediaRequirements(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected ffmpeg and ffprobe, got %d", len(reqs))
	}
	if reqs[0].Command != "/opt/ffmpeg/bin/ffmpeg" || reqs[1].Command != "ffprobe" {
		t.Fatalf("unexpected commands: %+v", reqs)
	}
	for _, req := range reqs {
		if req.Optional {
			t.Fatalf("%s should be required", req.Name)
		}
	}
}
