package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subsplice/internal/config"
	"subsplice/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeTracks writes an original and a new subtitle file where the new track
// keeps two of the three original lines.
func writeTracks(t *testing.T, dir string) (string, string) {
	t.Helper()
	original := filepath.Join(dir, "original.srt")
	updated := filepath.Join(dir, "new.srt")
	testsupport.WriteSRT(t, original,
		testsupport.SRTBlock{Start: "00:00:01,000", End: "00:00:03,000", Text: "Where are you going tonight"},
		testsupport.SRTBlock{Start: "00:00:05,000", End: "00:00:07,000", Text: "Nobody expected the storm"},
		testsupport.SRTBlock{Start: "00:00:10,000", End: "00:00:12,500", Text: "We leave at dawn"},
	)
	testsupport.WriteSRT(t, updated,
		testsupport.SRTBlock{Start: "00:00:01,000", End: "00:00:03,000", Text: "Where are you going tonight"},
		testsupport.SRTBlock{Start: "00:00:03,500", End: "00:00:06,000", Text: "We leave at dawn"},
	)
	return original, updated
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
