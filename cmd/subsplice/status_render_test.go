package main

import (
	"strings"
	"testing"

	"subsplice/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "/usr/bin/ffmpeg", false)
	if !strings.HasPrefix(got, statusIndent+"FFmpeg:") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if !strings.HasSuffix(got, "[OK] /usr/bin/ffmpeg") {
		t.Fatalf("unexpected suffix: %q", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("unexpected ANSI codes: %q", got)
	}
}

func TestRenderStatusLineColor(t *testing.T) {
	got := renderStatusLine("Output directory", statusError, "not writable", true)
	if !strings.HasPrefix(got, ansiRed) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected red wrapping, got %q", got)
	}
}

func TestRenderCheck(t *testing.T) {
	pass := renderCheck(preflight.Result{Name: "Work directory", Passed: true, Detail: "/tmp/work"}, false)
	if !strings.Contains(pass, "[OK] /tmp/work") {
		t.Fatalf("unexpected pass line: %q", pass)
	}
	fail := renderCheck(preflight.Result{Name: "FFmpeg", Detail: "not found"}, false)
	if !strings.Contains(fail, "[ERROR] not found") {
		t.Fatalf("unexpected fail line: %q", fail)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	if !strings.Contains(out, "only") {
		t.Fatalf("missing cell: %s", out)
	}
	if empty := renderTable([]string{"A"}, nil, nil); !strings.Contains(empty, "(none)") {
		t.Fatalf("expected empty marker: %s", empty)
	}
}

func TestRenderTableKeepsHeaderCase(t *testing.T) {
	out := renderTable([]string{"Source start", "Length"}, nil, nil)
	if !strings.Contains(out, "Source start") || strings.Contains(out, "SOURCE START") {
		t.Fatalf("header case changed: %s", out)
	}
	if strings.Contains(out, "(NONE)") || !strings.Contains(out, "(none)") {
		t.Fatalf("empty marker should be a plain row: %s", out)
	}
}
