package services_test

import (
	"errors"
	"strings"
	"testing"

	"subsplice/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "assembly", "concat", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"assembly", "concat", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrInvalidInput, "", "", "", nil)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "run failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestIsFatalAndKind(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
		kind  string
	}{
		{"nil", nil, false, ""},
		{"no match", services.Wrap(services.ErrNoMatchFound, "planning", "match", "cue 3", nil), false, "no_match"},
		{"segment", services.Wrap(services.ErrSegmentExtraction, "extracting", "segment 1", "too small", nil), false, "segment_extraction_failed"},
		{"no segments", services.Wrap(services.ErrNoSegmentsExtracted, "extracting", "", "", nil), true, "no_segments_extracted"},
		{"assembly", services.Wrap(services.ErrAssemblyFailed, "assembling", "concat", "", errors.New("exit 1")), true, "assembly_failed"},
		{"invalid", services.Wrap(services.ErrInvalidInput, "planning", "", "empty track", nil), true, "invalid_input"},
		{"plain", errors.New("other"), true, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.IsFatal(tt.err); got != tt.fatal {
				t.Fatalf("IsFatal got %v want %v", got, tt.fatal)
			}
			if got := services.Kind(tt.err); got != tt.kind {
				t.Fatalf("Kind got %q want %q", got, tt.kind)
			}
		})
	}
}
