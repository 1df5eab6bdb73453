package services

import (
	"errors"
	"fmt"
	"strings"
)

// Run-fatal markers surface to callers; per-cue and per-segment markers are
// recorded in reports and logs instead of being returned.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNoMatchFound        = errors.New("no match found")
	ErrSegmentExtraction   = errors.New("segment extraction failed")
	ErrNoSegmentsExtracted = errors.New("no segments extracted")
	ErrAssemblyFailed      = errors.New("assembly failed")
	ErrExternalTool        = errors.New("external tool error")
	ErrConfiguration       = errors.New("configuration error")
	ErrTimeout             = errors.New("timeout")
	ErrCanceled            = errors.New("canceled")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err should abort a run rather than be recorded and
// skipped.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrNoMatchFound), errors.Is(err, ErrSegmentExtraction):
		return false
	default:
		return true
	}
}

// Kind returns a short classification label for err, used in reports and job
// records.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNoSegmentsExtracted):
		return "no_segments_extracted"
	case errors.Is(err, ErrAssemblyFailed):
		return "assembly_failed"
	case errors.Is(err, ErrSegmentExtraction):
		return "segment_extraction_failed"
	case errors.Is(err, ErrNoMatchFound):
		return "no_match"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "run failure"
	}
	return strings.Join(parts, ": ")
}
