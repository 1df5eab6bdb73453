package assembly

import (
	"time"

	"subsplice/internal/planner"
)

// Segment statuses recorded in the outcome.
const (
	SegmentExtracted = "extracted"
	SegmentFailed    = "failed"
	SegmentTooSmall  = "too_small"
	SegmentTimeout   = "timeout"
	SegmentSkipped   = "skipped"
)

// Request describes one assembly run.
type Request struct {
	Plan       []planner.SegmentPlan
	SourcePath string
	// WorkDir is the parent directory; the run creates its own
	// run-<id> subdirectory inside it.
	WorkDir    string
	Mode       string
	OutputPath string
	// RunID names the work directory. Generated when empty.
	RunID string
}

// SegmentOutcome records what happened to one planned segment.
type SegmentOutcome struct {
	Index       int           `json:"index"`
	SourceStart float64       `json:"sourceStart"`
	SourceEnd   float64       `json:"sourceEnd"`
	File        string        `json:"file,omitempty"`
	Status      string        `json:"status"`
	Bytes       int64         `json:"bytes,omitempty"`
	Error       string        `json:"error,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Outcome summarizes an assembly run. It is returned alongside errors so
// callers keep the per-segment diagnostics.
type Outcome struct {
	RunID             string           `json:"runId"`
	Mode              string           `json:"mode"`
	Planned           int              `json:"planned"`
	Extracted         int              `json:"extracted"`
	Failed            int              `json:"failed"`
	Skipped           int              `json:"skipped"`
	ExtractedDuration float64          `json:"extractedDuration"`
	OutputBytes       int64            `json:"outputBytes,omitempty"`
	Segments          []SegmentOutcome `json:"segments"`
}

// Result is the output of a successful run.
type Result struct {
	OutputPath string  `json:"outputPath"`
	Outcome    Outcome `json:"outcome"`
}

// Progress is reported after each segment finishes.
type Progress struct {
	Done      int
	Total     int
	Extracted int
}

// ProgressFunc receives extraction progress. Calls are serialized.
type ProgressFunc func(Progress)
