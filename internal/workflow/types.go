package workflow

import (
	"subsplice/internal/assembly"
	"subsplice/internal/cue"
	"subsplice/internal/planner"
)

// PlanRequest names the inputs of a planning-only run.
type PlanRequest struct {
	OriginalSubtitle string
	NewSubtitle      string
	// VideoPath is probed for the duration when VideoDuration is not set.
	VideoPath     string
	VideoDuration float64
	// Strategy overrides planner.strategy when set.
	Strategy string
	// Encoding forces the subtitle charset. Empty means detect.
	Encoding string
}

// PlanOutcome is a computed plan plus the parsed inputs.
type PlanOutcome struct {
	Original      cue.LoadResult
	New           cue.LoadResult
	VideoDuration float64
	Result        planner.Result
}

// Request describes a full plan, extract and assemble run.
type Request struct {
	PlanRequest
	// OutputPath defaults to <output_dir>/<video>-<strategy>.<container>.
	OutputPath string
	// Mode overrides extraction.mode when set.
	Mode string
	// WriteSubtitle writes the new track as a UTF-8 sidecar next to the output.
	WriteSubtitle bool
	Progress      assembly.ProgressFunc
}

// Outcome summarizes a run. Fields are filled as far as the run progressed.
type Outcome struct {
	JobID        int64
	RunID        string
	OutputPath   string
	ReportPath   string
	SubtitlePath string
	LogPath      string
	Plan         planner.Result
	Assembly     assembly.Outcome
}

// Document is the JSON written to the report path.
type Document struct {
	RunID     string                `json:"runId"`
	JobID     int64                 `json:"jobId,omitempty"`
	Video     string                `json:"video"`
	Original  string                `json:"originalSubtitle"`
	New       string                `json:"newSubtitle"`
	Output    string                `json:"output"`
	Mode      string                `json:"mode"`
	Report    planner.RunReport     `json:"report"`
	Segments  []planner.SegmentPlan `json:"segments"`
	Assembly  *assembly.Outcome     `json:"assembly,omitempty"`
	Error     string                `json:"error,omitempty"`
	ErrorKind string                `json:"errorKind,omitempty"`
}
