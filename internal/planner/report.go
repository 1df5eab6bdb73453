package planner

// Interval is a half-open time range in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End - Start.
func (i Interval) Duration() float64 {
	return i.End - i.Start
}

// SegmentPlan maps a source video interval to its place on the output
// timeline. Strategies that keep the original pacing set the target equal
// to the source; the output order is then the slice order.
type SegmentPlan struct {
	SourceStart float64 `json:"sourceStart"`
	SourceEnd   float64 `json:"sourceEnd"`
	TargetStart float64 `json:"targetStart"`
	TargetEnd   float64 `json:"targetEnd"`
}

// Duration returns the source interval length.
func (s SegmentPlan) Duration() float64 {
	return s.SourceEnd - s.SourceStart
}

// Source returns the source interval.
func (s SegmentPlan) Source() Interval {
	return Interval{Start: s.SourceStart, End: s.SourceEnd}
}

// Target returns the target interval.
func (s SegmentPlan) Target() Interval {
	return Interval{Start: s.TargetStart, End: s.TargetEnd}
}

// Per-cue statuses recorded in the report log.
const (
	StatusMatched         = "matched"
	StatusAdjusted        = "adjusted"
	StatusUnmatched       = "unmatched"
	StatusInvalidInterval = "invalid_interval"
)

// CueLogEntry records the decision taken for one new cue.
type CueLogEntry struct {
	Index                int       `json:"index"`
	NewText              string    `json:"newText"`
	MatchedOriginalIndex *int      `json:"matchedOriginalIndex"`
	OriginalText         string    `json:"originalText,omitempty"`
	Similarity           float64   `json:"similarity"`
	SourceInterval       *Interval `json:"sourceInterval,omitempty"`
	TargetInterval       *Interval `json:"targetInterval,omitempty"`
	Status               string    `json:"status"`
	TimeDiff             *float64  `json:"timeDiff,omitempty"`
	CumulativeOffset     *float64  `json:"cumulativeOffset,omitempty"`
	DurationDiff         *float64  `json:"durationDiff,omitempty"`
}

// Accepted reports whether the entry produced a segment.
func (e CueLogEntry) Accepted() bool {
	return e.Status == StatusMatched || e.Status == StatusAdjusted
}

// RunReport summarizes one planning run. It is built once by Plan and never
// modified afterwards. Optional aggregates are set only by the strategies
// they describe.
type RunReport struct {
	Strategy          Strategy      `json:"strategy"`
	TotalNewCues      int           `json:"totalNewCues"`
	TotalOriginalCues int           `json:"totalOriginalCues"`
	MatchedCount      int           `json:"matchedCount"`
	UnmatchedCount    int           `json:"unmatchedCount"`
	MatchRate         float64       `json:"matchRate"`
	VideoDuration     float64       `json:"videoDuration"`
	SegmentCount      int           `json:"segmentCount"`
	PlannedDuration   float64       `json:"plannedDuration"`
	PerCueLog         []CueLogEntry `json:"perCueLog"`

	// Cumulative and compact strategies.
	CumulativeOffset *float64 `json:"cumulativeOffset,omitempty"`
	AdjustedCount    *int     `json:"adjustedCount,omitempty"`
	// Compact strategy: magnitude of the final duration offset.
	TimeSaved *float64 `json:"timeSaved,omitempty"`

	// Remap, gap, align and compact strategies.
	NewTrackDuration      *float64 `json:"newTrackDuration,omitempty"`
	OriginalTrackDuration *float64 `json:"originalTrackDuration,omitempty"`
	DurationDelta         *float64 `json:"durationDelta,omitempty"`

	// Set whenever a merge pass ran: number of segments folded into a
	// neighbour.
	MergedSegmentCount *int `json:"mergedSegmentCount,omitempty"`
}

func ptr[T any](v T) *T {
	return &v
}
