package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusPlanning   Status = "planning"
	StatusExtracting Status = "extracting"
	StatusAssembling Status = "assembling"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// InterruptedReason is the error message recorded on jobs reset at startup.
const InterruptedReason = "Interrupted before completion"

var allStatuses = []Status{
	StatusQueued,
	StatusPlanning,
	StatusExtracting,
	StatusAssembling,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// forward lists the single legal successor of each in-flight status.
var forward = map[Status]Status{
	StatusQueued:     StatusPlanning,
	StatusPlanning:   StatusExtracting,
	StatusExtracting: StatusAssembling,
	StatusAssembling: StatusCompleted,
}

// Job is one plan-and-assemble run persisted in SQLite.
type Job struct {
	ID                int64
	RunID             string
	Status            Status
	Strategy          string
	Mode              string
	SourcePath        string
	OriginalSubtitle  string
	NewSubtitle       string
	OutputPath        string
	ReportPath        string
	ReportJSON        string
	ErrorMessage      string
	SegmentsPlanned   int
	SegmentsExtracted int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewJobParams carries the inputs recorded when a job is created.
type NewJobParams struct {
	Strategy         string
	Mode             string
	SourcePath       string
	OriginalSubtitle string
	NewSubtitle      string
	OutputPath       string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	if _, ok := statusSet[normalized]; !ok {
		return "", false
	}
	return normalized, true
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether from → to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusFailed {
		_, known := statusSet[from]
		return known
	}
	return forward[from] == to
}

// IsInFlight reports whether the job is still being processed.
func (j *Job) IsInFlight() bool {
	return j != nil && !j.Status.IsTerminal()
}
