package workflow

import (
	"context"
	"encoding/json"
	"log/slog"

	"subsplice/internal/logging"
	"subsplice/internal/queue"
)

// jobTracker mirrors run progress into the job store. With no store every
// method is a no-op, so the runner can call it unconditionally.
type jobTracker struct {
	store *queue.Store
	job   *queue.Job
}

func (t *jobTracker) enabled() bool {
	return t != nil && t.store != nil && t.job != nil
}

func (t *jobTracker) advance(ctx context.Context, to queue.Status) error {
	if !t.enabled() {
		return nil
	}
	return t.store.Transition(ctx, t.job, to, "")
}

func (t *jobTracker) setPlanned(n int) {
	if t.enabled() {
		t.job.SegmentsPlanned = n
	}
}

func (t *jobTracker) setExtracted(n int) {
	if t.enabled() {
		t.job.SegmentsExtracted = n
	}
}

// setReport persists the report path and body on the job row.
func (t *jobTracker) setReport(ctx context.Context, path string, doc Document) {
	if !t.enabled() {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return
	}
	t.job.ReportPath = path
	t.job.ReportJSON = string(data)
	_ = t.store.Update(ctx, t.job)
}

// fail moves the job to failed.
func (t *jobTracker) fail(ctx context.Context, logger *slog.Logger, runErr error) {
	if !t.enabled() || t.job.Status.IsTerminal() {
		return
	}
	if err := t.store.Transition(ctx, t.job, queue.StatusFailed, runErr.Error()); err != nil {
		logger.Error("failed to persist job failure", logging.Error(err))
	}
}
