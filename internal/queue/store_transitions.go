package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTransition reports a lifecycle step the state machine forbids.
var ErrInvalidTransition = errors.New("invalid status transition")

// Transition moves job to the next status and persists the change. Moving to
// StatusFailed records message as the error; other targets clear it.
func (s *Store) Transition(ctx context.Context, job *Job, to Status, message string) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if !CanTransition(job.Status, to) {
		return fmt.Errorf("%w: job %d %s -> %s", ErrInvalidTransition, job.ID, job.Status, to)
	}
	prev := job.Status
	job.Status = to
	if to == StatusFailed {
		job.ErrorMessage = strings.TrimSpace(message)
	} else {
		job.ErrorMessage = ""
	}
	if err := s.Update(ctx, job); err != nil {
		job.Status = prev
		return err
	}
	return nil
}

// ResetStuck fails every job left in a non-terminal state, typically by a
// crashed or killed process. Returns the number of jobs reset.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	inFlight := []Status{StatusQueued, StatusPlanning, StatusExtracting, StatusAssembling}
	args := make([]any, 0, len(inFlight)+3)
	args = append(args, StatusFailed, InterruptedReason, formatTime(time.Now()))
	args = append(args, statusArgs(inFlight)...)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ?
         WHERE status IN (`+makePlaceholders(len(inFlight))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}
