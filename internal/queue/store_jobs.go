package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewJob inserts a queued job with a fresh run id.
func (s *Store) NewJob(ctx context.Context, params NewJobParams) (*Job, error) {
	if strings.TrimSpace(params.OriginalSubtitle) == "" || strings.TrimSpace(params.NewSubtitle) == "" {
		return nil, errors.New("both subtitle paths are required")
	}
	if strings.TrimSpace(params.Strategy) == "" {
		return nil, errors.New("strategy is required")
	}
	timestamp := formatTime(time.Now())

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (
            run_id, status, strategy, mode, source_path, original_subtitle,
            new_subtitle, output_path, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		StatusQueued,
		params.Strategy,
		params.Mode,
		nullableString(params.SourcePath),
		params.OriginalSubtitle,
		params.NewSubtitle,
		nullableString(params.OutputPath),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier. A missing job yields (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns jobs filtered by status set (or all jobs when no status is
// provided), newest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		args = statusArgs(statuses)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Update persists the mutable fields of job. Status is written as-is; use
// Transition to move through the lifecycle.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, strategy = ?, mode = ?, source_path = ?, output_path = ?,
             report_path = ?, report_json = ?, error_message = ?,
             segments_planned = ?, segments_extracted = ?, updated_at = ?
         WHERE id = ?`,
		job.Status,
		job.Strategy,
		job.Mode,
		nullableString(job.SourcePath),
		nullableString(job.OutputPath),
		nullableString(job.ReportPath),
		nullableString(job.ReportJSON),
		nullableString(job.ErrorMessage),
		job.SegmentsPlanned,
		job.SegmentsExtracted,
		formatTime(job.UpdatedAt),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// Remove deletes a job and reports whether it existed.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
