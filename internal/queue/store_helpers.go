package queue

import (
	"database/sql"
	"strings"
	"time"
)

const jobColumns = "id, run_id, status, strategy, mode, source_path, original_subtitle, new_subtitle, output_path, report_path, report_json, error_message, segments_planned, segments_extracted, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id                int64
		runID             string
		statusStr         string
		strategy          string
		mode              string
		sourcePath        sql.NullString
		originalSubtitle  string
		newSubtitle       string
		outputPath        sql.NullString
		reportPath        sql.NullString
		reportJSON        sql.NullString
		errorMessage      sql.NullString
		segmentsPlanned   sql.NullInt64
		segmentsExtracted sql.NullInt64
		createdRaw        sql.NullString
		updatedRaw        sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&statusStr,
		&strategy,
		&mode,
		&sourcePath,
		&originalSubtitle,
		&newSubtitle,
		&outputPath,
		&reportPath,
		&reportJSON,
		&errorMessage,
		&segmentsPlanned,
		&segmentsExtracted,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:                id,
		RunID:             runID,
		Status:            Status(statusStr),
		Strategy:          strategy,
		Mode:              mode,
		SourcePath:        sourcePath.String,
		OriginalSubtitle:  originalSubtitle,
		NewSubtitle:       newSubtitle,
		OutputPath:        outputPath.String,
		ReportPath:        reportPath.String,
		ReportJSON:        reportJSON.String,
		ErrorMessage:      errorMessage.String,
		SegmentsPlanned:   int(segmentsPlanned.Int64),
		SegmentsExtracted: int(segmentsExtracted.Int64),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func statusArgs(statuses []Status) []any {
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}
	return args
}
