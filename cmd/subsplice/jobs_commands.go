package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subsplice/internal/queue"
	"subsplice/internal/services"
	"subsplice/internal/workflow"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and prune the job history",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsStatsCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))
	jobsCmd.AddCommand(newJobsRemoveCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(listStatuses)
			if err != nil {
				return err
			}
			store, err := ctx.requireStore()
			if err != nil {
				return err
			}
			jobs, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, jobs)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Video", "Strategy", "Status", "Segments", "Created"},
				buildJobRows(jobs),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by job status (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit jobs as JSON")
	return cmd
}

func parseStatuses(values []string) ([]queue.Status, error) {
	var statuses []queue.Status
	for _, v := range values {
		status, ok := queue.ParseStatus(v)
		if !ok {
			return nil, services.Wrap(services.ErrInvalidInput, "jobs", "parse status",
				fmt.Sprintf("unknown status %q", v), nil)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func buildJobRows(jobs []*queue.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		segments := "-"
		if job.SegmentsPlanned > 0 {
			segments = fmt.Sprintf("%d/%d", job.SegmentsExtracted, job.SegmentsPlanned)
		}
		rows = append(rows, []string{
			strconv.FormatInt(job.ID, 10),
			truncate(filepath.Base(job.SourcePath), 36),
			job.Strategy,
			string(job.Status),
			segments,
			formatAge(job.CreatedAt),
		})
	}
	return rows
}

func newJobsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count jobs by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireStore()
			if err != nil {
				return err
			}
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(stats) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}
			colorize := shouldColorize(out)
			for _, status := range queue.AllStatuses() {
				if count, ok := stats[status]; ok {
					fmt.Fprintln(out, renderStatusLine(string(status), jobStatusKind(status), strconv.Itoa(count), colorize))
				}
			}
			return nil
		},
	}
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job with its plan report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := lookupJob(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			doc, docErr := jobDocument(job)
			if jsonOutput {
				return writeJSON(cmd, struct {
					Job    *queue.Job         `json:"job"`
					Report *workflow.Document `json:"report,omitempty"`
				}{job, doc})
			}
			printJob(cmd.OutOrStdout(), job)
			if doc != nil {
				fmt.Fprintln(cmd.OutOrStdout())
				printReportSummary(cmd.OutOrStdout(), doc.Report)
			} else if docErr != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Report:     unavailable (%v)\n", docErr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the job as JSON")
	return cmd
}

func lookupJob(cmd *cobra.Command, ctx *commandContext, arg string) (*queue.Job, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 64)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "jobs", "parse id", fmt.Sprintf("invalid job id %q", arg), nil)
	}
	store, err := ctx.requireStore()
	if err != nil {
		return nil, err
	}
	job, err := store.GetByID(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrInvalidInput, "jobs", "lookup", fmt.Sprintf("job %d not found", id), nil)
	}
	return job, nil
}

// jobDocument prefers the report file and falls back to the copy stored
// with the job when the file was moved or deleted.
func jobDocument(job *queue.Job) (*workflow.Document, error) {
	if strings.TrimSpace(job.ReportPath) != "" {
		if doc, err := workflow.ReadDocument(job.ReportPath); err == nil {
			return &doc, nil
		}
	}
	if strings.TrimSpace(job.ReportJSON) == "" {
		return nil, fmt.Errorf("no report recorded")
	}
	var doc workflow.Document
	if err := json.Unmarshal([]byte(job.ReportJSON), &doc); err != nil {
		return nil, fmt.Errorf("decode stored report: %w", err)
	}
	return &doc, nil
}

func printJob(w io.Writer, job *queue.Job) {
	fmt.Fprintf(w, "Job:        #%d (%s)\n", job.ID, job.RunID)
	fmt.Fprintf(w, "Status:     %s\n", job.Status)
	fmt.Fprintf(w, "Video:      %s\n", job.SourcePath)
	fmt.Fprintf(w, "Subtitles:  %s -> %s\n", job.OriginalSubtitle, job.NewSubtitle)
	fmt.Fprintf(w, "Mode:       %s\n", job.Mode)
	if job.OutputPath != "" {
		fmt.Fprintf(w, "Output:     %s\n", job.OutputPath)
	}
	if job.SegmentsPlanned > 0 {
		fmt.Fprintf(w, "Extracted:  %d/%d segments\n", job.SegmentsExtracted, job.SegmentsPlanned)
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:      %s\n", job.ErrorMessage)
	}
	fmt.Fprintf(w, "Created:    %s (%s)\n", job.CreatedAt.Local().Format("2006-01-02 15:04:05"), formatAge(job.CreatedAt))
	fmt.Fprintf(w, "Updated:    %s\n", formatAge(job.UpdatedAt))
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed jobs (or failed jobs with --failed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireStore()
			if err != nil {
				return err
			}
			label := "completed"
			clear := store.ClearCompleted
			if clearFailed {
				label = "failed"
				clear = store.ClearFailed
			}
			removed, err := clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s jobs\n", removed, label)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Clear failed jobs instead of completed ones")
	return cmd
}

func newJobsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete one job record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := lookupJob(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			if job.IsInFlight() {
				return services.Wrap(services.ErrInvalidInput, "jobs", "remove",
					fmt.Sprintf("job %d is %s; wait for it to finish", job.ID, job.Status), nil)
			}
			store, err := ctx.requireStore()
			if err != nil {
				return err
			}
			if _, err := store.Remove(cmd.Context(), job.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed job %d\n", job.ID)
			return nil
		},
	}
}
