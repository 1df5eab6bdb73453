package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"subsplice/internal/logging"
	"subsplice/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove work directories and run logs left by interrupted runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()
			maxAge := cfg.StaleWorkAge()
			if cmd.Flags().Changed("older-than") {
				maxAge = olderThan
			}

			active, err := activeRuns(cmd, ctx)
			if err != nil {
				return err
			}

			if dryRun {
				dirs, err := staging.ListDirectories(cfg.Paths.WorkDir)
				if err != nil {
					return err
				}
				cutoff := time.Now().Add(-maxAge)
				var rows [][]string
				for _, dir := range dirs {
					action := "keep"
					if _, running := active[dir.RunID]; !running && dir.ModTime.Before(cutoff) {
						action = "remove"
					}
					rows = append(rows, []string{dir.Name, formatBytes(dir.Size), formatAge(dir.ModTime), action})
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No run directories")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Directory", "Size", "Modified", "Action"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			}

			logger := ctx.loggerValue()
			result := staging.CleanStale(cmd.Context(), cfg.Paths.WorkDir, maxAge, active, logger)
			for _, path := range result.Removed {
				fmt.Fprintf(out, "Removed %s\n", path)
			}
			for _, e := range result.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to remove %s: %v\n", e.Path, e.Err)
			}
			logs := logging.CleanupOldLogs(logger, filepath.Join(cfg.Paths.LogDir, "runs"), "*.log", maxAge)
			fmt.Fprintf(out, "Removed %d run directories and %d run logs (%d kept)\n",
				len(result.Removed), len(logs), len(result.Kept))
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d run directories could not be removed", len(result.Failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "List run directories without removing anything")
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Override jobs.stale_work_hours (e.g. 30m, 12h)")
	return cmd
}

// activeRuns returns the run ids of jobs still in flight. Without a job
// store every run directory is a candidate.
func activeRuns(cmd *cobra.Command, ctx *commandContext) (map[string]struct{}, error) {
	active := make(map[string]struct{})
	store, err := ctx.openStore()
	if err != nil || store == nil {
		return active, err
	}
	jobs, err := store.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		if job.IsInFlight() {
			active[job.RunID] = struct{}{}
		}
	}
	return active, nil
}
