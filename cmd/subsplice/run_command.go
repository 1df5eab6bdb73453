package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"subsplice/internal/assembly"
	"subsplice/internal/logging"
	"subsplice/internal/preflight"
	"subsplice/internal/services"
	"subsplice/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags
	var mode string
	var output string
	var workers int
	var noSubtitle bool
	var noProgress bool
	var skipChecks bool

	cmd := &cobra.Command{
		Use:   "run <video> <original.srt> <new.srt>",
		Short: "Plan, extract and assemble a re-cut video",
		Long: "Match the new subtitle track against the original, cut the matched spans out of\n" +
			"the video with ffmpeg and concatenate them into a single output file. The plan\n" +
			"report is written next to the output as <output>.report.json.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			flags.apply(ctx, cmd)
			if cmd.Flags().Changed("workers") {
				if workers < 1 {
					return services.Wrap(services.ErrInvalidInput, "run", "flags", "--workers must be at least 1", nil)
				}
				cfg.Extraction.Workers = workers
			}
			stderr := cmd.ErrOrStderr()

			if !skipChecks {
				if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
					colorize := shouldColorize(stderr)
					for _, r := range failed {
						fmt.Fprintln(stderr, renderCheck(r, colorize))
					}
					return services.Wrap(services.ErrConfiguration, "run", "preflight",
						fmt.Sprintf("%d preflight checks failed (see `subsplice doctor`)", len(failed)), nil)
				}
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			if store != nil {
				if n, err := store.ResetStuck(cmd.Context()); err != nil {
					logging.WarnWithContext(ctx.loggerValue(), "reset interrupted jobs failed", "job_reset_failed", logging.Error(err))
				} else if n > 0 {
					fmt.Fprintf(stderr, "Marked %d interrupted job(s) as failed\n", n)
				}
			}

			bar := newSegmentBar(stderr, noProgress)
			req := workflow.Request{
				PlanRequest: workflow.PlanRequest{
					VideoPath:        args[0],
					OriginalSubtitle: args[1],
					NewSubtitle:      args[2],
					Strategy:         flags.strategy,
					Encoding:         flags.encoding,
				},
				OutputPath:    output,
				Mode:          mode,
				WriteSubtitle: !noSubtitle,
				Progress:      bar.update,
			}
			out, err := ctx.runner(store).Run(cmd.Context(), req)
			bar.finish()
			printRunSummary(cmd.OutOrStdout(), out, err)
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Extraction mode: copy or reencode (default extraction.mode)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output video path (default <output_dir>/<video>-<strategy>.<container>)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Parallel ffmpeg extractions (default extraction.workers)")
	cmd.Flags().BoolVar(&noSubtitle, "no-subtitle", false, "Do not write the new subtitle track next to the output")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip directory and binary preflight checks")
	return cmd
}

// segmentBar drives a progress bar from orchestrator callbacks. Callbacks
// arrive from worker goroutines but are serialized by the orchestrator.
type segmentBar struct {
	bar *progressbar.ProgressBar
	w   io.Writer
	off bool
}

func newSegmentBar(w io.Writer, disabled bool) *segmentBar {
	file, ok := w.(*os.File)
	if disabled || !ok || !shouldColorize(file) {
		return &segmentBar{w: w, off: true}
	}
	return &segmentBar{w: w}
}

func (b *segmentBar) update(p assembly.Progress) {
	if b.off {
		return
	}
	if b.bar == nil {
		b.bar = progressbar.NewOptions(p.Total,
			progressbar.OptionSetWriter(b.w),
			progressbar.OptionSetDescription("extracting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetPredictTime(true),
		)
	}
	_ = b.bar.Set(p.Done)
}

func (b *segmentBar) finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

func printRunSummary(w io.Writer, out workflow.Outcome, runErr error) {
	if out.RunID == "" {
		return
	}
	if out.Plan.Report.Strategy != "" {
		printReportSummary(w, out.Plan.Report)
	}
	a := out.Assembly
	if a.Planned > 0 {
		fmt.Fprintf(w, "Extracted:  %d/%d segments (%d dropped), %s of video\n",
			a.Extracted, a.Planned, a.Failed+a.Skipped, formatDuration(a.ExtractedDuration))
	}
	if runErr == nil {
		fmt.Fprintf(w, "Output:     %s (%s)\n", out.OutputPath, formatBytes(a.OutputBytes))
		if out.SubtitlePath != "" {
			fmt.Fprintf(w, "Subtitle:   %s\n", out.SubtitlePath)
		}
	}
	if out.Plan.Report.Strategy != "" {
		fmt.Fprintf(w, "Report:     %s\n", out.ReportPath)
	}
	if out.LogPath != "" {
		fmt.Fprintf(w, "Log:        %s\n", out.LogPath)
	}
	if out.JobID > 0 {
		fmt.Fprintf(w, "Job:        #%d\n", out.JobID)
	}
	if runErr != nil && len(droppedSegments(a)) > 0 {
		fmt.Fprintf(w, "Dropped:    %s\n", strings.Join(droppedSegments(a), ", "))
	}
}

func droppedSegments(a assembly.Outcome) []string {
	var out []string
	for _, s := range a.Segments {
		if s.Status == assembly.SegmentExtracted {
			continue
		}
		out = append(out, fmt.Sprintf("#%d %s", s.Index, s.Status))
	}
	return out
}
