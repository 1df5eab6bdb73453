package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subsplice/internal/config"
	"subsplice/internal/planner"
	"subsplice/internal/workflow"
)

type planFlags struct {
	strategy string
	duration float64
	video    string
	encoding string
	merge    bool
	mergeGap float64
	token    bool
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "Planning strategy: "+strategyNames())
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "Force subtitle charset (e.g. gbk, utf-16le); detected when empty")
	cmd.Flags().BoolVar(&f.merge, "merge", false, "Merge segments separated by less than --merge-gap (merged segments keep source timing, dropping cumulative/remap retiming)")
	cmd.Flags().Float64Var(&f.mergeGap, "merge-gap", 0, "Gap in seconds for --merge (default planner.merge_gap)")
	cmd.Flags().BoolVar(&f.token, "token-similarity", false, "Match on word tokens instead of character runs")
}

// apply folds CLI overrides into the planner configuration.
func (f *planFlags) apply(ctx *commandContext, cmd *cobra.Command) {
	cfg := ctx.configValue()
	if f.merge {
		cfg.Planner.Merge = true
	}
	if cmd.Flags().Changed("merge-gap") && f.mergeGap >= 0 {
		cfg.Planner.MergeGap = f.mergeGap
	}
	if f.token {
		cfg.Planner.Similarity = config.SimilarityToken
	}
}

func strategyNames() string {
	names := make([]string, 0, len(planner.Strategies()))
	for _, s := range planner.Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags planFlags
	var jsonOutput bool
	var showCues bool

	cmd := &cobra.Command{
		Use:   "plan <original.srt> <new.srt>",
		Short: "Compute a segment plan without touching media",
		Long: "Match every cue of the new subtitle track against the original track and print\n" +
			"the resulting segment plan. Pass --duration, or --video to probe it with ffprobe.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(ctx, cmd)
			out, err := ctx.runner(nil).Plan(cmd.Context(), workflow.PlanRequest{
				OriginalSubtitle: args[0],
				NewSubtitle:      args[1],
				VideoPath:        flags.video,
				VideoDuration:    flags.duration,
				Strategy:         flags.strategy,
				Encoding:         flags.encoding,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, struct {
					Report   planner.RunReport     `json:"report"`
					Segments []planner.SegmentPlan `json:"segments"`
				}{out.Result.Report, out.Result.Segments})
			}
			w := cmd.OutOrStdout()
			printReportSummary(w, out.Result.Report)
			fmt.Fprintln(w)
			fmt.Fprintln(w, renderSegmentTable(out.Result.Segments))
			if showCues {
				fmt.Fprintln(w)
				fmt.Fprintln(w, renderCueTable(out.Result.Report.PerCueLog))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64VarP(&flags.duration, "duration", "d", 0, "Source video duration in seconds")
	cmd.Flags().StringVar(&flags.video, "video", "", "Source video to probe for its duration")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	cmd.Flags().BoolVar(&showCues, "cues", false, "Also print the per-cue decision log")
	return cmd
}

func printReportSummary(w io.Writer, r planner.RunReport) {
	fmt.Fprintf(w, "Strategy:   %s (%s)\n", r.Strategy, r.Strategy.Description())
	fmt.Fprintf(w, "Matched:    %d/%d new cues (%s), %d unmatched\n", r.MatchedCount, r.TotalNewCues, formatPercent(r.MatchRate), r.UnmatchedCount)
	fmt.Fprintf(w, "Segments:   %d, %s planned of %s source\n", r.SegmentCount, formatDuration(r.PlannedDuration), formatDuration(r.VideoDuration))
	if r.MergedSegmentCount != nil {
		fmt.Fprintf(w, "Merged:     %d segments folded into neighbours\n", *r.MergedSegmentCount)
	}
	switch {
	case r.TimeSaved != nil:
		fmt.Fprintf(w, "Offset:     %ss cumulative, %s saved\n", formatSigned(derefFloat(r.CumulativeOffset)), formatDuration(*r.TimeSaved))
	case r.CumulativeOffset != nil:
		fmt.Fprintf(w, "Offset:     %ss cumulative, %d cues adjusted\n", formatSigned(*r.CumulativeOffset), derefInt(r.AdjustedCount))
	}
	if r.DurationDelta != nil {
		fmt.Fprintf(w, "New track:  %s, planned delta %ss\n", formatDuration(derefFloat(r.NewTrackDuration)), formatSigned(*r.DurationDelta))
	}
}

func renderSegmentTable(segments []planner.SegmentPlan) string {
	rows := make([][]string, 0, len(segments))
	for i, s := range segments {
		rows = append(rows, []string{
			strconv.Itoa(i),
			formatClock(s.SourceStart),
			formatClock(s.SourceEnd),
			formatSeconds(s.Duration()),
			formatClock(s.TargetStart),
			formatClock(s.TargetEnd),
		})
	}
	return renderTable(
		[]string{"#", "Source start", "Source end", "Length", "Target start", "Target end"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func renderCueTable(entries []planner.CueLogEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		matched := "-"
		if e.Accepted() && e.MatchedOriginalIndex != nil {
			matched = strconv.Itoa(*e.MatchedOriginalIndex)
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Index),
			truncate(e.NewText, 32),
			matched,
			fmt.Sprintf("%.2f", e.Similarity),
			e.Status,
		})
	}
	return renderTable(
		[]string{"New", "Text", "Original", "Score", "Status"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
