package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"subsplice/internal/cue"
	"subsplice/internal/planner"
	"subsplice/internal/services"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var encoding string
	var jsonOutput bool
	var limit int

	cmd := &cobra.Command{
		Use:   "analyze <original.srt> <new.srt>",
		Short: "Compare cue timing position by position",
		Long: "Pair cue i of the original track with cue i of the new track and report how far\n" +
			"the timings drift. Useful for picking a strategy and merge gap before planning.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := loadForAnalysis(args[0], encoding)
			if err != nil {
				return err
			}
			updated, err := loadForAnalysis(args[1], encoding)
			if err != nil {
				return err
			}
			analysis := planner.Analyze(original.Track, updated.Track)
			if jsonOutput {
				return writeJSON(cmd, analysis)
			}
			printAnalysis(cmd.OutOrStdout(), analysis, limit)
			return nil
		},
	}
	cmd.Flags().StringVar(&encoding, "encoding", "", "Force subtitle charset; detected when empty")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the analysis as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Rows of per-cue detail to print (0 for all)")
	return cmd
}

func loadForAnalysis(path, encoding string) (cue.LoadResult, error) {
	res, err := cue.Load(path, cue.LoadOptions{Encoding: encoding})
	if err != nil {
		return res, services.Wrap(services.ErrInvalidInput, "analyze", "load subtitle", path, err)
	}
	if len(res.Track) == 0 {
		return res, services.Wrap(services.ErrInvalidInput, "analyze", "load subtitle", path+": no cues", nil)
	}
	return res, nil
}

func printAnalysis(w io.Writer, a planner.Analysis, limit int) {
	fmt.Fprintln(w, renderTable(
		[]string{"Track", "Cues", "Ends at", "Speech", "Avg cue", "Avg gap"},
		[][]string{
			{"original", strconv.Itoa(a.Original.Count), formatClock(a.Original.EndTime), formatDuration(a.Original.Speech), formatSeconds(a.Original.Duration.Avg), formatSeconds(a.Original.Gap.Avg)},
			{"new", strconv.Itoa(a.New.Count), formatClock(a.New.EndTime), formatDuration(a.New.Speech), formatSeconds(a.New.Duration.Avg), formatSeconds(a.New.Gap.Avg)},
		},
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight},
	))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Compared %d cue pairs\n", a.Compared)
	fmt.Fprintln(w, renderTable(
		[]string{"Offset", "Min", "Max", "Avg"},
		[][]string{
			spreadRow("start", a.StartOffset),
			spreadRow("end", a.EndOffset),
			spreadRow("duration", a.DurationOffset),
		},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))

	details := a.Details
	if limit > 0 && len(details) > limit {
		details = details[:limit]
	}
	if len(details) > 0 {
		rows := make([][]string, 0, len(details))
		for _, d := range details {
			rows = append(rows, []string{
				strconv.Itoa(d.Index),
				truncate(d.NewText, 28),
				formatSigned(d.StartDiff),
				formatSigned(d.EndDiff),
				formatSigned(d.DurationDiff),
			})
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderTable(
			[]string{"#", "New text", "Start", "End", "Duration"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
		))
		if hidden := len(a.Details) - len(details); hidden > 0 {
			fmt.Fprintf(w, "(%d more rows, use --limit 0)\n", hidden)
		}
	}

	rec := a.Recommendation
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Suggested merge gap: %.1fs (confidence %s)\n", rec.MergeGap, rec.Confidence)
	fmt.Fprintf(w, "Pacing: %s\n", rec.Pacing)
}

func spreadRow(label string, s planner.Spread) []string {
	return []string{label, formatSigned(s.Min), formatSigned(s.Max), formatSigned(s.Avg)}
}
