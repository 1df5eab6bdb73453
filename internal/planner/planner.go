package planner

import (
	"fmt"
	"log/slog"
	"math"

	"subsplice/internal/config"
	"subsplice/internal/cue"
	"subsplice/internal/logging"
	"subsplice/internal/matching"
	"subsplice/internal/services"
)

// timeEpsilon absorbs float noise from millisecond SRT timestamps when
// comparing start-time differences against a threshold.
const timeEpsilon = 1e-9

// Result is the output of one planning run.
type Result struct {
	Segments []SegmentPlan
	Matches  []matching.Result
	Report   RunReport
}

// Planner runs planning strategies with a fixed configuration.
type Planner struct {
	cfg    config.Planner
	logger *slog.Logger
}

// New constructs a Planner. A nil logger discards decision logs.
func New(cfg config.Planner, logger *slog.Logger) *Planner {
	return &Planner{cfg: cfg, logger: logging.NewComponentLogger(logger, "planner")}
}

// Plan is a convenience wrapper around New(cfg, nil).Plan.
func Plan(original, updated cue.Track, videoDuration float64, strategy Strategy, cfg config.Planner) (Result, error) {
	return New(cfg, nil).Plan(original, updated, videoDuration, strategy)
}

// Plan matches every cue of updated against original and converts accepted
// matches into segments under strategy. Unmatched cues are skipped and
// recorded in the report. Each call owns its exclusion set, so the same
// Planner may serve concurrent runs.
func (p *Planner) Plan(original, updated cue.Track, videoDuration float64, strategy Strategy) (Result, error) {
	if len(original) == 0 {
		return Result{}, services.Wrap(services.ErrInvalidInput, "planning", "validate", "original track is empty", nil)
	}
	if len(updated) == 0 {
		return Result{}, services.Wrap(services.ErrInvalidInput, "planning", "validate", "new track is empty", nil)
	}
	if !(videoDuration > 0) || math.IsInf(videoDuration, 0) {
		return Result{}, services.Wrap(services.ErrInvalidInput, "planning", "validate", fmt.Sprintf("video duration must be positive, got %v", videoDuration), nil)
	}
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return Result{}, services.Wrap(services.ErrInvalidInput, "planning", "validate", err.Error(), nil)
	}

	r := newRun(p.cfg, strategy, original, updated, videoDuration, p.logger.With(logging.String(logging.FieldStrategy, string(strategy))))
	for pos, target := range updated {
		r.step(pos, target)
	}
	return r.finish(), nil
}

type run struct {
	cfg      config.Planner
	strategy Strategy
	original cue.Track
	updated  cue.Track
	duration float64
	logger   *slog.Logger

	matcher matching.Matcher
	radius  int
	anchor  int
	used    map[int]struct{}

	offset   float64
	adjusted int
	matched  int

	segments []SegmentPlan
	matches  []matching.Result
	log      []CueLogEntry
}

func newRun(cfg config.Planner, strategy Strategy, original, updated cue.Track, duration float64, logger *slog.Logger) *run {
	r := &run{
		cfg:      cfg,
		strategy: strategy,
		original: original,
		updated:  updated,
		duration: duration,
		logger:   logger,
		used:     make(map[int]struct{}, len(updated)),
		log:      make([]CueLogEntry, 0, len(updated)),
	}
	var text matching.Scorer = matching.TextScorer{}
	if cfg.Similarity == config.SimilarityToken {
		text = matching.NewTokenScorer(original)
	}
	switch strategy {
	case StrategyCumulative:
		r.matcher = matching.Matcher{Scorer: text, Threshold: cfg.Cumulative.MatchThreshold}
		r.radius = cfg.Cumulative.WindowRadius
	case StrategyRemap:
		r.matcher = matching.Matcher{Scorer: text, Threshold: cfg.Remap.MatchThreshold}
		r.radius = -1
	case StrategyGap:
		r.matcher = matching.Matcher{Scorer: text, Threshold: cfg.Gap.MatchThreshold}
		r.radius = cfg.Gap.WindowRadius
	case StrategyAlign:
		r.matcher = matching.Matcher{
			Scorer:    matching.BlendScorer{Text: text, TextWeight: cfg.Align.TextWeight, TextFloor: cfg.Align.TextFloor},
			Threshold: cfg.Align.MatchThreshold,
		}
		r.radius = cfg.Align.WindowRadius
	case StrategyOverlap:
		// Eligibility already requires more than min_overlap seconds.
		r.matcher = matching.Matcher{Scorer: matching.OverlapScorer{MinOverlap: cfg.Overlap.MinOverlap}, Threshold: 0}
		r.radius = -1
	case StrategyCompact:
		// The time cutoff bounds the search; step rebuilds the scorer with
		// the current offset.
		r.matcher = matching.Matcher{Scorer: r.proximity(), Threshold: cfg.Compact.MatchThreshold}
		r.radius = -1
	}
	return r
}

func (r *run) proximity() matching.ProximityScorer {
	return matching.ProximityScorer{
		Offset:      r.offset,
		MaxTimeDiff: r.cfg.Compact.MaxTimeDiff,
		TimeWeight:  r.cfg.Compact.TimeWeight,
	}
}

func (r *run) anchorFor(pos int) int {
	if r.strategy == StrategyCumulative {
		return pos
	}
	return r.anchor
}

func (r *run) step(pos int, target cue.Cue) {
	entry := CueLogEntry{Index: pos, NewText: target.Text, Status: StatusUnmatched}
	if r.strategy == StrategyCompact {
		r.matcher.Scorer = r.proximity()
	}

	match, ok := r.matcher.FindMatch(target, pos, r.original, r.used, r.anchorFor(pos), r.radius)
	if !ok {
		entry.Similarity = match.Score
		r.log = append(r.log, entry)
		r.logger.Debug("cue unmatched",
			logging.Int("cue", pos),
			logging.Float64("best_score", match.Score),
			logging.String(logging.FieldEventType, "cue_unmatched"),
			logging.Error(services.ErrNoMatchFound),
		)
		return
	}

	source := r.original[match.OriginalCueIndex]
	entry.MatchedOriginalIndex = ptr(match.OriginalCueIndex)
	entry.OriginalText = source.Text
	entry.Similarity = match.Score

	seg, status, timeDiff := r.convert(target, source)
	if r.strategy == StrategyCumulative {
		entry.TimeDiff = ptr(timeDiff)
	}
	if !(seg.SourceEnd > seg.SourceStart) {
		entry.Status = StatusInvalidInterval
		if r.strategy == StrategyCumulative || r.strategy == StrategyCompact {
			entry.CumulativeOffset = ptr(r.offset)
		}
		r.log = append(r.log, entry)
		r.logger.Debug("matched cue falls outside the video",
			logging.Int("cue", pos),
			logging.Int("original_cue", match.OriginalCueIndex),
			logging.Float64("source_start", seg.SourceStart),
			logging.Float64("source_end", seg.SourceEnd),
			logging.String(logging.FieldEventType, "cue_invalid_interval"),
		)
		return
	}

	r.used[match.OriginalCueIndex] = struct{}{}
	switch r.strategy {
	case StrategyGap:
		r.anchor = match.OriginalCueIndex
	case StrategyAlign:
		if match.OriginalCueIndex > r.anchor {
			r.anchor = match.OriginalCueIndex
		}
	case StrategyCumulative:
		if status == StatusAdjusted {
			r.offset += timeDiff
			r.adjusted++
		}
		entry.CumulativeOffset = ptr(r.offset)
	case StrategyCompact:
		// A new cue longer than its original moves later lookups earlier.
		diff := target.Duration() - source.Duration()
		r.offset -= diff
		entry.DurationDiff = ptr(diff)
		entry.CumulativeOffset = ptr(r.offset)
	}

	entry.Status = status
	entry.SourceInterval = ptr(seg.Source())
	entry.TargetInterval = ptr(seg.Target())
	r.matched++
	r.segments = append(r.segments, seg)
	r.matches = append(r.matches, match)
	r.log = append(r.log, entry)

	attrs := append(logging.DecisionAttrs("cue_match", status, string(r.strategy)),
		logging.Int("cue", pos),
		logging.Int("original_cue", match.OriginalCueIndex),
		logging.Float64("score", match.Score),
		logging.Float64("source_start", seg.SourceStart),
		logging.Float64("source_end", seg.SourceEnd),
	)
	r.logger.Debug("cue matched", logging.Args(attrs...)...)
}

// convert maps an accepted match to a clamped segment. The returned time
// difference is only meaningful for the cumulative strategy.
func (r *run) convert(target, source cue.Cue) (SegmentPlan, string, float64) {
	status := StatusMatched
	var (
		start, end float64
		timeDiff   float64
		retarget   = r.strategy.RetimesTarget()
	)
	switch r.strategy {
	case StrategyCumulative:
		// Raw starts are compared; the running offset is reported but does
		// not feed back into later comparisons.
		timeDiff = source.Start - target.Start
		start, end = source.Start, source.End
		if math.Abs(timeDiff) > r.cfg.Cumulative.Threshold+timeEpsilon {
			start -= timeDiff
			end -= timeDiff
			status = StatusAdjusted
		}
	case StrategyRemap:
		start = source.Start
		end = source.Start + target.Duration()
	case StrategyOverlap:
		start = math.Max(target.Start, source.Start)
		end = math.Min(target.End, source.End)
		start, end = r.clamp(start, end)
		if extra := target.Duration() - (end - start); extra > 0 {
			end += extra
		}
	default:
		start, end = source.Start, source.End
	}
	start, end = r.clamp(start, end)

	seg := SegmentPlan{SourceStart: start, SourceEnd: end, TargetStart: start, TargetEnd: end}
	if retarget {
		seg.TargetStart = target.Start
		seg.TargetEnd = target.End
	}
	return seg, status, timeDiff
}

func (r *run) clamp(start, end float64) (float64, float64) {
	return math.Max(0, start), math.Min(r.duration, end)
}

func (r *run) finish() Result {
	segments := r.segments
	var merged *int
	switch {
	case r.strategy == StrategyOverlap:
		segments = MergePlans(segments, r.cfg.Overlap.MergeGap)
		merged = ptr(len(r.segments) - len(segments))
	case r.cfg.Merge:
		segments = MergePlans(segments, r.cfg.MergeGap)
		merged = ptr(len(r.segments) - len(segments))
		if r.strategy.RetimesTarget() && len(r.segments) > 0 {
			logging.WarnWithContext(r.logger, "merge replaced retimed targets with source spans", "merge_discards_retiming",
				logging.Int("merged_segments", *merged),
				logging.String(logging.FieldImpact, "merged segments keep original pacing instead of the new track's timing"),
				logging.String(logging.FieldErrorHint, "drop --merge to keep per-cue retiming"),
			)
		}
	}
	if segments == nil {
		segments = []SegmentPlan{}
	}

	total := len(r.updated)
	report := RunReport{
		Strategy:           r.strategy,
		TotalNewCues:       total,
		TotalOriginalCues:  len(r.original),
		MatchedCount:       r.matched,
		UnmatchedCount:     total - r.matched,
		MatchRate:          float64(r.matched) / float64(total),
		VideoDuration:      r.duration,
		SegmentCount:       len(segments),
		PlannedDuration:    TotalDuration(segments),
		PerCueLog:          r.log,
		MergedSegmentCount: merged,
	}
	switch r.strategy {
	case StrategyCumulative:
		report.CumulativeOffset = ptr(r.offset)
		report.AdjustedCount = ptr(r.adjusted)
	case StrategyRemap, StrategyGap, StrategyAlign:
		newDur := r.updated.EndTime()
		report.NewTrackDuration = ptr(newDur)
		report.OriginalTrackDuration = ptr(r.original.EndTime())
		report.DurationDelta = ptr(report.PlannedDuration - newDur)
	case StrategyCompact:
		newDur := r.updated.EndTime() + r.offset
		report.CumulativeOffset = ptr(r.offset)
		report.TimeSaved = ptr(math.Abs(r.offset))
		report.NewTrackDuration = ptr(newDur)
		report.OriginalTrackDuration = ptr(r.original.EndTime())
		report.DurationDelta = ptr(report.PlannedDuration - newDur)
	}

	r.logger.Debug("plan complete",
		logging.Int("matched", report.MatchedCount),
		logging.Int("unmatched", report.UnmatchedCount),
		logging.Int("segments", report.SegmentCount),
		logging.Float64("planned_duration", report.PlannedDuration),
	)
	return Result{Segments: segments, Matches: r.matches, Report: report}
}
