package workflow

import (
	"math"

	"subsplice/internal/assembly"
	"subsplice/internal/cue"
	"subsplice/internal/planner"
)

// outputSpan is one extracted segment placed on the concatenated output.
type outputSpan struct {
	sourceStart float64
	sourceEnd   float64
	outputStart float64
}

func (s outputSpan) contains(t float64) bool {
	const eps = 1e-6
	return t >= s.sourceStart-eps && t < s.sourceEnd-eps
}

// outputSpans lays the extracted segments end to end in plan order, keyed by
// plan index. Dropped segments take no room in the output.
func outputSpans(segments []assembly.SegmentOutcome) (map[int]outputSpan, []outputSpan) {
	byPlan := make(map[int]outputSpan, len(segments))
	var (
		ordered []outputSpan
		offset  float64
	)
	for _, seg := range segments {
		if seg.Status != assembly.SegmentExtracted {
			continue
		}
		span := outputSpan{sourceStart: seg.SourceStart, sourceEnd: seg.SourceEnd, outputStart: offset}
		byPlan[seg.Index] = span
		ordered = append(ordered, span)
		offset += seg.SourceEnd - seg.SourceStart
	}
	return byPlan, ordered
}

// retimeSubtitles places every accepted new cue at the point of the output
// video that carries its source interval. Cues whose segment was dropped,
// or that were never matched, are left out.
//
// Without a merge pass the n-th accepted cue produced plan segment n, so the
// mapping is direct even when remap reuses overlapping source ranges. After
// a merge the segments are disjoint and each cue is found by containment.
func retimeSubtitles(updated cue.Track, report planner.RunReport, segments []assembly.SegmentOutcome) cue.Track {
	byPlan, ordered := outputSpans(segments)
	if len(ordered) == 0 {
		return nil
	}
	merged := report.MergedSegmentCount != nil

	var out cue.Track
	planIdx := -1
	for _, entry := range report.PerCueLog {
		if !entry.Accepted() || entry.SourceInterval == nil {
			continue
		}
		planIdx++
		if entry.Index < 0 || entry.Index >= len(updated) {
			continue
		}
		src := *entry.SourceInterval

		var (
			span  outputSpan
			found bool
		)
		if merged {
			for _, candidate := range ordered {
				if candidate.contains(src.Start) {
					span, found = candidate, true
					break
				}
			}
		} else {
			span, found = byPlan[planIdx]
		}
		if !found {
			continue
		}

		start := span.outputStart + (math.Max(src.Start, span.sourceStart) - span.sourceStart)
		end := span.outputStart + (math.Min(src.End, span.sourceEnd) - span.sourceStart)
		if !(end > start) {
			continue
		}
		out = append(out, cue.Cue{
			Index: len(out) + 1,
			Start: start,
			End:   end,
			Text:  updated[entry.Index].Text,
		})
	}
	return out
}
