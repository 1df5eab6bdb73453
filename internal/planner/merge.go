package planner

import (
	"math"
	"sort"
)

// Merge sorts a copy of segments by start and joins neighbours whose gap is
// at most gap seconds. A joined segment ends at the later of the two ends,
// so merging never shrinks the covered time and a second pass with the same
// gap changes nothing. A negative gap is treated as zero.
func Merge(segments []Interval, gap float64) []Interval {
	if len(segments) == 0 {
		return nil
	}
	if gap < 0 || math.IsNaN(gap) {
		gap = 0
	}
	sorted := make([]Interval, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := make([]Interval, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if next.Start-current.End <= gap {
			current.End = math.Max(current.End, next.End)
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// MergePlans merges the source intervals of plans. The result preserves
// original pacing, so every target equals its source.
func MergePlans(plans []SegmentPlan, gap float64) []SegmentPlan {
	intervals := make([]Interval, len(plans))
	for i, p := range plans {
		intervals[i] = p.Source()
	}
	merged := Merge(intervals, gap)
	out := make([]SegmentPlan, len(merged))
	for i, iv := range merged {
		out[i] = SegmentPlan{SourceStart: iv.Start, SourceEnd: iv.End, TargetStart: iv.Start, TargetEnd: iv.End}
	}
	return out
}

// TotalDuration sums the source durations of plans.
func TotalDuration(plans []SegmentPlan) float64 {
	var total float64
	for _, p := range plans {
		total += p.Duration()
	}
	return total
}
