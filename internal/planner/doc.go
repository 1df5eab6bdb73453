// Package planner turns a matched pair of subtitle tracks into an ordered
// list of source video segments.
//
// One entry point, Plan, dispatches on a Strategy. Every strategy walks the
// new track in order, asks a matching.Matcher for the most likely original
// cue and converts accepted matches into SegmentPlan values; they differ
// only in matcher settings and in how a match becomes a segment:
//
//   - cumulative keeps the original interval when start times agree within
//     a threshold and otherwise shifts it by the difference, tracking the
//     running offset.
//   - remap starts at the original cue and runs for the new cue's duration,
//     so output length follows the new track.
//   - gap excises the original cue verbatim, anchored on the last match.
//   - align is gap with a text+duration blend and a non-decreasing anchor.
//   - overlap pairs cues by time overlap and merges the results.
//   - compact matches on start-time proximity once the running duration
//     offset is applied, keeps original intervals and reports the time
//     saved.
//
// Planning is deterministic and does no I/O. Merge and MergePlans collapse
// near-adjacent segments and can run on any strategy's output; merged
// segments always take their source span as target.
package planner
