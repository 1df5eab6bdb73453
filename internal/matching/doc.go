// Package matching pairs a cue from the new track with its most likely
// counterpart in the original track.
//
// A Matcher scans a window of candidates around an anchor position, skips
// excluded indices, scores each candidate with a pluggable Scorer and accepts
// the best one only when it beats the configured threshold. Matchers hold no
// run state: callers own the exclusion set and add accepted indices to it.
package matching
