package matching

import "subsplice/internal/cue"

// Result pairs a new cue with the original cue it was matched to. Indices are
// positions within their tracks.
type Result struct {
	NewCueIndex      int     `json:"newCueIndex"`
	OriginalCueIndex int     `json:"originalCueIndex"`
	Score            float64 `json:"score"`
}

// Matcher finds the best candidate for a target cue.
type Matcher struct {
	Scorer Scorer
	// Threshold is exclusive: a match needs a score strictly above it.
	Threshold float64
}

// FindMatch scans candidates in [anchor-radius, anchor+radius] (clamped to
// the track; a negative radius scans the whole track), skipping excluded
// indices, and returns the highest-scoring eligible candidate. Ties go to the
// lowest index. The boolean is false when nothing scores above the threshold.
func (m Matcher) FindMatch(target cue.Cue, targetPos int, candidates cue.Track, excluded map[int]struct{}, anchor, radius int) (Result, bool) {
	lo, hi := Window(len(candidates), anchor, radius)
	scorer := m.Scorer
	if scorer == nil {
		scorer = TextScorer{}
	}

	best := Result{NewCueIndex: targetPos, OriginalCueIndex: -1}
	for idx := lo; idx < hi; idx++ {
		if _, skip := excluded[idx]; skip {
			continue
		}
		score, ok := scorer.Score(target, candidates[idx])
		if !ok {
			continue
		}
		if best.OriginalCueIndex < 0 || score > best.Score {
			best.OriginalCueIndex = idx
			best.Score = score
		}
	}
	if best.OriginalCueIndex < 0 || !(best.Score > m.Threshold) {
		return Result{NewCueIndex: targetPos, OriginalCueIndex: -1, Score: best.Score}, false
	}
	return best, true
}

// Window returns the half-open candidate range [lo, hi) for a track of size n.
func Window(n, anchor, radius int) (int, int) {
	if n <= 0 {
		return 0, 0
	}
	if radius < 0 {
		return 0, n
	}
	lo := anchor - radius
	hi := anchor + radius + 1
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}
