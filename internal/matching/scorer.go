package matching

import (
	"math"

	"subsplice/internal/cue"
	"subsplice/internal/textutil"
)

// Scorer rates how well a candidate cue corresponds to a target cue. The
// boolean result reports eligibility; ineligible candidates are never
// selected, whatever their score.
type Scorer interface {
	Score(target, candidate cue.Cue) (float64, bool)
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(target, candidate cue.Cue) (float64, bool)

// Score implements Scorer.
func (f ScorerFunc) Score(target, candidate cue.Cue) (float64, bool) {
	return f(target, candidate)
}

// TextScorer compares cue text with the character-level sequence ratio.
type TextScorer struct{}

// Score implements Scorer.
func (TextScorer) Score(target, candidate cue.Cue) (float64, bool) {
	return textutil.Similarity(target.Text, candidate.Text), true
}

// TokenScorer compares cue text as TF-IDF weighted word vectors, with
// document frequencies taken from a reference track. It caches fingerprints
// per text and is not safe for concurrent use.
type TokenScorer struct {
	idf   map[string]float64
	cache map[string]*textutil.Fingerprint
}

// NewTokenScorer builds IDF weights from the reference track.
func NewTokenScorer(reference cue.Track) *TokenScorer {
	corpus := textutil.NewCorpus()
	for _, c := range reference {
		corpus.Add(textutil.NewFingerprint(c.Text))
	}
	return &TokenScorer{
		idf:   corpus.IDF(),
		cache: make(map[string]*textutil.Fingerprint),
	}
}

// Score implements Scorer.
func (s *TokenScorer) Score(target, candidate cue.Cue) (float64, bool) {
	return textutil.CosineSimilarity(s.fingerprint(target.Text), s.fingerprint(candidate.Text)), true
}

func (s *TokenScorer) fingerprint(text string) *textutil.Fingerprint {
	if fp, ok := s.cache[text]; ok {
		return fp
	}
	fp := textutil.NewFingerprint(text).WithIDF(s.idf)
	s.cache[text] = fp
	return fp
}

// DurationSimilarity is 1 - |a-b| / max(a, b), floored at 0. Two
// non-positive durations score 0.
func DurationSimilarity(a, b float64) float64 {
	longest := math.Max(a, b)
	if longest <= 0 {
		return 0
	}
	return math.Max(0, 1-math.Abs(a-b)/longest)
}

// BlendScorer mixes text and duration similarity. Candidates whose text
// score falls below TextFloor are ineligible, so a close duration can never
// carry a match on its own.
type BlendScorer struct {
	Text       Scorer
	TextWeight float64
	TextFloor  float64
}

// Score implements Scorer.
func (s BlendScorer) Score(target, candidate cue.Cue) (float64, bool) {
	textScore, ok := s.text().Score(target, candidate)
	if !ok || textScore < s.TextFloor || textScore <= 0 {
		return 0, false
	}
	weight := s.TextWeight
	if weight < 0 || weight > 1 {
		weight = 0.7
	}
	durScore := DurationSimilarity(target.Duration(), candidate.Duration())
	return weight*textScore + (1-weight)*durScore, true
}

func (s BlendScorer) text() Scorer {
	if s.Text == nil {
		return TextScorer{}
	}
	return s.Text
}

// OverlapScorer pairs cues by time overlap instead of text. A candidate is
// eligible when its interval overlaps the target by more than MinOverlap
// seconds; the score is the overlap as a fraction of the target duration.
type OverlapScorer struct {
	MinOverlap float64
}

// Score implements Scorer.
func (s OverlapScorer) Score(target, candidate cue.Cue) (float64, bool) {
	overlap := Overlap(target, candidate)
	if overlap <= s.MinOverlap || overlap <= 0 {
		return 0, false
	}
	dur := target.Duration()
	if dur <= 0 {
		return 0, false
	}
	return math.Min(1, overlap/dur), true
}

// Overlap returns the length of the intersection of two cue intervals, or 0.
func Overlap(a, b cue.Cue) float64 {
	start := math.Max(a.Start, b.Start)
	end := math.Min(a.End, b.End)
	if end <= start {
		return 0
	}
	return end - start
}

// ProximityScorer rates candidates by how close their start lies to the
// target start shifted by Offset, blended with word overlap. Candidates more
// than MaxTimeDiff seconds away are ineligible.
type ProximityScorer struct {
	Offset      float64
	MaxTimeDiff float64
	TimeWeight  float64
}

// Score implements Scorer.
func (s ProximityScorer) Score(target, candidate cue.Cue) (float64, bool) {
	if s.MaxTimeDiff <= 0 {
		return 0, false
	}
	diff := math.Abs(candidate.Start - (target.Start + s.Offset))
	if diff > s.MaxTimeDiff {
		return 0, false
	}
	weight := s.TimeWeight
	if weight < 0 || weight > 1 {
		weight = 0.7
	}
	timeScore := math.Max(0, 1-diff/s.MaxTimeDiff)
	return weight*timeScore + (1-weight)*textutil.WordOverlap(target.Text, candidate.Text), true
}
