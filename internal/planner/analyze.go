package planner

import (
	"math"

	"subsplice/internal/cue"
)

// TimingDiff compares the cues at the same position in both tracks.
type TimingDiff struct {
	Index        int      `json:"index"`
	OriginalText string   `json:"originalText"`
	NewText      string   `json:"newText"`
	Original     Interval `json:"original"`
	New          Interval `json:"new"`
	StartDiff    float64  `json:"startDiff"`
	EndDiff      float64  `json:"endDiff"`
	DurationDiff float64  `json:"durationDiff"`
}

// Spread holds min, max and mean of a series.
type Spread struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// TrackStats describes cue durations and inter-cue gaps of one track.
type TrackStats struct {
	Count    int     `json:"count"`
	EndTime  float64 `json:"endTime"`
	Speech   float64 `json:"speech"`
	Duration Spread  `json:"duration"`
	Gap      Spread  `json:"gap"`
}

// Recommendation suggests planner settings derived from the timing drift.
type Recommendation struct {
	MergeGap   float64 `json:"mergeGap"`
	Confidence string  `json:"confidence"`
	Pacing     string  `json:"pacing"`
}

// Analysis is a position-by-position timing comparison of two tracks. It
// assumes cue i of one track corresponds to cue i of the other, so it is a
// diagnostic for choosing a strategy rather than a plan.
type Analysis struct {
	Original       TrackStats     `json:"original"`
	New            TrackStats     `json:"new"`
	Compared       int            `json:"compared"`
	StartOffset    Spread         `json:"startOffset"`
	EndOffset      Spread         `json:"endOffset"`
	DurationOffset Spread         `json:"durationOffset"`
	Details        []TimingDiff   `json:"details"`
	Recommendation Recommendation `json:"recommendation"`
}

// Analyze compares original and updated cue by cue up to the shorter length.
func Analyze(original, updated cue.Track) Analysis {
	n := min(len(original), len(updated))
	a := Analysis{
		Original: describeTrack(original),
		New:      describeTrack(updated),
		Compared: n,
		Details:  make([]TimingDiff, 0, n),
	}
	starts := make([]float64, 0, n)
	ends := make([]float64, 0, n)
	durs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		o, u := original[i], updated[i]
		d := TimingDiff{
			Index:        i,
			OriginalText: o.Text,
			NewText:      u.Text,
			Original:     Interval{Start: o.Start, End: o.End},
			New:          Interval{Start: u.Start, End: u.End},
			StartDiff:    u.Start - o.Start,
			EndDiff:      u.End - o.End,
			DurationDiff: u.Duration() - o.Duration(),
		}
		a.Details = append(a.Details, d)
		starts = append(starts, d.StartDiff)
		ends = append(ends, d.EndDiff)
		durs = append(durs, d.DurationDiff)
	}
	a.StartOffset = spread(starts)
	a.EndOffset = spread(ends)
	a.DurationOffset = spread(durs)
	a.Recommendation = recommend(a.StartOffset, a.DurationOffset)
	return a
}

func describeTrack(track cue.Track) TrackStats {
	stats := TrackStats{Count: len(track), EndTime: track.EndTime(), Speech: track.SpeechDuration()}
	if len(track) == 0 {
		return stats
	}
	durs := make([]float64, len(track))
	gaps := make([]float64, 0, len(track)-1)
	for i, c := range track {
		durs[i] = c.Duration()
		if i > 0 {
			gaps = append(gaps, c.Start-track[i-1].End)
		}
	}
	stats.Duration = spread(durs)
	stats.Gap = spread(gaps)
	return stats
}

func spread(values []float64) Spread {
	if len(values) == 0 {
		return Spread{}
	}
	s := Spread{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	s.Avg = sum / float64(len(values))
	return s
}

func recommend(start, duration Spread) Recommendation {
	drift := math.Abs(start.Avg)
	rec := Recommendation{}
	switch {
	case drift < 0.3:
		rec.MergeGap = 0.5
	case drift < 1.0:
		rec.MergeGap = 1.0
	default:
		rec.MergeGap = 2.0
	}
	switch {
	case drift < 0.5:
		rec.Confidence = "high"
	case drift < 1.5:
		rec.Confidence = "medium"
	default:
		rec.Confidence = "low"
	}
	switch {
	case duration.Avg > 0:
		rec.Pacing = "new cues run longer; keep more footage"
	case duration.Avg < 0:
		rec.Pacing = "new cues run shorter; cut tighter"
	default:
		rec.Pacing = "cue durations match"
	}
	return rec
}
