package cue

import (
	"fmt"
	"math"
)

// Cue is a single subtitle entry. Times are seconds from the start of the
// media the track was authored against.
type Cue struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns End - Start.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// Valid reports whether the cue has a positive duration and a non-negative start.
func (c Cue) Valid() bool {
	return c.Start >= 0 && c.End > c.Start && !math.IsNaN(c.Start) && !math.IsNaN(c.End)
}

// Track is an ordered list of cues.
type Track []Cue

// Len returns the number of cues.
func (t Track) Len() int {
	return len(t)
}

// Span returns the start of the first cue and the latest end in the track.
func (t Track) Span() (float64, float64) {
	if len(t) == 0 {
		return 0, 0
	}
	first := t[0].Start
	var last float64
	for _, c := range t {
		if c.Start < first {
			first = c.Start
		}
		if c.End > last {
			last = c.End
		}
	}
	return first, last
}

// EndTime returns the latest cue end, which approximates the length of the
// media the track covers.
func (t Track) EndTime() float64 {
	_, end := t.Span()
	return end
}

// SpeechDuration sums the durations of all cues.
func (t Track) SpeechDuration() float64 {
	var total float64
	for _, c := range t {
		total += c.Duration()
	}
	return total
}

// Validate checks the per-cue invariants and index uniqueness.
func (t Track) Validate() error {
	seen := make(map[int]int, len(t))
	for pos, c := range t {
		if !c.Valid() {
			return fmt.Errorf("cue %d at position %d: invalid interval [%.3f, %.3f]", c.Index, pos, c.Start, c.End)
		}
		if prev, ok := seen[c.Index]; ok {
			return fmt.Errorf("cue index %d repeated at positions %d and %d", c.Index, prev, pos)
		}
		seen[c.Index] = pos
	}
	return nil
}

// Ordered reports whether cue starts never decrease.
func (t Track) Ordered() bool {
	for i := 1; i < len(t); i++ {
		if t[i].Start < t[i-1].Start {
			return false
		}
	}
	return true
}
