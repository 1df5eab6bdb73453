package planner

import (
	"testing"

	"subsplice/internal/cue"
)

func TestAnalyze(t *testing.T) {
	original := cue.Track{
		{Index: 1, Start: 0, End: 2, Text: "one"},
		{Index: 2, Start: 3, End: 5, Text: "two"},
		{Index: 3, Start: 8, End: 9, Text: "three"},
	}
	updated := cue.Track{
		{Index: 1, Start: 1, End: 3, Text: "uno"},
		{Index: 2, Start: 5, End: 8, Text: "dos"},
	}

	a := Analyze(original, updated)
	if a.Compared != 2 || len(a.Details) != 2 {
		t.Fatalf("compared = %d, details = %d", a.Compared, len(a.Details))
	}
	d := a.Details[1]
	if d.StartDiff != 2 || d.EndDiff != 3 || d.DurationDiff != 1 {
		t.Fatalf("unexpected diff %+v", d)
	}
	if a.StartOffset != (Spread{Min: 1, Max: 2, Avg: 1.5}) {
		t.Fatalf("start offset = %+v", a.StartOffset)
	}
	if a.Original.Count != 3 || a.Original.EndTime != 9 {
		t.Fatalf("original stats = %+v", a.Original)
	}
	if a.Original.Gap != (Spread{Min: 1, Max: 3, Avg: 2}) {
		t.Fatalf("original gaps = %+v", a.Original.Gap)
	}
	if a.Recommendation.MergeGap != 2.0 || a.Recommendation.Confidence != "low" {
		t.Fatalf("recommendation = %+v", a.Recommendation)
	}
	if a.Recommendation.Pacing != "new cues run longer; keep more footage" {
		t.Fatalf("pacing = %q", a.Recommendation.Pacing)
	}
}

func TestRecommendThresholds(t *testing.T) {
	tests := []struct {
		drift      float64
		gap        float64
		confidence string
	}{
		{0.1, 0.5, "high"},
		{-0.4, 1.0, "high"},
		{0.7, 1.0, "medium"},
		{1.2, 2.0, "medium"},
		{3, 2.0, "low"},
	}
	for _, tt := range tests {
		rec := recommend(Spread{Avg: tt.drift}, Spread{})
		if rec.MergeGap != tt.gap || rec.Confidence != tt.confidence {
			t.Errorf("drift %v: got %+v, want gap %v confidence %s", tt.drift, rec, tt.gap, tt.confidence)
		}
		if rec.Pacing != "cue durations match" {
			t.Errorf("pacing = %q", rec.Pacing)
		}
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	a := Analyze(nil, nil)
	if a.Compared != 0 || len(a.Details) != 0 || a.StartOffset != (Spread{}) {
		t.Fatalf("unexpected analysis %+v", a)
	}
}
