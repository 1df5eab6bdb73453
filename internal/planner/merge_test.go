package planner

import (
	"reflect"
	"testing"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		in   []Interval
		gap  float64
		want []Interval
	}{
		{
			name: "example",
			in:   []Interval{{0, 5}, {5.3, 8}, {20, 22}},
			gap:  1,
			want: []Interval{{0, 8}, {20, 22}},
		},
		{
			name: "unsorted input",
			in:   []Interval{{20, 22}, {0, 5}, {5.3, 8}},
			gap:  1,
			want: []Interval{{0, 8}, {20, 22}},
		},
		{
			name: "contained segment keeps outer end",
			in:   []Interval{{0, 10}, {2, 3}, {10.5, 11}},
			gap:  0.5,
			want: []Interval{{0, 11}},
		},
		{
			name: "zero gap joins touching only",
			in:   []Interval{{0, 1}, {1, 2}, {2.1, 3}},
			gap:  0,
			want: []Interval{{0, 2}, {2.1, 3}},
		},
		{
			name: "negative gap acts as zero",
			in:   []Interval{{0, 1}, {1, 2}},
			gap:  -5,
			want: []Interval{{0, 2}},
		},
		{
			name: "empty",
			in:   nil,
			gap:  1,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.in, tt.gap)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	in := []Interval{{5, 6}, {0, 1}}
	Merge(in, 10)
	if in[0].Start != 5 || in[1].Start != 0 {
		t.Fatalf("input reordered: %v", in)
	}
}

func TestMergeIdempotentAndCoversInput(t *testing.T) {
	sets := [][]Interval{
		{{0, 5}, {5.3, 8}, {20, 22}},
		{{3, 4}, {0, 10}, {9, 12}, {30, 31}, {31.2, 40}},
		{{1, 2}},
	}
	for _, gap := range []float64{0, 0.25, 1, 5} {
		for _, set := range sets {
			once := Merge(set, gap)
			twice := Merge(once, gap)
			if !reflect.DeepEqual(once, twice) {
				t.Fatalf("gap %v: merge not idempotent: %v vs %v", gap, once, twice)
			}
			for _, iv := range set {
				covered := false
				for _, m := range once {
					if m.Start <= iv.Start && iv.End <= m.End {
						covered = true
						break
					}
				}
				if !covered {
					t.Fatalf("gap %v: %v not covered by %v", gap, iv, once)
				}
			}
			if len(once) > len(set) {
				t.Fatalf("merge produced more segments than input")
			}
		}
	}
}

func TestMergePlans(t *testing.T) {
	plans := []SegmentPlan{
		{SourceStart: 10, SourceEnd: 12, TargetStart: 0, TargetEnd: 2},
		{SourceStart: 12.2, SourceEnd: 14, TargetStart: 2, TargetEnd: 4},
	}
	got := MergePlans(plans, 0.5)
	want := []SegmentPlan{{SourceStart: 10, SourceEnd: 14, TargetStart: 10, TargetEnd: 14}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MergePlans() = %+v, want %+v", got, want)
	}
	if TotalDuration(got) != 4 {
		t.Fatalf("TotalDuration = %v", TotalDuration(got))
	}
}
