package vector

import (
	"math"
	"testing"
)

func TestFromMap(t *testing.T) {
	v := FromMap(map[int]float64{7: 1, 2: 3, 5: 0})
	if got := v.Len(); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
	if v.Indices[0] != 2 || v.Indices[1] != 7 {
		t.Errorf("indices not sorted: %v", v.Indices)
	}
	if v.Values[0] != 3 || v.Values[1] != 1 {
		t.Errorf("values not aligned: %v", v.Values)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        map[int]float64
		b        map[int]float64
		expected float64
	}{
		{"identical vectors", map[int]float64{0: 1}, map[int]float64{0: 1}, 1},
		{"orthogonal vectors", map[int]float64{0: 1}, map[int]float64{1: 1}, 0},
		{"opposite vectors", map[int]float64{0: 1}, map[int]float64{0: -1}, -1},
		{"scaled vectors", map[int]float64{0: 1, 3: 2}, map[int]float64{0: 2, 3: 4}, 1},
		{"partial overlap", map[int]float64{0: 3, 1: 4}, map[int]float64{0: 4, 1: 3}, 0.96},
		{"zero vector", map[int]float64{}, map[int]float64{2: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(FromMap(tt.a), FromMap(tt.b))
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize(FromMap(map[int]float64{1: 3, 4: 4}))
	if math.Abs(Magnitude(v)-1) > 1e-12 {
		t.Errorf("expected unit length, got %v", Magnitude(v))
	}
	if math.Abs(v.Values[0]-0.6) > 1e-12 || math.Abs(v.Values[1]-0.8) > 1e-12 {
		t.Errorf("unexpected values %v", v.Values)
	}

	zero := Normalize(Sparse{})
	if zero.Len() != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}

func TestTopK(t *testing.T) {
	top := NewTopK(3)
	for id, score := range []float64{0.1, 0.9, 0.5, 0.9, 0.3, 0.7} {
		top.Push(id, score)
	}

	got := top.Sorted()
	want := []Neighbor{{1, 0.9}, {3, 0.9}, {5, 0.7}}
	if len(got) != len(want) {
		t.Fatalf("expected %d neighbors, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestTopKEdgeCases(t *testing.T) {
	empty := NewTopK(0)
	empty.Push(1, 1)
	if empty.Len() != 0 {
		t.Errorf("k=0 should hold nothing")
	}

	few := NewTopK(5)
	few.Push(2, 0.2)
	few.Push(1, 0.4)
	got := few.Sorted()
	if len(got) != 2 || got[0].ID != 1 {
		t.Errorf("expected both neighbors best first, got %+v", got)
	}
}
