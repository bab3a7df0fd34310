// Package vector holds the sparse vector arithmetic behind job similarity.
package vector

import (
	"math"
	"sort"
)

// Sparse is a vector stored as strictly increasing indices and their
// non-zero values.
type Sparse struct {
	Indices []int     `json:"i"`
	Values  []float64 `json:"v"`
}

// FromMap builds a Sparse vector from index/value pairs, dropping zeros.
func FromMap(m map[int]float64) Sparse {
	idx := make([]int, 0, len(m))
	for i, v := range m {
		if v != 0 {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)

	s := Sparse{Indices: idx, Values: make([]float64, len(idx))}
	for k, i := range idx {
		s.Values[k] = m[i]
	}
	return s
}

// Len returns the number of non-zero entries.
func (s Sparse) Len() int {
	return len(s.Indices)
}

// Dot calculates the dot product of two sparse vectors
// Formula: sum(a[i] * b[i]) over indices present in both
func Dot(a, b Sparse) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Magnitude calculates the L2 norm of a vector
func Magnitude(v Sparse) float64 {
	sum := 0.0
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func Normalize(v Sparse) Sparse {
	norm := Magnitude(v)
	if norm == 0 {
		return v
	}
	out := Sparse{
		Indices: append([]int(nil), v.Indices...),
		Values:  make([]float64, len(v.Values)),
	}
	for i, x := range v.Values {
		out.Values[i] = x / norm
	}
	return out
}

// CosineSimilarity calculates the cosine similarity between two vectors
// Returns a value between -1 (opposite) and 1 (identical); 0 if either is
// the zero vector
// Formula: (a · b) / (||a|| * ||b||)
func CosineSimilarity(a, b Sparse) float64 {
	na, nb := Magnitude(a), Magnitude(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}
