package search

import (
	"slices"

	"github.com/dd0wney/scout/pkg/pools"
	"github.com/dd0wney/scout/pkg/vector"
)

// Vectorize maps free text into the index's vector space. Text with no
// known term yields the zero vector.
func (idx *Index) Vectorize(text string) vector.Sparse {
	return idx.weigh(analyze(text, idx.opts))
}

// Known reports whether text contains any indexed term.
func (idx *Index) Known(text string) bool {
	return idx.Vectorize(text).Len() > 0
}

// Scores returns the cosine similarity of q against every document. q is
// expected at unit length, as Vectorize returns it.
func (idx *Index) Scores(q vector.Sparse) []float64 {
	scores := make([]float64, len(idx.docs))
	idx.accumulate(q, scores)
	return scores
}

func (idx *Index) accumulate(q vector.Sparse, scores []float64) {
	for k, dim := range q.Indices {
		w := q.Values[k]
		for _, p := range idx.postings[dim] {
			scores[p.doc] += w * p.weight
		}
	}
}

// Top returns the k documents most similar to q with a positive score,
// best first. Documents in skip are left out.
func (idx *Index) Top(q vector.Sparse, k int, skip ...int) []vector.Neighbor {
	scores := pools.GetFloat64s(len(idx.docs))
	defer pools.PutFloat64s(scores)
	idx.accumulate(q, scores)

	top := vector.NewTopK(k)
	for doc, score := range scores {
		if score <= 0 || slices.Contains(skip, doc) {
			continue
		}
		top.Push(doc, score)
	}
	return top.Sorted()
}

// Search ranks documents against free text.
func (idx *Index) Search(query string, k int) []vector.Neighbor {
	q := idx.Vectorize(query)
	if q.Len() == 0 {
		return nil
	}
	return idx.Top(q, k)
}

// Similar returns the k documents closest to document i, excluding i.
func (idx *Index) Similar(i, k int) []vector.Neighbor {
	return idx.Top(idx.docs[i], k, i)
}
