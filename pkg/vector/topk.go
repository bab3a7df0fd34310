package vector

import (
	"container/heap"
	"sort"
)

// Neighbor is a scored document id.
type Neighbor struct {
	ID    int     `json:"id"`
	Score float64 `json:"score"`
}

// TopK keeps the k highest-scoring neighbors seen so far. Ties are broken
// toward the lower id so results are deterministic.
type TopK struct {
	k  int
	pq minQueue
}

// NewTopK creates a collector for the best k neighbors.
func NewTopK(k int) *TopK {
	if k < 0 {
		k = 0
	}
	return &TopK{k: k, pq: make(minQueue, 0, k+1)}
}

// Push offers a candidate.
func (t *TopK) Push(id int, score float64) {
	if t.k == 0 {
		return
	}
	n := Neighbor{ID: id, Score: score}
	if t.pq.Len() < t.k {
		heap.Push(&t.pq, n)
		return
	}
	if worse(t.pq[0], n) {
		t.pq[0] = n
		heap.Fix(&t.pq, 0)
	}
}

// Len returns how many neighbors are held.
func (t *TopK) Len() int {
	return t.pq.Len()
}

// Sorted returns the held neighbors, best first.
func (t *TopK) Sorted() []Neighbor {
	out := append([]Neighbor(nil), t.pq...)
	sort.Slice(out, func(i, j int) bool { return worse(out[j], out[i]) })
	return out
}

// worse reports whether a ranks below b.
func worse(a, b Neighbor) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.ID > b.ID
}

// minQueue implements a min-heap with the worst neighbor on top
type minQueue []Neighbor

func (pq minQueue) Len() int           { return len(pq) }
func (pq minQueue) Less(i, j int) bool { return worse(pq[i], pq[j]) }
func (pq minQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }

func (pq *minQueue) Push(x any) {
	*pq = append(*pq, x.(Neighbor))
}

func (pq *minQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}
