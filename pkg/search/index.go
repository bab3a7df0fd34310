// Package search is the TF-IDF text index over the job catalog. An Index is
// built once from the catalog's documents and is read-only afterwards, so
// it is safe for concurrent queries.
package search

import (
	"math"
	"sort"

	"github.com/dd0wney/scout/pkg/validation"
	"github.com/dd0wney/scout/pkg/vector"
)

// Options controls how documents are analyzed.
type Options struct {
	// MaxDF drops terms that appear in more than this fraction of the
	// documents.
	MaxDF float64
	// MinTokenLen is the shortest token kept.
	MinTokenLen int
	// Bigrams adds adjacent token pairs as terms.
	Bigrams bool
}

// DefaultOptions returns the analyzer settings used for the catalog.
func DefaultOptions() Options {
	return Options{MaxDF: 0.7, MinTokenLen: 2, Bigrams: true}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	return validation.NewConfigValidator("Search").
		RangeFloat("MaxDF", o.MaxDF, 0.01, 1).
		RangeInt("MinTokenLen", o.MinTokenLen, 1, 16).
		Validate()
}

// posting is one document's weight for a term.
type posting struct {
	doc    int
	weight float64
}

// Index provides TF-IDF vectors and cosine ranking for a fixed set of
// documents.
type Index struct {
	opts Options

	// Vocabulary: term -> dimension
	vocab map[string]int
	idf   []float64

	// Inverted index: dimension -> postings
	postings [][]posting

	// Unit-length document vectors
	docs []vector.Sparse
}

// Build indexes docs. Document i keeps id i.
func Build(docs []string, opts Options) *Index {
	analyzed := make([][]string, len(docs))
	docFreq := make(map[string]int)
	for i, d := range docs {
		terms := analyze(d, opts)
		analyzed[i] = terms

		seen := make(map[string]bool, len(terms))
		for _, term := range terms {
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}

	n := len(docs)
	maxCount := opts.MaxDF * float64(n)
	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if float64(df) <= maxCount {
			kept = append(kept, term)
		}
	}
	sort.Strings(kept)

	idx := &Index{
		opts:     opts,
		vocab:    make(map[string]int, len(kept)),
		idf:      make([]float64, len(kept)),
		postings: make([][]posting, len(kept)),
		docs:     make([]vector.Sparse, n),
	}
	for dim, term := range kept {
		idx.vocab[term] = dim
		// Smoothed IDF: ln((1+n)/(1+df)) + 1
		idx.idf[dim] = math.Log(float64(1+n)/float64(1+docFreq[term])) + 1
	}

	for i, terms := range analyzed {
		v := idx.weigh(terms)
		idx.docs[i] = v
		for k, dim := range v.Indices {
			idx.postings[dim] = append(idx.postings[dim], posting{doc: i, weight: v.Values[k]})
		}
	}
	return idx
}

// weigh turns analyzed terms into a unit TF-IDF vector over the vocabulary.
func (idx *Index) weigh(terms []string) vector.Sparse {
	tf := make(map[int]float64)
	for _, term := range terms {
		if dim, ok := idx.vocab[term]; ok {
			tf[dim]++
		}
	}
	for dim, count := range tf {
		tf[dim] = count * idx.idf[dim]
	}
	return vector.Normalize(vector.FromMap(tf))
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// VocabularySize returns the number of distinct terms kept.
func (idx *Index) VocabularySize() int {
	return len(idx.vocab)
}

// Doc returns the vector of document i.
func (idx *Index) Doc(i int) vector.Sparse {
	return idx.docs[i]
}
