// Package similarity holds the neighbour graph: for every catalog job, the
// most similar other jobs by cosine similarity of their TF-IDF vectors. The
// graph is expensive to build, so it is cached on disk keyed by the
// catalog fingerprint.
package similarity

import (
	"context"
	"fmt"

	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/metrics"
	"github.com/dd0wney/scout/pkg/parallel"
	"github.com/dd0wney/scout/pkg/search"
	"github.com/dd0wney/scout/pkg/vector"
)

// DefaultNeighbours is how many neighbours each job keeps.
const DefaultNeighbours = 15

// Graph maps each document id to its neighbours, best first.
type Graph struct {
	Fingerprint string              `json:"fingerprint"`
	K           int                 `json:"k"`
	Neighbours  [][]vector.Neighbor `json:"neighbours"`
}

// Of returns the neighbours of id, or nil for an unknown id.
func (g *Graph) Of(id int64) []vector.Neighbor {
	if g == nil || id < 0 || id >= int64(len(g.Neighbours)) {
		return nil
	}
	return g.Neighbours[id]
}

// Len returns the number of documents covered.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Neighbours)
}

// BuildOptions configures Build.
type BuildOptions struct {
	K       int
	Workers int
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Build computes the neighbour graph of every document in idx.
func Build(ctx context.Context, idx *search.Index, fingerprint string, opts BuildOptions) (*Graph, error) {
	k := opts.K
	if k <= 0 {
		k = DefaultNeighbours
	}
	logger := logging.OrNop(opts.Logger)

	timer := logging.StartTimer(logger, "build neighbour graph",
		logging.Count(idx.Len()),
		logging.Int("k", k),
	)
	g := &Graph{
		Fingerprint: fingerprint,
		K:           k,
		Neighbours:  make([][]vector.Neighbor, idx.Len()),
	}
	err := parallel.ForEach(ctx, idx.Len(), opts.Workers, logger, func(i int) error {
		g.Neighbours[i] = idx.Similar(i, k)
		return nil
	})
	if err != nil {
		timer.EndError(err)
		return nil, fmt.Errorf("build neighbour graph: %w", err)
	}
	opts.Metrics.RecordNeighbourBuild(timer.End())
	return g, nil
}
