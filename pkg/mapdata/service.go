// Package mapdata answers the map endpoints from a loaded catalog: the map
// around a query or a job, the reinforced map around a selection, and the
// plain ranked search.
package mapdata

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/dd0wney/scout/pkg/catalog"
	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/metrics"
	"github.com/dd0wney/scout/pkg/search"
	"github.com/dd0wney/scout/pkg/similarity"
)

var (
	// ErrInvalidRequest is returned for a malformed reinforce request.
	ErrInvalidRequest = errors.New("mapdata: invalid request")
	// ErrInvalidJobID is returned when a request names a job the catalog
	// does not have.
	ErrInvalidJobID = errors.New("mapdata: invalid job id")
)

// Endpoint names used in metrics and logs.
const (
	EndpointMapData    = "map_data"
	EndpointJobAsQuery = "job_as_query"
	EndpointReinforce  = "reinforce"
	EndpointSearch     = "search"
)

// Options tunes the service.
type Options struct {
	// RelatedLimit is the size of a reinforced map's related set.
	RelatedLimit int
	// SearchLimit bounds ranked search results.
	SearchLimit int
	// SearchCandidates is how many TF-IDF hits are re-ranked.
	SearchCandidates int
	// KeywordLimit bounds substring-scan results.
	KeywordLimit int

	SelectedScore float64
	FillScore     float64
	// SalaryBoost is the largest fraction a low salary takes off a search
	// score.
	SalaryBoost float64

	Logger  logging.Logger
	Metrics *metrics.Registry
	// Rand picks filler jobs; seeded from the clock when nil.
	Rand *rand.Rand
}

// DefaultOptions returns the tuned limits.
func DefaultOptions() Options {
	return Options{
		RelatedLimit:     similarity.DefaultNeighbours,
		SearchLimit:      7,
		SearchCandidates: 50,
		KeywordLimit:     5,
		SelectedScore:    0.95,
		FillScore:        0.5,
		SalaryBoost:      0.2,
	}
}

// Service is safe for concurrent use.
type Service struct {
	catalog *catalog.Catalog
	index   *search.Index
	graph   *similarity.Graph
	opts    Options
	logger  logging.Logger
	metrics *metrics.Registry

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewService creates a service over a catalog, its index and its
// neighbour graph. Zero limits in opts take their defaults.
func NewService(c *catalog.Catalog, idx *search.Index, g *similarity.Graph, opts Options) *Service {
	def := DefaultOptions()
	if opts.RelatedLimit <= 0 {
		opts.RelatedLimit = def.RelatedLimit
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = def.SearchLimit
	}
	if opts.SearchCandidates <= 0 {
		opts.SearchCandidates = def.SearchCandidates
	}
	if opts.KeywordLimit <= 0 {
		opts.KeywordLimit = def.KeywordLimit
	}
	if opts.SelectedScore <= 0 {
		opts.SelectedScore = def.SelectedScore
	}
	if opts.FillScore <= 0 {
		opts.FillScore = def.FillScore
	}
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		catalog: c,
		index:   idx,
		graph:   g,
		opts:    opts,
		logger:  logging.OrNop(opts.Logger).With(logging.Component("mapdata")),
		metrics: opts.Metrics,
		rand:    r,
	}
}

// Catalog returns the catalog the service answers from.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Neighbours reports how many neighbour rows the graph holds and how many
// jobs the catalog has. The two match when the graph is complete.
func (s *Service) Neighbours() (rows, jobs int) {
	return s.graph.Len(), s.catalog.Len()
}

// empty is the no-result payload.
func empty() *jobs.MapData {
	return &jobs.MapData{Related: []jobs.Job{}}
}

// around builds the map centred on catalog job id, with its cached
// neighbours as the related set.
func (s *Service) around(id int64) *jobs.MapData {
	center, ok := s.catalog.Job(id, 0, 1)
	if !ok {
		return empty()
	}
	out := &jobs.MapData{Center: &center, Related: []jobs.Job{}}
	for _, n := range s.graph.Of(id) {
		j, ok := s.catalog.Job(int64(n.ID), len(out.Related)+1, n.Score)
		if !ok {
			continue
		}
		out.Related = append(out.Related, j)
	}
	return out
}

func (s *Service) record(endpoint string, m *jobs.MapData) {
	outcome := "hit"
	if m.Empty() {
		outcome = "empty"
	}
	s.metrics.RecordMapData(endpoint, outcome, len(m.Related))
}
