package mapdata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/logging"
)

// MapData returns the map for a free-text query. A job whose title equals
// the query wins; otherwise the best TF-IDF match becomes the center. A
// blank or unmatched query yields an empty payload.
func (s *Service) MapData(query string) *jobs.MapData {
	query = strings.TrimSpace(query)
	if query == "" {
		out := empty()
		s.record(EndpointMapData, out)
		return out
	}

	id, ok := s.catalog.FindTitle(query)
	if !ok {
		hits := s.index.Search(query, 1)
		if len(hits) == 0 {
			s.logger.Debug("map query matched nothing", logging.Query(query))
			out := empty()
			s.record(EndpointMapData, out)
			return out
		}
		id = int64(hits[0].ID)
	}

	out := s.around(id)
	s.record(EndpointMapData, out)
	s.logger.Debug("map built",
		logging.Query(query),
		logging.JobID(id),
		logging.Count(len(out.Related)),
	)
	return out
}

// JobAsQuery returns the map centred on a catalog job. An unknown id
// yields an empty payload carrying an error message rather than a failure.
func (s *Service) JobAsQuery(id int64) *jobs.MapData {
	if !s.catalog.Valid(id) {
		s.metrics.RecordMapData(EndpointJobAsQuery, "invalid", 0)
		out := empty()
		out.Error = "Invalid job ID"
		return out
	}
	out := s.around(id)
	s.record(EndpointJobAsQuery, out)
	return out
}

// Reinforce returns a map centred on req.CenterID whose related set starts
// with the selected jobs, continues with their neighbours ranked by score,
// and is topped up with random unseen jobs.
func (s *Service) Reinforce(req jobs.ReinforceRequest) (*jobs.MapData, error) {
	if err := req.Validate(); err != nil {
		s.metrics.RecordMapData(EndpointReinforce, "invalid", 0)
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	for _, id := range append([]int64{req.CenterID}, req.SelectedIDs...) {
		if !s.catalog.Valid(id) {
			s.metrics.RecordMapData(EndpointReinforce, "invalid", 0)
			return nil, fmt.Errorf("%w: %d", ErrInvalidJobID, id)
		}
	}

	center, _ := s.catalog.Job(req.CenterID, 0, 1)
	out := &jobs.MapData{Center: &center, Related: make([]jobs.Job, 0, s.opts.RelatedLimit)}
	seen := map[int64]bool{req.CenterID: true}
	for _, id := range req.SelectedIDs {
		seen[id] = true
	}

	add := func(id int64, score float64) {
		j, _ := s.catalog.Job(id, len(out.Related)+1, score)
		out.Related = append(out.Related, j)
	}
	for _, id := range req.SelectedIDs {
		add(id, s.opts.SelectedScore)
	}

	type candidate struct {
		id    int64
		score float64
	}
	var candidates []candidate
	for _, id := range req.SelectedIDs {
		for _, n := range s.graph.Of(id) {
			nid := int64(n.ID)
			if seen[nid] {
				continue
			}
			seen[nid] = true
			candidates = append(candidates, candidate{id: nid, score: n.Score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	for _, c := range candidates {
		if len(out.Related) >= s.opts.RelatedLimit {
			break
		}
		add(c.id, c.score)
	}

	s.fill(out, seen, add)

	s.record(EndpointReinforce, out)
	s.logger.Debug("reinforced map built",
		logging.JobID(req.CenterID),
		logging.Int("selected", len(req.SelectedIDs)),
		logging.Count(len(out.Related)),
	)
	return out, nil
}

// fill tops the related set up to the limit with random unseen jobs, or
// with every remaining job when the catalog is too small.
func (s *Service) fill(out *jobs.MapData, seen map[int64]bool, add func(int64, float64)) {
	missing := s.opts.RelatedLimit - len(out.Related)
	unseen := int64(s.catalog.Len()) - int64(len(seen))
	if missing <= 0 || unseen <= 0 {
		return
	}

	s.randMu.Lock()
	defer s.randMu.Unlock()

	if int64(missing) >= unseen {
		for _, id := range s.rand.Perm(s.catalog.Len()) {
			if !seen[int64(id)] {
				seen[int64(id)] = true
				add(int64(id), s.opts.FillScore)
			}
		}
		return
	}
	for len(out.Related) < s.opts.RelatedLimit {
		id := s.rand.Int63n(int64(s.catalog.Len()))
		if seen[id] {
			continue
		}
		seen[id] = true
		add(id, s.opts.FillScore)
	}
}
