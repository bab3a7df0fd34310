package mapdata

import (
	"math"
	"sort"
	"strings"

	"github.com/dd0wney/scout/pkg/catalog"
	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/logging"
)

// Search strategies, reported in metrics.
const (
	StrategyExact   = "exact"
	StrategyTFIDF   = "tfidf"
	StrategyKeyword = "keyword"
	StrategyNone    = "none"
)

// Salary curve constants: the boost is a logistic of the log salary in
// thousands.
const (
	salaryCurveA = 0.2979
	salaryCurveB = -1.2902
)

// Search ranks jobs for a query and reports which strategy answered: an
// exact title match, TF-IDF ranking with a salary adjustment, or a
// substring scan when the query has no indexed term.
func (s *Service) Search(query string) ([]jobs.Job, string) {
	query = strings.TrimSpace(query)
	results, strategy := s.search(query)
	s.metrics.RecordSearch(strategy)
	s.logger.Debug("search answered",
		logging.Query(query),
		logging.String("strategy", strategy),
		logging.Count(len(results)),
	)
	return results, strategy
}

func (s *Service) search(query string) ([]jobs.Job, string) {
	if query == "" {
		return []jobs.Job{}, StrategyNone
	}

	if id, ok := s.catalog.FindTitle(query); ok {
		j, _ := s.catalog.Job(id, 0, 1)
		return []jobs.Job{j}, StrategyExact
	}

	q := s.index.Vectorize(query)
	if q.Len() == 0 {
		return s.keywordScan(query), StrategyKeyword
	}

	type ranked struct {
		id    int64
		score float64
	}
	hits := s.index.Top(q, s.opts.SearchCandidates)
	boosted := make([]ranked, 0, len(hits))
	for _, h := range hits {
		r, _ := s.catalog.Record(int64(h.ID))
		boosted = append(boosted, ranked{
			id:    int64(h.ID),
			score: h.Score * salaryFactor(r, s.opts.SalaryBoost),
		})
	}
	sort.SliceStable(boosted, func(i, j int) bool {
		return boosted[i].score > boosted[j].score
	})
	if len(boosted) > s.opts.SearchLimit {
		boosted = boosted[:s.opts.SearchLimit]
	}

	out := make([]jobs.Job, 0, len(boosted))
	for _, b := range boosted {
		j, _ := s.catalog.Job(b.id, len(out), b.score)
		out = append(out, j)
	}
	return out, StrategyTFIDF
}

// keywordScan returns the first jobs whose title, description or skills
// contain the query.
func (s *Service) keywordScan(query string) []jobs.Job {
	lq := strings.ToLower(query)
	out := []jobs.Job{}
	s.catalog.Each(func(id int64, r catalog.Record) bool {
		if containsFold(r, lq) {
			j, _ := s.catalog.Job(id, len(out), 0)
			out = append(out, j)
		}
		return len(out) < s.opts.KeywordLimit
	})
	return out
}

func containsFold(r catalog.Record, lq string) bool {
	if strings.Contains(strings.ToLower(r.Title), lq) ||
		strings.Contains(strings.ToLower(r.Description), lq) {
		return true
	}
	for _, skill := range r.Skills {
		if strings.Contains(strings.ToLower(skill), lq) {
			return true
		}
	}
	return false
}

// salaryFactor scales a relevance score down for poorly paid jobs. Jobs
// above the curve's midpoint are not boosted.
func salaryFactor(r catalog.Record, maxPenalty float64) float64 {
	median := r.SalaryMin
	if r.SalaryMax > 0 {
		median = (r.SalaryMin + r.SalaryMax) / 2
	}
	boost := salaryCurve(median / 1000)
	return 1 + maxPenalty*math.Min(0, boost-0.5)*2
}

func salaryCurve(x float64) float64 {
	return 1 / (1 + math.Exp(-(salaryCurveA*math.Log(x+1) + salaryCurveB)))
}
