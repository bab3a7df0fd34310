package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initMapDataMetrics() {
	r.MapDataRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_mapdata_requests_total",
			Help: "Map-data requests by endpoint and outcome (hit, empty, invalid)",
		},
		[]string{"endpoint", "outcome"},
	)

	r.MapDataRelatedSize = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scout_mapdata_related_jobs",
			Help:    "Number of related jobs returned per map",
			Buckets: []float64{0, 1, 5, 10, 15, 20, 50},
		},
		[]string{"endpoint"},
	)

	r.SearchResultsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_search_requests_total",
			Help: "Search requests by strategy (exact, tfidf, keyword, none)",
		},
		[]string{"strategy"},
	)
}
