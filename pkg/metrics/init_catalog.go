package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCatalogMetrics() {
	r.CatalogJobs = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "scout_catalog_jobs",
			Help: "Number of jobs in the loaded catalog",
		},
	)

	r.CatalogLoadDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scout_catalog_load_duration_seconds",
			Help:    "Time to load the catalog by source kind",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"source"},
	)

	r.NeighbourBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scout_neighbour_build_duration_seconds",
			Help:    "Time to compute the neighbour graph",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)

	r.NeighbourCacheLookupsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_neighbour_cache_lookups_total",
			Help: "Neighbour cache lookups by result (hit, miss, stale)",
		},
		[]string{"result"},
	)
}
