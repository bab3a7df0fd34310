package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initExplorerMetrics() {
	r.ExplorerTicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "scout_explorer_ticks_total",
			Help: "Simulation ticks that advanced at least one cluster",
		},
	)

	r.ExplorerTickDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scout_explorer_tick_duration_seconds",
			Help:    "Time spent in one tick including both resolvers",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033},
		},
	)

	r.ExplorerClusters = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "scout_explorer_clusters",
			Help: "Clusters currently on the canvas",
		},
	)

	r.ExplorerNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "scout_explorer_nodes",
			Help: "Nodes currently on the canvas",
		},
	)

	r.ExplorerCollisionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "scout_explorer_collisions_total",
			Help: "Inter-cluster node overlaps corrected",
		},
	)

	r.ExplorerSeparationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_explorer_separations_total",
			Help: "Cluster pairs pushed apart, by mode (nudge, shift)",
		},
		[]string{"mode"},
	)

	r.ExplorerTransitionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_explorer_transitions_total",
			Help: "Gesture transitions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	r.ExplorerFetchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_explorer_fetches_total",
			Help: "Map-data fetches by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	r.ExplorerFetchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scout_explorer_fetch_duration_seconds",
			Help:    "Map-data fetch latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	r.ExplorerFramesPublished = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_explorer_frames_published_total",
			Help: "Frames handed to renderers, by sink",
		},
		[]string{"sink"},
	)
}
