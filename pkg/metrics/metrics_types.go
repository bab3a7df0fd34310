package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application. Record methods are safe on
// a nil *Registry so components can run unmetered.
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Map-data service metrics
	MapDataRequestsTotal *prometheus.CounterVec
	MapDataRelatedSize   *prometheus.HistogramVec
	SearchResultsTotal   *prometheus.CounterVec

	// Catalog metrics
	CatalogJobs                prometheus.Gauge
	CatalogLoadDuration        *prometheus.HistogramVec
	NeighbourBuildDuration     prometheus.Histogram
	NeighbourCacheLookupsTotal *prometheus.CounterVec

	// Explorer metrics
	ExplorerTicksTotal       prometheus.Counter
	ExplorerTickDuration     prometheus.Histogram
	ExplorerClusters         prometheus.Gauge
	ExplorerNodes            prometheus.Gauge
	ExplorerCollisionsTotal  prometheus.Counter
	ExplorerSeparationsTotal *prometheus.CounterVec
	ExplorerTransitionsTotal *prometheus.CounterVec
	ExplorerFetchesTotal     *prometheus.CounterVec
	ExplorerFetchDuration    *prometheus.HistogramVec
	ExplorerFramesPublished  *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.Mutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initHTTPMetrics()
	r.initMapDataMetrics()
	r.initCatalogMetrics()
	r.initExplorerMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
