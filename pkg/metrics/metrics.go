package metrics

import (
	"runtime"
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the size of an HTTP response body
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	if r == nil {
		return
	}
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

// IncHTTPRequestsInFlight marks a request as started
func (r *Registry) IncHTTPRequestsInFlight() {
	if r == nil {
		return
	}
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks a request as finished
func (r *Registry) DecHTTPRequestsInFlight() {
	if r == nil {
		return
	}
	r.HTTPRequestsInFlight.Dec()
}

// RecordMapData records one map-data response
func (r *Registry) RecordMapData(endpoint, outcome string, related int) {
	if r == nil {
		return
	}
	r.MapDataRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	if outcome == "hit" {
		r.MapDataRelatedSize.WithLabelValues(endpoint).Observe(float64(related))
	}
}

// RecordSearch records which strategy answered a search
func (r *Registry) RecordSearch(strategy string) {
	if r == nil {
		return
	}
	r.SearchResultsTotal.WithLabelValues(strategy).Inc()
}

// RecordCatalogLoad records a catalog load
func (r *Registry) RecordCatalogLoad(source string, jobs int, duration time.Duration) {
	if r == nil {
		return
	}
	r.CatalogJobs.Set(float64(jobs))
	r.CatalogLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordNeighbourBuild records a neighbour graph computation
func (r *Registry) RecordNeighbourBuild(duration time.Duration) {
	if r == nil {
		return
	}
	r.NeighbourBuildDuration.Observe(duration.Seconds())
}

// RecordNeighbourCache records a cache lookup result
func (r *Registry) RecordNeighbourCache(result string) {
	if r == nil {
		return
	}
	r.NeighbourCacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordTick records one explorer tick
func (r *Registry) RecordTick(duration time.Duration, collisions, nudged, shifted int) {
	if r == nil {
		return
	}
	r.ExplorerTicksTotal.Inc()
	r.ExplorerTickDuration.Observe(duration.Seconds())
	if collisions > 0 {
		r.ExplorerCollisionsTotal.Add(float64(collisions))
	}
	if nudged > 0 {
		r.ExplorerSeparationsTotal.WithLabelValues("nudge").Add(float64(nudged))
	}
	if shifted > 0 {
		r.ExplorerSeparationsTotal.WithLabelValues("shift").Add(float64(shifted))
	}
}

// SetCanvasSize updates the cluster and node gauges
func (r *Registry) SetCanvasSize(clusters, nodes int) {
	if r == nil {
		return
	}
	r.ExplorerClusters.Set(float64(clusters))
	r.ExplorerNodes.Set(float64(nodes))
}

// RecordTransition records the end of a promote, detach or reinforce
func (r *Registry) RecordTransition(kind, outcome string) {
	if r == nil {
		return
	}
	r.ExplorerTransitionsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordFetch records a client-side map-data fetch
func (r *Registry) RecordFetch(operation, outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.ExplorerFetchesTotal.WithLabelValues(operation, outcome).Inc()
	r.ExplorerFetchDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordFrame records a frame handed to a sink
func (r *Registry) RecordFrame(sink string) {
	if r == nil {
		return
	}
	r.ExplorerFramesPublished.WithLabelValues(sink).Inc()
}

// UpdateSystemMetrics samples runtime statistics
func (r *Registry) UpdateSystemMetrics(started time.Time) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	r.UptimeSeconds.Set(time.Since(started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(ms.Alloc))
	r.MemorySysBytes.Set(float64(ms.Sys))
}
