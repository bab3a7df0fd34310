package health

import (
	"fmt"
	"runtime"
	"time"
)

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) Check {
	return Check{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: time.Now(),
	}
}

// CatalogCheck is unhealthy until the catalog holds at least one job.
func CatalogCheck(jobs func() int) CheckFunc {
	return func() Check {
		n := jobs()
		check := Check{
			Name:    "catalog",
			Details: map[string]any{"jobs": n},
		}
		if n == 0 {
			check.Status = StatusUnhealthy
			check.Message = "Catalog not loaded"
		} else {
			check.Status = StatusHealthy
			check.Message = fmt.Sprintf("%d jobs", n)
		}
		return check
	}
}

// NeighbourCheck compares the neighbour graph with the catalog it was built
// for. A graph covering fewer jobs means reinforcement falls back to random
// fill for the rest.
func NeighbourCheck(counts func() (rows, jobs int)) CheckFunc {
	return func() Check {
		rows, jobs := counts()
		check := Check{
			Name: "neighbours",
			Details: map[string]any{
				"rows": rows,
				"jobs": jobs,
			},
		}
		switch {
		case rows == 0:
			check.Status = StatusUnhealthy
			check.Message = "Neighbour graph missing"
		case rows < jobs:
			check.Status = StatusDegraded
			check.Message = "Neighbour graph incomplete"
		default:
			check.Status = StatusHealthy
			check.Message = "Neighbour graph ready"
		}
		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()
		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		if sys > 0 && float64(alloc)/float64(sys)*100 > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}
		return check
	}
}

// RuntimeMemory reads the heap figures MemoryCheck expects.
func RuntimeMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
