package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapServer stands in for the map-data service: how many jobs the catalog
// holds, how many neighbour rows were built, and the heap figures.
type mapServer struct {
	jobs  atomic.Int64
	rows  atomic.Int64
	alloc atomic.Uint64
	sys   atomic.Uint64
}

func newMapServer(jobs, rows int) *mapServer {
	s := &mapServer{}
	s.jobs.Store(int64(jobs))
	s.rows.Store(int64(rows))
	s.alloc.Store(100 << 20)
	s.sys.Store(400 << 20)
	return s
}

// checker registers the checks the API server registers.
func (s *mapServer) checker() *HealthChecker {
	hc := NewHealthChecker("scout-test")
	catalog := CatalogCheck(func() int { return int(s.jobs.Load()) })
	neighbours := NeighbourCheck(func() (int, int) { return int(s.rows.Load()), int(s.jobs.Load()) })
	memory := MemoryCheck(func() (uint64, uint64) { return s.alloc.Load(), s.sys.Load() })

	hc.RegisterCheck("catalog", catalog)
	hc.RegisterCheck("neighbours", neighbours)
	hc.RegisterCheck("memory", memory)
	hc.RegisterReadinessCheck("catalog", catalog)
	hc.RegisterReadinessCheck("neighbours", neighbours)
	hc.RegisterLivenessCheck("process", func() Check { return SimpleCheck("process") })
	return hc
}

func get(t *testing.T, h http.HandlerFunc) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestServerLifecycle(t *testing.T) {
	tests := []struct {
		name       string
		jobs, rows int
		overall    Status
		full       int
		ready      int
		message    string
	}{
		{"cold start", 0, 0, StatusUnhealthy, http.StatusServiceUnavailable, http.StatusServiceUnavailable, "Catalog not loaded"},
		{"catalog without graph", 120, 0, StatusUnhealthy, http.StatusServiceUnavailable, http.StatusServiceUnavailable, "Neighbour graph missing"},
		{"graph from an older catalog", 120, 80, StatusDegraded, http.StatusOK, http.StatusServiceUnavailable, "Neighbour graph incomplete"},
		{"ready", 120, 120, StatusHealthy, http.StatusOK, http.StatusOK, "Neighbour graph ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := newMapServer(tt.jobs, tt.rows).checker()

			code, resp := get(t, hc.HTTPHandler())
			assert.Equal(t, tt.full, code)
			assert.Equal(t, tt.overall, resp.Status)
			assert.Len(t, resp.Checks, 3)
			assert.Equal(t, "scout-test", resp.Version)

			code, resp = get(t, hc.ReadinessHandler())
			assert.Equal(t, tt.ready, code)
			assert.Len(t, resp.Checks, 2)
			if tt.jobs == 0 {
				assert.Equal(t, tt.message, resp.Checks["catalog"].Message)
			} else {
				assert.Equal(t, tt.message, resp.Checks["neighbours"].Message)
			}

			code, _ = get(t, hc.LivenessHandler())
			assert.Equal(t, http.StatusOK, code, "a loading server is alive")
		})
	}
}

func TestReadinessFollowsServiceSwap(t *testing.T) {
	s := newMapServer(50, 50)
	hc := s.checker()
	require.Equal(t, StatusHealthy, hc.CheckReadiness().Status)

	// A combined catalog lands before its neighbour graph is rebuilt.
	s.jobs.Store(75)
	resp := hc.CheckReadiness()
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, map[string]any{"rows": 50, "jobs": 75}, resp.Checks["neighbours"].Details)

	s.rows.Store(75)
	assert.Equal(t, StatusHealthy, hc.CheckReadiness().Status)
}

func TestMemoryPressureDegradesOnlyFullCheck(t *testing.T) {
	s := newMapServer(10, 10)
	s.alloc.Store(95)
	s.sys.Store(100)
	hc := s.checker()

	code, resp := get(t, hc.HTTPHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, "High memory usage", resp.Checks["memory"].Message)

	code, _ = get(t, hc.ReadinessHandler())
	assert.Equal(t, http.StatusOK, code)
}

func TestCatalogCheck(t *testing.T) {
	tests := []struct {
		jobs    int
		status  Status
		message string
	}{
		{0, StatusUnhealthy, "Catalog not loaded"},
		{1, StatusHealthy, "1 jobs"},
		{2400, StatusHealthy, "2400 jobs"},
	}
	for _, tt := range tests {
		c := CatalogCheck(func() int { return tt.jobs })()
		assert.Equal(t, "catalog", c.Name)
		assert.Equal(t, tt.status, c.Status)
		assert.Equal(t, tt.message, c.Message)
		assert.Equal(t, tt.jobs, c.Details["jobs"])
	}
}

func TestMemoryCheckWithoutSys(t *testing.T) {
	c := MemoryCheck(func() (uint64, uint64) { return 10, 0 })()
	assert.Equal(t, StatusHealthy, c.Status)

	alloc, sys := RuntimeMemory()
	assert.Positive(t, alloc)
	assert.GreaterOrEqual(t, sys, alloc)
}

func TestWorse(t *testing.T) {
	assert.Equal(t, StatusDegraded, worse(StatusHealthy, StatusDegraded))
	assert.Equal(t, StatusUnhealthy, worse(StatusUnhealthy, StatusDegraded))
	assert.Equal(t, StatusHealthy, worse(StatusHealthy, ""))
}

func TestRunStampsChecks(t *testing.T) {
	hc := NewHealthChecker("")
	hc.RegisterCheck("neighbours", func() Check {
		time.Sleep(5 * time.Millisecond)
		return Check{Status: StatusHealthy}
	})

	resp := hc.Check()
	c := resp.Checks["neighbours"]
	assert.Equal(t, "neighbours", c.Name, "name defaults to the registration")
	assert.GreaterOrEqual(t, c.Duration, 5*time.Millisecond)
	assert.False(t, c.LastChecked.IsZero())
	assert.NotEmpty(t, resp.Uptime)
}

func TestChecksRegisterWhileServing(t *testing.T) {
	s := newMapServer(10, 10)
	hc := s.checker()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			hc.RegisterReadinessCheck("catalog", CatalogCheck(func() int { return int(s.jobs.Load()) }))
		}()
		go func() {
			defer wg.Done()
			_ = hc.CheckReadiness()
		}()
	}
	wg.Wait()
	assert.Equal(t, StatusHealthy, hc.CheckReadiness().Status)
}

func TestCheckMayRegisterDuringRun(t *testing.T) {
	hc := NewHealthChecker("")
	hc.RegisterLivenessCheck("process", func() Check {
		hc.RegisterLivenessCheck("late", func() Check { return SimpleCheck("late") })
		return SimpleCheck("process")
	})

	done := make(chan Response, 1)
	go func() { done <- hc.CheckLiveness() }()
	select {
	case resp := <-done:
		assert.Equal(t, StatusHealthy, resp.Status)
	case <-time.After(time.Second):
		t.Fatal("a check registering another deadlocked")
	}
	assert.Len(t, hc.CheckLiveness().Checks, 2)
}
