package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/scout/pkg/api/middleware"
	"github.com/dd0wney/scout/pkg/catalog"
	"github.com/dd0wney/scout/pkg/config"
	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/mapdata"
	"github.com/dd0wney/scout/pkg/search"
	"github.com/dd0wney/scout/pkg/similarity"
)

func records(titles ...string) []catalog.Record {
	rs := make([]catalog.Record, 0, len(titles)+16)
	for _, t := range titles {
		rs = append(rs, catalog.Record{
			Title:       t,
			Description: strings.ToLower(t) + " engineering systems",
			Company:     "Acme",
			SalaryMin:   90000,
			SalaryMax:   120000,
		})
	}
	for i := 0; i < 16; i++ {
		rs = append(rs, catalog.Record{
			Title:       fmt.Sprintf("Filler Role %d", i),
			Description: fmt.Sprintf("unrelated duties area%d", i),
			Company:     "Misc",
		})
	}
	return rs
}

func newService(t *testing.T, recs []catalog.Record) *mapdata.Service {
	t.Helper()
	c := catalog.New(recs)
	idx := search.Build(c.Documents(), search.DefaultOptions())
	g, err := similarity.Build(context.Background(), idx, c.Fingerprint(), similarity.BuildOptions{K: 15, Workers: 2})
	require.NoError(t, err)
	return mapdata.NewService(c, idx, g, mapdata.Options{Rand: rand.New(rand.NewSource(1))})
}

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) *Server {
	t.Helper()
	cfg := config.Default().Server
	cfg.RateLimit = 0
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewServer(newService(t, records("Backend Engineer", "Platform Engineer", "Data Engineer")), Options{
		Version: "test",
		Config:  cfg,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) jobs.MapData {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var out jobs.MapData
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var out ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestNewServerRequiresService(t *testing.T) {
	_, err := NewServer(nil, Options{})
	assert.Error(t, err)
}

func TestMapDataEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		query  string
		center string
	}{
		{"exact title", "backend%20engineer", "Backend Engineer"},
		{"no match", "zzzz", ""},
		{"blank", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := decodeMap(t, do(t, s, http.MethodGet, "/map_data?query="+tt.query, nil))
			if tt.center == "" {
				assert.Nil(t, out.Center)
				assert.NotNil(t, out.Related)
				return
			}
			require.NotNil(t, out.Center)
			assert.Equal(t, tt.center, out.Center.Title)
			assert.Equal(t, 0, out.Center.ID)
			assert.NotEmpty(t, out.Related)
		})
	}
}

func TestMapDataEmptyEncodesNullCenter(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/map_data?query=zzzz", nil)
	assert.JSONEq(t, `{"center": null, "related": []}`, rec.Body.String())
}

func TestJobAsQueryEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		jobID  string
		center string
		errMsg string
	}{
		{"valid", "1", "Platform Engineer", ""},
		{"unknown", "9999", "", "Invalid job ID"},
		{"negative", "-1", "", "Invalid job ID"},
		{"malformed", "abc", "", msgInvalidJobIDFormat},
		{"missing", "", "", msgInvalidJobIDFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := decodeMap(t, do(t, s, http.MethodGet, "/job_as_query?job_id="+tt.jobID, nil))
			assert.Equal(t, tt.errMsg, out.Error)
			if tt.center == "" {
				assert.Nil(t, out.Center)
				return
			}
			require.NotNil(t, out.Center)
			assert.Equal(t, tt.center, out.Center.Title)
			assert.Equal(t, jobs.ID(1), out.Center.OriginalID)
		})
	}
}

func TestReinforceEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	body := `{"center_id": 0, "selected_ids": [1, 2]}`
	out := decodeMap(t, do(t, s, http.MethodPost, "/reinforce", strings.NewReader(body)))

	require.NotNil(t, out.Center)
	assert.Equal(t, "Backend Engineer", out.Center.Title)
	require.GreaterOrEqual(t, len(out.Related), 2)
	assert.Equal(t, "Platform Engineer", out.Related[0].Title)
	assert.Equal(t, "Data Engineer", out.Related[1].Title)
	assert.Len(t, out.Related, mapdata.DefaultOptions().RelatedLimit)
}

func TestReinforceRejects(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"not json", `{`, http.StatusBadRequest, msgInvalidRequest},
		{"no selection", `{"center_id": 0, "selected_ids": []}`, http.StatusBadRequest, msgInvalidRequest},
		{"too many", `{"center_id": 0, "selected_ids": [1, 2, 3, 4]}`, http.StatusBadRequest, msgInvalidRequest},
		{"unknown center", `{"center_id": 9999, "selected_ids": [1]}`, http.StatusBadRequest, msgInvalidJobIDs},
		{"unknown selection", `{"center_id": 0, "selected_ids": [9999]}`, http.StatusBadRequest, msgInvalidJobIDs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/reinforce", strings.NewReader(tt.body))
			require.Equal(t, tt.code, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, http.StatusText(tt.code), resp.Error)
		})
	}
}

func TestReinforceMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/reinforce", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReinforceBodyTooLarge(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) { c.MaxBodyBytes = 16 })

	body := `{"center_id": 0, "selected_ids": [1, 2]}`
	rec := do(t, s, http.MethodPost, "/reinforce", strings.NewReader(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("exact", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/search?query=data%20engineer", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var out []jobs.Job
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		require.Len(t, out, 1)
		assert.Equal(t, "Data Engineer", out[0].Title)
	})

	t.Run("blank", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/search", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/health", "/health/ready", "/health/live"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "test", resp["version"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	do(t, s, http.MethodGet, "/map_data?query=backend", nil)
	rec := do(t, s, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "scout_http_requests_total")
	assert.Contains(t, body, `path="/map_data"`)
}

func TestGraphQLEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	query, err := json.Marshal(map[string]string{
		"query": `{ mapData(query: "Data Engineer") { center { title originalId } } }`,
	})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/graphql", bytes.NewReader(query))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"data": {"mapData": {"center": {"title": "Data Engineer", "originalId": 2}}}}`,
		rec.Body.String())

	rec = do(t, s, http.MethodGet, "/graphql", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSetServiceSwapsAllRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	out := decodeMap(t, do(t, s, http.MethodGet, "/map_data?query=pastry%20chef", nil))
	require.Nil(t, out.Center)

	s.SetService(newService(t, records("Pastry Chef")))
	s.SetService(nil)

	out = decodeMap(t, do(t, s, http.MethodGet, "/map_data?query=pastry%20chef", nil))
	require.NotNil(t, out.Center)
	assert.Equal(t, "Pastry Chef", out.Center.Title)

	query := strings.NewReader(`{"query": "{ search(query: \"pastry chef\") { strategy } }"}`)
	rec := do(t, s, http.MethodPost, "/graphql", query)
	assert.JSONEq(t, `{"data": {"search": {"strategy": "exact"}}}`, rec.Body.String())
}

func TestMiddlewareChain(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) {
		c.CORSOrigins = []string{"http://localhost:3000"}
	})

	req := httptest.NewRequest(http.MethodGet, "/search?query=x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	req = httptest.NewRequest(http.MethodGet, "/search?query=x", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimited(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) {
		c.RateLimit = 1
		c.RateBurst = 3
	})

	search := do(t, s, http.MethodGet, "/search?query=engineer", nil)
	reinforce := do(t, s, http.MethodPost, "/reinforce", strings.NewReader(`{"center_id": 0, "selected_ids": [1]}`))
	live := do(t, s, http.MethodGet, "/health/live", nil)

	assert.Equal(t, http.StatusOK, search.Code)
	assert.Equal(t, http.StatusTooManyRequests, reinforce.Code, "a reinforce costs three tokens")
	assert.Equal(t, "1", reinforce.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, live.Code, "probes are never limited")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
