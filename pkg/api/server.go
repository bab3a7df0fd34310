// Package api serves the map endpoints over HTTP: the REST routes the
// explorer calls, a GraphQL mount over the same service, health probes and
// Prometheus metrics.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/scout/pkg/api/middleware"
	"github.com/dd0wney/scout/pkg/graphql"
	"github.com/dd0wney/scout/pkg/health"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/mapdata"
	"github.com/dd0wney/scout/pkg/metrics"
)

// Server represents the HTTP API server
type Server struct {
	svc atomic.Pointer[mapdata.Service]

	opts          Options
	logger        logging.Logger
	metrics       *metrics.Registry
	healthChecker *health.HealthChecker
	graphql       *graphql.Handler
	limiter       *middleware.RateLimiter
	handler       http.Handler
	startTime     time.Time
}

// NewServer creates a server answering from svc. A nil metrics registry in
// opts gets a private one.
func NewServer(svc *mapdata.Service, opts Options) (*Server, error) {
	if svc == nil {
		return nil, errors.New("api: nil map-data service")
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}
	if opts.GraphQLMaxDepth <= 0 {
		opts.GraphQLMaxDepth = graphql.DefaultMaxDepth
	}

	s := &Server{
		opts:          opts,
		logger:        logging.OrNop(opts.Logger).With(logging.Component("api")),
		metrics:       opts.Metrics,
		healthChecker: health.NewHealthChecker(opts.Version),
		startTime:     time.Now(),
	}
	s.svc.Store(svc)

	schema, err := graphql.GenerateSchema(s)
	if err != nil {
		return nil, fmt.Errorf("api: generate graphql schema: %w", err)
	}
	s.graphql = graphql.NewHandler(schema, opts.GraphQLMaxDepth, s.logger)

	if opts.Config.RateLimit > 0 {
		cfg := middleware.DefaultRateLimitConfig()
		cfg.RequestsPerSecond = opts.Config.RateLimit
		cfg.BurstSize = opts.Config.RateBurst
		s.limiter = middleware.NewRateLimiter(cfg, s.logger)
	}

	s.registerHealthChecks()
	s.handler = s.buildHandler()
	return s, nil
}

// SetService swaps the service behind every route. Requests already
// running finish against the old one.
func (s *Server) SetService(svc *mapdata.Service) {
	if svc == nil {
		s.logger.Warn("ignoring nil service swap")
		return
	}
	s.svc.Store(svc)
	rows, jobs := svc.Neighbours()
	s.logger.Info("service swapped",
		logging.Count(jobs),
		logging.Int("neighbour_rows", rows),
	)
}

func (s *Server) service() *mapdata.Service {
	return s.svc.Load()
}

// Handler returns the complete middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close releases background resources. The server must not serve after.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) registerHealthChecks() {
	catalogCheck := health.CatalogCheck(func() int {
		return s.service().Catalog().Len()
	})
	neighbourCheck := health.NeighbourCheck(func() (int, int) {
		return s.service().Neighbours()
	})
	memoryCheck := health.MemoryCheck(health.RuntimeMemory)

	s.healthChecker.RegisterCheck("catalog", catalogCheck)
	s.healthChecker.RegisterCheck("neighbours", neighbourCheck)
	s.healthChecker.RegisterCheck("memory", memoryCheck)

	s.healthChecker.RegisterReadinessCheck("catalog", catalogCheck)
	s.healthChecker.RegisterReadinessCheck("neighbours", neighbourCheck)

	s.healthChecker.RegisterLivenessCheck("process", func() health.Check {
		return health.SimpleCheck("process")
	})
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /map_data", s.handleMapData)
	mux.HandleFunc("GET /job_as_query", s.handleJobAsQuery)
	mux.HandleFunc("POST /reinforce", s.handleReinforce)
	mux.HandleFunc("GET /search", s.handleSearch)

	mux.Handle("/graphql", s.graphql)

	mux.HandleFunc("GET /health", s.healthChecker.HTTPHandler())
	mux.HandleFunc("GET /health/ready", s.healthChecker.ReadinessHandler())
	mux.HandleFunc("GET /health/live", s.healthChecker.LivenessHandler())
	mux.Handle("GET /metrics", s.metricsHandler())

	return mux
}

// buildHandler wraps the routes, outermost first: panic recovery, request
// id, logging, CORS, security headers, body limit, rate limit, metrics.
// Metrics sits directly on the mux so it sees the matched pattern.
func (s *Server) buildHandler() http.Handler {
	cors := middleware.DefaultCORSConfig()
	if len(s.opts.Config.CORSOrigins) > 0 {
		cors.AllowedOrigins = s.opts.Config.CORSOrigins
	}

	var h http.Handler = s.routes()
	h = middleware.Metrics(s.metrics)(h)
	h = middleware.RateLimit(s.limiter, nil)(h)
	if s.opts.Config.MaxBodyBytes > 0 {
		h = middleware.BodySizeLimit(s.opts.Config.MaxBodyBytes)(h)
	}
	h = middleware.SecurityHeaders()(h)
	h = middleware.CORS(cors)(h)
	h = middleware.Logging(s.logger)(h)
	h = middleware.RequestID()(h)
	h = middleware.PanicRecovery(s.logger)(h)
	return h
}

func (s *Server) metricsHandler() http.Handler {
	prom := promhttp.HandlerFor(s.metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.UpdateSystemMetrics(s.startTime)
		prom.ServeHTTP(w, r)
	})
}
