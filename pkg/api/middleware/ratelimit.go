package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dd0wney/scout/pkg/logging"
)

// RouteCosts prices a request by its "METHOD /path" key. Unlisted routes
// cost one token; a zero cost exempts the route.
type RouteCosts map[string]float64

// DefaultRouteCosts charges more for the routes that build a neighbour
// graph than for plain reads, and never limits probes or scrapes.
func DefaultRouteCosts() RouteCosts {
	return RouteCosts{
		"GET /map_data":     2,
		"GET /job_as_query": 2,
		"POST /reinforce":   3,
		"GET /search":       1,
		"GET /health":       0,
		"GET /health/ready": 0,
		"GET /health/live":  0,
		"GET /metrics":      0,
	}
}

func (rc RouteCosts) cost(r *http.Request) float64 {
	if c, ok := rc[r.Method+" "+r.URL.Path]; ok {
		return c
	}
	return 1
}

// RateLimitConfig configures the per-client token buckets.
type RateLimitConfig struct {
	// RequestsPerSecond is the refill rate in tokens.
	RequestsPerSecond float64
	// BurstSize is the bucket capacity. A route costing more than the
	// burst costs the whole bucket.
	BurstSize       int
	Costs           RouteCosts
	CleanupInterval time.Duration
	// IdleExpiry drops a client's bucket once it has been unused this long.
	IdleExpiry time.Duration
	MaxClients int
	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultRateLimitConfig returns the server's defaults.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 20,
		BurstSize:         40,
		Costs:             DefaultRouteCosts(),
		CleanupInterval:   5 * time.Minute,
		IdleExpiry:        10 * time.Minute,
		MaxClients:        10000,
	}
}

type bucket struct {
	mu     sync.Mutex
	tokens float64
	seen   time.Time
}

// take refills b up to now and spends cost if it can. When it cannot, it
// returns how long until it could.
func (b *bucket) take(now time.Time, cost, rate, burst float64) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cost = math.Min(cost, burst)
	b.tokens = math.Min(burst, b.tokens+now.Sub(b.seen).Seconds()*rate)
	b.seen = now
	if b.tokens >= cost {
		b.tokens -= cost
		return true, 0
	}
	if rate <= 0 {
		return false, -1
	}
	return false, time.Duration((cost - b.tokens) / rate * float64(time.Second))
}

// RateLimiter keeps one token bucket per client.
type RateLimiter struct {
	cfg    RateLimitConfig
	logger logging.Logger

	mu      sync.Mutex
	clients map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter. A positive CleanupInterval starts a
// goroutine that Stop ends.
func NewRateLimiter(config *RateLimitConfig, logger logging.Logger) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	cfg := *config
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Costs == nil {
		cfg.Costs = DefaultRouteCosts()
	}
	rl := &RateLimiter{
		cfg:     cfg,
		logger:  logging.OrNop(logger),
		clients: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go rl.cleanupLoop()
	}
	return rl
}

// Allow spends cost tokens from the client's bucket. When refused, wait is
// how long until the same request would pass, or negative if it never can.
func (rl *RateLimiter) Allow(clientID string, cost float64) (ok bool, wait time.Duration) {
	if cost <= 0 {
		return true, 0
	}
	b := rl.bucket(clientID)
	if b == nil {
		return false, time.Second
	}
	return b.take(rl.cfg.Now(), cost, rl.cfg.RequestsPerSecond, float64(rl.cfg.BurstSize))
}

func (rl *RateLimiter) bucket(clientID string) *bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if b, ok := rl.clients[clientID]; ok {
		return b
	}
	if rl.cfg.MaxClients > 0 && len(rl.clients) >= rl.cfg.MaxClients {
		rl.logger.Warn("rate limiter full", logging.Count(len(rl.clients)), logging.String("client", clientID))
		return nil
	}
	b := &bucket{tokens: float64(rl.cfg.BurstSize), seen: rl.cfg.Now()}
	rl.clients[clientID] = b
	return b
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup forgets clients idle longer than IdleExpiry.
func (rl *RateLimiter) cleanup() int {
	now := rl.cfg.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for id, b := range rl.clients {
		b.mu.Lock()
		idle := now.Sub(b.seen) > rl.cfg.IdleExpiry
		b.mu.Unlock()
		if idle {
			delete(rl.clients, id)
			removed++
		}
	}
	if removed > 0 {
		rl.logger.Debug("rate limiter cleanup", logging.Count(removed))
	}
	return removed
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// ClientIP identifies a client by the host part of its remote address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit prices each request by its route and answers 429 once the
// client's bucket cannot cover it. Retry-After is in whole seconds, at
// least one. A nil limiter disables limiting.
func RateLimit(limiter *RateLimiter, clientID func(*http.Request) string) func(http.Handler) http.Handler {
	if clientID == nil {
		clientID = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			id := clientID(r)
			ok, wait := limiter.Allow(id, limiter.cfg.Costs.cost(r))
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			limiter.logger.Info("rate limited",
				logging.String("client", id),
				logging.String("method", r.Method),
				logging.Path(r.URL.Path),
				logging.Duration("wait", wait),
			)
			w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(limiter.cfg.RequestsPerSecond, 'f', -1, 64))
			if wait >= 0 {
				w.Header().Set("Retry-After", strconv.Itoa(max(1, int(math.Ceil(wait.Seconds())))))
			}
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		})
	}
}
