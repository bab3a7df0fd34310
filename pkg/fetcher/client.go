// Package fetcher is the explorer's client for the map-data endpoints. It
// normalizes an absent center into ErrNoResults and every other failure
// into a *TransportError.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/metrics"
)

const (
	// DefaultBaseURL is where scout-server listens by default.
	DefaultBaseURL = "http://localhost:5000"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 8 << 20
)

// ErrNoResults means the server answered but had no center job.
var ErrNoResults = errors.New("fetcher: no results")

// TransportError is a network failure or a non-success response.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned %d %s", e.Op, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client talks to a map-data server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
	metrics    *metrics.Registry
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is then ignored.
	HTTPClient *http.Client
	Logger     logging.Logger
	Metrics    *metrics.Registry
}

// NewClient creates a client.
func NewClient(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: httpClient,
		logger:     logging.OrNop(opts.Logger).With(logging.Component("fetcher")),
		metrics:    opts.Metrics,
	}
}

// MapData runs a fresh search.
func (c *Client) MapData(ctx context.Context, query string) (*jobs.MapData, error) {
	q := url.Values{"query": {query}}
	return c.do(ctx, "map_data", http.MethodGet, "/map_data?"+q.Encode(), nil)
}

// JobAsQuery fetches the map centered on an existing job.
func (c *Client) JobAsQuery(ctx context.Context, jobID int64) (*jobs.MapData, error) {
	q := url.Values{"job_id": {strconv.FormatInt(jobID, 10)}}
	return c.do(ctx, "job_as_query", http.MethodGet, "/job_as_query?"+q.Encode(), nil)
}

// Reinforce asks for a related set recomputed around the selected jobs.
func (c *Client) Reinforce(ctx context.Context, req jobs.ReinforceRequest) (*jobs.MapData, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, "reinforce", http.MethodPost, "/reinforce", body)
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) (data *jobs.MapData, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrNoResults):
			outcome = "empty"
		case err != nil:
			outcome = "error"
		}
		c.metrics.RecordFetch(op, outcome, time.Since(start))
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &TransportError{Op: op, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	data, dropped, err := jobs.DecodeMapData(raw)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if dropped > 0 {
		c.logger.Warn("dropped malformed jobs",
			logging.Operation(op),
			logging.Count(dropped),
		)
	}
	if data.Empty() {
		return nil, ErrNoResults
	}

	c.logger.Debug("map data fetched",
		logging.Operation(op),
		logging.Count(len(data.Related)),
		logging.Latency(time.Since(start)),
	)
	return data, nil
}
