package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/metrics"
)

// Source kinds.
const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

// Options configures the remote sources.
type Options struct {
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	PostgresTable    string
	PostgresMaxConns int32

	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Kind classifies a source URI.
func Kind(source string) (string, error) {
	scheme, _, found := strings.Cut(source, "://")
	if !found {
		return SourceFile, nil
	}
	switch strings.ToLower(scheme) {
	case "file":
		return SourceFile, nil
	case "s3":
		return SourceS3, nil
	case "postgres", "postgresql":
		return SourcePostgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, scheme)
	}
}

// Load reads a catalog from a file path, s3://bucket/key or a postgres://
// URL.
func Load(ctx context.Context, source string, opts Options) (*Catalog, error) {
	logger := logging.OrNop(opts.Logger)
	kind, err := Kind(source)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var records []Record
	switch kind {
	case SourceFile:
		records, err = loadFile(strings.TrimPrefix(source, "file://"))
	case SourceS3:
		records, err = loadS3(ctx, source, opts)
	case SourcePostgres:
		records, err = loadPostgres(ctx, source, opts)
	}
	if err != nil {
		logger.Error("catalog load failed", logging.String("source", kind), logging.Error(err))
		return nil, err
	}

	c := New(records)
	if c.Len() == 0 {
		return nil, fmt.Errorf("%w in %s source", ErrEmpty, kind)
	}
	if dropped := len(records) - c.Len(); dropped > 0 {
		logger.Warn("catalog records without a title dropped", logging.Count(dropped))
	}

	elapsed := time.Since(start)
	opts.Metrics.RecordCatalogLoad(kind, c.Len(), elapsed)
	logger.Info("catalog loaded",
		logging.String("source", kind),
		logging.Count(c.Len()),
		logging.Latency(elapsed),
	)
	return c, nil
}
