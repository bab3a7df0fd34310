package similarity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/search"
)

// CacheFile is the graph's file name inside the cache directory.
const CacheFile = "neighbours.json.sz"

var (
	// ErrCacheMiss means there is no cached graph.
	ErrCacheMiss = errors.New("similarity: no cached graph")
	// ErrStale means the cached graph belongs to another catalog or size.
	ErrStale = errors.New("similarity: cached graph is stale")
)

// Save writes g to path as snappy-compressed JSON. The file is replaced
// atomically.
func Save(path string, g *Graph) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, snappy.Encode(nil, raw), 0o644); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}

// Load reads a graph written by Save and checks that it was built for
// the given fingerprint, neighbour count and document count.
func Load(path, fingerprint string, k, docs int) (*Graph, error) {
	compressed, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStale, err)
	}
	var g Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStale, err)
	}
	if g.Fingerprint != fingerprint || g.K != k || len(g.Neighbours) != docs {
		return nil, ErrStale
	}
	return &g, nil
}

// LoadOrBuild returns the cached graph when it is current and otherwise
// builds and caches a new one. An empty dir disables the cache.
func LoadOrBuild(ctx context.Context, dir string, idx *search.Index, fingerprint string, opts BuildOptions) (*Graph, error) {
	logger := logging.OrNop(opts.Logger)
	k := opts.K
	if k <= 0 {
		k = DefaultNeighbours
	}

	path := ""
	if dir != "" {
		path = filepath.Join(dir, CacheFile)
		g, err := Load(path, fingerprint, k, idx.Len())
		switch {
		case err == nil:
			opts.Metrics.RecordNeighbourCache("hit")
			logger.Info("neighbour graph loaded from cache", logging.Path(path), logging.Count(g.Len()))
			return g, nil
		case errors.Is(err, ErrCacheMiss):
			opts.Metrics.RecordNeighbourCache("miss")
		case errors.Is(err, ErrStale):
			opts.Metrics.RecordNeighbourCache("stale")
			logger.Info("neighbour cache is stale", logging.Path(path))
		default:
			logger.Warn("neighbour cache unreadable", logging.Path(path), logging.Error(err))
		}
	}

	g, err := Build(ctx, idx, fingerprint, opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := Save(path, g); err != nil {
			logger.Warn("neighbour cache not written", logging.Path(path), logging.Error(err))
		}
	}
	return g, nil
}
