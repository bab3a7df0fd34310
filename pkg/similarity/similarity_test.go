package similarity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/scout/pkg/metrics"
	"github.com/dd0wney/scout/pkg/search"
)

var docs = []string{
	"python data engineer spark pipelines",
	"python data scientist machine learning",
	"react frontend engineer typescript",
	"go backend engineer postgres",
	"nurse hospital patient care",
	"nurse practitioner clinic patient",
}

func lookups(t *testing.T, m *metrics.Registry, result string) float64 {
	t.Helper()
	var metric dto.Metric
	if err := m.NeighbourCacheLookupsTotal.WithLabelValues(result).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func buildIndex() *search.Index {
	return search.Build(docs, search.DefaultOptions())
}

func TestBuild(t *testing.T) {
	idx := buildIndex()
	g, err := Build(context.Background(), idx, "fp", BuildOptions{K: 2, Workers: 3})
	require.NoError(t, err)
	require.Equal(t, len(docs), g.Len())
	assert.Equal(t, 2, g.K)

	for i := range docs {
		ns := g.Of(int64(i))
		assert.LessOrEqual(t, len(ns), 2)
		for j, n := range ns {
			assert.NotEqual(t, i, n.ID, "doc %d lists itself", i)
			if j > 0 {
				assert.GreaterOrEqual(t, ns[j-1].Score, n.Score)
			}
		}
	}
	require.NotEmpty(t, g.Of(4))
	assert.Equal(t, 5, g.Of(4)[0].ID)
	assert.Nil(t, g.Of(-1))
	assert.Nil(t, g.Of(99))
}

func TestBuildMatchesSequential(t *testing.T) {
	idx := buildIndex()
	g, err := Build(context.Background(), idx, "fp", BuildOptions{K: 3, Workers: 4})
	require.NoError(t, err)
	for i := range docs {
		assert.Equal(t, idx.Similar(i, 3), g.Of(int64(i)))
	}
}

func TestSaveLoad(t *testing.T) {
	idx := buildIndex()
	g, err := Build(context.Background(), idx, "fp-1", BuildOptions{K: 3})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cache", CacheFile)
	require.NoError(t, Save(path, g))

	loaded, err := Load(path, "fp-1", 3, len(docs))
	require.NoError(t, err)
	assert.Equal(t, g, loaded)

	tests := []struct {
		name        string
		fingerprint string
		k, docs     int
	}{
		{"fingerprint", "fp-2", 3, len(docs)},
		{"k", "fp-1", 5, len(docs)},
		{"docs", "fp-1", 3, len(docs) + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(path, tt.fingerprint, tt.k, tt.docs)
			assert.ErrorIs(t, err, ErrStale)
		})
	}

	_, err = Load(filepath.Join(t.TempDir(), "none"), "fp-1", 3, len(docs))
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, os.WriteFile(path, []byte("not snappy"), 0o600))
	_, err = Load(path, "fp-1", 3, len(docs))
	assert.ErrorIs(t, err, ErrStale)
}

func TestLoadOrBuild(t *testing.T) {
	idx := buildIndex()
	dir := t.TempDir()
	m := metrics.NewRegistry()
	opts := BuildOptions{K: 2, Metrics: m}

	first, err := LoadOrBuild(context.Background(), dir, idx, "fp", opts)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, CacheFile))

	second, err := LoadOrBuild(context.Background(), dir, idx, "fp", opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = LoadOrBuild(context.Background(), dir, idx, "changed", opts)
	require.NoError(t, err)

	assert.Equal(t, 1.0, lookups(t, m, "miss"))
	assert.Equal(t, 1.0, lookups(t, m, "hit"))
	assert.Equal(t, 1.0, lookups(t, m, "stale"))
}

func TestLoadOrBuildWithoutCache(t *testing.T) {
	g, err := LoadOrBuild(context.Background(), "", buildIndex(), "fp", BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultNeighbours, g.K)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, buildIndex(), "fp", BuildOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
