package transition

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/clusters"
	"github.com/dd0wney/scout/pkg/fetcher"
	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/scheduler"
	"github.com/dd0wney/scout/pkg/visualization"
)

func mapData(centerID int64, related int) *jobs.MapData {
	md := &jobs.MapData{
		Center: &jobs.Job{
			Title:       fmt.Sprintf("Center %d", centerID),
			Description: "center job",
			OriginalID:  jobs.ID(centerID),
			Score:       1,
		},
	}
	for i := 0; i < related; i++ {
		md.Related = append(md.Related, jobs.Job{
			Title:       fmt.Sprintf("Related %d-%d", centerID, i),
			Description: "related job",
			OriginalID:  jobs.ID(centerID*100 + int64(i) + 1),
			Score:       0.5,
		})
	}
	return md
}

type fakeFetcher struct {
	jobCalls       []int64
	reinforceCalls []jobs.ReinforceRequest

	byJob     map[int64]*jobs.MapData
	reinforce *jobs.MapData
	err       error
}

func (f *fakeFetcher) JobAsQuery(ctx context.Context, jobID int64) (*jobs.MapData, error) {
	f.jobCalls = append(f.jobCalls, jobID)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.byJob[jobID]; ok {
		return d, nil
	}
	return nil, fetcher.ErrNoResults
}

func (f *fakeFetcher) Reinforce(ctx context.Context, req jobs.ReinforceRequest) (*jobs.MapData, error) {
	f.reinforceCalls = append(f.reinforceCalls, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.reinforce == nil {
		return nil, fetcher.ErrNoResults
	}
	return f.reinforce, nil
}

type harness struct {
	v        *scheduler.Virtual
	m        *clusters.Manager
	ctl      *Controller
	f        *fakeFetcher
	finished []*Transition
	failures []error
	built    []int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		v: scheduler.NewVirtual(time.Unix(1_700_000_000, 0)),
		f: &fakeFetcher{byJob: map[int64]*jobs.MapData{}},
	}
	h.m = clusters.NewManager(clusters.Options{
		Physics: visualization.DefaultConfig(),
		Gesture: clusters.DefaultGestureConfig(),
		Now:     h.v.Now,
	})
	h.m.SetViewport(1200, 800)
	h.ctl = NewController(h.v, h.m, h.f, Options{
		Config: DefaultConfig(),
		Hooks: Hooks{
			Materialized: func(_ *Transition, c *visualization.Cluster) { h.built = append(h.built, c.ID) },
			Failed:       func(_ *Transition, err error) { h.failures = append(h.failures, err) },
			Finished:     func(t *Transition) { h.finished = append(h.finished, t) },
		},
	})
	return h
}

// run advances virtual time in frame-sized steps, ticking the manager so
// tweens and physics progress as they would on the real loop.
func (h *harness) run(d time.Duration) {
	const frame = 16 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		h.v.Advance(frame)
		h.m.Tick()
	}
}

func (h *harness) create(t *testing.T, centerID int64, related int, at r2.Vec) *visualization.Cluster {
	t.Helper()
	c, err := h.m.Create(mapData(centerID, related), at)
	require.NoError(t, err)
	return c
}

func (h *harness) node(t *testing.T, c *visualization.Cluster, id int) *visualization.Node {
	t.Helper()
	n, ok := c.Node(id)
	require.True(t, ok)
	return n
}

func centerJobIDs(m *clusters.Manager) []int64 {
	var out []int64
	for _, c := range m.Clusters() {
		if id, ok := c.Center().Job.ExternalID(); ok {
			out = append(out, id)
		}
	}
	return out
}
