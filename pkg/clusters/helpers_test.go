package clusters

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/jobs"
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

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestManager(t *testing.T) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := NewManager(Options{
		Physics: visualization.DefaultConfig(),
		Gesture: DefaultGestureConfig(),
		Now:     clock.Now,
	})
	m.SetViewport(1200, 800)
	return m, clock
}

func mustCreate(t *testing.T, m *Manager, centerID int64, related int, at r2.Vec) *visualization.Cluster {
	t.Helper()
	c, err := m.Create(mapData(centerID, related), at)
	require.NoError(t, err)
	return c
}

type routed struct {
	kind      string
	clusterID int
	nodeID    int
}

type recordingRouter struct {
	calls []routed
}

func (r *recordingRouter) Promote(c *visualization.Cluster, n *visualization.Node) {
	r.calls = append(r.calls, routed{"promote", c.ID, n.ID})
}

func (r *recordingRouter) Detach(c *visualization.Cluster, n *visualization.Node) {
	r.calls = append(r.calls, routed{"detach", c.ID, n.ID})
}
