package clusters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/jobs"
)

func TestCreateAssignsIDsAndActive(t *testing.T) {
	m, _ := newTestManager(t)

	a := mustCreate(t, m, 1, 5, m.ViewportCenter())
	b := mustCreate(t, m, 2, 3, r2.Vec{X: 100, Y: 100})

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, 2, m.Len())

	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, b.ID, active.ID)

	for _, c := range m.Clusters() {
		assert.NoError(t, c.Check())
	}
}

func TestCreateRejectsEmptyData(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Create(&jobs.MapData{}, r2.Vec{})
	assert.Error(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestCreateReactivatesExistingClusters(t *testing.T) {
	m, _ := newTestManager(t)
	a := mustCreate(t, m, 1, 4, r2.Vec{X: 0, Y: 0})
	a.Simulation().Stop()
	require.False(t, a.Simulation().Active())

	mustCreate(t, m, 2, 4, r2.Vec{X: 900, Y: 0})

	assert.True(t, a.Simulation().Active())
	assert.InDelta(t, 0.3, a.Simulation().Alpha(), 1e-9)
}

func TestCreateInPlaceStartsHidden(t *testing.T) {
	m, _ := newTestManager(t)
	at := r2.Vec{X: 300, Y: 200}

	c, err := m.CreateInPlace(mapData(7, 4), at)
	require.NoError(t, err)

	assert.False(t, c.Simulation().Active())
	center := c.Center()
	require.NotNil(t, center)
	pinned, ok := center.PinnedAt()
	require.True(t, ok)
	assert.Equal(t, at, pinned)
	for _, n := range c.Nodes {
		assert.Equal(t, at, n.Pos)
		assert.Zero(t, n.Visual.Opacity)
	}
	for _, l := range c.Links {
		assert.Zero(t, l.Opacity)
	}
}

func TestRemove(t *testing.T) {
	m, _ := newTestManager(t)
	a := mustCreate(t, m, 1, 2, r2.Vec{})
	b := mustCreate(t, m, 2, 2, r2.Vec{X: 800})

	assert.True(t, m.Remove(b.ID))
	assert.False(t, m.Remove(b.ID))

	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, a.ID, active.ID)

	assert.True(t, m.Remove(a.ID))
	_, ok = m.Active()
	assert.False(t, ok)
}

func TestRemoveNodeDropsIncidentLinks(t *testing.T) {
	m, _ := newTestManager(t)
	c := mustCreate(t, m, 1, 3, r2.Vec{})
	c.Simulation().Stop()

	n, err := m.RemoveNode(c.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n.ID)

	_, ok := c.Node(2)
	assert.False(t, ok)
	for _, l := range c.Links {
		assert.NotEqual(t, 2, l.Target.ID)
	}
	assert.Len(t, c.Links, 2)
	assert.True(t, c.Simulation().Active())
	assert.NoError(t, c.Check())

	_, err = m.RemoveNode(c.ID, 0)
	assert.Error(t, err)
	_, err = m.RemoveNode(99, 1)
	assert.ErrorIs(t, err, ErrUnknownCluster)
}

func TestLookup(t *testing.T) {
	m, _ := newTestManager(t)
	c := mustCreate(t, m, 1, 2, r2.Vec{})

	_, n, err := m.Lookup(c.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n.ID)

	_, _, err = m.Lookup(c.ID, 9)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestHitTest(t *testing.T) {
	m, _ := newTestManager(t)
	c := mustCreate(t, m, 1, 2, r2.Vec{X: 500, Y: 500})

	cid, nid, ok := m.HitTest(r2.Vec{X: 510, Y: 500})
	require.True(t, ok)
	assert.Equal(t, c.ID, cid)
	assert.Equal(t, 0, nid)

	_, _, ok = m.HitTest(r2.Vec{X: -5000, Y: -5000})
	assert.False(t, ok)

	for _, n := range c.Nodes {
		n.Visual.Opacity = 0
	}
	_, _, ok = m.HitTest(r2.Vec{X: 500, Y: 500})
	assert.False(t, ok, "invisible nodes are not hit")
}

func TestTickPublishesFrames(t *testing.T) {
	m, _ := newTestManager(t)
	var frames []Frame
	unsubscribe := m.Subscribe(func(f Frame) { frames = append(frames, f) })

	c := mustCreate(t, m, 1, 3, m.ViewportCenter())
	stats := m.Tick()
	assert.Equal(t, 1, stats.Stepped)
	require.Len(t, frames, 1)
	assert.Equal(t, uint64(1), frames[0].Seq)
	require.Len(t, frames[0].Clusters, 1)
	assert.Len(t, frames[0].Clusters[0].Nodes, 4)
	assert.Len(t, frames[0].Clusters[0].Links, 3)

	center, ok := frames[0].Node(c.ID, 0)
	require.True(t, ok)
	assert.True(t, center.Center)
	assert.Equal(t, int64(1), center.JobID)

	c.Simulation().Stop()
	stats = m.Tick()
	assert.False(t, stats.Published, "a settled canvas publishes nothing")
	assert.Len(t, frames, 1)

	m.Touch()
	m.Tick()
	assert.Len(t, frames, 2)

	unsubscribe()
	m.Touch()
	m.Tick()
	assert.Len(t, frames, 2)
}

func TestTickResolvesOverlappingClusters(t *testing.T) {
	m, _ := newTestManager(t)
	a := mustCreate(t, m, 1, 6, r2.Vec{X: 400, Y: 400})
	b := mustCreate(t, m, 2, 6, r2.Vec{X: 420, Y: 400})

	var collisions int
	for i := 0; i < 300; i++ {
		collisions += m.Tick().Collisions
	}
	assert.Positive(t, collisions)

	d := r2.Norm(r2.Sub(a.Bounds.Centroid, b.Bounds.Centroid))
	assert.Greater(t, d, 300.0)
}

func TestTickSeparatesSettledClusters(t *testing.T) {
	m, _ := newTestManager(t)
	a := mustCreate(t, m, 1, 4, r2.Vec{X: 400, Y: 400})
	b := mustCreate(t, m, 2, 4, r2.Vec{X: 450, Y: 400})
	a.Simulation().Stop()
	b.Simulation().Stop()

	a.UpdateBounds(m.Physics().SeparationMargin)
	b.UpdateBounds(m.Physics().SeparationMargin)
	before := r2.Norm(r2.Sub(b.Bounds.Centroid, a.Bounds.Centroid))

	stats := m.Tick()

	assert.Zero(t, stats.Stepped)
	assert.Equal(t, 1, stats.Separation.Shifted)
	assert.True(t, stats.Published)
	after := r2.Norm(r2.Sub(b.Bounds.Centroid, a.Bounds.Centroid))
	assert.Greater(t, after, before)
	assert.False(t, a.Simulation().Active(), "separation does not reheat settled clusters")
}

func TestPlaceholders(t *testing.T) {
	m, _ := newTestManager(t)
	p := m.AddPlaceholder(r2.Vec{X: 1, Y: 2}, 30, "Data Engineer")
	assert.Len(t, m.Placeholders(), 1)

	f := m.Snapshot()
	require.Len(t, f.Placeholders, 1)
	assert.Equal(t, "Data Engineer", f.Placeholders[0].Title)
	assert.Equal(t, 1.0, f.Placeholders[0].Opacity)

	m.RemovePlaceholder(p)
	m.RemovePlaceholder(p)
	assert.Empty(t, m.Placeholders())
}

func TestClear(t *testing.T) {
	m, _ := newTestManager(t)
	mustCreate(t, m, 1, 2, r2.Vec{})
	m.AddPlaceholder(r2.Vec{}, 10, "x")

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Placeholders())
	assert.False(t, m.Animating())
}
