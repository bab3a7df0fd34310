package clusters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestFadeNode(t *testing.T) {
	m, clock := newTestManager(t)
	c := mustCreate(t, m, 1, 2, r2.Vec{})
	_, n, err := m.Lookup(c.ID, 1)
	require.NoError(t, err)

	done := false
	m.FadeNode(c, n, 0, 100*time.Millisecond, 200*time.Millisecond).OnDone(func() { done = true })

	m.Tick()
	assert.Equal(t, 1.0, n.Visual.Opacity, "delay not yet elapsed")

	clock.Advance(200 * time.Millisecond)
	m.Tick()
	assert.InDelta(t, 0.5, n.Visual.Opacity, 1e-9, "halfway through a symmetric ease")

	clock.Advance(100 * time.Millisecond)
	m.Tick()
	assert.Zero(t, n.Visual.Opacity)
	assert.True(t, done)
	assert.False(t, m.Animating())
}

func TestTweenCancel(t *testing.T) {
	m, clock := newTestManager(t)
	p := m.AddPlaceholder(r2.Vec{}, 20, "x")

	tw := m.GrowPlaceholder(p, 70, 100*time.Millisecond)
	tw.OnDone(func() { t.Fatal("cancelled tween completed") })
	clock.Advance(50 * time.Millisecond)
	m.Tick()
	grown := p.Radius
	assert.Greater(t, grown, 20.0)

	tw.Cancel()
	clock.Advance(time.Second)
	m.Tick()
	assert.Equal(t, grown, p.Radius)
	assert.False(t, tw.Finished())
}

func TestRemovingOwnerDropsTweens(t *testing.T) {
	m, clock := newTestManager(t)
	c := mustCreate(t, m, 1, 2, r2.Vec{})
	p := m.AddPlaceholder(r2.Vec{}, 20, "x")

	m.FadeLink(c, c.Links[0], 0, 0, time.Second)
	m.FadePlaceholder(p, 0, 0, time.Second)
	require.True(t, m.Animating())

	m.Remove(c.ID)
	m.RemovePlaceholder(p)
	assert.False(t, m.Animating())

	clock.Advance(2 * time.Second)
	m.Tick()
	assert.Equal(t, 1.0, c.Links[0].Opacity)
}

func TestTweenCallbackMayRemovePlaceholder(t *testing.T) {
	m, clock := newTestManager(t)
	p := m.AddPlaceholder(r2.Vec{}, 20, "x")

	m.FadePlaceholder(p, 0, 0, 100*time.Millisecond).OnDone(func() { m.RemovePlaceholder(p) })
	m.GrowPlaceholder(p, 80, time.Second)

	clock.Advance(150 * time.Millisecond)
	m.Tick()
	assert.Empty(t, m.Placeholders())

	clock.Advance(time.Second)
	m.Tick()
	assert.False(t, m.Animating())
}

func departingNode(f Frame, clusterID, nodeID int) (NodeFrame, bool) {
	for _, c := range f.Clusters {
		if c.ID != clusterID {
			continue
		}
		for _, n := range c.Nodes {
			if n.ID == nodeID && n.Departing {
				return n, true
			}
		}
	}
	return NodeFrame{}, false
}

func TestFadeOutNode(t *testing.T) {
	m, clock := newTestManager(t)
	c := mustCreate(t, m, 1, 3, r2.Vec{X: 400, Y: 300})

	n, tw, err := m.FadeOutNode(c.ID, 2, 400*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 2, n.ID)

	_, ok := c.Node(2)
	assert.False(t, ok, "removed from the cluster right away")
	assert.Len(t, c.Links, 2)
	assert.NoError(t, c.Check())
	if _, id, hit := m.HitTest(n.Pos); hit {
		assert.NotEqual(t, 2, id, "a fading node cannot be grabbed")
	}

	f := m.Snapshot()
	_, live := f.Node(c.ID, 2)
	assert.False(t, live)
	ghost, ok := departingNode(f, c.ID, 2)
	require.True(t, ok, "still drawn while fading")
	assert.Equal(t, 1.0, ghost.Opacity)
	assert.Len(t, f.Clusters[0].Links, 3)
	assert.Equal(t, 1, m.Departing())

	m.Tick()
	clock.Advance(200 * time.Millisecond)
	m.Tick()
	ghost, ok = departingNode(m.Snapshot(), c.ID, 2)
	require.True(t, ok)
	assert.InDelta(t, 0.5, ghost.Opacity, 1e-9)
	for _, l := range m.Snapshot().Clusters[0].Links {
		if l.Target == 2 {
			assert.InDelta(t, 0.5, l.Opacity, 1e-9)
		}
	}

	clock.Advance(200 * time.Millisecond)
	m.Tick()
	assert.True(t, tw.Finished())
	assert.Zero(t, m.Departing())
	_, ok = departingNode(m.Snapshot(), c.ID, 2)
	assert.False(t, ok)
	assert.Len(t, m.Snapshot().Clusters[0].Links, 2)
}

func TestFadeOutNodeErrors(t *testing.T) {
	m, _ := newTestManager(t)
	c := mustCreate(t, m, 1, 2, r2.Vec{})

	_, _, err := m.FadeOutNode(99, 1, time.Second)
	assert.ErrorIs(t, err, ErrUnknownCluster)
	_, _, err = m.FadeOutNode(c.ID, 42, time.Second)
	assert.ErrorIs(t, err, ErrUnknownNode)
	assert.Zero(t, m.Departing())
}

func TestRemovingClusterDropsDepartures(t *testing.T) {
	m, _ := newTestManager(t)
	c := mustCreate(t, m, 1, 2, r2.Vec{})

	_, _, err := m.FadeOutNode(c.ID, 2, time.Second)
	require.NoError(t, err)
	m.Remove(c.ID)
	assert.Zero(t, m.Departing())
	assert.False(t, m.Animating())
}
