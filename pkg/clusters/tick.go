package clusters

import (
	"github.com/dd0wney/scout/pkg/visualization"
)

// TickStats summarizes one tick.
type TickStats struct {
	Stepped    int
	Collisions int
	Separation visualization.SeparationStats
	Published  bool
}

// Subscribe registers fn to receive a frame after every tick that changed
// something. The returned function unsubscribes.
func (m *Manager) Subscribe(fn func(Frame)) func() {
	m.nextSub++
	id := m.nextSub
	m.subscribers[id] = fn
	return func() { delete(m.subscribers, id) }
}

// Tick advances every active simulation by one step, then resolves
// inter-cluster collisions, refreshes bounds, separates overlapping
// clusters, advances tweens, and publishes a frame if anything changed.
// The resolvers run on every tick once two clusters share the canvas, so
// clusters left overlapping after their simulations cooled still part.
func (m *Manager) Tick() TickStats {
	start := m.now()
	var stats TickStats

	for _, c := range m.clusters {
		if c.Simulation().Step() {
			stats.Stepped++
		}
	}

	resolved := false
	if len(m.clusters) > 1 {
		stats.Collisions = visualization.ResolveCollisions(m.clusters, m.physics)
		for _, c := range m.clusters {
			c.UpdateBounds(m.physics.SeparationMargin)
		}
		stats.Separation = visualization.Separate(m.clusters, m.physics)
		resolved = stats.Collisions > 0 || stats.Separation.Nudged > 0
	} else if stats.Stepped > 0 {
		for _, c := range m.clusters {
			c.UpdateBounds(m.physics.SeparationMargin)
		}
	}

	animating := m.advanceTweens(start)

	if stats.Stepped > 0 || resolved || animating || m.dirty {
		m.dirty = false
		m.seq++
		m.publish()
		stats.Published = true
	}

	if stats.Stepped > 0 || resolved {
		m.metrics.RecordTick(m.now().Sub(start), stats.Collisions, stats.Separation.Nudged, stats.Separation.Shifted)
	}
	return stats
}

func (m *Manager) publish() {
	if len(m.subscribers) == 0 {
		return
	}
	f := m.Snapshot()
	for _, fn := range m.subscribers {
		fn(f)
	}
}
