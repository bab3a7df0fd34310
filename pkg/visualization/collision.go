package visualization

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// ResolveCollisions pushes apart overlapping nodes that belong to different
// clusters. Pinned nodes are neither moved nor used as obstacles. Each
// overlapping pair gets a positional correction and a smaller velocity
// impulse along the line between them. It returns the number of corrected
// pairs.
func ResolveCollisions(clusters []*Cluster, cfg Config) int {
	corrected := 0
	for i, ca := range clusters {
		for _, cb := range clusters[i+1:] {
			for _, a := range ca.Nodes {
				if a.Pinned() {
					continue
				}
				for _, b := range cb.Nodes {
					if b.Pinned() {
						continue
					}
					if separatePair(a, b, cfg) {
						corrected++
					}
				}
			}
		}
	}
	return corrected
}

func separatePair(a, b *Node, cfg Config) bool {
	delta := r2.Sub(b.Pos, a.Pos)
	d := r2.Norm(delta)
	minD := a.Radius() + b.Radius() + cfg.CollisionPadding
	if d >= minD {
		return false
	}

	var u r2.Vec
	var force float64
	if d == 0 {
		// Coincident: pick a fixed axis and push by the full overlap.
		u = r2.Vec{X: 1}
		force = 1
	} else {
		u = r2.Scale(1/d, delta)
		force = (minD - d) / d
	}

	push := r2.Scale(force*cfg.CollisionPush, u)
	a.Pos = r2.Sub(a.Pos, push)
	b.Pos = r2.Add(b.Pos, push)

	impulse := r2.Scale(force*cfg.CollisionImpulse, u)
	a.Vel = r2.Sub(a.Vel, impulse)
	b.Vel = r2.Add(b.Vel, impulse)
	return true
}
