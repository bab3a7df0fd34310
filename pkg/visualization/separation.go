package visualization

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// SeparationStats counts what one Separate pass did.
type SeparationStats struct {
	// Nudged is the number of cluster pairs that received velocity nudges.
	Nudged int
	// Shifted is the number of pairs that were also rigidly translated.
	Shifted int
}

// Separate keeps cluster circles at least MinSeparation apart. Every
// offending pair gets a velocity nudge on its unpinned nodes; pairs where
// neither cluster has a pinned node are also translated rigidly, each side
// taking half of RigidShiftFactor times the shortfall. Bounds must be current
// on entry and are kept current for translated clusters.
func Separate(clusters []*Cluster, cfg Config) SeparationStats {
	var stats SeparationStats
	for i, a := range clusters {
		for _, b := range clusters[i+1:] {
			delta := r2.Sub(b.Bounds.Centroid, a.Bounds.Centroid)
			d := r2.Norm(delta)
			minD := a.Bounds.Radius + b.Bounds.Radius + cfg.MinSeparation
			if d >= minD {
				continue
			}

			u := r2.Vec{X: 1}
			if d > 0 {
				u = r2.Scale(1/d, delta)
			}

			strength := (minD - d) / minD * cfg.SeparationStrength
			nudge := r2.Scale(strength*cfg.SeparationImpulse, u)
			for _, n := range a.Nodes {
				if !n.Pinned() {
					n.Vel = r2.Sub(n.Vel, nudge)
				}
			}
			for _, n := range b.Nodes {
				if !n.Pinned() {
					n.Vel = r2.Add(n.Vel, nudge)
				}
			}
			stats.Nudged++

			if a.HasPinned() || b.HasPinned() {
				continue
			}
			move := (minD - d) / 2 * cfg.RigidShiftFactor
			a.Translate(r2.Scale(-move, u))
			b.Translate(r2.Scale(move, u))
			stats.Shifted++
		}
	}
	return stats
}
