package visualization

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// applyLinks pulls each target toward its rest distance from the center.
// The correction is split by node degree so the hub barely moves.
func (s *Simulation) applyLinks(links []*Link) {
	if len(links) == 0 {
		return
	}
	degree := make(map[*Node]int, len(links)+1)
	for _, l := range links {
		degree[l.Source]++
		degree[l.Target]++
	}

	for _, l := range links {
		src, tgt := l.Source, l.Target
		x := tgt.Pos.X + tgt.Vel.X - src.Pos.X - src.Vel.X
		y := tgt.Pos.Y + tgt.Vel.Y - src.Pos.Y - src.Vel.Y
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - s.cfg.LinkDistance(tgt.Job.Score)) / d * s.alpha * s.cfg.LinkStrength
		x *= k
		y *= k

		bias := float64(degree[src]) / float64(degree[src]+degree[tgt])
		tgt.Vel.X -= x * bias
		tgt.Vel.Y -= y * bias
		src.Vel.X += x * (1 - bias)
		src.Vel.Y += y * (1 - bias)
	}
}

// applyCharge repels every pair of nodes with strength/d. Clusters are small
// so the sum is exact rather than approximated.
func (s *Simulation) applyCharge(nodes []*Node) {
	minD2 := s.cfg.ChargeDistanceMin * s.cfg.ChargeDistanceMin
	for _, a := range nodes {
		for _, b := range nodes {
			if a == b {
				continue
			}
			x := b.Pos.X - a.Pos.X
			y := b.Pos.Y - a.Pos.Y
			l := x*x + y*y
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			if l < minD2 {
				l = math.Sqrt(minD2 * l)
			}
			w := s.cfg.ChargeStrength * s.alpha / l
			a.Vel.X += x * w
			a.Vel.Y += y * w
		}
	}
}

// applyCollide separates overlapping circles using positions predicted one
// step ahead. Larger nodes move less.
func (s *Simulation) applyCollide(nodes []*Node) {
	for i, a := range nodes {
		ra := a.Radius() + s.cfg.CollidePadding
		ra2 := ra * ra
		xa := a.Pos.X + a.Vel.X
		ya := a.Pos.Y + a.Vel.Y
		for _, b := range nodes[i+1:] {
			rb := b.Radius() + s.cfg.CollidePadding
			r := ra + rb
			x := xa - b.Pos.X - b.Vel.X
			y := ya - b.Pos.Y - b.Vel.Y
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			l = math.Sqrt(l)
			k := (r - l) / l * s.cfg.CollideStrength
			x *= k
			y *= k
			share := rb * rb / (ra2 + rb*rb)
			a.Vel.X += x * share
			a.Vel.Y += y * share
			b.Vel.X -= x * (1 - share)
			b.Vel.Y -= y * (1 - share)
		}
	}
}

// applyCentering pulls every node weakly toward the anchor on each axis.
func (s *Simulation) applyCentering(nodes []*Node, anchor r2.Vec) {
	k := s.cfg.CenteringStrength * s.alpha
	for _, n := range nodes {
		n.Vel.X += (anchor.X - n.Pos.X) * k
		n.Vel.Y += (anchor.Y - n.Pos.Y) * k
	}
}
