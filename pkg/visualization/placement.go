package visualization

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Placement chooses initial node positions for a new cluster.
type Placement int

const (
	// PlaceRing puts the center on the anchor and spreads related nodes
	// evenly around it at their link rest distance.
	PlaceRing Placement = iota
	// PlaceInPlace stacks every node on the anchor with the center pinned
	// there; the simulation starts suspended so a handoff can reveal it.
	PlaceInPlace
)

func (p Placement) place(c *Cluster, cfg Config) {
	related := len(c.Nodes) - 1
	i := 0
	for _, n := range c.Nodes {
		if n.IsCenter() || p == PlaceInPlace {
			n.Pos = c.Anchor
			continue
		}
		angle := 2 * math.Pi * float64(i) / float64(related)
		d := cfg.LinkDistance(n.Job.Score)
		n.Pos = r2.Add(c.Anchor, r2.Vec{X: d * math.Cos(angle), Y: d * math.Sin(angle)})
		i++
	}
}

func (p Placement) String() string {
	switch p {
	case PlaceRing:
		return "ring"
	case PlaceInPlace:
		return "in-place"
	default:
		return "unknown"
	}
}
