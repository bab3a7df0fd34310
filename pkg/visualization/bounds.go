package visualization

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Bounds is a cluster's derived extent: the axis-aligned box of its nodes
// grown by their radii, the centroid of node positions, and an enclosing
// radius (half the box diagonal plus margin) used for separation.
type Bounds struct {
	Box      r2.Box
	Centroid r2.Vec
	Radius   float64
}

// ComputeBounds derives bounds from the nodes. An empty node set yields
// zero bounds.
func ComputeBounds(nodes []*Node, margin float64) Bounds {
	if len(nodes) == 0 {
		return Bounds{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	var sum r2.Vec
	for _, n := range nodes {
		r := n.Radius()
		minX = math.Min(minX, n.Pos.X-r)
		maxX = math.Max(maxX, n.Pos.X+r)
		minY = math.Min(minY, n.Pos.Y-r)
		maxY = math.Max(maxY, n.Pos.Y+r)
		sum = r2.Add(sum, n.Pos)
	}
	box := r2.NewBox(minX, minY, maxX, maxY)
	return Bounds{
		Box:      box,
		Centroid: r2.Scale(1/float64(len(nodes)), sum),
		Radius:   r2.Norm(box.Size())/2 + margin,
	}
}

func (b Bounds) translate(v r2.Vec) Bounds {
	return Bounds{Box: b.Box.Add(v), Centroid: r2.Add(b.Centroid, v), Radius: b.Radius}
}

// UpdateBounds recomputes the cluster's bounds from its nodes.
func (c *Cluster) UpdateBounds(margin float64) {
	c.Bounds = ComputeBounds(c.Nodes, margin)
}
