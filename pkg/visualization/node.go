package visualization

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/jobs"
)

// CenterID is the local id of every cluster's hub node.
const CenterID = 0

// Visual carries renderer-facing state that never feeds back into physics.
type Visual struct {
	Opacity float64
	// Matching is set by keyword highlight.
	Matching bool
	// Selected marks membership in the reinforcement selection.
	Selected bool
	// Emphasized marks nodes carried over by a reinforcement.
	Emphasized bool
}

// Node is one job in one cluster.
type Node struct {
	ID        int
	ClusterID int
	Job       jobs.Job

	Pos r2.Vec
	Vel r2.Vec

	fixed  *r2.Vec
	radius float64

	Visual Visual
}

func newNode(id, clusterID int, job jobs.Job) *Node {
	n := &Node{
		ID:        id,
		ClusterID: clusterID,
		Job:       job,
		Visual:    Visual{Opacity: 1},
	}
	n.radius = NodeRadius(n.IsCenter(), job.Score, job.AverageSalary())
	return n
}

// IsCenter reports whether n is its cluster's hub.
func (n *Node) IsCenter() bool {
	return n.ID == CenterID
}

// Radius is the rendered radius.
func (n *Node) Radius() float64 {
	return n.radius
}

// Pinned reports whether the node's position is fixed.
func (n *Node) Pinned() bool {
	return n.fixed != nil
}

// PinnedAt returns the fixed position, if any.
func (n *Node) PinnedAt() (r2.Vec, bool) {
	if n.fixed == nil {
		return r2.Vec{}, false
	}
	return *n.fixed, true
}

// Pin fixes the node at p. The simulation holds it there with zero velocity.
func (n *Node) Pin(p r2.Vec) {
	n.fixed = &p
	n.Pos = p
	n.Vel = r2.Vec{}
}

// Unpin releases the node to the forces.
func (n *Node) Unpin() {
	n.fixed = nil
}

// Link joins the cluster center to a related node.
type Link struct {
	Source *Node
	Target *Node
	// Weight is the target's relevance score.
	Weight  float64
	Opacity float64
}
