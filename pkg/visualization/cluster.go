package visualization

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/jobs"
)

var (
	// ErrNoCenter is returned when map data has no center job.
	ErrNoCenter = errors.New("visualization: map data has no center")
	// ErrNotStar is returned by Check when a cluster is not star-shaped.
	ErrNotStar = errors.New("visualization: cluster is not star-shaped")
)

// Cluster is one independently simulated star: a center node, its related
// nodes, and one link from the center to each of them.
type Cluster struct {
	ID     int
	Nodes  []*Node
	Links  []*Link
	Anchor r2.Vec
	Bounds Bounds

	sim *Simulation
}

// NewCluster builds a cluster from map data. Related jobs get local ids 1..n
// in payload order regardless of the ids they arrived with.
func NewCluster(id int, data *jobs.MapData, anchor r2.Vec, placement Placement, cfg Config) (*Cluster, error) {
	if data.Empty() {
		return nil, ErrNoCenter
	}

	c := &Cluster{
		ID:     id,
		Anchor: anchor,
		Nodes:  make([]*Node, 0, len(data.Related)+1),
		Links:  make([]*Link, 0, len(data.Related)),
	}

	centerJob := *data.Center
	centerJob.ID = CenterID
	center := newNode(CenterID, id, centerJob)
	c.Nodes = append(c.Nodes, center)

	for i, job := range data.Related {
		job.ID = i + 1
		n := newNode(job.ID, id, job)
		c.Nodes = append(c.Nodes, n)
		c.Links = append(c.Links, &Link{Source: center, Target: n, Weight: job.Score, Opacity: 1})
	}

	placement.place(c, cfg)
	c.sim = newSimulation(c, cfg)
	if placement == PlaceInPlace {
		center.Pin(anchor)
		c.sim.alpha = 0
		c.sim.stopped = true
	}
	c.UpdateBounds(cfg.SeparationMargin)
	return c, nil
}

// Center returns the hub node.
func (c *Cluster) Center() *Node {
	for _, n := range c.Nodes {
		if n.ID == CenterID {
			return n
		}
	}
	return nil
}

// Node looks up a member by local id.
func (c *Cluster) Node(id int) (*Node, bool) {
	for _, n := range c.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Simulation is the cluster's force simulation handle.
func (c *Cluster) Simulation() *Simulation {
	return c.sim
}

// RemoveNode detaches a related node together with its incident links.
// The center cannot be removed this way.
func (c *Cluster) RemoveNode(id int) (*Node, error) {
	if id == CenterID {
		return nil, fmt.Errorf("visualization: cannot remove center of cluster %d", c.ID)
	}
	idx := -1
	for i, n := range c.Nodes {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("visualization: node %d not in cluster %d", id, c.ID)
	}
	removed := c.Nodes[idx]
	c.Nodes = append(c.Nodes[:idx], c.Nodes[idx+1:]...)

	links := c.Links[:0]
	for _, l := range c.Links {
		if l.Source != removed && l.Target != removed {
			links = append(links, l)
		}
	}
	for i := len(links); i < len(c.Links); i++ {
		c.Links[i] = nil
	}
	c.Links = links
	return removed, nil
}

// HasPinned reports whether any member is pinned, i.e. mid-drag or held
// during a handoff.
func (c *Cluster) HasPinned() bool {
	for _, n := range c.Nodes {
		if n.Pinned() {
			return true
		}
	}
	return false
}

// Translate moves every node, pinned positions included, by v.
func (c *Cluster) Translate(v r2.Vec) {
	for _, n := range c.Nodes {
		n.Pos = r2.Add(n.Pos, v)
		if n.fixed != nil {
			p := r2.Add(*n.fixed, v)
			n.fixed = &p
		}
	}
	c.Bounds = c.Bounds.translate(v)
}

// Check verifies the star invariant: exactly one node with id 0, unique ids,
// and every link sourced at the center and targeting a member.
func (c *Cluster) Check() error {
	seen := make(map[int]*Node, len(c.Nodes))
	var center *Node
	for _, n := range c.Nodes {
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %d", ErrNotStar, n.ID)
		}
		seen[n.ID] = n
		if n.ClusterID != c.ID {
			return fmt.Errorf("%w: node %d belongs to cluster %d", ErrNotStar, n.ID, n.ClusterID)
		}
		if n.ID == CenterID {
			center = n
		}
	}
	if center == nil {
		return fmt.Errorf("%w: no center", ErrNotStar)
	}
	for _, l := range c.Links {
		if l.Source != center {
			return fmt.Errorf("%w: link to %d not sourced at center", ErrNotStar, l.Target.ID)
		}
		if seen[l.Target.ID] != l.Target {
			return fmt.Errorf("%w: link target %d not a member", ErrNotStar, l.Target.ID)
		}
	}
	return nil
}
