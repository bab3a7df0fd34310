// Package clusters owns the set of clusters sharing one canvas. The Manager
// steps every simulation, runs the inter-cluster resolvers, animates visual
// state, routes drag gestures, and publishes a Frame per tick to whichever
// renderers subscribed. It is not safe for concurrent use; drive it from a
// single scheduler loop.
package clusters

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/metrics"
	"github.com/dd0wney/scout/pkg/visualization"
)

// ErrUnknownCluster is returned for operations on a cluster id not managed.
var ErrUnknownCluster = errors.New("clusters: unknown cluster")

// ErrUnknownNode is returned when a node id is not a member of its cluster.
var ErrUnknownNode = errors.New("clusters: unknown node")

// Options configures a Manager.
type Options struct {
	Physics visualization.Config
	Gesture GestureConfig
	Logger  logging.Logger
	Metrics *metrics.Registry
	// Now drives tweens. Defaults to time.Now.
	Now func() time.Time
}

// Manager is the indexed collection of clusters on one canvas.
type Manager struct {
	physics visualization.Config
	gesture GestureConfig
	logger  logging.Logger
	metrics *metrics.Registry
	now     func() time.Time

	clusters []*visualization.Cluster
	nextID   int
	active   int

	viewport r2.Vec

	placeholders    []*Placeholder
	nextPlaceholder int
	departures      []*departure

	tweens    []*Tween
	advancing []*Tween

	drag   *dragState
	router Router

	subscribers map[int]func(Frame)
	nextSub     int
	seq         uint64
	dirty       bool
}

// NewManager creates an empty manager.
func NewManager(opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		physics:     opts.Physics,
		gesture:     opts.Gesture,
		logger:      logging.OrNop(opts.Logger).With(logging.Component("clusters")),
		metrics:     opts.Metrics,
		now:         now,
		subscribers: make(map[int]func(Frame)),
	}
}

// SetRouter installs the receiver of promote and detach outcomes.
func (m *Manager) SetRouter(r Router) {
	m.router = r
}

// SetViewport records the canvas size used to place search results.
func (m *Manager) SetViewport(width, height float64) {
	m.viewport = r2.Vec{X: width, Y: height}
	m.dirty = true
}

// ViewportCenter is the middle of the canvas.
func (m *Manager) ViewportCenter() r2.Vec {
	return r2.Scale(0.5, m.viewport)
}

// Physics returns the physics constants every cluster is built with.
func (m *Manager) Physics() visualization.Config {
	return m.physics
}

// Create adds a cluster laid out in a ring around anchor and makes it
// active. When other clusters exist every simulation is re-energized so the
// resolvers can make room.
func (m *Manager) Create(data *jobs.MapData, anchor r2.Vec) (*visualization.Cluster, error) {
	c, err := m.add(data, anchor, visualization.PlaceRing)
	if err != nil {
		return nil, err
	}
	if len(m.clusters) > 1 {
		for _, other := range m.clusters {
			other.Simulation().Restart(m.gesture.ReactivateAlpha)
		}
	}
	return c, nil
}

// CreateInPlace adds a cluster with every node stacked on anchor, the center
// pinned there, and all of it invisible with the simulation suspended. The
// caller reveals it.
func (m *Manager) CreateInPlace(data *jobs.MapData, anchor r2.Vec) (*visualization.Cluster, error) {
	c, err := m.add(data, anchor, visualization.PlaceInPlace)
	if err != nil {
		return nil, err
	}
	for _, n := range c.Nodes {
		n.Visual.Opacity = 0
	}
	for _, l := range c.Links {
		l.Opacity = 0
	}
	return c, nil
}

func (m *Manager) add(data *jobs.MapData, anchor r2.Vec, placement visualization.Placement) (*visualization.Cluster, error) {
	m.nextID++
	c, err := visualization.NewCluster(m.nextID, data, anchor, placement, m.physics)
	if err != nil {
		return nil, fmt.Errorf("create cluster: %w", err)
	}
	m.clusters = append(m.clusters, c)
	m.active = c.ID
	m.dirty = true
	m.logger.Debug("cluster created",
		logging.ClusterID(c.ID),
		logging.Count(len(c.Nodes)),
		logging.String("placement", placement.String()),
	)
	m.recordSize()
	return c, nil
}

// Remove destroys a cluster together with its pending tweens and any drag
// on it. It reports whether the cluster existed.
func (m *Manager) Remove(id int) bool {
	idx := m.index(id)
	if idx < 0 {
		return false
	}
	m.clusters = append(m.clusters[:idx], m.clusters[idx+1:]...)
	m.dropTweens(func(t *Tween) bool { return t.clusterID == id })
	m.dropDepartures(func(d *departure) bool { return d.clusterID == id })
	if m.drag != nil && m.drag.clusterID == id {
		m.drag = nil
	}
	if m.active == id {
		m.active = 0
		if n := len(m.clusters); n > 0 {
			m.active = m.clusters[n-1].ID
		}
	}
	m.dirty = true
	m.logger.Debug("cluster removed", logging.ClusterID(id))
	m.recordSize()
	return true
}

// Clear removes every cluster and placeholder.
func (m *Manager) Clear() {
	m.dropTweens(func(*Tween) bool { return true })
	m.clusters = nil
	m.placeholders = nil
	m.departures = nil
	m.drag = nil
	m.active = 0
	m.dirty = true
	m.recordSize()
}

// RemoveNode detaches a related node from its cluster and re-energizes the
// cluster's simulation.
func (m *Manager) RemoveNode(clusterID, nodeID int) (*visualization.Node, error) {
	c, ok := m.Get(clusterID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCluster, clusterID)
	}
	n, err := c.RemoveNode(nodeID)
	if err != nil {
		return nil, err
	}
	m.dropTweens(func(t *Tween) bool { return t.node == n })
	if m.drag != nil && m.drag.clusterID == clusterID && m.drag.nodeID == nodeID {
		m.drag = nil
	}
	c.Simulation().Restart(m.gesture.ReleaseAlpha)
	m.dirty = true
	m.recordSize()
	return n, nil
}

// Get returns the cluster with the given id.
func (m *Manager) Get(id int) (*visualization.Cluster, bool) {
	if idx := m.index(id); idx >= 0 {
		return m.clusters[idx], true
	}
	return nil, false
}

// Lookup returns a cluster and one of its nodes.
func (m *Manager) Lookup(clusterID, nodeID int) (*visualization.Cluster, *visualization.Node, error) {
	c, ok := m.Get(clusterID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownCluster, clusterID)
	}
	n, ok := c.Node(nodeID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d in cluster %d", ErrUnknownNode, nodeID, clusterID)
	}
	return c, n, nil
}

// Clusters returns the clusters in creation order. The slice is a copy.
func (m *Manager) Clusters() []*visualization.Cluster {
	out := make([]*visualization.Cluster, len(m.clusters))
	copy(out, m.clusters)
	return out
}

// Len is the number of clusters.
func (m *Manager) Len() int {
	return len(m.clusters)
}

// Active returns the cluster most recently created or interacted with.
func (m *Manager) Active() (*visualization.Cluster, bool) {
	return m.Get(m.active)
}

// SetActive marks a cluster as active.
func (m *Manager) SetActive(id int) error {
	if m.index(id) < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownCluster, id)
	}
	if m.active != id {
		m.active = id
		m.dirty = true
	}
	return nil
}

// HitTest finds the topmost visible node whose circle contains p. Later
// clusters draw above earlier ones.
func (m *Manager) HitTest(p r2.Vec) (clusterID, nodeID int, ok bool) {
	for i := len(m.clusters) - 1; i >= 0; i-- {
		c := m.clusters[i]
		for j := len(c.Nodes) - 1; j >= 0; j-- {
			n := c.Nodes[j]
			if n.Visual.Opacity <= 0 {
				continue
			}
			if r2.Norm(r2.Sub(p, n.Pos)) <= n.Radius() {
				return c.ID, n.ID, true
			}
		}
	}
	return 0, 0, false
}

// Touch marks the canvas as changed so the next tick publishes a frame
// even if no simulation moved.
func (m *Manager) Touch() {
	m.dirty = true
}

func (m *Manager) index(id int) int {
	for i, c := range m.clusters {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) recordSize() {
	nodes := 0
	for _, c := range m.clusters {
		nodes += len(c.Nodes)
	}
	m.metrics.SetCanvasSize(len(m.clusters), nodes)
}
