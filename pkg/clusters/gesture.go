package clusters

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/validation"
	"github.com/dd0wney/scout/pkg/visualization"
)

// ErrNoDrag is returned by DragTo and EndDrag when no drag is in progress.
var ErrNoDrag = errors.New("clusters: no drag in progress")

// GestureConfig holds the drag thresholds and the energy levels used to
// re-energize simulations around gestures.
type GestureConfig struct {
	// Releasing a related node closer than this to its center promotes it.
	CenterThreshold float64 `yaml:"center_threshold"`
	// Releasing it farther than this detaches it into a new cluster.
	DetachThreshold float64 `yaml:"detach_threshold"`
	// DragAlphaTarget keeps the dragged cluster warm while the pointer moves.
	DragAlphaTarget float64 `yaml:"drag_alpha_target"`
	ReleaseAlpha    float64 `yaml:"release_alpha"`
	// ReactivateAlpha is applied to every cluster when one is added.
	ReactivateAlpha float64 `yaml:"reactivate_alpha"`
}

// DefaultGestureConfig returns the tuned thresholds.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		CenterThreshold: 120,
		DetachThreshold: 650,
		DragAlphaTarget: 0.3,
		ReleaseAlpha:    0.3,
		ReactivateAlpha: 0.3,
	}
}

// Validate checks ranges and that the promote zone lies inside the detach
// threshold.
func (g GestureConfig) Validate() error {
	return validation.NewConfigValidator("Gesture").
		PositiveFloat("CenterThreshold", g.CenterThreshold).
		PositiveFloat("DetachThreshold", g.DetachThreshold).
		Less("CenterThreshold", g.CenterThreshold, "DetachThreshold", g.DetachThreshold).
		RangeFloat("DragAlphaTarget", g.DragAlphaTarget, 0, 1).
		RangeFloat("ReleaseAlpha", g.ReleaseAlpha, 0, 1).
		RangeFloat("ReactivateAlpha", g.ReactivateAlpha, 0, 1).
		Validate()
}

// Outcome is what a drag release means for the cluster.
type Outcome int

const (
	// OutcomeNormal leaves the structure alone.
	OutcomeNormal Outcome = iota
	// OutcomePromote makes the released node the new center.
	OutcomePromote
	// OutcomeDetach splits the released node into its own cluster.
	OutcomeDetach
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNormal:
		return "normal"
	case OutcomePromote:
		return "promote"
	case OutcomeDetach:
		return "detach"
	default:
		return "unknown"
	}
}

// Classify maps the release distance from the cluster center to an outcome.
// Both thresholds are exclusive.
func (g GestureConfig) Classify(d float64) Outcome {
	switch {
	case d < g.CenterThreshold:
		return OutcomePromote
	case d > g.DetachThreshold:
		return OutcomeDetach
	default:
		return OutcomeNormal
	}
}

// Router receives structural gesture outcomes. Both calls happen on the
// loop right after the node has been released.
type Router interface {
	Promote(c *visualization.Cluster, n *visualization.Node)
	Detach(c *visualization.Cluster, n *visualization.Node)
}

type dragState struct {
	clusterID int
	nodeID    int
}

// Dragging reports the cluster and node being dragged.
func (m *Manager) Dragging() (clusterID, nodeID int, ok bool) {
	if m.drag == nil {
		return 0, 0, false
	}
	return m.drag.clusterID, m.drag.nodeID, true
}

// BeginDrag pins the node where it is and keeps its cluster's simulation
// warm. Starting a new drag ends any previous one without routing it.
func (m *Manager) BeginDrag(clusterID, nodeID int) error {
	c, n, err := m.Lookup(clusterID, nodeID)
	if err != nil {
		return err
	}
	if m.drag != nil {
		m.releaseDragged()
	}
	sim := c.Simulation()
	sim.SetAlphaTarget(m.gesture.DragAlphaTarget)
	sim.Restart(sim.Alpha())
	n.Pin(n.Pos)
	m.drag = &dragState{clusterID: clusterID, nodeID: nodeID}
	m.active = clusterID
	m.dirty = true
	return nil
}

// DragTo moves the pinned node to p.
func (m *Manager) DragTo(p r2.Vec) error {
	if m.drag == nil {
		return ErrNoDrag
	}
	_, n, err := m.Lookup(m.drag.clusterID, m.drag.nodeID)
	if err != nil {
		m.drag = nil
		return err
	}
	n.Pin(p)
	m.dirty = true
	return nil
}

// EndDrag releases the node, classifies the release by its distance to the
// cluster center, and hands promote and detach outcomes to the router.
// Releasing a center is always OutcomeNormal.
func (m *Manager) EndDrag() (Outcome, error) {
	if m.drag == nil {
		return OutcomeNormal, ErrNoDrag
	}
	clusterID, nodeID := m.drag.clusterID, m.drag.nodeID
	c, n, err := m.releaseDragged()
	if err != nil {
		return OutcomeNormal, err
	}
	if n.IsCenter() {
		return OutcomeNormal, nil
	}
	center := c.Center()
	if center == nil {
		return OutcomeNormal, fmt.Errorf("%w: cluster %d", visualization.ErrNoCenter, clusterID)
	}

	d := r2.Norm(r2.Sub(n.Pos, center.Pos))
	outcome := m.gesture.Classify(d)
	m.logger.Debug("drag released",
		logging.ClusterID(clusterID),
		logging.NodeID(nodeID),
		logging.Float64("distance", d),
		logging.String("outcome", outcome.String()),
	)

	if m.router != nil {
		switch outcome {
		case OutcomePromote:
			m.router.Promote(c, n)
		case OutcomeDetach:
			m.router.Detach(c, n)
		}
	}
	return outcome, nil
}

// CancelDrag releases the node without classifying the release.
func (m *Manager) CancelDrag() {
	if m.drag != nil {
		m.releaseDragged()
	}
}

func (m *Manager) releaseDragged() (*visualization.Cluster, *visualization.Node, error) {
	d := m.drag
	m.drag = nil
	c, n, err := m.Lookup(d.clusterID, d.nodeID)
	if err != nil {
		return nil, nil, err
	}
	n.Unpin()
	sim := c.Simulation()
	sim.SetAlphaTarget(0)
	sim.Restart(m.gesture.ReleaseAlpha)
	m.dirty = true
	return c, n, nil
}
