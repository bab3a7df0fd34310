// Package selection holds the two small state machines of the explorer's
// pointer and keyboard input: the reinforcement selection set and the
// delayed tooltip.
package selection

import (
	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/visualization"
)

// ToggleResult says what a click did to the selection.
type ToggleResult int

const (
	// Ignored means reinforcement mode is off or the node is a center.
	Ignored ToggleResult = iota
	Added
	Removed
	// Full means the node was not added because the selection is at capacity.
	Full
)

func (r ToggleResult) String() string {
	switch r {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Full:
		return "full"
	default:
		return "ignored"
	}
}

// Exit is the result of leaving reinforcement mode.
type Exit struct {
	ClusterID int
	// Request is nil when nothing usable was selected.
	Request *jobs.ReinforceRequest
	// Selected are the nodes that were selected, in selection order.
	Selected []*visualization.Node
	// ShowHint is set the first time the mode is left with nothing selected.
	ShowHint bool
	// Unsendable counts selected nodes left out of Request because they
	// have no external id.
	Unsendable int
}

// Reinforcement is the selection set of reinforcement mode. It is bound to
// one cluster at a time and never holds that cluster's center.
type Reinforcement struct {
	capacity int

	active    bool
	clusterID int
	centerID  int64
	hasCenter bool
	selected  []*visualization.Node
	hinted    bool
}

// NewReinforcement creates a selection with the given capacity; values
// below 1 use jobs.MaxSelection.
func NewReinforcement(capacity int) *Reinforcement {
	if capacity < 1 {
		capacity = jobs.MaxSelection
	}
	return &Reinforcement{capacity: capacity}
}

// Active reports whether reinforcement mode is on.
func (r *Reinforcement) Active() bool {
	return r.active
}

// ClusterID is the cluster the selection is bound to.
func (r *Reinforcement) ClusterID() int {
	return r.clusterID
}

// Selected returns the selected nodes in selection order.
func (r *Reinforcement) Selected() []*visualization.Node {
	out := make([]*visualization.Node, len(r.selected))
	copy(out, r.selected)
	return out
}

// Capacity is the maximum selection size.
func (r *Reinforcement) Capacity() int {
	return r.capacity
}

// Enter turns the mode on, binding it to c (which may be nil when the
// canvas is empty) and clearing any previous selection. Entering while
// already active does nothing.
func (r *Reinforcement) Enter(c *visualization.Cluster) {
	if r.active {
		return
	}
	r.active = true
	r.bind(c)
}

func (r *Reinforcement) bind(c *visualization.Cluster) {
	r.reset()
	r.clusterID, r.centerID, r.hasCenter = 0, 0, false
	if c == nil {
		return
	}
	r.clusterID = c.ID
	if center := c.Center(); center != nil {
		r.centerID, r.hasCenter = center.Job.ExternalID()
	}
}

func (r *Reinforcement) reset() {
	for _, n := range r.selected {
		n.Visual.Selected = false
	}
	r.selected = r.selected[:0]
}

// Toggle flips n's membership. Clicking a node of a different cluster
// rebinds the selection to that cluster first, dropping what was selected.
func (r *Reinforcement) Toggle(c *visualization.Cluster, n *visualization.Node) ToggleResult {
	if !r.active {
		return Ignored
	}
	if c.ID != r.clusterID {
		r.bind(c)
	}
	if n.IsCenter() {
		return Ignored
	}
	for i, x := range r.selected {
		if x == n {
			r.selected = append(r.selected[:i], r.selected[i+1:]...)
			n.Visual.Selected = false
			return Removed
		}
	}
	if len(r.selected) >= r.capacity {
		return Full
	}
	r.selected = append(r.selected, n)
	n.Visual.Selected = true
	return Added
}

// Forget drops n from the selection, as when it is detached mid-mode.
func (r *Reinforcement) Forget(n *visualization.Node) {
	for i, x := range r.selected {
		if x == n {
			r.selected = append(r.selected[:i], r.selected[i+1:]...)
			n.Visual.Selected = false
			return
		}
	}
}

// Exit turns the mode off and returns the request to send, if any. Nodes
// without an external id cannot be sent; they are left out and counted in
// Unsendable. If none remain, or the center has no external id, no request
// is built.
func (r *Reinforcement) Exit() Exit {
	if !r.active {
		return Exit{}
	}
	r.active = false

	out := Exit{ClusterID: r.clusterID, Selected: r.Selected()}
	ids := make([]int64, 0, len(r.selected))
	for _, n := range r.selected {
		id, ok := n.Job.ExternalID()
		if !ok {
			out.Unsendable++
			continue
		}
		ids = append(ids, id)
	}
	r.reset()

	if len(out.Selected) == 0 {
		out.ShowHint = !r.hinted
		r.hinted = true
	}
	if len(ids) > 0 && r.hasCenter {
		out.Request = &jobs.ReinforceRequest{CenterID: r.centerID, SelectedIDs: ids}
	}
	return out
}
