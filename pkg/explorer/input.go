package explorer

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/clusters"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/selection"
	"github.com/dd0wney/scout/pkg/transition"
)

// PointerDown handles a press at p in canvas coordinates. Pressing a node
// starts a drag on it; it reports whether a node was hit.
func (e *Explorer) PointerDown(p r2.Vec) bool {
	clusterID, nodeID, ok := e.manager.HitTest(p)
	if !ok {
		return false
	}
	return e.DragStart(clusterID, nodeID, p) == nil
}

// DragStart begins dragging a node grabbed at p. Transitions that would
// replace the node's cluster are cancelled first so the drag never acts on
// nodes that are about to disappear.
func (e *Explorer) DragStart(clusterID, nodeID int, p r2.Vec) error {
	if n := e.controller.CancelFor(clusterID); n > 0 {
		e.logger.Debug("drag superseded transitions", logging.ClusterID(clusterID), logging.Count(n))
	}
	_, node, err := e.manager.Lookup(clusterID, nodeID)
	if err != nil {
		return err
	}
	if err := e.manager.BeginDrag(clusterID, nodeID); err != nil {
		return err
	}
	e.tooltip.Hide()
	e.hovered = nil
	e.press = &press{
		clusterID: clusterID,
		nodeID:    nodeID,
		at:        p,
		offset:    r2.Sub(node.Pos, p),
	}
	return nil
}

// PointerMove handles pointer motion. While a node is pressed it drags the
// node once the pointer has left the click slop; otherwise it drives the
// hover tooltip.
func (e *Explorer) PointerMove(p r2.Vec) {
	if pr := e.press; pr != nil {
		if !pr.moved && r2.Norm(r2.Sub(p, pr.at)) > e.cfg.ClickSlop {
			pr.moved = true
		}
		if pr.moved {
			if err := e.manager.DragTo(r2.Add(p, pr.offset)); err != nil {
				e.press = nil
			}
		}
		return
	}

	clusterID, nodeID, ok := e.manager.HitTest(p)
	target := selection.Target{ClusterID: clusterID, NodeID: nodeID}
	if e.hovered != nil && (!ok || *e.hovered != target) {
		e.hovered = nil
		e.tooltip.LeaveNode()
	}
	if ok && e.hovered == nil {
		e.hovered = &target
		e.tooltip.EnterNode(target)
	}
}

// PointerLeave handles the pointer leaving the canvas.
func (e *Explorer) PointerLeave() {
	if e.hovered != nil {
		e.hovered = nil
		e.tooltip.LeaveNode()
	}
}

// PointerUp ends a press. A press that never left the click slop is a
// click; anything else is a drag release, classified by distance and
// routed to the transition controller.
func (e *Explorer) PointerUp(p r2.Vec) clusters.Outcome {
	pr := e.press
	e.press = nil
	if pr == nil {
		return clusters.OutcomeNormal
	}
	if !pr.moved {
		e.manager.CancelDrag()
		e.Click(pr.clusterID, pr.nodeID)
		return clusters.OutcomeNormal
	}

	if err := e.manager.DragTo(r2.Add(p, pr.offset)); err != nil {
		return clusters.OutcomeNormal
	}
	outcome, err := e.manager.EndDrag()
	if err != nil {
		e.logger.Warn("drag release failed",
			logging.ClusterID(pr.clusterID),
			logging.NodeID(pr.nodeID),
			logging.Error(err),
		)
		return clusters.OutcomeNormal
	}
	return outcome
}

// Click selects or deselects a node in reinforcement mode, and otherwise
// activates its cluster and raises the details callback.
func (e *Explorer) Click(clusterID, nodeID int) {
	c, n, err := e.manager.Lookup(clusterID, nodeID)
	if err != nil {
		return
	}
	if err := e.manager.SetActive(c.ID); err != nil {
		return
	}

	if e.reinforcement.Active() {
		result := e.reinforcement.Toggle(c, n)
		e.logger.Debug("reinforcement toggle",
			logging.ClusterID(c.ID),
			logging.NodeID(n.ID),
			logging.String("result", result.String()),
		)
		e.manager.Touch()
		return
	}
	if e.opts.OnDetails != nil {
		e.opts.OnDetails(c.ID, n.Job)
	}
}

// TooltipEnter handles the pointer entering the shown tooltip.
func (e *Explorer) TooltipEnter() {
	e.tooltip.EnterTooltip()
}

// TooltipLeave handles the pointer leaving the tooltip.
func (e *Explorer) TooltipLeave() {
	e.tooltip.LeaveTooltip()
}

// ModifierDown enters reinforcement mode on the active cluster. It does
// nothing on an empty canvas or when the mode is already on.
func (e *Explorer) ModifierDown() {
	if e.reinforcement.Active() {
		return
	}
	c, ok := e.manager.Active()
	if !ok {
		return
	}
	e.reinforcement.Enter(c)
	e.hint(HintSelect)
	e.manager.Touch()
}

// ModifierUp leaves reinforcement mode and, when something usable was
// selected, starts the reinforcement transition it asks for.
func (e *Explorer) ModifierUp() (*transition.Transition, error) {
	if !e.reinforcement.Active() {
		return nil, nil
	}
	exit := e.reinforcement.Exit()
	e.manager.Touch()
	if exit.ShowHint {
		e.hint(HintReinforce)
	}
	if exit.Unsendable > 0 {
		e.logger.Debug("reinforcement left out jobs without id",
			logging.ClusterID(exit.ClusterID), logging.Count(exit.Unsendable))
		e.hint(HintUnsendable)
	}
	if exit.Request == nil {
		return nil, nil
	}

	c, ok := e.manager.Get(exit.ClusterID)
	if !ok {
		return nil, clusters.ErrUnknownCluster
	}
	t, err := e.controller.Reinforce(c, *exit.Request)
	if err != nil {
		e.logger.Warn("reinforcement rejected", logging.ClusterID(c.ID), logging.Error(err))
		return nil, err
	}
	return t, nil
}
