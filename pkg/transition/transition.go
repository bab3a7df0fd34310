// Package transition drives the animated restructuring of the canvas:
// promoting a node to a new center, detaching it into its own cluster, and
// replacing a cluster with a reinforced result. Every run is a Transition
// that owns its timers, tweens and fetch context, so a superseding gesture
// can cancel it before it acts on stale nodes.
package transition

import (
	"context"
	"errors"
	"time"

	"github.com/dd0wney/scout/pkg/clusters"
	"github.com/dd0wney/scout/pkg/scheduler"
)

// ErrCancelled is the error of a transition that was superseded.
var ErrCancelled = errors.New("transition: cancelled")

// Kind names the gesture a transition realizes.
type Kind string

const (
	KindPromote   Kind = "promote"
	KindDetach    Kind = "detach"
	KindReinforce Kind = "reinforce"
)

// Outcome is how a transition ended.
type Outcome string

const (
	// OutcomePending means the transition is still running.
	OutcomePending Outcome = ""
	// OutcomeOK means a new cluster was materialized.
	OutcomeOK Outcome = "ok"
	// OutcomeEmpty means the server had no result; the placeholder was
	// discarded.
	OutcomeEmpty Outcome = "empty"
	// OutcomeFailed means the fetch failed at the transport level.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped means the node had no external id, so nothing was
	// fetched.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeCancelled means a newer gesture or search superseded it.
	OutcomeCancelled Outcome = "cancelled"
)

// Transition is one in-flight promote, detach or reinforcement.
type Transition struct {
	ID     string
	Kind   Kind
	JobID  int64
	Origin int
	// Result is the id of the cluster this transition materialized, or 0.
	Result int

	started time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	timers  *scheduler.Group
	tweens  []*clusters.Tween
	// undo restores a consistent canvas if the transition is cancelled at
	// its current step.
	undo func()

	touched map[int]struct{}
	outcome Outcome
	err     error
}

// Context is cancelled when the transition ends for any reason.
func (t *Transition) Context() context.Context {
	return t.ctx
}

// Outcome reports how the transition ended, or OutcomePending.
func (t *Transition) Outcome() Outcome {
	return t.outcome
}

// Err is the error the transition ended with, if any.
func (t *Transition) Err() error {
	return t.err
}

// Finished reports whether the transition has ended.
func (t *Transition) Finished() bool {
	return t.outcome != OutcomePending
}

// Touches reports whether the transition would replace or is revealing the
// given cluster.
func (t *Transition) Touches(clusterID int) bool {
	_, ok := t.touched[clusterID]
	return ok
}

func (t *Transition) touch(clusterID int) {
	t.touched[clusterID] = struct{}{}
}

func (t *Transition) track(tw *clusters.Tween) *clusters.Tween {
	t.tweens = append(t.tweens, tw)
	return tw
}
