package selection

import (
	"time"

	"github.com/dd0wney/scout/pkg/scheduler"
	"github.com/dd0wney/scout/pkg/validation"
)

// TooltipConfig holds the hover delays.
type TooltipConfig struct {
	// Delay is how long the pointer must rest on a node before the tooltip
	// shows.
	Delay time.Duration `yaml:"delay"`
	// Grace is how long a shown tooltip survives the pointer leaving both
	// the node and the tooltip.
	Grace time.Duration `yaml:"grace"`
}

// DefaultTooltipConfig returns the tuned delays.
func DefaultTooltipConfig() TooltipConfig {
	return TooltipConfig{Delay: 1000 * time.Millisecond, Grace: 100 * time.Millisecond}
}

// Validate checks the delays.
func (c TooltipConfig) Validate() error {
	return validation.NewConfigValidator("Tooltip").
		NonNegativeDuration("Delay", c.Delay).
		NonNegativeDuration("Grace", c.Grace).
		Validate()
}

// TooltipState is the visibility state of the tooltip.
type TooltipState int

const (
	Hidden TooltipState = iota
	Pending
	Shown
)

func (s TooltipState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Shown:
		return "shown"
	default:
		return "hidden"
	}
}

// Target identifies the node a tooltip is about.
type Target struct {
	ClusterID int
	NodeID    int
}

// Tooltip is the hover state machine. At most one timer is live: the show
// delay while Pending, or the grace timer while Shown with the pointer on
// neither the node nor the tooltip. Every transition stops the timer of the
// state being left.
type Tooltip struct {
	sched    scheduler.Scheduler
	cfg      TooltipConfig
	onChange func(TooltipState, Target)

	state    TooltipState
	target   Target
	overNode bool
	overTip  bool
	timer    scheduler.Timer
}

// NewTooltip creates a hidden tooltip. onChange, if set, runs on every
// state change.
func NewTooltip(s scheduler.Scheduler, cfg TooltipConfig, onChange func(TooltipState, Target)) *Tooltip {
	return &Tooltip{sched: s, cfg: cfg, onChange: onChange}
}

// State returns the current state and its target. The target is only
// meaningful outside Hidden.
func (t *Tooltip) State() (TooltipState, Target) {
	return t.state, t.target
}

// EnterNode handles the pointer entering a node.
func (t *Tooltip) EnterNode(target Target) {
	t.overNode = true
	if t.state == Shown && t.target == target {
		t.stopTimer()
		return
	}
	if t.state == Pending && t.target == target {
		return
	}
	t.overTip = false
	t.set(Pending, target)
	t.startTimer(t.cfg.Delay, func() { t.set(Shown, t.target) })
}

// LeaveNode handles the pointer leaving the node.
func (t *Tooltip) LeaveNode() {
	t.overNode = false
	switch t.state {
	case Pending:
		t.set(Hidden, Target{})
	case Shown:
		t.startGrace()
	}
}

// EnterTooltip handles the pointer entering the shown tooltip.
func (t *Tooltip) EnterTooltip() {
	if t.state != Shown {
		return
	}
	t.overTip = true
	t.stopTimer()
}

// LeaveTooltip handles the pointer leaving the tooltip.
func (t *Tooltip) LeaveTooltip() {
	if t.state != Shown {
		return
	}
	t.overTip = false
	t.startGrace()
}

// Hide forces the tooltip hidden, as when its node disappears.
func (t *Tooltip) Hide() {
	t.overNode, t.overTip = false, false
	if t.state != Hidden {
		t.set(Hidden, Target{})
	}
}

func (t *Tooltip) startGrace() {
	if t.overNode || t.overTip {
		return
	}
	t.startTimer(t.cfg.Grace, func() { t.set(Hidden, Target{}) })
}

func (t *Tooltip) set(state TooltipState, target Target) {
	t.stopTimer()
	changed := t.state != state || t.target != target
	t.state, t.target = state, target
	if changed && t.onChange != nil {
		t.onChange(state, target)
	}
}

func (t *Tooltip) startTimer(d time.Duration, fn func()) {
	t.stopTimer()
	var timer scheduler.Timer
	timer = t.sched.AfterFunc(d, func() {
		if t.timer != timer {
			return
		}
		t.timer = nil
		fn()
	})
	t.timer = timer
}

func (t *Tooltip) stopTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
