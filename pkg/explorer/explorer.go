// Package explorer is the input façade of the job map. It turns pointer,
// keyboard and search events into operations on the cluster manager, the
// transition controller and the selection state machines, and reports
// status lines and hints back to whatever renders the canvas.
//
// An Explorer is driven from a single scheduler loop. Every exported method
// must be called on that loop.
package explorer

import (
	"context"
	"errors"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/clusters"
	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/metrics"
	"github.com/dd0wney/scout/pkg/scheduler"
	"github.com/dd0wney/scout/pkg/selection"
	"github.com/dd0wney/scout/pkg/transition"
	"github.com/dd0wney/scout/pkg/validation"
	"github.com/dd0wney/scout/pkg/visualization"
)

// Fetcher is the map-data client the explorer needs.
type Fetcher interface {
	transition.Fetcher
	MapData(ctx context.Context, query string) (*jobs.MapData, error)
}

// Config groups the tunables of every explorer component.
type Config struct {
	Physics     visualization.Config    `yaml:"physics"`
	Gesture     clusters.GestureConfig  `yaml:"gesture"`
	Transitions transition.Config       `yaml:"transitions"`
	Tooltip     selection.TooltipConfig `yaml:"tooltip"`
	// SelectionCapacity bounds the reinforcement selection.
	SelectionCapacity int `yaml:"selection_capacity"`
	// TickInterval is the simulation frame period used by Start.
	TickInterval time.Duration `yaml:"tick_interval"`
	// ClickSlop is how far the pointer may travel between press and
	// release for the gesture to count as a click.
	ClickSlop float64 `yaml:"click_slop"`
}

// DefaultConfig returns the stock explorer configuration.
func DefaultConfig() Config {
	return Config{
		Physics:           visualization.DefaultConfig(),
		Gesture:           clusters.DefaultGestureConfig(),
		Transitions:       transition.DefaultConfig(),
		Tooltip:           selection.DefaultTooltipConfig(),
		SelectionCapacity: jobs.MaxSelection,
		TickInterval:      16 * time.Millisecond,
		ClickSlop:         3,
	}
}

// Validate checks every component's tunables and joins the failures.
func (c Config) Validate() error {
	return errors.Join(
		c.Physics.Validate(),
		c.Gesture.Validate(),
		c.Transitions.Validate(),
		c.Tooltip.Validate(),
		validation.NewConfigValidator("Explorer").
			RangeInt("SelectionCapacity", c.SelectionCapacity, 1, jobs.MaxSelection).
			MinDuration("TickInterval", c.TickInterval, time.Millisecond).
			NonNegativeFloat("ClickSlop", c.ClickSlop).
			Validate(),
	)
}

// Options configures an Explorer. Every callback runs on the loop.
type Options struct {
	Config  Config
	Logger  logging.Logger
	Metrics *metrics.Registry

	OnStatus  func(Status)
	OnHint    func(Hint)
	OnTooltip func(selection.TooltipState, selection.Target)
	// OnDetails runs when a node is clicked outside reinforcement mode.
	OnDetails func(clusterID int, job jobs.Job)
}

// Explorer wires the interactive map together.
type Explorer struct {
	sched   scheduler.Scheduler
	fetcher Fetcher
	cfg     Config
	logger  logging.Logger
	opts    Options

	manager       *clusters.Manager
	controller    *transition.Controller
	reinforcement *selection.Reinforcement
	tooltip       *selection.Tooltip

	status   Status
	hinted   map[Hint]bool
	keywords []string

	searchSeq    int
	searchCancel context.CancelFunc

	press   *press
	hovered *selection.Target

	ticker scheduler.Timer
}

// press is a pointer press on a node that has not been released yet.
type press struct {
	clusterID int
	nodeID    int
	at        r2.Vec
	offset    r2.Vec
	moved     bool
}

// New creates an explorer with an empty canvas showing the idle prompt.
func New(s scheduler.Scheduler, f Fetcher, opts Options) *Explorer {
	logger := logging.OrNop(opts.Logger)
	e := &Explorer{
		sched:   s,
		fetcher: f,
		cfg:     opts.Config,
		logger:  logger.With(logging.Component("explorer")),
		opts:    opts,
		hinted:  make(map[Hint]bool),
		status:  Status{Kind: StatusIdle, Message: MessageIdle},
	}

	e.manager = clusters.NewManager(clusters.Options{
		Physics: opts.Config.Physics,
		Gesture: opts.Config.Gesture,
		Logger:  logger,
		Metrics: opts.Metrics,
		Now:     s.Now,
	})
	e.controller = transition.NewController(s, e.manager, f, transition.Options{
		Config:  opts.Config.Transitions,
		Logger:  logger,
		Metrics: opts.Metrics,
		Hooks: transition.Hooks{
			Materialized: e.onMaterialized,
			Failed:       e.onFailed,
			Finished:     e.onFinished,
		},
	})
	e.reinforcement = selection.NewReinforcement(opts.Config.SelectionCapacity)
	e.tooltip = selection.NewTooltip(s, opts.Config.Tooltip, opts.OnTooltip)
	e.manager.Subscribe(e.reconcile)
	return e
}

// Manager exposes the cluster manager, mainly for renderers that subscribe
// to frames.
func (e *Explorer) Manager() *clusters.Manager {
	return e.manager
}

// Controller exposes the transition controller.
func (e *Explorer) Controller() *transition.Controller {
	return e.controller
}

// Reinforcement exposes the selection state.
func (e *Explorer) Reinforcement() *selection.Reinforcement {
	return e.reinforcement
}

// Tooltip returns the tooltip state and target.
func (e *Explorer) Tooltip() (selection.TooltipState, selection.Target) {
	return e.tooltip.State()
}

// Job returns the job behind a node, for tooltip and detail rendering.
func (e *Explorer) Job(target selection.Target) (jobs.Job, bool) {
	_, n, err := e.manager.Lookup(target.ClusterID, target.NodeID)
	if err != nil {
		return jobs.Job{}, false
	}
	return n.Job, true
}

// Resize sets the canvas size new searches are centered in.
func (e *Explorer) Resize(width, height float64) {
	e.manager.SetViewport(width, height)
}

// Tick advances the canvas by one frame.
func (e *Explorer) Tick() clusters.TickStats {
	return e.manager.Tick()
}

// Start ticks the canvas every TickInterval until Stop.
func (e *Explorer) Start() {
	if e.ticker != nil {
		return
	}
	interval := e.cfg.TickInterval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	e.ticker = scheduler.Every(e.sched, interval, func() { e.manager.Tick() })
	e.logger.Info("explorer started", logging.Duration("tick_interval", interval))
}

// Stop halts ticking and cancels every in-flight transition and search.
func (e *Explorer) Stop() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
	if e.searchCancel != nil {
		e.searchCancel()
		e.searchCancel = nil
	}
	e.controller.CancelAll()
	e.tooltip.Hide()
}

// reconcile drops tooltip and selection references to nodes that left the
// canvas. It runs after every published frame.
func (e *Explorer) reconcile(clusters.Frame) {
	if state, target := e.tooltip.State(); state != selection.Hidden {
		if _, ok := e.Job(target); !ok {
			e.tooltip.Hide()
		}
	}
	if e.hovered != nil {
		if _, ok := e.Job(*e.hovered); !ok {
			e.hovered = nil
		}
	}
	for _, n := range e.reinforcement.Selected() {
		if _, live, err := e.manager.Lookup(n.ClusterID, n.ID); err != nil || live != n {
			e.reinforcement.Forget(n)
		}
	}
}

func (e *Explorer) onMaterialized(_ *transition.Transition, c *visualization.Cluster) {
	highlightCluster(c, e.keywords)
}

func (e *Explorer) onFailed(_ *transition.Transition, err error) {
	e.setStatus(Status{Kind: StatusError, Message: "Error: " + err.Error()})
}

func (e *Explorer) onFinished(t *transition.Transition) {
	if t.Kind == transition.KindReinforce && t.Outcome() == transition.OutcomeOK {
		e.hint(HintReinforced)
	}
}
