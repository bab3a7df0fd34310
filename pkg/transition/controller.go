package transition

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dd0wney/scout/pkg/clusters"
	"github.com/dd0wney/scout/pkg/fetcher"
	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/metrics"
	"github.com/dd0wney/scout/pkg/scheduler"
	"github.com/dd0wney/scout/pkg/visualization"
)

// Fetcher is the part of the map-data client transitions need.
type Fetcher interface {
	JobAsQuery(ctx context.Context, jobID int64) (*jobs.MapData, error)
	Reinforce(ctx context.Context, req jobs.ReinforceRequest) (*jobs.MapData, error)
}

// Hooks lets the caller observe transitions. All hooks run on the loop.
type Hooks struct {
	// Materialized runs when a transition adds its new cluster.
	Materialized func(t *Transition, c *visualization.Cluster)
	// Failed runs on transport errors, before the transition finishes.
	Failed func(t *Transition, err error)
	// Finished runs once per transition with its final outcome set.
	Finished func(t *Transition)
}

// Options configures a Controller.
type Options struct {
	Config  Config
	Logger  logging.Logger
	Metrics *metrics.Registry
	Hooks   Hooks
}

// Controller starts, tracks and cancels transitions. It implements
// clusters.Router. Use it from the loop only.
type Controller struct {
	sched   scheduler.Scheduler
	manager *clusters.Manager
	fetcher Fetcher
	cfg     Config
	logger  logging.Logger
	metrics *metrics.Registry
	hooks   Hooks

	inflight []*Transition
}

var _ clusters.Router = (*Controller)(nil)

// NewController creates a controller and installs it as the manager's
// router.
func NewController(s scheduler.Scheduler, m *clusters.Manager, f Fetcher, opts Options) *Controller {
	ctl := &Controller{
		sched:   s,
		manager: m,
		fetcher: f,
		cfg:     opts.Config,
		logger:  logging.OrNop(opts.Logger).With(logging.Component("transition")),
		metrics: opts.Metrics,
		hooks:   opts.Hooks,
	}
	m.SetRouter(ctl)
	return ctl
}

// InFlight returns the transitions that have not finished.
func (ctl *Controller) InFlight() []*Transition {
	out := make([]*Transition, len(ctl.inflight))
	copy(out, ctl.inflight)
	return out
}

// CancelFor cancels every transition that would replace, or is still
// revealing, the given cluster. It returns how many were cancelled.
func (ctl *Controller) CancelFor(clusterID int) int {
	n := 0
	for _, t := range ctl.InFlight() {
		if t.Touches(clusterID) {
			ctl.cancelTransition(t)
			n++
		}
	}
	return n
}

// CancelAll cancels every in-flight transition.
func (ctl *Controller) CancelAll() int {
	all := ctl.InFlight()
	for _, t := range all {
		ctl.cancelTransition(t)
	}
	return len(all)
}

func (ctl *Controller) begin(kind Kind, origin int, jobID int64) *Transition {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Transition{
		ID:      uuid.NewString(),
		Kind:    kind,
		JobID:   jobID,
		Origin:  origin,
		started: ctl.sched.Now(),
		ctx:     ctx,
		cancel:  cancel,
		timers:  scheduler.NewGroup(ctl.sched),
		touched: make(map[int]struct{}),
	}
	ctl.inflight = append(ctl.inflight, t)
	ctl.logger.Info("transition started",
		logging.TransitionID(t.ID),
		logging.Operation(string(kind)),
		logging.ClusterID(origin),
		logging.JobID(jobID),
	)
	return t
}

func (ctl *Controller) cancelTransition(t *Transition) {
	if t.Finished() {
		return
	}
	for _, tw := range t.tweens {
		tw.Cancel()
	}
	if t.undo != nil {
		t.undo()
		t.undo = nil
	}
	ctl.finish(t, OutcomeCancelled, ErrCancelled)
}

func (ctl *Controller) finish(t *Transition, outcome Outcome, err error) {
	if t.Finished() {
		return
	}
	t.outcome = outcome
	t.err = err
	t.undo = nil
	t.timers.Close()
	t.cancel()

	for i, x := range ctl.inflight {
		if x == t {
			ctl.inflight = append(ctl.inflight[:i], ctl.inflight[i+1:]...)
			break
		}
	}

	ctl.metrics.RecordTransition(string(t.Kind), string(outcome))
	fields := []logging.Field{
		logging.TransitionID(t.ID),
		logging.Operation(string(t.Kind)),
		logging.String("outcome", string(outcome)),
		logging.Latency(ctl.sched.Now().Sub(t.started)),
	}
	if t.Result != 0 {
		fields = append(fields, logging.ClusterID(t.Result))
	}
	if err != nil && !errors.Is(err, ErrCancelled) {
		fields = append(fields, logging.Error(err))
		ctl.logger.Warn("transition finished", fields...)
	} else {
		ctl.logger.Info("transition finished", fields...)
	}

	if ctl.hooks.Finished != nil {
		ctl.hooks.Finished(t)
	}
}

// fetch runs call off the loop with a per-request timeout and delivers the
// result on the loop unless the transition ended in the meantime.
func (ctl *Controller) fetch(t *Transition, call func(context.Context) (*jobs.MapData, error), done func(*jobs.MapData, error)) {
	ctx, cancel := context.WithTimeout(t.ctx, ctl.cfg.FetchTimeout)
	scheduler.Await(ctl.sched,
		func() (*jobs.MapData, error) {
			defer cancel()
			return call(ctx)
		},
		func(data *jobs.MapData, err error) {
			if t.Finished() {
				return
			}
			done(data, err)
		},
	)
}

// classify maps a fetch result to the outcome it ends the transition with,
// or OutcomeOK when there is a cluster to build.
func (ctl *Controller) classify(t *Transition, data *jobs.MapData, err error) Outcome {
	switch {
	case errors.Is(err, fetcher.ErrNoResults):
		return OutcomeEmpty
	case err != nil:
		ctl.fail(t, err)
		return OutcomeFailed
	case data.Empty():
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}

func (ctl *Controller) fail(t *Transition, err error) {
	if ctl.hooks.Failed != nil {
		ctl.hooks.Failed(t, fmt.Errorf("%s: %w", t.Kind, err))
	}
}
