package transition

import (
	"context"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/dd0wney/scout/pkg/clusters"
	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/visualization"
)

// Promote replaces cluster c with a new cluster centered on n, built in
// place at n's release position.
//
// The old cluster fades out around a placeholder left at n's position and
// is destroyed after PromoteDelay. Then n's job is fetched as a query and,
// if the server has a result, revealed where the placeholder stands.
func (ctl *Controller) Promote(c *visualization.Cluster, n *visualization.Node) {
	ctl.CancelFor(c.ID)

	jobID, hasID := n.Job.ExternalID()
	t := ctl.begin(KindPromote, c.ID, jobID)
	t.touch(c.ID)

	m := ctl.manager
	pos := n.Pos
	c.Simulation().Stop()

	ph := m.AddPlaceholder(pos, n.Radius(), n.Job.Title)
	t.track(m.GrowPlaceholder(ph, ctl.cfg.PromotedRadius, ctl.cfg.PlaceholderGrow))
	for _, x := range c.Nodes {
		d := ctl.cfg.PromoteFadeOut
		if x == n {
			d = ctl.cfg.ChosenFadeOut
		}
		t.track(m.FadeNode(c, x, 0, 0, d))
	}
	for _, l := range c.Links {
		t.track(m.FadeLink(c, l, 0, 0, ctl.cfg.PromoteFadeOut))
	}

	t.undo = func() {
		m.RemovePlaceholder(ph)
		if _, ok := m.Get(c.ID); ok {
			restoreOpacity(c)
			c.Simulation().Restart(ctl.cfg.FirstBurst)
			m.Touch()
		}
	}

	t.timers.After(ctl.cfg.PromoteDelay, func() {
		m.Remove(c.ID)
		t.undo = func() { m.RemovePlaceholder(ph) }
		if !hasID {
			ctl.discard(t, ph, OutcomeSkipped, nil)
			return
		}
		ctl.fetch(t,
			func(ctx context.Context) (*jobs.MapData, error) { return ctl.fetcher.JobAsQuery(ctx, jobID) },
			func(data *jobs.MapData, err error) { ctl.resolve(t, ph, pos, data, err) },
		)
	})
}

// Detach removes n and its link from c and grows an independent cluster
// around n's job at n's release position. The removed node and link stay
// drawn while they fade out. The origin cluster survives, so gestures on it
// do not cancel the detachment.
func (ctl *Controller) Detach(c *visualization.Cluster, n *visualization.Node) {
	jobID, hasID := n.Job.ExternalID()
	t := ctl.begin(KindDetach, c.ID, jobID)

	m := ctl.manager
	pos := n.Pos
	r := n.Radius()

	ph := m.AddPlaceholder(pos, r, n.Job.Title)
	t.track(m.GrowPlaceholder(ph, r*ctl.cfg.DetachGrowFactor, ctl.cfg.DetachGrow))
	t.undo = func() { m.RemovePlaceholder(ph) }

	if _, _, err := m.FadeOutNode(c.ID, n.ID, ctl.cfg.DetachFadeOut); err != nil {
		ctl.logger.Warn("detach: node already gone",
			logging.ClusterID(c.ID), logging.NodeID(n.ID), logging.Error(err))
	}

	if !hasID {
		t.timers.After(ctl.cfg.OrphanHold, func() {
			ctl.discard(t, ph, OutcomeSkipped, nil)
		})
		return
	}

	t.timers.After(ctl.cfg.DetachDelay, func() {
		ctl.fetch(t,
			func(ctx context.Context) (*jobs.MapData, error) { return ctl.fetcher.JobAsQuery(ctx, jobID) },
			func(data *jobs.MapData, err error) { ctl.resolve(t, ph, pos, data, err) },
		)
	})
}

func (ctl *Controller) resolve(t *Transition, ph *clusters.Placeholder, pos r2.Vec, data *jobs.MapData, err error) {
	outcome := ctl.classify(t, data, err)
	if outcome != OutcomeOK {
		ctl.discard(t, ph, outcome, err)
		return
	}
	ctl.reveal(t, ph, pos, data)
}

// discard fades the placeholder away and ends the transition.
func (ctl *Controller) discard(t *Transition, ph *clusters.Placeholder, outcome Outcome, err error) {
	m := ctl.manager
	m.FadePlaceholder(ph, 0, 0, ctl.cfg.PlaceholderFadeOut).OnDone(func() {
		m.RemovePlaceholder(ph)
	})
	ctl.finish(t, outcome, err)
}

// reveal materializes data in place at pos and hands the placeholder over
// to the new center: the placeholder cross-fades into the center, links and
// related nodes fade in staggered, the simulation is re-energized in two
// bursts, and the center is released once the layout has spread.
func (ctl *Controller) reveal(t *Transition, ph *clusters.Placeholder, pos r2.Vec, data *jobs.MapData) {
	m := ctl.manager
	c, err := m.CreateInPlace(data, pos)
	if err != nil {
		ctl.fail(t, err)
		ctl.discard(t, ph, OutcomeFailed, err)
		return
	}
	t.Result = c.ID
	t.touch(c.ID)
	center := c.Center()

	t.undo = func() {
		m.RemovePlaceholder(ph)
		if _, ok := m.Get(c.ID); !ok {
			return
		}
		restoreOpacity(c)
		center.Unpin()
		c.Simulation().Restart(ctl.cfg.FirstBurst)
		m.Touch()
	}

	if ctl.hooks.Materialized != nil {
		ctl.hooks.Materialized(t, c)
	}

	cfg := ctl.cfg
	t.timers.After(cfg.RevealDelay, func() {
		t.track(m.FadePlaceholder(ph, 0, 0, cfg.CrossFade)).OnDone(func() {
			m.RemovePlaceholder(ph)
		})
		t.track(m.FadeNode(c, center, 1, 0, cfg.CrossFade))

		t.timers.After(cfg.CrossFade, func() {
			for i, l := range c.Links {
				t.track(m.FadeLink(c, l, 1, time.Duration(i)*cfg.LinkStagger, cfg.LinkReveal))
			}
			i := 0
			for _, n := range c.Nodes {
				if n.IsCenter() {
					continue
				}
				t.track(m.FadeNode(c, n, 1, time.Duration(i)*cfg.NodeStagger, cfg.NodeReveal))
				i++
			}

			c.Simulation().Restart(cfg.FirstBurst)
			t.timers.After(cfg.SecondBurstDelay, func() {
				c.Simulation().Restart(cfg.SecondBurst)
			})
			t.timers.After(cfg.CenterHold, func() {
				center.Unpin()
				ctl.finish(t, OutcomeOK, nil)
			})
		})
	})
}

func restoreOpacity(c *visualization.Cluster) {
	for _, n := range c.Nodes {
		n.Visual.Opacity = 1
	}
	for _, l := range c.Links {
		l.Opacity = 1
	}
}
