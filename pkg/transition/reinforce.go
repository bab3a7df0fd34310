package transition

import (
	"context"
	"fmt"

	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/visualization"
)

// Reinforce asks the server to recompute c's related set around the
// selected jobs. On a non-empty result everything outside the selection
// fades out, then c is replaced by a fresh cluster at its anchor whose
// carried-over nodes are emphasized for a while. An empty result leaves c
// untouched.
//
// The request is validated first; an invalid one returns an error without
// any network call.
func (ctl *Controller) Reinforce(c *visualization.Cluster, req jobs.ReinforceRequest) (*Transition, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("reinforce: %w", err)
	}

	ctl.CancelFor(c.ID)
	t := ctl.begin(KindReinforce, c.ID, req.CenterID)
	t.touch(c.ID)

	keep := make(map[int64]bool, len(req.SelectedIDs))
	for _, id := range req.SelectedIDs {
		keep[id] = true
	}

	ctl.fetch(t,
		func(ctx context.Context) (*jobs.MapData, error) { return ctl.fetcher.Reinforce(ctx, req) },
		func(data *jobs.MapData, err error) {
			if outcome := ctl.classify(t, data, err); outcome != OutcomeOK {
				ctl.finish(t, outcome, err)
				return
			}
			ctl.replace(t, c, keep, data)
		},
	)
	return t, nil
}

func kept(n *visualization.Node, keep map[int64]bool) bool {
	id, ok := n.Job.ExternalID()
	return ok && keep[id]
}

func (ctl *Controller) replace(t *Transition, c *visualization.Cluster, keep map[int64]bool, data *jobs.MapData) {
	m := ctl.manager
	if _, ok := m.Get(c.ID); !ok {
		ctl.finish(t, OutcomeSkipped, nil)
		return
	}

	for _, n := range c.Nodes {
		if n.IsCenter() || kept(n, keep) {
			continue
		}
		t.track(m.FadeNode(c, n, 0, 0, ctl.cfg.ReinforceFadeOut))
	}
	for _, l := range c.Links {
		if kept(l.Target, keep) {
			continue
		}
		t.track(m.FadeLink(c, l, 0, 0, ctl.cfg.ReinforceFadeOut))
	}
	t.undo = func() {
		if _, ok := m.Get(c.ID); ok {
			restoreOpacity(c)
			m.Touch()
		}
	}

	t.timers.After(ctl.cfg.ReinforceFadeOut, func() {
		anchor := c.Anchor
		m.Remove(c.ID)
		t.undo = nil

		nc, err := m.Create(data, anchor)
		if err != nil {
			ctl.fail(t, err)
			ctl.finish(t, OutcomeFailed, err)
			return
		}
		t.Result = nc.ID
		t.touch(nc.ID)

		var emphasized []*visualization.Node
		for _, n := range nc.Nodes {
			if !n.IsCenter() && kept(n, keep) {
				n.Visual.Emphasized = true
				emphasized = append(emphasized, n)
			}
		}
		relax := func() {
			for _, n := range emphasized {
				n.Visual.Emphasized = false
			}
			m.Touch()
		}
		t.undo = relax

		if ctl.hooks.Materialized != nil {
			ctl.hooks.Materialized(t, nc)
		}

		t.timers.After(ctl.cfg.Emphasis, func() {
			relax()
			ctl.finish(t, OutcomeOK, nil)
		})
	})
}
