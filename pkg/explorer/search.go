package explorer

import (
	"context"
	"errors"
	"strings"

	"github.com/dd0wney/scout/pkg/fetcher"
	"github.com/dd0wney/scout/pkg/highlight"
	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/scheduler"
	"github.com/dd0wney/scout/pkg/visualization"
)

// Search replaces the canvas with the map for query. A blank query only
// shows the idle prompt. Starting a search cancels every in-flight
// transition and any earlier search; only the latest search's result is
// ever applied.
func (e *Explorer) Search(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		e.setStatus(Status{Kind: StatusIdle, Message: MessageIdle})
		return
	}

	e.controller.CancelAll()
	if e.searchCancel != nil {
		e.searchCancel()
	}
	e.manager.CancelDrag()
	e.press = nil
	e.tooltip.Hide()
	e.manager.Clear()
	e.searchSeq++
	seq := e.searchSeq
	e.setStatus(Status{Kind: StatusLoading, Message: MessageLoading})
	e.logger.Info("search started", logging.Query(query))

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Transitions.FetchTimeout)
	e.searchCancel = cancel
	scheduler.Await(e.sched,
		func() (*jobs.MapData, error) {
			defer cancel()
			return e.fetcher.MapData(ctx, query)
		},
		func(data *jobs.MapData, err error) {
			if seq != e.searchSeq {
				return
			}
			e.searchCancel = nil
			e.applySearch(query, data, err)
		},
	)
}

func (e *Explorer) applySearch(query string, data *jobs.MapData, err error) {
	switch {
	case errors.Is(err, fetcher.ErrNoResults) || (err == nil && data.Empty()):
		e.logger.Info("search found nothing", logging.Query(query))
		e.setStatus(Status{Kind: StatusEmpty, Message: MessageEmpty})
		return
	case err != nil:
		e.logger.Warn("search failed", logging.Query(query), logging.Error(err))
		e.setStatus(Status{Kind: StatusError, Message: "Error: " + err.Error()})
		return
	}

	c, err := e.manager.Create(data, e.manager.ViewportCenter())
	if err != nil {
		e.setStatus(Status{Kind: StatusError, Message: "Error: " + err.Error()})
		return
	}
	highlightCluster(c, e.keywords)
	e.logger.Info("search mapped",
		logging.Query(query),
		logging.ClusterID(c.ID),
		logging.Count(len(c.Nodes)),
	)
	e.setStatus(Status{Kind: StatusReady})
	e.hint(HintDrag)
}

// SetKeywords re-highlights every node against a new keyword filter and
// returns how many nodes match. An empty filter clears all marks.
func (e *Explorer) SetKeywords(query string) int {
	e.keywords = highlight.Tokenize(query)
	n := highlight.Apply(e.manager.Clusters(), e.keywords)
	e.manager.Touch()
	return n
}

func highlightCluster(c *visualization.Cluster, tokens []string) {
	highlight.Apply([]*visualization.Cluster{c}, tokens)
}

// Keywords returns the active keyword tokens.
func (e *Explorer) Keywords() []string {
	return append([]string(nil), e.keywords...)
}
