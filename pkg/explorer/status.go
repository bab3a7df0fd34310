package explorer

// StatusKind classifies the status line.
type StatusKind string

const (
	StatusIdle    StatusKind = "idle"
	StatusLoading StatusKind = "loading"
	StatusReady   StatusKind = "ready"
	StatusEmpty   StatusKind = "empty"
	StatusError   StatusKind = "error"
)

// Status line messages.
const (
	MessageIdle    = "Search for jobs or enter skills to visualize career paths"
	MessageLoading = "Finding similar jobs..."
	MessageEmpty   = "No results found"
)

// Status is what the renderer shows in place of, or above, the canvas.
type Status struct {
	Kind    StatusKind
	Message string
}

// Hint is a transient instructional message.
type Hint string

const (
	// HintDrag is shown once, after the first map is built.
	HintDrag Hint = "Tip: Drag a job near its center to become new center, or far away to spawn another cluster. Use mouse wheel to zoom in/out."
	// HintReinforce is shown the first time reinforcement mode is left with
	// nothing selected.
	HintReinforce Hint = "Press Shift to activate reinforcement"
	// HintSelect is shown whenever reinforcement mode is entered.
	HintSelect Hint = "Select 1 – 3 jobs you want to reinforce"
	// HintUnsendable is shown when leaving reinforcement mode left out
	// selected jobs that have no catalog id.
	HintUnsendable Hint = "Jobs without a catalog id cannot be reinforced"
	// HintReinforced is shown after a reinforcement replaced its cluster.
	HintReinforced Hint = "Reinforced: the jobs you picked are highlighted"
)

// Status returns the current status line.
func (e *Explorer) Status() Status {
	return e.status
}

func (e *Explorer) setStatus(s Status) {
	if s == e.status {
		return
	}
	e.status = s
	if e.opts.OnStatus != nil {
		e.opts.OnStatus(s)
	}
}

// hint raises h. The drag hint is raised once per explorer.
func (e *Explorer) hint(h Hint) {
	if h == HintDrag {
		if e.hinted[h] {
			return
		}
		e.hinted[h] = true
	}
	if e.opts.OnHint != nil {
		e.opts.OnHint(h)
	}
}
