package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/scout/pkg/clusters"
	"github.com/dd0wney/scout/pkg/explorer"
	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/pubsub"
	"github.com/dd0wney/scout/pkg/render"
	"github.com/dd0wney/scout/pkg/scheduler"
	"github.com/dd0wney/scout/pkg/selection"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1C3A5B")).
			Background(lipgloss.Color("#F5DEB3")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDDDDD"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00BFFF")).
			Italic(true)

	tooltipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#8B4513")).
			Padding(0, 1)

	detailsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1C3A5B")).
			Background(lipgloss.Color("#DDDDDD")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// Screen layout: title, inputs and status above the canvas; tooltip and
// help below it.
const (
	canvasTop  = 3
	footerRows = 2
)

const (
	zoomStep = 1.2
	hintTTL  = 6 * time.Second
)

type focus int

const (
	focusCanvas focus = iota
	focusSearch
	focusKeywords
)

type wakeMsg struct{}

type frameMsg clusters.Frame

type watchClosedMsg struct{}

// model drives one explorer from the bubbletea event loop. Update owns the
// scheduler loop: it drains queued callbacks whenever the loop wakes, so
// every explorer call and callback runs on the Update goroutine.
type model struct {
	loop     *scheduler.Loop
	explorer *explorer.Explorer
	frames   *pubsub.PubSub[clusters.Frame]
	watch    *pubsub.Subscription[clusters.Frame]
	logger   logging.Logger

	searchInput  textinput.Model
	keywordInput textinput.Model
	focus        focus
	help         help.Model
	keys         keyMap
	styles       render.Styles

	vp        render.Viewport
	frame     clusters.Frame
	status    explorer.Status
	hint      string
	hintSeq   int
	tipState  selection.TooltipState
	tipTarget selection.Target
	details   *jobs.Job
	shift     bool

	width  int
	height int
}

func newInputs() (search, keywords textinput.Model) {
	search = textinput.New()
	search.Placeholder = "e.g. data engineer"
	search.Prompt = "search: "
	search.CharLimit = 120
	search.Width = 32

	keywords = textinput.New()
	keywords.Placeholder = "python, sql"
	keywords.Prompt = "keywords: "
	keywords.CharLimit = 120
	keywords.Width = 24
	return search, keywords
}

// newModel creates an interactive model. The explorer is built against
// loop and wired back into the model's callbacks here.
func newModel(loop *scheduler.Loop, f explorer.Fetcher, frames *pubsub.PubSub[clusters.Frame], cfg explorer.Config, opts explorer.Options) *model {
	search, keywords := newInputs()
	m := &model{
		loop:         loop,
		frames:       frames,
		logger:       logging.OrNop(opts.Logger).With(logging.Component("tui")),
		searchInput:  search,
		keywordInput: keywords,
		help:         help.New(),
		keys:         keys,
		styles:       render.DefaultStyles(),
		vp:           render.NewViewport(80, 20),
	}

	opts.Config = cfg
	opts.OnStatus = func(s explorer.Status) { m.status = s }
	opts.OnHint = func(h explorer.Hint) { m.showHint(string(h)) }
	opts.OnTooltip = func(s selection.TooltipState, t selection.Target) {
		m.tipState, m.tipTarget = s, t
	}
	opts.OnDetails = func(_ int, j jobs.Job) { m.details = &j }

	m.explorer = explorer.New(loop, f, opts)
	m.status = m.explorer.Status()
	m.explorer.Manager().Subscribe(func(fr clusters.Frame) {
		m.frame = fr
		if m.frames != nil {
			m.frames.Publish(pubsub.TopicFrames, fr)
		}
	})
	return m
}

// newWatchModel creates a read-only model that renders frames arriving on
// sub.
func newWatchModel(sub *pubsub.Subscription[clusters.Frame], logger logging.Logger) *model {
	search, keywords := newInputs()
	return &model{
		watch:        sub,
		logger:       logging.OrNop(logger).With(logging.Component("tui")),
		searchInput:  search,
		keywordInput: keywords,
		help:         help.New(),
		keys:         keys,
		styles:       render.DefaultStyles(),
		vp:           render.NewViewport(80, 20),
		status:       explorer.Status{Kind: explorer.StatusLoading, Message: "Waiting for frames..."},
	}
}

func (m *model) watching() bool {
	return m.watch != nil
}

func waitForWake(loop *scheduler.Loop) tea.Cmd {
	return func() tea.Msg {
		<-loop.Wake()
		return wakeMsg{}
	}
}

func waitForFrame(sub *pubsub.Subscription[clusters.Frame]) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-sub.Channel()
		if !ok {
			return watchClosedMsg{}
		}
		return frameMsg(f)
	}
}

func (m *model) Init() tea.Cmd {
	if m.watching() {
		return waitForFrame(m.watch)
	}
	return tea.Batch(textinput.Blink, waitForWake(m.loop))
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case wakeMsg:
		m.loop.Drain()
		return m, waitForWake(m.loop)

	case frameMsg:
		m.frame = clusters.Frame(msg)
		m.status = explorer.Status{Kind: explorer.StatusReady}
		return m, waitForFrame(m.watch)

	case watchClosedMsg:
		m.status = explorer.Status{Kind: explorer.StatusError, Message: "Broadcast ended"}
		return m, nil

	case tea.MouseMsg:
		if !m.watching() {
			m.handleMouse(msg)
		} else if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			m.handleWheel(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if m.focus != focusCanvas {
			return m, m.updateInput(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	rows := height - canvasTop - footerRows
	if rows < 1 {
		rows = 1
	}
	m.vp.Resize(width, rows)
	if m.explorer != nil {
		m.explorer.Resize(m.vp.CanvasSize())
	}
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.ZoomIn):
		m.vp.ZoomBy(zoomStep)
	case key.Matches(msg, m.keys.ZoomOut):
		m.vp.ZoomBy(1 / zoomStep)
	case key.Matches(msg, m.keys.Reset):
		m.vp.Reset()
	case key.Matches(msg, m.keys.Up):
		m.vp.Pan(0, 1)
	case key.Matches(msg, m.keys.Down):
		m.vp.Pan(0, -1)
	case key.Matches(msg, m.keys.Left):
		m.vp.Pan(1, 0)
	case key.Matches(msg, m.keys.Right):
		m.vp.Pan(-1, 0)
	case key.Matches(msg, m.keys.Cancel):
		m.details = nil
	case m.watching():
		return nil
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		return m.searchInput.Focus()
	case key.Matches(msg, m.keys.Keywords):
		m.focus = focusKeywords
		return m.keywordInput.Focus()
	case key.Matches(msg, m.keys.Reinforce):
		if m.explorer.Reinforcement().Active() {
			m.modifierUp()
		} else {
			m.explorer.ModifierDown()
		}
	}
	return nil
}

// updateInput feeds a key to the focused text input. Enter submits it and
// hands focus back to the canvas.
func (m *model) updateInput(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	input := &m.searchInput
	if m.focus == focusKeywords {
		input = &m.keywordInput
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		if m.focus == focusSearch {
			m.details = nil
			m.explorer.Search(input.Value())
		} else {
			n := m.explorer.SetKeywords(input.Value())
			m.logger.Debug("keywords applied", logging.Count(n))
		}
		fallthrough
	case key.Matches(msg, m.keys.Cancel):
		input.Blur()
		m.focus = focusCanvas
		return nil
	}

	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return cmd
}

// handleMouse turns terminal mouse events into explorer pointer events.
// The shift flag on mouse events stands in for holding the reinforcement
// modifier.
func (m *model) handleMouse(msg tea.MouseMsg) {
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		m.handleWheel(msg)
		return
	}

	m.syncShift(msg.Shift)

	col, row := msg.X, msg.Y-canvasTop
	if !m.vp.Visible(col, row) {
		m.explorer.PointerLeave()
		return
	}
	p := m.vp.ToCanvas(col, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.explorer.PointerDown(p)
		}
	case tea.MouseActionMotion:
		m.explorer.PointerMove(p)
	case tea.MouseActionRelease:
		if outcome := m.explorer.PointerUp(p); outcome != clusters.OutcomeNormal {
			m.logger.Debug("drag released", logging.String("outcome", outcome.String()))
		}
	}
}

func (m *model) handleWheel(msg tea.MouseMsg) {
	factor := zoomStep
	if msg.Button == tea.MouseButtonWheelDown {
		factor = 1 / zoomStep
	}
	m.vp.ZoomAt(factor, msg.X, msg.Y-canvasTop)
}

func (m *model) syncShift(shift bool) {
	if shift == m.shift {
		return
	}
	m.shift = shift
	if shift {
		m.explorer.ModifierDown()
		return
	}
	m.modifierUp()
}

func (m *model) modifierUp() {
	t, err := m.explorer.ModifierUp()
	if err != nil {
		m.logger.Warn("reinforcement not started", logging.Error(err))
		return
	}
	if t != nil {
		m.details = nil
	}
}

// showHint displays h until hintTTL passes or another hint replaces it.
func (m *model) showHint(h string) {
	m.hint = h
	m.hintSeq++
	seq := m.hintSeq
	m.loop.AfterFunc(hintTTL, func() {
		if m.hintSeq == seq {
			m.hint = ""
		}
	})
}

func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Scout job map"))
	if m.watching() {
		s.WriteString(labelStyle.Render("  watching broadcast"))
	} else if m.explorer.Reinforcement().Active() {
		s.WriteString(hintStyle.Render(fmt.Sprintf("  reinforcing (%d selected)", len(m.explorer.Reinforcement().Selected()))))
	}
	s.WriteString("\n")

	if !m.watching() {
		s.WriteString(m.searchInput.View())
		s.WriteString("  ")
		s.WriteString(m.keywordInput.View())
	}
	s.WriteString("\n")

	s.WriteString(m.statusLine())
	s.WriteString("\n")

	switch m.status.Kind {
	case explorer.StatusIdle, explorer.StatusEmpty, explorer.StatusError:
		s.WriteString(strings.Repeat("\n", m.vp.Rows-1))
	default:
		s.WriteString(render.Render(m.frame, m.vp, m.styles))
	}
	s.WriteString("\n")

	s.WriteString(m.footerLine())
	s.WriteString("\n")

	if m.watching() {
		s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.watchHelp())))
	} else {
		s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	}
	return s.String()
}

func (m *model) statusLine() string {
	if m.hint != "" {
		return hintStyle.Render(m.hint)
	}
	switch m.status.Kind {
	case explorer.StatusError:
		return errorStyle.Render("✗ " + m.status.Message)
	case explorer.StatusReady:
		return labelStyle.Render(fmt.Sprintf("zoom %.1fx", m.vp.Zoom))
	default:
		return statusStyle.Render(m.status.Message)
	}
}

// footerLine shows the open details card, or else the hover tooltip.
func (m *model) footerLine() string {
	if m.details != nil {
		return detailsStyle.Render(describe(*m.details, true))
	}
	if m.watching() || m.tipState != selection.Shown {
		return ""
	}
	j, ok := m.explorer.Job(m.tipTarget)
	if !ok {
		return ""
	}
	return tooltipStyle.Render(describe(j, false))
}

func describe(j jobs.Job, full bool) string {
	parts := []string{j.Title}
	if j.Company != "" {
		parts = append(parts, j.Company)
	}
	if r := j.SalaryRange(); r != "" {
		parts = append(parts, r)
	}
	if full {
		if j.ExperienceLevel != "" {
			parts = append(parts, j.ExperienceLevel)
		}
		if len(j.Skills) > 0 {
			parts = append(parts, strings.Join(j.Skills, ", "))
		}
	}
	return strings.Join(parts, " · ")
}
