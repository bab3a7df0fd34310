package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Search    key.Binding
	Keywords  key.Binding
	Reinforce key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Reset     key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Keywords: key.NewBinding(
		key.WithKeys("k"),
		key.WithHelp("k", "keywords"),
	),
	Reinforce: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r/shift+click", "reinforce"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+/-", "zoom"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
	),
	Reset: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "reset view"),
	),
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("arrows", "pan"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Keywords, k.Reinforce, k.ZoomIn, k.Up, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Keywords, k.Submit, k.Cancel},
		{k.Reinforce, k.ZoomIn, k.Up, k.Reset},
		{k.Quit},
	}
}

// watchHelp is the subset that works while watching a broadcast.
func (k keyMap) watchHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.Up, k.Reset, k.Quit}
}
