package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the dashboard bindings. Printable keys are never bound so
// that they always reach the query input.
type KeyMap struct {
	Submit    key.Binding
	NextChart key.Binding
	PrevChart key.Binding
	Chart1    key.Binding
	Chart2    key.Binding
	Chart3    key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Clear     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func NewKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		NextChart: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next chart"),
		),
		PrevChart: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous chart"),
		),
		Chart1: key.NewBinding(
			key.WithKeys("alt+1"),
			key.WithHelp("alt+1", "survival by gender"),
		),
		Chart2: key.NewBinding(
			key.WithKeys("alt+2"),
			key.WithHelp("alt+2", "class distribution"),
		),
		Chart3: key.NewBinding(
			key.WithKeys("alt+3"),
			key.WithHelp("alt+3", "age distribution"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "scroll down"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear chat"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextChart, k.Clear, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.PageUp, k.PageDown, k.Clear},
		{k.NextChart, k.PrevChart, k.Chart1, k.Chart2, k.Chart3},
		{k.Help, k.Quit},
	}
}
