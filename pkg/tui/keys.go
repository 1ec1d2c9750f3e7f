package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every dashboard key binding. It satisfies help.KeyMap
// so the footer renders from the same definitions the update loop
// matches against.
type keyMap struct {
	NextPanel  key.Binding
	PrevPanel  key.Binding
	Refresh    key.Binding
	RefreshAll key.Binding
	Activate   key.Binding
	Theme      key.Binding
	Hide       key.Binding
	Unhide     key.Binding
	Pause      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextPanel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		PrevPanel: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev panel"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh panel"),
		),
		RefreshAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh all"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "panel action"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle theme"),
		),
		Hide: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hide panel"),
		),
		Unhide: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "unhide all"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause auto-refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPanel, k.Refresh, k.RefreshAll, k.Theme, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPanel, k.PrevPanel, k.Activate},
		{k.Refresh, k.RefreshAll, k.Pause},
		{k.Theme, k.Hide, k.Unhide},
		{k.Help, k.Quit},
	}
}
