// Package tui is the terminal frontend: a bubbletea program that
// lays the dashboard's panels out in a grid, routes keys and mouse
// clicks, and re-reads the orchestrator's view state on a frame tick.
// All dashboard behavior stays behind the orchestrator and the bus;
// this package only presents it.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"

	"github.com/castlebay/deskpulse/pkg/bus"
	"github.com/castlebay/deskpulse/pkg/config"
	"github.com/castlebay/deskpulse/pkg/dashboard"
	"github.com/castlebay/deskpulse/pkg/theme"
)

// frameInterval is the cadence the model re-reads panel state at.
// Bus events land between frames; half a second keeps the dashboard
// feeling live without redraw churn.
const frameInterval = 500 * time.Millisecond

// frameMsg asks the model to take a fresh snapshot of the dashboard.
type frameMsg time.Time

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Model is the bubbletea model for the dashboard session.
type Model struct {
	dash  *dashboard.Dashboard
	cfg   *config.Config
	zones *zone.Manager
	keys  keyMap
	help  help.Model
	spin  spinner.Model

	theme  theme.Theme
	panels []dashboard.NamedPanel
	focus  int

	width, height int
	online        bool
	paused        bool
	hidden        int
	showHelp      bool
	quitting      bool
}

// New returns a model presenting an initialized dashboard.
func New(d *dashboard.Dashboard, cfg *config.Config) *Model {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	m := &Model{
		dash:   d,
		cfg:    cfg,
		zones:  zone.New(),
		keys:   defaultKeyMap(),
		help:   help.New(),
		spin:   sp,
		online: true,
	}
	m.snapshot()
	return m
}

// ResolveTheme maps the configured theme name to a concrete theme,
// with "auto" picking by terminal background.
func ResolveTheme(name string) string {
	if name != "auto" {
		return name
	}
	if termenv.HasDarkBackground() {
		return "default"
	}
	return "light"
}

// Close releases the mouse zone manager.
func (m *Model) Close() {
	m.zones.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(), m.spin.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case frameMsg:
		m.snapshot()
		return m, frameCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.FocusMsg:
		// The became-visible catch-up: refresh everything once
		// rather than waiting out each widget's timer.
		m.dash.CatchUp()
		return m, nil

	case tea.BlurMsg:
		return m, nil

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// snapshot re-reads everything the view renders from.
func (m *Model) snapshot() {
	m.panels = m.dash.Panels()
	m.online = m.dash.Monitor.Online()

	p := m.dash.Prefs.Current()
	m.paused = !p.AutoRefresh
	m.hidden = len(p.HiddenWidgets)
	m.theme = theme.Get(p.Theme)
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Dim))

	if m.focus >= len(m.panels) {
		m.focus = 0
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, k.NextPanel):
		if n := len(m.panels); n > 0 {
			m.focus = (m.focus + 1) % n
		}

	case key.Matches(msg, k.PrevPanel):
		if n := len(m.panels); n > 0 {
			m.focus = (m.focus - 1 + n) % n
		}

	case key.Matches(msg, k.Refresh):
		if name, ok := m.focusedName(); ok {
			m.dash.Bus.Publish(bus.EventWidgetRefreshRequested, name)
		}

	case key.Matches(msg, k.RefreshAll):
		m.dash.Bus.Publish(bus.EventRefreshAll)

	case key.Matches(msg, k.Theme):
		m.dash.Bus.Publish(bus.EventToggleTheme)
		m.snapshot()

	case key.Matches(msg, k.Hide):
		if name, ok := m.focusedName(); ok {
			m.dash.Prefs.SetHidden(name, true)
			m.snapshot()
		}

	case key.Matches(msg, k.Unhide):
		for _, name := range m.dash.WidgetNames() {
			m.dash.Prefs.SetHidden(name, false)
		}
		m.snapshot()

	case key.Matches(msg, k.Pause):
		m.dash.SetAutoRefresh(m.paused)
		m.snapshot()

	case key.Matches(msg, k.Activate):
		if i := m.focus; i < len(m.panels) {
			p := m.panels[i]
			if p.Panel.Action != nil {
				m.dash.Activate(context.Background(), p.Name, p.Panel.Action.ID)
			}
		}
	}
	return m, nil
}

// handleMouse focuses the clicked panel.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	for i, p := range m.panels {
		if m.zones.Get(panelZoneID(p.Name)).InBounds(msg) {
			m.focus = i
			break
		}
	}
	return nil
}

func (m *Model) focusedName() (string, bool) {
	if m.focus < len(m.panels) {
		return m.panels[m.focus].Name, true
	}
	return "", false
}

func panelZoneID(name string) string {
	return "panel:" + name
}
