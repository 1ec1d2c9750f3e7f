package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/castlebay/deskpulse/pkg/layout"
	"github.com/castlebay/deskpulse/pkg/view"
)

// chrome heights around the panel grid.
const (
	headerHeight = 1
	footerHeight = 2 // status bar + short help
)

// minPanelWidth below which the grid collapses to one column.
const minPanelWidth = 28

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width <= 0 || m.height <= 0 {
		return "starting deskpulse…"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return m.zones.Scan(b.String())
}

func (m *Model) renderHeader() string {
	t := m.theme
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Title)).
		Render(m.cfg.Dashboard.Title)
	clock := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Dim)).
		Render(time.Now().Format("Mon Jan 2 15:04"))

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(clock)
	if gap < 1 {
		gap = 1
	}
	return ansi.Truncate(title+strings.Repeat(" ", gap)+clock, m.width, "")
}

// renderGrid lays the visible panels into the configured column
// count, one cell per panel.
func (m *Model) renderGrid() string {
	bodyHeight := m.height - headerHeight - footerHeight
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	if len(m.panels) == 0 {
		return lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Dim)).
				Render("All widgets hidden. Press H to bring them back."))
	}

	columns := m.cfg.Dashboard.Columns
	if m.width/columns < minPanelWidth {
		columns = 1
	}
	cells := layout.Grid(layout.Rect{Width: m.width, Height: bodyHeight}, len(m.panels), columns, 0)

	rows := make(map[int][]string)
	var order []int
	for i, p := range m.panels {
		cell := cells[i]
		rendered := m.renderPanel(p.Name, p.Panel, cell.Width, cell.Height, i == m.focus)
		rendered = m.zones.Mark(panelZoneID(p.Name), rendered)
		if _, seen := rows[cell.Y]; !seen {
			order = append(order, cell.Y)
		}
		rows[cell.Y] = append(rows[cell.Y], rendered)
	}

	var out []string
	for _, y := range order {
		out = append(out, lipgloss.JoinHorizontal(lipgloss.Top, rows[y]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// renderPanel draws one widget's box: title bar, body lines mapped
// through the theme, optional footer and action hint.
func (m *Model) renderPanel(name string, p view.Panel, width, height int, focused bool) string {
	t := m.theme

	borderColor := t.Border
	if focused {
		borderColor = t.BorderFocus
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Width(width - 2).
		Height(height - 2).
		MaxWidth(width).
		MaxHeight(height)

	innerWidth := width - 2 - 2 // border + one cell padding each side
	if innerWidth < 1 {
		innerWidth = 1
	}
	pad := lipgloss.NewStyle().Padding(0, 1)

	var lines []string
	lines = append(lines, m.renderPanelTitle(p, innerWidth))

	bodyHeight := height - 3 // borders + title
	switch p.Status {
	case view.StatusOK:
		max := bodyHeight
		if p.Footer != "" {
			max--
		}
		for i, line := range p.Lines {
			if i >= max {
				more := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Dim)).
					Render(fmt.Sprintf("… %d more", len(p.Lines)-i))
				lines[len(lines)-1] = more
				break
			}
			lines = append(lines, m.renderLine(line, innerWidth))
		}
		if p.Footer != "" {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(lipgloss.Color(t.Dim)).
				Render(ansi.Truncate(p.Footer, innerWidth, "…")))
		}
	default:
		lines = append(lines, m.renderPanelMessage(p, innerWidth)...)
	}

	return box.Render(pad.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m *Model) renderPanelTitle(p view.Panel, width int) string {
	t := m.theme
	title := p.Title
	if p.Busy {
		title = m.spin.View() + " " + title
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Title))
	if p.Status == view.StatusError {
		style = style.Foreground(lipgloss.Color(t.Error))
	}
	return style.Render(ansi.Truncate(title, width, "…"))
}

// renderPanelMessage renders the loading, empty and error bodies:
// message plus the action hint when the panel carries one.
func (m *Model) renderPanelMessage(p view.Panel, width int) []string {
	t := m.theme
	tone := t.Dim
	if p.Status == view.StatusError {
		tone = t.Error
	}

	out := []string{
		lipgloss.NewStyle().Foreground(lipgloss.Color(tone)).
			Render(ansi.Wordwrap(p.Message, width, " ")),
	}
	if p.Action != nil {
		hint := fmt.Sprintf("[enter] %s", p.Action.Label)
		out = append(out, lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)).
			Render(ansi.Truncate(hint, width, "…")))
	}
	return out
}

// renderLine lays one two-column row with its badge, truncating the
// left side in favor of the right.
func (m *Model) renderLine(line view.Line, width int) string {
	t := m.theme

	badge := ""
	if line.Badge != "" {
		badge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.ToneColor(line.BadgeTone))).
			Render(line.Badge) + " "
	}
	badgeWidth := lipgloss.Width(badge)

	right := ""
	rightWidth := 0
	if line.Right != "" {
		right = lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Dim)).
			Render(line.Right)
		rightWidth = lipgloss.Width(right) + 1
	}

	leftRoom := width - badgeWidth - rightWidth
	if leftRoom < 1 {
		leftRoom = 1
	}
	left := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.ToneColor(line.Tone))).
		Render(ansi.Truncate(line.Left, leftRoom, "…"))

	gap := width - badgeWidth - lipgloss.Width(left) - rightWidth
	if gap < 0 {
		gap = 0
	}
	if right == "" {
		return badge + left
	}
	return badge + left + strings.Repeat(" ", gap) + " " + right
}

// renderStatusBar summarizes connectivity, refresh state and widget
// health in one themed line.
func (m *Model) renderStatusBar() string {
	t := m.theme

	segs := make([]string, 0, 4)
	if m.online {
		segs = append(segs, lipgloss.NewStyle().Foreground(lipgloss.Color(t.OK)).Render("online"))
	} else {
		segs = append(segs, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Error)).Render("OFFLINE"))
	}
	if m.paused {
		segs = append(segs, lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warn)).Render("auto-refresh paused"))
	}
	if m.hidden > 0 {
		segs = append(segs, fmt.Sprintf("%d hidden", m.hidden))
	}
	if errs := m.errorCount(); errs > 0 {
		segs = append(segs, lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)).
			Render(fmt.Sprintf("%d failing", errs)))
	}
	segs = append(segs, m.theme.Name)
	segs = append(segs, time.Now().Format("15:04"))

	bar := " " + strings.Join(segs, "  •  ")
	return lipgloss.NewStyle().
		Background(lipgloss.Color(t.StatusBar)).
		Foreground(lipgloss.Color(t.StatusBarText)).
		Width(m.width).
		Render(ansi.Truncate(bar, m.width, "…"))
}

func (m *Model) errorCount() int {
	n := 0
	for _, p := range m.panels {
		if p.Panel.Status == view.StatusError {
			n++
		}
	}
	return n
}
