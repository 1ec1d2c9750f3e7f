package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"

	"github.com/castlebay/deskpulse/pkg/dashboard"
	"github.com/castlebay/deskpulse/pkg/view"
)

// onceFallbackWidth is used when the output is not a terminal, such
// as a pipe or a cron-captured log.
const onceFallbackWidth = 80

// RenderOnce produces a single plain-text rendition of the dashboard
// for non-interactive runs. No styling, no alt screen: the output is
// meant for pipes and scripts.
func RenderOnce(d *dashboard.Dashboard, title string) string {
	width := onceFallbackWidth
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		width = w
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", title, strings.Repeat("=", min(len(title), width)))

	for _, p := range d.Panels() {
		b.WriteString("\n")
		b.WriteString(renderPanelPlain(p.Panel, width))
	}
	return b.String()
}

func renderPanelPlain(p view.Panel, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", p.Title)

	if p.Status != view.StatusOK {
		fmt.Fprintf(&b, "  [%s] %s\n", p.Status, p.Message)
		return b.String()
	}

	for _, line := range p.Lines {
		row := "  "
		if line.Badge != "" {
			row += line.Badge + " "
		}
		row += line.Left
		if line.Right != "" {
			row += "  (" + line.Right + ")"
		}
		b.WriteString(ansi.Truncate(row, width, "…"))
		b.WriteString("\n")
	}
	if p.Footer != "" {
		fmt.Fprintf(&b, "  -- %s\n", p.Footer)
	}
	return b.String()
}
