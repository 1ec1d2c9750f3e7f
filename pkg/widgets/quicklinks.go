package widgets

import (
	"context"
	"fmt"
	"sort"

	"github.com/castlebay/deskpulse/pkg/datasource"
	"github.com/castlebay/deskpulse/pkg/view"
)

// QuickLink is one shortcut from the quick-launch feed.
type QuickLink struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	URL      string `json:"url"`
	Category string `json:"category"`
	Pinned   bool   `json:"pinned"`
}

// QuickLinks shows the intranet shortcut list, pinned entries first.
type QuickLinks struct {
	base
}

// NewQuickLinks returns the quick links widget.
func NewQuickLinks(b base) *QuickLinks {
	if b.title == "" {
		b.title = "Quick Links"
	}
	return &QuickLinks{base: b}
}

// Load implements widget.Widget.
func (w *QuickLinks) Load(ctx context.Context) (any, error) {
	var links []QuickLink
	if err := w.client.FetchJSON(ctx, w.source, &links); err != nil {
		return nil, err
	}
	links = datasource.DedupeByID(links, func(l QuickLink) string { return l.ID })

	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Pinned != links[j].Pinned {
			return links[i].Pinned
		}
		if links[i].Category != links[j].Category {
			return links[i].Category < links[j].Category
		}
		return links[i].Label < links[j].Label
	})
	return limit(links, w.maxItems), nil
}

// Render implements widget.Widget.
func (w *QuickLinks) Render(data any) view.Panel {
	links, _ := data.([]QuickLink)
	if len(links) == 0 {
		return view.Empty(w.title, "No shortcuts configured")
	}

	lines := make([]view.Line, 0, len(links))
	for _, l := range links {
		line := view.Line{Left: l.Label, Right: l.Category, Tone: view.ToneAccent}
		if l.Pinned {
			line.Badge, line.BadgeTone = "*", view.ToneWarn
		}
		lines = append(lines, line)
	}
	return view.Panel{
		Title:  w.title,
		Status: view.StatusOK,
		Lines:  lines,
		Footer: fmt.Sprintf("%d shortcuts", len(links)),
	}
}
