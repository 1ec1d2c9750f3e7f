package widgets

import (
	"context"
	"sort"
	"time"

	"github.com/castlebay/deskpulse/pkg/datasource"
	"github.com/castlebay/deskpulse/pkg/view"
)

// Announcement is one company notice from the announcements feed.
type Announcement struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Author   string    `json:"author"`
	Priority string    `json:"priority"` // normal, important, critical
	PostedAt time.Time `json:"posted_at"`
	Expires  time.Time `json:"expires_at"`
}

// announcementRank orders priorities for sorting; higher is more
// urgent.
func announcementRank(priority string) int {
	switch priority {
	case "critical":
		return 2
	case "important":
		return 1
	default:
		return 0
	}
}

// Announcements shows active company notices, most urgent first.
type Announcements struct {
	base
}

// NewAnnouncements returns the announcements widget.
func NewAnnouncements(b base) *Announcements {
	if b.title == "" {
		b.title = "Announcements"
	}
	return &Announcements{base: b}
}

// Load implements widget.Widget. Expired notices are dropped, the
// rest sort by priority then recency.
func (w *Announcements) Load(ctx context.Context) (any, error) {
	var all []Announcement
	if err := w.client.FetchJSON(ctx, w.source, &all); err != nil {
		return nil, err
	}
	all = datasource.DedupeByID(all, func(a Announcement) string { return a.ID })

	now := w.clock()
	active := all[:0]
	for _, a := range all {
		if !a.Expires.IsZero() && a.Expires.Before(now) {
			continue
		}
		active = append(active, a)
	}

	sort.SliceStable(active, func(i, j int) bool {
		ri, rj := announcementRank(active[i].Priority), announcementRank(active[j].Priority)
		if ri != rj {
			return ri > rj
		}
		return active[i].PostedAt.After(active[j].PostedAt)
	})
	return limit(active, w.maxItems), nil
}

// Render implements widget.Widget.
func (w *Announcements) Render(data any) view.Panel {
	items, _ := data.([]Announcement)
	if len(items) == 0 {
		return view.Empty(w.title, "No announcements right now")
	}

	lines := make([]view.Line, 0, len(items))
	for _, a := range items {
		line := view.Line{
			Left:  a.Title,
			Right: a.PostedAt.Format("Jan 2"),
		}
		switch a.Priority {
		case "critical":
			line.Badge, line.BadgeTone = "!!", view.ToneError
		case "important":
			line.Badge, line.BadgeTone = "!", view.ToneWarn
		}
		lines = append(lines, line)
	}
	return view.Panel{
		Title:  w.title,
		Status: view.StatusOK,
		Lines:  lines,
	}
}
