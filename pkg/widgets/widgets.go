// Package widgets implements the dashboard's concrete widgets:
// announcements, quick links, tasks, calendar and support tickets.
// Each widget loads one JSON document through the datasource client,
// shapes its records in Load, and maps them to a view panel in
// Render; every lifecycle concern lives in the widget runtime.
package widgets

import (
	"fmt"
	"time"

	"github.com/castlebay/deskpulse/pkg/config"
	"github.com/castlebay/deskpulse/pkg/datasource"
	"github.com/castlebay/deskpulse/pkg/widget"
)

// Known widget names, in default display order.
const (
	NameAnnouncements = "announcements"
	NameQuickLinks    = "quicklinks"
	NameTasks         = "tasks"
	NameCalendar      = "calendar"
	NameTickets       = "tickets"
)

// Names returns every buildable widget name in default order.
func Names() []string {
	return []string{NameAnnouncements, NameQuickLinks, NameTasks, NameCalendar, NameTickets}
}

// base carries what every widget shares: identity, source, client
// and refresh cadence. A nil clock means time.Now; tests inject a
// fixed one.
type base struct {
	name     string
	title    string
	source   datasource.Source
	client   *datasource.Client
	interval time.Duration
	maxItems int
	now      func() time.Time
}

// Name implements widget.Widget.
func (b *base) Name() string { return b.name }

// Title implements widget.Widget.
func (b *base) Title() string { return b.title }

// RefreshInterval implements widget.Widget.
func (b *base) RefreshInterval() time.Duration { return b.interval }

func (b *base) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

// limit truncates items to the widget's row cap; zero caps pass
// everything through.
func limit[T any](items []T, max int) []T {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}

// Build constructs the widget a config block names. Unknown names are
// errors so a typo in the config surfaces at startup rather than as a
// silently missing panel.
func Build(cfg config.WidgetConfig, dataDir string, client *datasource.Client, fallbackInterval time.Duration) (widget.Widget, error) {
	interval := cfg.Interval.Duration
	if interval <= 0 {
		interval = fallbackInterval
	}
	b := base{
		name:     cfg.Name,
		title:    cfg.Title,
		source:   datasource.New(cfg.ResolveSource(dataDir)),
		client:   client,
		interval: interval,
		maxItems: cfg.MaxItems,
	}

	switch cfg.Name {
	case NameAnnouncements:
		return NewAnnouncements(b), nil
	case NameQuickLinks:
		return NewQuickLinks(b), nil
	case NameTasks:
		return NewTasks(b, cfg.ShowCompleted), nil
	case NameCalendar:
		return NewCalendar(b, cfg.WindowDays), nil
	case NameTickets:
		return NewTickets(b, cfg.ShowClosed), nil
	default:
		return nil, fmt.Errorf("widgets: unknown widget %q", cfg.Name)
	}
}
