package widgets

import (
	"context"
	"sort"
	"time"

	"github.com/castlebay/deskpulse/pkg/datasource"
	"github.com/castlebay/deskpulse/pkg/view"
)

// defaultWindowDays bounds the calendar lookahead when the config
// does not set one.
const defaultWindowDays = 14

// CalendarEvent is one meeting or event from the calendar feed.
type CalendarEvent struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"all_day"`
}

// Calendar shows upcoming events inside a configurable lookahead
// window, soonest first. Events already underway stay visible until
// they end.
type Calendar struct {
	base
	windowDays int
}

// NewCalendar returns the calendar widget.
func NewCalendar(b base, windowDays int) *Calendar {
	if b.title == "" {
		b.title = "Calendar"
	}
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	return &Calendar{base: b, windowDays: windowDays}
}

// Load implements widget.Widget.
func (w *Calendar) Load(ctx context.Context) (any, error) {
	var all []CalendarEvent
	if err := w.client.FetchJSON(ctx, w.source, &all); err != nil {
		return nil, err
	}
	all = datasource.DedupeByID(all, func(e CalendarEvent) string { return e.ID })

	now := w.clock()
	horizon := now.AddDate(0, 0, w.windowDays)
	upcoming := all[:0]
	for _, e := range all {
		end := e.End
		if end.IsZero() {
			end = e.Start
		}
		if end.Before(now) || e.Start.After(horizon) {
			continue
		}
		upcoming = append(upcoming, e)
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Start.Before(upcoming[j].Start)
	})
	return limit(upcoming, w.maxItems), nil
}

// Render implements widget.Widget.
func (w *Calendar) Render(data any) view.Panel {
	events, _ := data.([]CalendarEvent)
	if len(events) == 0 {
		return view.Empty(w.title, "Nothing scheduled")
	}

	now := w.clock()
	lines := make([]view.Line, 0, len(events))
	for _, e := range events {
		line := view.Line{Left: e.Title, Right: eventLabel(e, now)}
		if e.Location != "" {
			line.Left = e.Title + " @ " + e.Location
		}
		if !e.Start.After(now) {
			line.Badge, line.BadgeTone = "now", view.ToneOK
		} else if sameDay(e.Start, now) {
			line.Tone = view.ToneAccent
		}
		lines = append(lines, line)
	}
	return view.Panel{
		Title:  w.title,
		Status: view.StatusOK,
		Lines:  lines,
	}
}

// eventLabel formats when an event happens, relative to now: times
// for today, weekday + time inside a week, short dates beyond.
func eventLabel(e CalendarEvent, now time.Time) string {
	if e.AllDay {
		if sameDay(e.Start, now) {
			return "all day"
		}
		return e.Start.Format("Jan 2")
	}
	switch {
	case sameDay(e.Start, now):
		return e.Start.Format("15:04")
	case e.Start.Before(now.AddDate(0, 0, 7)):
		return e.Start.Format("Mon 15:04")
	default:
		return e.Start.Format("Jan 2 15:04")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
