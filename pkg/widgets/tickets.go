package widgets

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/castlebay/deskpulse/pkg/datasource"
	"github.com/castlebay/deskpulse/pkg/view"
)

// actionShowClosed is the empty-panel action that widens the ticket
// filter to include resolved and closed tickets.
const actionShowClosed = "show-closed"

// Ticket is one entry from the helpdesk feed.
type Ticket struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`   // open, pending, resolved, closed
	Priority  string    `json:"priority"` // low, medium, high, urgent
	Requester string    `json:"requester"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ticketClosed(status string) bool {
	return status == "resolved" || status == "closed"
}

func ticketRank(priority string) int {
	switch priority {
	case "urgent":
		return 3
	case "high":
		return 2
	case "medium":
		return 1
	default:
		return 0
	}
}

// ticketList is the shaped Load result.
type ticketList struct {
	Items      []Ticket
	Open       int
	Closed     int
	ShowClosed bool
}

// Tickets shows the support queue, most urgent first. When the open
// queue is empty its panel offers a show-closed action that widens
// the filter for subsequent loads.
type Tickets struct {
	base

	mu         sync.Mutex
	showClosed bool
}

// NewTickets returns the tickets widget.
func NewTickets(b base, showClosed bool) *Tickets {
	if b.title == "" {
		b.title = "Support Tickets"
	}
	return &Tickets{base: b, showClosed: showClosed}
}

// Load implements widget.Widget.
func (w *Tickets) Load(ctx context.Context) (any, error) {
	var all []Ticket
	if err := w.client.FetchJSON(ctx, w.source, &all); err != nil {
		return nil, err
	}
	all = datasource.DedupeByID(all, func(t Ticket) string { return t.ID })

	w.mu.Lock()
	showClosed := w.showClosed
	w.mu.Unlock()

	list := ticketList{ShowClosed: showClosed}
	items := make([]Ticket, 0, len(all))
	for _, t := range all {
		if ticketClosed(t.Status) {
			list.Closed++
			if !showClosed {
				continue
			}
		} else {
			list.Open++
		}
		items = append(items, t)
	}

	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i], items[j]
		if ticketClosed(ti.Status) != ticketClosed(tj.Status) {
			return !ticketClosed(ti.Status)
		}
		if ri, rj := ticketRank(ti.Priority), ticketRank(tj.Priority); ri != rj {
			return ri > rj
		}
		return ti.UpdatedAt.After(tj.UpdatedAt)
	})
	list.Items = limit(items, w.maxItems)
	return list, nil
}

// Render implements widget.Widget.
func (w *Tickets) Render(data any) view.Panel {
	list, _ := data.(ticketList)
	if len(list.Items) == 0 {
		if !list.ShowClosed && list.Closed > 0 {
			return view.EmptyWithAction(w.title,
				fmt.Sprintf("Queue clear; %d recently closed", list.Closed),
				"Show closed", actionShowClosed)
		}
		return view.Empty(w.title, "Queue clear")
	}

	lines := make([]view.Line, 0, len(list.Items))
	for _, t := range list.Items {
		line := view.Line{
			Left:  fmt.Sprintf("%s %s", t.ID, t.Subject),
			Right: t.Requester,
		}
		switch {
		case ticketClosed(t.Status):
			line.Tone = view.ToneDim
		case t.Priority == "urgent":
			line.Badge, line.BadgeTone = "!!", view.ToneError
		case t.Priority == "high":
			line.Badge, line.BadgeTone = "!", view.ToneWarn
		}
		lines = append(lines, line)
	}
	return view.Panel{
		Title:  w.title,
		Status: view.StatusOK,
		Lines:  lines,
		Footer: fmt.Sprintf("%d open, %d closed", list.Open, list.Closed),
	}
}

// HandleAction implements widget.ActionHandler: activating the
// show-closed action widens the filter. The wider view appears on
// the next refresh; the frontend requests one after dispatching.
func (w *Tickets) HandleAction(id string) {
	if id != actionShowClosed {
		return
	}
	w.mu.Lock()
	w.showClosed = true
	w.mu.Unlock()
}
