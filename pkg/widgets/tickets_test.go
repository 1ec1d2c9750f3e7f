package widgets

import (
	"context"
	"testing"

	"github.com/castlebay/deskpulse/pkg/view"
)

const ticketsDoc = `[
  {"id":"T-101","subject":"VPN drops every hour","status":"open","priority":"high","requester":"dana","updated_at":"2025-11-12T08:00:00Z"},
  {"id":"T-102","subject":"Printer out of toner","status":"open","priority":"low","requester":"sam","updated_at":"2025-11-12T09:00:00Z"},
  {"id":"T-103","subject":"Password reset","status":"resolved","priority":"medium","requester":"kim","updated_at":"2025-11-11T12:00:00Z"},
  {"id":"T-104","subject":"Mail outage","status":"open","priority":"urgent","requester":"ops","updated_at":"2025-11-12T07:30:00Z"}
]`

func TestTicketsLoadFiltersClosed(t *testing.T) {
	w := NewTickets(newTestBase(t, NameTickets, ticketsDoc), false)

	data, err := w.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	list := data.(ticketList)

	if len(list.Items) != 3 {
		t.Fatalf("Load() kept %d tickets, want 3 open", len(list.Items))
	}
	if list.Open != 3 || list.Closed != 1 {
		t.Errorf("counts = %d open / %d closed, want 3/1", list.Open, list.Closed)
	}
	// Priority order: urgent, high, low.
	want := []string{"T-104", "T-101", "T-102"}
	for i, id := range want {
		if list.Items[i].ID != id {
			t.Errorf("items[%d] = %q, want %q", i, list.Items[i].ID, id)
		}
	}
}

func TestTicketsShowClosedAction(t *testing.T) {
	w := NewTickets(newTestBase(t, NameTickets, ticketsDoc), false)

	// Before the action, resolved tickets stay out.
	data, err := w.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if list := data.(ticketList); len(list.Items) != 3 {
		t.Fatalf("Load() before action kept %d, want 3", len(list.Items))
	}

	w.HandleAction(actionShowClosed)

	data, err = w.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() after action error = %v", err)
	}
	list := data.(ticketList)
	if len(list.Items) != 4 {
		t.Fatalf("Load() after action kept %d, want 4", len(list.Items))
	}
	if last := list.Items[3]; !ticketClosed(last.Status) {
		t.Errorf("closed ticket not sorted last: %+v", last)
	}
}

func TestTicketsHandleActionIgnoresUnknown(t *testing.T) {
	w := NewTickets(newTestBase(t, NameTickets, ticketsDoc), false)
	w.HandleAction("escalate-everything")

	data, err := w.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if list := data.(ticketList); list.ShowClosed {
		t.Error("unknown action widened the filter")
	}
}

func TestTicketsRenderEmptyQueueOffersShowClosed(t *testing.T) {
	w := NewTickets(newTestBase(t, NameTickets, `[]`), false)

	p := w.Render(ticketList{Closed: 2})
	renderStatus(t, p, view.StatusEmpty)
	if p.Action == nil || p.Action.ID != actionShowClosed {
		t.Fatalf("empty queue panel action = %+v, want %q", p.Action, actionShowClosed)
	}

	// With nothing closed either there is nothing to offer.
	p = w.Render(ticketList{})
	renderStatus(t, p, view.StatusEmpty)
	if p.Action != nil {
		t.Errorf("empty feed panel has action %+v, want none", p.Action)
	}
}

func TestTicketsRenderBadges(t *testing.T) {
	w := NewTickets(newTestBase(t, NameTickets, ticketsDoc), false)

	p := w.Render(ticketList{
		Open: 2,
		Items: []Ticket{
			{ID: "T-104", Subject: "Mail outage", Status: "open", Priority: "urgent"},
			{ID: "T-102", Subject: "Printer out of toner", Status: "open", Priority: "low"},
		},
	})
	renderStatus(t, p, view.StatusOK)
	if p.Lines[0].Badge != "!!" || p.Lines[0].BadgeTone != view.ToneError {
		t.Errorf("urgent ticket badge = %q/%v, want !!/error", p.Lines[0].Badge, p.Lines[0].BadgeTone)
	}
	if p.Lines[1].Badge != "" {
		t.Errorf("low ticket badge = %q, want none", p.Lines[1].Badge)
	}
}
