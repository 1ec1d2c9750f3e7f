package widgets

import (
	"context"
	"testing"

	"github.com/castlebay/deskpulse/pkg/view"
)

const quicklinksDoc = `[
  {"id":"q1","label":"Wiki","url":"https://wiki.corp","category":"docs"},
  {"id":"q2","label":"Helpdesk","url":"https://help.corp","category":"it","pinned":true},
  {"id":"q3","label":"Payroll","url":"https://pay.corp","category":"hr"},
  {"id":"q4","label":"Cafeteria menu","url":"https://food.corp","category":"campus"},
  {"id":"q1","label":"Wiki (new)","url":"https://wiki2.corp","category":"docs"}
]`

func TestQuickLinksLoad(t *testing.T) {
	w := NewQuickLinks(newTestBase(t, NameQuickLinks, quicklinksDoc))

	data, err := w.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	links := data.([]QuickLink)

	if len(links) != 4 {
		t.Fatalf("Load() kept %d links, want 4 after dedupe", len(links))
	}
	if !links[0].Pinned {
		t.Errorf("links[0] = %+v, want the pinned entry first", links[0])
	}
	for _, l := range links {
		if l.ID == "q1" && l.Label != "Wiki (new)" {
			t.Errorf("duplicate id q1 resolved to %q, want the later revision", l.Label)
		}
	}
}

func TestQuickLinksRender(t *testing.T) {
	w := NewQuickLinks(newTestBase(t, NameQuickLinks, quicklinksDoc))

	p := w.Render([]QuickLink{
		{ID: "q2", Label: "Helpdesk", Category: "it", Pinned: true},
		{ID: "q1", Label: "Wiki", Category: "docs"},
	})
	renderStatus(t, p, view.StatusOK)
	if p.Lines[0].Badge != "*" {
		t.Errorf("pinned link badge = %q, want %q", p.Lines[0].Badge, "*")
	}
	if p.Footer == "" {
		t.Error("quick links panel has no count footer")
	}
}

func TestQuickLinksRenderEmpty(t *testing.T) {
	w := NewQuickLinks(newTestBase(t, NameQuickLinks, `[]`))
	renderStatus(t, w.Render(nil), view.StatusEmpty)
}
