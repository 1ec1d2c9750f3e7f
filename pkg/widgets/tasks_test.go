package widgets

import (
	"context"
	"testing"
	"time"

	"github.com/castlebay/deskpulse/pkg/view"
)

const tasksDoc = `[
  {"id":"t1","title":"File expense report","priority":"low","due_date":"2025-11-20T00:00:00Z"},
  {"id":"t2","title":"Review security patch","priority":"high","due_date":"2025-11-11T00:00:00Z"},
  {"id":"t3","title":"Book travel","priority":"medium","due_date":"2025-11-12T00:00:00Z"},
  {"id":"t4","title":"Send onboarding docs","completed":true,"due_date":"2025-11-05T00:00:00Z"}
]`

func TestTasksLoadFiltersCompleted(t *testing.T) {
	w := NewTasks(newTestBase(t, NameTasks, tasksDoc), false)

	data, err := w.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	list := data.(taskList)

	if len(list.Items) != 3 {
		t.Fatalf("Load() kept %d items, want 3 open", len(list.Items))
	}
	if list.Open != 3 || list.Done != 1 {
		t.Errorf("counts = %d open / %d done, want 3/1", list.Open, list.Done)
	}
	// Due-date order: overdue t2, today t3, next week t1.
	wantOrder := []string{"t2", "t3", "t1"}
	for i, id := range wantOrder {
		if list.Items[i].ID != id {
			t.Errorf("items[%d] = %q, want %q", i, list.Items[i].ID, id)
		}
	}
}

func TestTasksLoadShowCompleted(t *testing.T) {
	w := NewTasks(newTestBase(t, NameTasks, tasksDoc), true)

	data, err := w.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	list := data.(taskList)
	if len(list.Items) != 4 {
		t.Fatalf("Load() kept %d items, want 4", len(list.Items))
	}
	if last := list.Items[3]; !last.Completed {
		t.Errorf("completed task not sorted last: %+v", last)
	}
}

func TestTasksRenderTones(t *testing.T) {
	w := NewTasks(newTestBase(t, NameTasks, tasksDoc), false)

	day := 24 * time.Hour
	list := taskList{
		Open: 3,
		Items: []Task{
			{ID: "t2", Title: "Review security patch", Priority: "high", DueDate: testNow.Add(-day)},
			{ID: "t3", Title: "Book travel", DueDate: testNow},
			{ID: "t1", Title: "File expense report", DueDate: testNow.Add(8 * day)},
		},
	}
	p := w.Render(list)
	renderStatus(t, p, view.StatusOK)

	if p.Lines[0].Tone != view.ToneError {
		t.Errorf("overdue task tone = %v, want error", p.Lines[0].Tone)
	}
	if p.Lines[0].Badge != "!" {
		t.Errorf("high-priority task badge = %q, want %q", p.Lines[0].Badge, "!")
	}
	if p.Lines[1].Tone != view.ToneWarn {
		t.Errorf("due-today task tone = %v, want warn", p.Lines[1].Tone)
	}
	if p.Lines[1].Right != "today" {
		t.Errorf("due-today label = %q, want %q", p.Lines[1].Right, "today")
	}
	if p.Lines[2].Tone != view.ToneDefault {
		t.Errorf("future task tone = %v, want default", p.Lines[2].Tone)
	}
	if p.Footer == "" {
		t.Error("tasks panel has no summary footer")
	}
}

func TestTasksRenderEmpty(t *testing.T) {
	w := NewTasks(newTestBase(t, NameTasks, `[]`), false)
	renderStatus(t, w.Render(taskList{Done: 4}), view.StatusEmpty)
}

func TestDueLabel(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name string
		due  time.Time
		want string
	}{
		{"no due date", time.Time{}, ""},
		{"yesterday", testNow.Add(-day), "overdue"},
		{"same day", testNow.Add(2 * time.Hour), "today"},
		{"next day", testNow.Add(day), "tomorrow"},
		{"next week", time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC), "Nov 20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dueLabel(tt.due, testNow); got != tt.want {
				t.Errorf("dueLabel(%v) = %q, want %q", tt.due, got, tt.want)
			}
		})
	}
}
