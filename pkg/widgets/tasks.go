package widgets

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/castlebay/deskpulse/pkg/datasource"
	"github.com/castlebay/deskpulse/pkg/view"
)

// Task is one entry from the personal task feed.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Project   string    `json:"project"`
	Priority  string    `json:"priority"` // low, medium, high
	DueDate   time.Time `json:"due_date"`
	Completed bool      `json:"completed"`
}

// taskList is the shaped Load result: the rows to show plus the
// counts the footer summarizes.
type taskList struct {
	Items []Task
	Open  int
	Done  int
}

// Tasks shows the user's task list ordered by due date.
type Tasks struct {
	base
	showCompleted bool
}

// NewTasks returns the tasks widget.
func NewTasks(b base, showCompleted bool) *Tasks {
	if b.title == "" {
		b.title = "My Tasks"
	}
	return &Tasks{base: b, showCompleted: showCompleted}
}

// Load implements widget.Widget.
func (w *Tasks) Load(ctx context.Context) (any, error) {
	var all []Task
	if err := w.client.FetchJSON(ctx, w.source, &all); err != nil {
		return nil, err
	}
	all = datasource.DedupeByID(all, func(t Task) string { return t.ID })

	list := taskList{}
	items := make([]Task, 0, len(all))
	for _, t := range all {
		if t.Completed {
			list.Done++
			if !w.showCompleted {
				continue
			}
		} else {
			list.Open++
		}
		items = append(items, t)
	}

	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i], items[j]
		if ti.Completed != tj.Completed {
			return !ti.Completed
		}
		if ti.DueDate.IsZero() != tj.DueDate.IsZero() {
			return !ti.DueDate.IsZero()
		}
		return ti.DueDate.Before(tj.DueDate)
	})
	list.Items = limit(items, w.maxItems)
	return list, nil
}

// Render implements widget.Widget.
func (w *Tasks) Render(data any) view.Panel {
	list, _ := data.(taskList)
	if len(list.Items) == 0 {
		return view.Empty(w.title, "All caught up")
	}

	now := w.clock()
	today := now.Truncate(24 * time.Hour)
	lines := make([]view.Line, 0, len(list.Items))
	for _, t := range list.Items {
		line := view.Line{Left: t.Title, Right: dueLabel(t.DueDate, now)}
		switch {
		case t.Completed:
			line.Tone = view.ToneDim
			line.Badge, line.BadgeTone = "ok", view.ToneOK
		case !t.DueDate.IsZero() && t.DueDate.Before(today):
			line.Tone = view.ToneError
		case !t.DueDate.IsZero() && t.DueDate.Before(today.Add(24*time.Hour)):
			line.Tone = view.ToneWarn
		}
		if !t.Completed && t.Priority == "high" {
			line.Badge, line.BadgeTone = "!", view.ToneError
		}
		lines = append(lines, line)
	}
	return view.Panel{
		Title:  w.title,
		Status: view.StatusOK,
		Lines:  lines,
		Footer: fmt.Sprintf("%d open, %d done", list.Open, list.Done),
	}
}

// dueLabel renders a due date relative to now: "overdue", "today",
// "tomorrow", then short dates.
func dueLabel(due, now time.Time) string {
	if due.IsZero() {
		return ""
	}
	today := now.Truncate(24 * time.Hour)
	switch day := due.Truncate(24 * time.Hour); {
	case day.Before(today):
		return "overdue"
	case day.Equal(today):
		return "today"
	case day.Equal(today.Add(24 * time.Hour)):
		return "tomorrow"
	default:
		return due.Format("Jan 2")
	}
}
