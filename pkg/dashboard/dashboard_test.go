package dashboard

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/castlebay/deskpulse/pkg/bus"
	"github.com/castlebay/deskpulse/pkg/config"
	"github.com/castlebay/deskpulse/pkg/view"
	"github.com/castlebay/deskpulse/pkg/widget"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns a config with the requested widgets backed by
// small valid documents in a temp data dir.
func testConfig(t *testing.T, interval time.Duration, names ...string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	docs := map[string]string{
		"announcements": `[{"id":"a1","title":"Hello","priority":"normal","posted_at":"2025-11-10T09:00:00Z"}]`,
		"quicklinks":    `[{"id":"q1","label":"Wiki","url":"https://wiki.corp","category":"docs"}]`,
		"tasks":         `[{"id":"t1","title":"Ship it","due_date":"2099-01-02T00:00:00Z"}]`,
		"calendar":      `[]`,
		"tickets":       `[{"id":"T-1","subject":"VPN","status":"open","priority":"high","requester":"dana","updated_at":"2025-11-12T08:00:00Z"}]`,
	}

	cfg := &config.Config{
		General: config.GeneralConfig{
			DataDir:  dir,
			LogLevel: "error",
			CacheTTL: config.Duration{Duration: 10 * time.Millisecond},
		},
		Storage: config.StorageConfig{Path: ":memory:"},
		Refresh: config.RefreshConfig{
			Enabled:         true,
			DefaultInterval: config.Duration{Duration: interval},
		},
		Network:   config.NetworkConfig{ProbeInterval: config.Duration{Duration: time.Hour}},
		Theme:     config.ThemeConfig{Name: "default"},
		Dashboard: config.DashboardConfig{Title: "test", Columns: 2},
	}
	for _, name := range names {
		doc, ok := docs[name]
		if !ok {
			t.Fatalf("no fixture for widget %q", name)
		}
		if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(doc), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		cfg.Widgets = append(cfg.Widgets, config.WidgetConfig{
			Name:     name,
			Source:   name + ".json",
			Interval: config.Duration{Duration: interval},
		})
	}
	return cfg
}

func newTestDashboard(t *testing.T, interval time.Duration, names ...string) *Dashboard {
	t.Helper()
	d, err := New(testConfig(t, interval, names...), quietLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

// recorder counts named events per widget.
type recorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func record(b *bus.Bus, event string) *recorder {
	r := &recorder{counts: make(map[string]int)}
	b.Subscribe(event, func(e bus.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.counts[bus.WidgetName(e)]++
	})
	return r
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.counts {
		n += c
	}
	return n
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestInitBringsWidgetsReady(t *testing.T) {
	d := newTestDashboard(t, 0, "announcements", "tasks", "tickets")

	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	for _, name := range d.WidgetNames() {
		rt, _ := d.Runtime(name)
		if got := rt.State(); got != widget.StateReady {
			t.Errorf("widget %q state = %v, want ready", name, got)
		}
	}

	panels := d.Panels()
	if len(panels) != 3 {
		t.Fatalf("Panels() returned %d, want 3", len(panels))
	}
	if panels[0].Panel.Status != view.StatusOK {
		t.Errorf("panel %q status = %v, want ok", panels[0].Name, panels[0].Panel.Status)
	}
}

func TestInitIsolatesWidgetFailure(t *testing.T) {
	cfg := testConfig(t, 0, "announcements", "tasks")
	// Break one source after config creation; the widget must fail
	// alone.
	if err := os.Remove(filepath.Join(cfg.General.DataDir, "tasks.json")); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}

	d, err := New(cfg, quietLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer d.Close()

	errs := record(d.Bus, bus.EventWidgetError)
	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v, want isolated failure", err)
	}

	tasks, _ := d.Runtime("tasks")
	if got := tasks.State(); got != widget.StateError {
		t.Errorf("broken widget state = %v, want error", got)
	}
	if got := tasks.Panel(); got.Action == nil || got.Action.ID != view.ActionRetry {
		t.Errorf("broken widget panel lacks retry action: %+v", got.Action)
	}
	ann, _ := d.Runtime("announcements")
	if got := ann.State(); got != widget.StateReady {
		t.Errorf("healthy sibling state = %v, want ready", got)
	}
	if got := errs.count("tasks"); got != 1 {
		t.Errorf("widget:error events for tasks = %d, want 1", got)
	}
}

func TestNewFailsWithNoUsableWidgets(t *testing.T) {
	cfg := testConfig(t, 0, "announcements")
	cfg.Widgets[0].Name = "nonsense"

	if _, err := New(cfg, quietLogger()); err == nil {
		t.Fatal("New() with only unknown widgets succeeded, want error")
	}
}

func TestOfflineOnlineRoundTrip(t *testing.T) {
	d := newTestDashboard(t, time.Hour, "announcements", "tasks")
	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	waitUntil(t, "timers started", func() bool {
		return len(d.Coordinator.Active()) == 2
	})

	requested := record(d.Bus, bus.EventWidgetRefreshRequested)

	d.Bus.Publish(bus.EventNetworkOffline)
	if got := len(d.Coordinator.Active()); got != 0 {
		t.Fatalf("live timers after offline = %d, want 0", got)
	}

	d.Bus.Publish(bus.EventNetworkOnline)
	// One catch-up event per widget, then the timers come back.
	if got := requested.count("announcements"); got != 1 {
		t.Errorf("catch-up events for announcements = %d, want 1", got)
	}
	if got := requested.count("tasks"); got != 1 {
		t.Errorf("catch-up events for tasks = %d, want 1", got)
	}
	if got := len(d.Coordinator.Active()); got != 2 {
		t.Errorf("live timers after online = %d, want 2", got)
	}
}

func TestTimerTicksDriveRefreshes(t *testing.T) {
	d := newTestDashboard(t, 30*time.Millisecond, "announcements")
	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	refreshed := record(d.Bus, bus.EventWidgetRefreshed)
	waitUntil(t, "a timer-driven refresh", func() bool {
		return refreshed.count("announcements") >= 1
	})
}

func TestRefreshAllIsRateLimited(t *testing.T) {
	d := newTestDashboard(t, time.Hour, "announcements", "tasks")
	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	requested := record(d.Bus, bus.EventWidgetRefreshRequested)
	d.RefreshAll()
	d.RefreshAll() // inside the throttle window, absorbed

	if got := requested.total(); got != 2 {
		t.Errorf("refresh-requested events = %d, want 2 (one per widget, once)", got)
	}
}

func TestCatchUpSkippedWhileOffline(t *testing.T) {
	d := newTestDashboard(t, time.Hour, "announcements")
	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	requested := record(d.Bus, bus.EventWidgetRefreshRequested)
	d.Bus.Publish(bus.EventNetworkOffline)
	before := requested.total()

	d.CatchUp()
	if got := requested.total(); got != before {
		t.Errorf("catch-up while offline published %d events, want 0", got-before)
	}
}

func TestActivateWidgetActionRequestsRefresh(t *testing.T) {
	d := newTestDashboard(t, time.Hour, "tickets")
	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	requested := record(d.Bus, bus.EventWidgetRefreshRequested)
	d.Activate(context.Background(), "tickets", "show-closed")

	if got := requested.count("tickets"); got != 1 {
		t.Errorf("refresh-requested after action = %d, want 1", got)
	}
}

func TestPanelsHonorHiddenAndOrder(t *testing.T) {
	d := newTestDashboard(t, 0, "announcements", "tasks", "tickets")
	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	d.Prefs.SetWidgetOrder([]string{"tickets", "announcements", "tasks"})
	d.Prefs.SetHidden("announcements", true)

	panels := d.Panels()
	if len(panels) != 2 {
		t.Fatalf("Panels() returned %d, want 2", len(panels))
	}
	if panels[0].Name != "tickets" || panels[1].Name != "tasks" {
		t.Errorf("panel order = [%s %s], want [tickets tasks]", panels[0].Name, panels[1].Name)
	}
}

func TestSetAutoRefreshTogglesTimers(t *testing.T) {
	d := newTestDashboard(t, time.Hour, "announcements")
	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	waitUntil(t, "timers started", func() bool {
		return len(d.Coordinator.Active()) == 1
	})

	d.SetAutoRefresh(false)
	if got := len(d.Coordinator.Active()); got != 0 {
		t.Errorf("live timers after disable = %d, want 0", got)
	}

	d.SetAutoRefresh(true)
	if got := len(d.Coordinator.Active()); got != 1 {
		t.Errorf("live timers after re-enable = %d, want 1", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	d := newTestDashboard(t, 0, "announcements")
	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	d.Close()
	d.Close()

	rt, _ := d.Runtime("announcements")
	if got := rt.State(); got != widget.StateDestroyed {
		t.Errorf("widget state after close = %v, want destroyed", got)
	}
}
