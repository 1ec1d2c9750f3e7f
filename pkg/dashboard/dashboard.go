// Package dashboard is the orchestrator: it builds the services and
// widgets from configuration, wires them together over the bus, and
// owns their lifecycles. The frontend talks to this package and to
// the view descriptions it exposes, never to individual services.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/castlebay/deskpulse/pkg/bus"
	"github.com/castlebay/deskpulse/pkg/config"
	"github.com/castlebay/deskpulse/pkg/datasource"
	"github.com/castlebay/deskpulse/pkg/netwatch"
	"github.com/castlebay/deskpulse/pkg/prefs"
	"github.com/castlebay/deskpulse/pkg/refresh"
	"github.com/castlebay/deskpulse/pkg/storage"
	"github.com/castlebay/deskpulse/pkg/theme"
	"github.com/castlebay/deskpulse/pkg/view"
	"github.com/castlebay/deskpulse/pkg/widget"
	"github.com/castlebay/deskpulse/pkg/widgets"
)

// ErrNoWidgets means construction produced no usable widget at all;
// the dashboard cannot show anything and startup fails as a whole.
var ErrNoWidgets = errors.New("dashboard: no widgets could be constructed")

// refreshAllEvery throttles the refresh-everything shortcut. Holding
// the key down must not translate into a fetch storm.
const refreshAllEvery = 2 * time.Second

// NamedPanel pairs a widget name with its current view description,
// in display order.
type NamedPanel struct {
	Name  string
	Panel view.Panel
}

// Dashboard owns every service and widget runtime for one session.
type Dashboard struct {
	cfg    *config.Config
	logger *slog.Logger

	Bus         *bus.Bus
	Store       *storage.Store
	Prefs       *prefs.Manager
	Client      *datasource.Client
	Coordinator *refresh.Coordinator
	Monitor     *netwatch.Monitor

	watcher  *datasource.Watcher
	limiter  *rate.Limiter
	runtimes map[string]*widget.Runtime
	order    []string // config declaration order

	mu     sync.Mutex
	subs   []*bus.Subscription
	closed bool
}

// New builds the full service graph and one runtime per enabled
// widget. Individual widget construction failures are logged and
// skipped; only an empty result is fatal.
func New(cfg *config.Config, logger *slog.Logger) (*Dashboard, error) {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dashboard{
		cfg:      cfg,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(refreshAllEvery), 1),
		runtimes: make(map[string]*widget.Runtime),
	}

	d.Bus = bus.New(bus.WithLogger(logger.With("component", "bus")))
	d.Store = storage.Open(cfg.Storage.Path, logger.With("component", "storage"))
	d.Client = datasource.NewClient(cfg.General.CacheTTL.Duration, logger.With("component", "datasource"))
	d.Coordinator = refresh.NewCoordinator(d.Bus, logger.With("component", "refresh"))

	var prober netwatch.Prober = netwatch.StaticProber(true)
	if cfg.Network.ProbeURL != "" {
		prober = netwatch.NewHTTPProber(cfg.Network.ProbeURL, nil)
	}
	d.Monitor = netwatch.NewMonitor(d.Bus, prober, cfg.Network.ProbeInterval.Duration,
		logger.With("component", "netwatch"))

	theme.LoadDir(cfg.Theme.Dir, logger.With("component", "theme"))

	for _, wc := range cfg.Widgets {
		if wc.Disabled {
			continue
		}
		w, err := widgets.Build(wc, cfg.General.DataDir, d.Client, cfg.Refresh.DefaultInterval.Duration)
		if err != nil {
			logger.Error("dashboard: skipping widget", "widget", wc.Name, "error", err)
			continue
		}
		d.runtimes[wc.Name] = widget.NewRuntime(w, d.Bus, logger.With("widget", wc.Name))
		d.order = append(d.order, wc.Name)
	}
	if len(d.runtimes) == 0 {
		d.close()
		return nil, ErrNoWidgets
	}

	d.Prefs = prefs.NewManager(d.Store, d.Bus, d.order, logger.With("component", "prefs"))
	return d, nil
}

// Init brings the dashboard up: preferences load, every widget runs
// its first load, timers and the connectivity monitor start, and file
// sources get a change watcher. Widget failures are isolated; Init
// only fails when the whole dashboard cannot start.
func (d *Dashboard) Init(ctx context.Context) error {
	p := d.Prefs.Load()
	d.subscribe()

	// First loads run concurrently; a slow or failing feed must not
	// hold up its siblings.
	var wg sync.WaitGroup
	for name, rt := range d.runtimes {
		wg.Add(1)
		go func(name string, rt *widget.Runtime) {
			defer wg.Done()
			if err := rt.Init(ctx); err != nil {
				d.logger.Warn("dashboard: widget failed to initialize",
					"widget", name, "error", err)
			}
		}(name, rt)
	}
	wg.Wait()

	d.Monitor.Start(ctx)
	d.Coordinator.SetOnline(d.Monitor.Online())

	for name, rt := range d.runtimes {
		d.Coordinator.Configure(name, d.effectiveInterval(rt, p))
	}
	if d.autoRefreshEnabled(p) {
		d.Coordinator.StartConfigured()
	}

	d.startWatcher()
	d.logger.Info("dashboard: initialized",
		"widgets", len(d.runtimes), "timers", len(d.Coordinator.Active()))
	return nil
}

// Runtime returns the runtime for a widget name.
func (d *Dashboard) Runtime(name string) (*widget.Runtime, bool) {
	rt, ok := d.runtimes[name]
	return rt, ok
}

// WidgetNames returns the configured widget names in declaration
// order.
func (d *Dashboard) WidgetNames() []string {
	return append([]string(nil), d.order...)
}

// Panels returns the visible panels in the user's display order.
func (d *Dashboard) Panels() []NamedPanel {
	var out []NamedPanel
	for _, name := range d.Prefs.VisibleOrder() {
		if rt, ok := d.runtimes[name]; ok {
			out = append(out, NamedPanel{Name: name, Panel: rt.Panel()})
		}
	}
	return out
}

// Statuses returns a runtime status snapshot per widget, in
// declaration order.
func (d *Dashboard) Statuses() []widget.RuntimeStatus {
	out := make([]widget.RuntimeStatus, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.runtimes[name].Status())
	}
	return out
}

// Refresh reloads one widget now.
func (d *Dashboard) Refresh(ctx context.Context, name string) error {
	rt, ok := d.runtimes[name]
	if !ok {
		return fmt.Errorf("dashboard: unknown widget %q", name)
	}
	return rt.Refresh(ctx)
}

// RefreshAll requests a reload of every widget, rate limited so the
// shortcut cannot stampede the sources.
func (d *Dashboard) RefreshAll() {
	if !d.limiter.Allow() {
		d.logger.Debug("dashboard: refresh-all throttled")
		return
	}
	d.Coordinator.KickAll()
}

// CatchUp runs the became-visible refresh pass: one immediate
// refresh per widget, skipped while offline.
func (d *Dashboard) CatchUp() {
	if !d.Monitor.Online() {
		d.logger.Debug("dashboard: visibility catch-up skipped while offline")
		return
	}
	d.Coordinator.KickAll()
}

// Activate dispatches a panel action for one widget. Widget-owned
// actions change load behavior, so a refresh is requested right
// after dispatching one.
func (d *Dashboard) Activate(ctx context.Context, name, actionID string) {
	rt, ok := d.runtimes[name]
	if !ok {
		return
	}
	rt.Activate(ctx, actionID)
	if actionID != view.ActionRetry {
		d.Bus.Publish(bus.EventWidgetRefreshRequested, name)
	}
}

// SetAutoRefresh flips interval refreshing for the whole dashboard
// and persists the choice.
func (d *Dashboard) SetAutoRefresh(on bool) {
	d.Prefs.SetAutoRefresh(on)
	if on && d.cfg.Refresh.Enabled {
		d.Coordinator.ResumeAll()
	} else {
		d.Coordinator.PauseAll()
	}
}

// Close tears the session down in dependency order. Idempotent.
func (d *Dashboard) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	subs := d.subs
	d.subs = nil
	d.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	for _, rt := range d.runtimes {
		rt.Destroy()
	}
	d.close()
	d.logger.Info("dashboard: closed")
}

// close releases the services; runtimes are handled by Close.
func (d *Dashboard) close() {
	if d.watcher != nil {
		d.watcher.Close()
	}
	if d.Monitor != nil {
		d.Monitor.Stop()
	}
	if d.Coordinator != nil {
		d.Coordinator.Close()
	}
	if d.Client != nil {
		d.Client.Close()
	}
	if d.Store != nil {
		d.Store.Close()
	}
}

// subscribe wires the orchestrator's own bus routes: refresh
// requests into runtime refreshes, and the global shortcuts.
func (d *Dashboard) subscribe() {
	d.track(d.Bus.Subscribe(bus.EventWidgetRefreshRequested, func(e bus.Event) {
		name := bus.WidgetName(e)
		rt, ok := d.runtimes[name]
		if !ok {
			d.logger.Debug("dashboard: refresh requested for unknown widget", "widget", name)
			return
		}
		// Refreshes run off the publisher's goroutine: the
		// coordinator publishes ticks under its own lock.
		go func() {
			if err := rt.Refresh(context.Background()); err != nil {
				d.logger.Debug("dashboard: requested refresh failed",
					"widget", name, "error", err)
			}
		}()
	}))

	d.track(d.Bus.Subscribe(bus.EventRefreshAll, func(bus.Event) {
		go d.RefreshAll()
	}))

	d.track(d.Bus.Subscribe(bus.EventToggleTheme, func(bus.Event) {
		d.Prefs.CycleTheme()
	}))
}

func (d *Dashboard) track(sub *bus.Subscription, ok bool) {
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, sub)
}

// effectiveInterval picks a widget's refresh cadence: its own
// declared interval, else the user's preferred fallback.
func (d *Dashboard) effectiveInterval(rt *widget.Runtime, p prefs.Preferences) time.Duration {
	if iv := rt.Widget().RefreshInterval(); iv > 0 {
		return iv
	}
	return p.RefreshInterval.Duration
}

func (d *Dashboard) autoRefreshEnabled(p prefs.Preferences) bool {
	return d.cfg.Refresh.Enabled && p.AutoRefresh
}

// startWatcher attaches a file watcher to every file-backed source.
// Watcher failure is never fatal; interval polling still refreshes
// everything.
func (d *Dashboard) startWatcher() {
	w, err := datasource.NewWatcher(d.Bus, d.Client, d.logger.With("component", "watcher"))
	if err != nil {
		d.logger.Warn("dashboard: file watching disabled", "error", err)
		return
	}

	watched := 0
	for _, wc := range d.cfg.Widgets {
		if wc.Disabled {
			continue
		}
		if _, ok := d.runtimes[wc.Name]; !ok {
			continue
		}
		src := wc.ResolveSource(d.cfg.General.DataDir)
		if _, isFile := datasource.New(src).(datasource.FileSource); !isFile {
			continue
		}
		if err := w.Watch(wc.Name, src); err != nil {
			d.logger.Debug("dashboard: cannot watch source",
				"widget", wc.Name, "path", src, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		w.Close()
		return
	}
	d.watcher = w
}
