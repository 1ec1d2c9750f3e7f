package widget

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/castlebay/deskpulse/pkg/bus"
	"github.com/castlebay/deskpulse/pkg/view"
)

// Runtime pairs one Widget with the bus and owns all of its mutable
// lifecycle state. The orchestrator creates one Runtime per widget
// and is the only caller of Init and Destroy; Refresh may come from
// any goroutine and is absorbed while one is already running.
type Runtime struct {
	w      Widget
	bus    *bus.Bus
	logger *slog.Logger

	mu          sync.Mutex
	state       State
	initialized bool
	refreshing  bool
	loading     bool
	gen         uint64
	panel       view.Panel
	subs        []*bus.Subscription
	runs        int
	errCount    int
	lastRun     time.Time
	lastLatency time.Duration
	lastErr     error
}

// RuntimeStatus is a point-in-time snapshot of a Runtime for status
// surfaces and tests.
type RuntimeStatus struct {
	// Name is the widget name.
	Name string

	// State is the lifecycle state.
	State State

	// Loading reports a load in flight.
	Loading bool

	// Runs counts completed load attempts.
	Runs int

	// Errors counts failed load attempts.
	Errors int

	// LastRun is when the most recent load finished.
	LastRun time.Time

	// LastLatency is how long the most recent load took.
	LastLatency time.Duration

	// LastError is the most recent failure message, empty after a
	// success.
	LastError string
}

// NewRuntime wires a widget to the bus. A nil logger falls back to
// the default logger.
func NewRuntime(w Widget, b *bus.Bus, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		w:      w,
		bus:    b,
		logger: logger,
		panel:  view.Panel{Title: w.Title()},
	}
}

// Widget returns the wrapped widget.
func (r *Runtime) Widget() Widget { return r.w }

// Name returns the widget name.
func (r *Runtime) Name() string { return r.w.Name() }

// State returns the current lifecycle state.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Loading reports whether a load is in flight.
func (r *Runtime) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Panel returns the current view description.
func (r *Runtime) Panel() view.Panel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.panel
}

// Status returns a snapshot of the runtime counters.
func (r *Runtime) Status() RuntimeStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := RuntimeStatus{
		Name:        r.w.Name(),
		State:       r.state,
		Loading:     r.loading,
		Runs:        r.runs,
		Errors:      r.errCount,
		LastRun:     r.lastRun,
		LastLatency: r.lastLatency,
	}
	if r.lastErr != nil {
		st.LastError = r.lastErr.Error()
	}
	return st
}

// Init runs the widget's first load. It may be called exactly once;
// later calls are logged no-ops returning ErrAlreadyInitialized.
// Failure leaves the widget in its error state with a retry action
// and does not propagate beyond the returned error.
func (r *Runtime) Init(ctx context.Context) error {
	r.mu.Lock()
	name := r.w.Name()
	if r.state == StateDestroyed {
		r.mu.Unlock()
		r.logger.Debug("widget: init after destroy ignored", "widget", name)
		return ErrDestroyed
	}
	if r.initialized {
		r.mu.Unlock()
		r.logger.Warn("widget: duplicate init ignored", "widget", name)
		return ErrAlreadyInitialized
	}
	r.initialized = true
	r.refreshing = true
	r.state = StateInitializing
	r.showLoadingLocked()
	gen := r.gen
	r.mu.Unlock()

	r.logger.Info("widget: initializing", "widget", name)
	return r.load(ctx, gen)
}

// Refresh reloads the widget. The only mutual exclusion in the
// lifecycle lives here: while a load is in flight, further Refresh
// calls are absorbed as logged no-ops. Refresh works from the ready
// and error states; calling it on a destroyed widget is a silent
// no-op and before Init an error.
func (r *Runtime) Refresh(ctx context.Context) error {
	r.mu.Lock()
	name := r.w.Name()
	if r.state == StateDestroyed {
		r.mu.Unlock()
		r.logger.Debug("widget: refresh after destroy ignored", "widget", name)
		return nil
	}
	if !r.initialized {
		r.mu.Unlock()
		r.logger.Warn("widget: refresh before init", "widget", name)
		return ErrNotInitialized
	}
	if r.refreshing {
		r.mu.Unlock()
		r.logger.Debug("widget: refresh already in flight, absorbed", "widget", name)
		return nil
	}
	r.refreshing = true
	r.state = StateRefreshing
	r.showLoadingLocked()
	gen := r.gen
	r.mu.Unlock()

	return r.load(ctx, gen)
}

// load runs one fetch/render cycle. The runtime lock is released for
// the duration of the widget calls so Panel and State stay readable
// during slow fetches; the refreshing flag keeps the cycle exclusive.
func (r *Runtime) load(ctx context.Context, gen uint64) error {
	start := time.Now()
	data, err := r.safeLoad(ctx)
	var panel view.Panel
	if err == nil {
		panel, err = r.safeRender(data)
	}
	latency := time.Since(start)

	r.mu.Lock()
	name := r.w.Name()
	if gen != r.gen {
		// Destroyed while the fetch was out. Drop the result.
		r.mu.Unlock()
		r.logger.Debug("widget: dropping stale load result", "widget", name)
		return nil
	}
	r.refreshing = false
	r.loading = false
	r.runs++
	r.lastRun = time.Now()
	r.lastLatency = latency

	if err != nil {
		r.errCount++
		r.lastErr = err
		r.state = StateError
		r.panel = view.ErrorPanel(r.w.Title(), err.Error())
		r.mu.Unlock()

		r.logger.Warn("widget: load failed", "widget", name, "error", err)
		r.publish(bus.EventWidgetError, name, err)
		return err
	}

	r.lastErr = nil
	if panel.Title == "" {
		panel.Title = r.w.Title()
	}
	if panel.Updated.IsZero() {
		panel.Updated = time.Now()
	}
	r.state = StateReady
	r.panel = panel
	r.mu.Unlock()

	r.logger.Debug("widget: refreshed", "widget", name, "latency", latency)
	r.publish(bus.EventWidgetRefreshed, name)
	return nil
}

// Activate dispatches a panel action exactly once per call. Retry on
// a failed panel reruns the load; other ids go to the widget's
// ActionHandler when it has one.
func (r *Runtime) Activate(ctx context.Context, id string) {
	r.mu.Lock()
	state := r.state
	name := r.w.Name()
	r.mu.Unlock()

	if state == StateDestroyed || id == "" {
		return
	}
	if id == view.ActionRetry {
		if state == StateError {
			r.Refresh(ctx)
		}
		return
	}
	if h, ok := r.w.(ActionHandler); ok {
		r.safeAction(h, id)
		return
	}
	r.logger.Debug("widget: no handler for action", "widget", name, "action", id)
}

// On subscribes fn on behalf of this widget; Destroy detaches every
// subscription made this way. Subscribing after Destroy is a no-op.
func (r *Runtime) On(event string, fn bus.Handler) bool {
	r.mu.Lock()
	if r.state == StateDestroyed || r.bus == nil {
		r.mu.Unlock()
		return false
	}
	r.mu.Unlock()

	sub, ok := r.bus.Subscribe(event, fn)
	if !ok {
		return false
	}

	r.mu.Lock()
	if r.state == StateDestroyed {
		r.mu.Unlock()
		sub.Unsubscribe()
		return false
	}
	r.subs = append(r.subs, sub)
	r.mu.Unlock()
	return true
}

// Destroy tears the widget down: tracked subscriptions detach, the
// widget's own Destroy hook runs, the panel clears, and any load
// still in flight is dropped when it returns. Destroy is idempotent.
func (r *Runtime) Destroy() {
	r.mu.Lock()
	if r.state == StateDestroyed {
		r.mu.Unlock()
		return
	}
	name := r.w.Name()
	r.state = StateDestroyed
	r.gen++
	r.refreshing = false
	r.loading = false
	r.panel = view.Panel{}
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	if d, ok := r.w.(Destroyer); ok {
		r.safeDestroy(d)
	}
	r.logger.Info("widget: destroyed", "widget", name)
}

// showLoadingLocked installs the loading indication: a full loading
// panel before any content exists, otherwise a busy marker on the
// current content. Caller holds r.mu; the matching clear happens when
// the load result lands.
func (r *Runtime) showLoadingLocked() {
	r.loading = true
	if r.panel.HasContent() {
		r.panel.Busy = true
		return
	}
	r.panel = view.Loading(r.w.Title())
}

func (r *Runtime) publish(event string, args ...any) {
	if r.bus != nil {
		r.bus.Publish(event, args...)
	}
}

func (r *Runtime) safeLoad(ctx context.Context) (data any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("widget %s: load panic: %v", r.w.Name(), rec)
		}
	}()
	return r.w.Load(ctx)
}

func (r *Runtime) safeRender(data any) (panel view.Panel, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("widget %s: render panic: %v", r.w.Name(), rec)
		}
	}()
	return r.w.Render(data), nil
}

func (r *Runtime) safeAction(h ActionHandler, id string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("widget: action handler panic",
				"widget", r.w.Name(), "action", id, "panic", rec)
		}
	}()
	h.HandleAction(id)
}

func (r *Runtime) safeDestroy(d Destroyer) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("widget: destroy hook panic",
				"widget", r.w.Name(), "panic", rec)
		}
	}()
	d.Destroy()
}
