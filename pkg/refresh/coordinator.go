// Package refresh owns every recurring refresh timer. The coordinator
// never calls widgets; it only publishes widget:refresh-requested
// events and leaves routing to the orchestrator, so scheduling policy
// and widget lifecycles stay independent.
package refresh

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/castlebay/deskpulse/pkg/bus"
)

// intervalSchedule fires at a fixed interval. The @every descriptor
// rounds below one second; scheduling directly keeps short intervals
// exact.
type intervalSchedule struct {
	every time.Duration
}

// Next implements cron.Schedule.
func (s intervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.every)
}

type entry struct {
	id  cron.EntryID
	gen uint64
}

// Coordinator schedules per-widget refresh ticks on one shared cron
// runner. At most one timer exists per widget name; configured
// intervals survive pause and stop so ResumeAll can restore the
// exact set.
//
// Ticks publish while holding the coordinator lock: once Stop returns
// no tick for that name can still publish, even one already in
// flight. Subscribers of widget:refresh-requested therefore must not
// call back into the coordinator synchronously.
type Coordinator struct {
	bus    *bus.Bus
	logger *slog.Logger

	mu        sync.Mutex
	cron      *cron.Cron
	intervals map[string]time.Duration
	entries   map[string]entry
	gen       uint64
	online    bool
	paused    bool
	closed    bool
	subs      []*bus.Subscription
}

// NewCoordinator returns a running coordinator wired to connectivity
// events: network:offline pauses every timer, network:online kicks a
// catch-up refresh per widget and then restarts them.
func NewCoordinator(b *bus.Bus, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		bus:       b,
		logger:    logger,
		cron:      cron.New(),
		intervals: make(map[string]time.Duration),
		entries:   make(map[string]entry),
		online:    true,
	}
	c.cron.Start()

	if b != nil {
		if sub, ok := b.Subscribe(bus.EventNetworkOffline, func(bus.Event) { c.handleOffline() }); ok {
			c.subs = append(c.subs, sub)
		}
		if sub, ok := b.Subscribe(bus.EventNetworkOnline, func(bus.Event) { c.handleOnline() }); ok {
			c.subs = append(c.subs, sub)
		}
	}
	return c
}

// Configure records a widget's interval without starting its timer.
func (c *Coordinator) Configure(name string, interval time.Duration) {
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intervals[name] = interval
}

// Start records the interval and starts the timer, replacing any
// existing timer for the name. Non-positive intervals are recorded
// but never scheduled, as are starts while paused or offline.
func (c *Coordinator) Start(name string, interval time.Duration) {
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intervals[name] = interval
	c.startLocked(name, interval)
}

// StartConfigured starts a timer for every configured widget.
func (c *Coordinator) StartConfigured() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, interval := range c.intervals {
		c.startLocked(name, interval)
	}
}

// Stop cancels the widget's timer and reports whether one was live.
// After Stop returns, no refresh-requested event for the name will be
// published by a tick, including ticks already in flight.
func (c *Coordinator) Stop(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked(name)
}

// Forget stops the widget's timer and drops its configured interval.
func (c *Coordinator) Forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked(name)
	delete(c.intervals, name)
}

// PauseAll cancels every live timer but keeps the configured
// intervals. Idempotent.
func (c *Coordinator) PauseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
	for name := range c.entries {
		c.stopLocked(name)
	}
	c.logger.Debug("refresh: paused all timers")
}

// ResumeAll restarts a timer for every configured interval.
// Idempotent; the restored set is exactly the configured one.
func (c *Coordinator) ResumeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
	for name, interval := range c.intervals {
		c.startLocked(name, interval)
	}
	c.logger.Debug("refresh: resumed timers", "count", len(c.entries))
}

// Kick publishes one immediate refresh-requested for the widget,
// independent of its timer.
func (c *Coordinator) Kick(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.publishLocked(name)
}

// KickAll publishes exactly one refresh-requested per configured
// widget: the catch-up used when visibility or connectivity returns.
func (c *Coordinator) KickAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, name := range c.configuredLocked() {
		c.publishLocked(name)
	}
}

// Active returns the sorted names with live timers.
func (c *Coordinator) Active() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Configured returns the sorted names with recorded intervals.
func (c *Coordinator) Configured() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configuredLocked()
}

// Interval returns the configured interval for a name.
func (c *Coordinator) Interval(name string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.intervals[name]
	return d, ok
}

// SetOnline seeds the connectivity state without triggering the
// transition behavior; transitions arrive as bus events.
func (c *Coordinator) SetOnline(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.online = online
}

// Close cancels all timers, detaches from the bus and stops the cron
// runner.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for name := range c.entries {
		c.stopLocked(name)
	}
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	c.cron.Stop()
}

func (c *Coordinator) handleOffline() {
	c.mu.Lock()
	c.online = false
	c.mu.Unlock()
	c.logger.Info("refresh: offline, pausing timers")
	c.PauseAll()
}

func (c *Coordinator) handleOnline() {
	c.mu.Lock()
	c.online = true
	c.mu.Unlock()
	c.logger.Info("refresh: online, catching up and resuming timers")
	// Catch-up events first, then live timers.
	c.KickAll()
	c.ResumeAll()
}

// startLocked replaces any live timer for name. Caller holds c.mu.
func (c *Coordinator) startLocked(name string, interval time.Duration) {
	c.stopLocked(name)
	if interval <= 0 || c.paused || !c.online || c.closed {
		return
	}
	c.gen++
	gen := c.gen
	id := c.cron.Schedule(intervalSchedule{every: interval}, cron.FuncJob(func() {
		c.fire(name, gen)
	}))
	c.entries[name] = entry{id: id, gen: gen}
	c.logger.Debug("refresh: timer started", "widget", name, "interval", interval)
}

// stopLocked cancels the live timer for name. Caller holds c.mu.
func (c *Coordinator) stopLocked(name string) bool {
	e, ok := c.entries[name]
	if !ok {
		return false
	}
	delete(c.entries, name)
	c.cron.Remove(e.id)
	return true
}

// fire runs on the cron goroutine for one tick. The generation check
// and the publish share one critical section: a tick that loses the
// race against Stop cannot publish after Stop returned.
func (c *Coordinator) fire(name string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[name]
	if !ok || e.gen != gen {
		return
	}
	c.publishLocked(name)
}

// publishLocked emits one refresh-requested. Caller holds c.mu.
func (c *Coordinator) publishLocked(name string) {
	if c.bus != nil {
		c.bus.Publish(bus.EventWidgetRefreshRequested, name)
	}
}

// configuredLocked returns sorted configured names. Caller holds c.mu.
func (c *Coordinator) configuredLocked() []string {
	names := make([]string, 0, len(c.intervals))
	for name := range c.intervals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
