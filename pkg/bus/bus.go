// Package bus implements the synchronous publish/subscribe hub that
// connects the dashboard components. Widgets, the refresh coordinator
// and the frontend never call each other directly; everything crosses
// this bus as named events.
package bus

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultListenerCap is the per-event-name subscription limit applied
// when no explicit cap is configured. Hitting the cap usually means a
// component is resubscribing without cleaning up after itself.
const DefaultListenerCap = 50

// Event is the value delivered to handlers. Args carries the publish
// payload positionally; the helpers in events.go decode the well-known
// shapes.
type Event struct {
	// ID uniquely identifies this emission.
	ID string

	// Name is the event name the emission was published under.
	Name string

	// Args is the publish payload.
	Args []any

	// At records when the event was published.
	At time.Time
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and without the bus lock held, so they may
// subscribe, unsubscribe and publish re-entrantly.
type Handler func(Event)

// Subscription is the handle returned by Subscribe and SubscribeOnce.
// Removal goes through the handle because Go functions cannot be
// compared for identity.
type Subscription struct {
	bus     *Bus
	name    string
	once    bool
	fn      Handler
	removed atomic.Bool
}

// Event returns the event name this subscription is registered under.
func (s *Subscription) Event() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Unsubscribe removes the handler. It is idempotent and returns true
// only on the call that actually removed it. Once Unsubscribe has
// returned, the handler is not invoked again, including by publishes
// already iterating their snapshot.
func (s *Subscription) Unsubscribe() bool {
	if s == nil || s.bus == nil {
		return false
	}
	return s.bus.remove(s)
}

// Bus is a thread-safe event hub. The zero value is not usable; call
// New.
type Bus struct {
	mu       sync.Mutex
	cap      int
	logger   *slog.Logger
	handlers map[string][]*Subscription
}

// Option configures a Bus.
type Option func(*Bus)

// WithListenerCap overrides the per-event-name subscription limit.
// Values below one fall back to the default.
func WithListenerCap(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.cap = n
		}
	}
}

// WithLogger sets the logger used for refusals and handler panics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// New returns an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		cap:      DefaultListenerCap,
		logger:   slog.Default(),
		handlers: make(map[string][]*Subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for name, in registration order. It refuses
// the registration and returns (nil, false) when name is empty, fn is
// nil, or the per-name cap is reached; refusal is logged, never a
// panic.
func (b *Bus) Subscribe(name string, fn Handler) (*Subscription, bool) {
	return b.subscribe(name, fn, false)
}

// SubscribeOnce registers fn to run at most once. The subscription is
// removed immediately before its first invocation, so it cannot run a
// second time even if the handler itself republishes the event or
// panics.
func (b *Bus) SubscribeOnce(name string, fn Handler) (*Subscription, bool) {
	return b.subscribe(name, fn, true)
}

func (b *Bus) subscribe(name string, fn Handler, once bool) (*Subscription, bool) {
	if name == "" {
		b.logger.Warn("bus: refusing subscription with empty event name")
		return nil, false
	}
	if fn == nil {
		b.logger.Warn("bus: refusing nil handler", "event", name)
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.handlers[name]) >= b.cap {
		b.logger.Warn("bus: listener cap reached, registration refused",
			"event", name, "cap", b.cap)
		return nil, false
	}
	sub := &Subscription{bus: b, name: name, once: once, fn: fn}
	b.handlers[name] = append(b.handlers[name], sub)
	return sub, true
}

// Publish delivers the event to every handler registered for name at
// call time, in subscription order, synchronously on the calling
// goroutine. Handlers registered during delivery do not run in this
// emission; handlers removed during delivery are skipped. A panicking
// handler is recovered and logged and does not stop delivery. Publish
// reports whether at least one handler ran to completion; with no
// subscribers it returns false.
func (b *Bus) Publish(name string, args ...any) bool {
	if name == "" {
		return false
	}
	b.mu.Lock()
	list := b.handlers[name]
	if len(list) == 0 {
		b.mu.Unlock()
		return false
	}
	// Snapshot so handler-triggered mutations only affect later
	// publishes.
	snap := make([]*Subscription, len(list))
	copy(snap, list)
	b.mu.Unlock()

	ev := Event{
		ID:   uuid.NewString(),
		Name: name,
		Args: args,
		At:   time.Now(),
	}

	delivered := 0
	for _, sub := range snap {
		if sub.once {
			// Claim before invoking; at most one publish wins.
			if !b.remove(sub) {
				continue
			}
		} else if sub.removed.Load() {
			continue
		}
		if b.invoke(sub, ev) {
			delivered++
		}
	}
	return delivered > 0
}

func (b *Bus) invoke(sub *Subscription, ev Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("bus: handler panic", "event", ev.Name, "panic", r)
			ok = false
		}
	}()
	sub.fn(ev)
	return true
}

func (b *Bus) remove(s *Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.removed.Swap(true) {
		return false
	}
	list := b.handlers[s.name]
	for i := range list {
		if list[i] == s {
			b.handlers[s.name] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(b.handlers[s.name]) == 0 {
		delete(b.handlers, s.name)
	}
	return true
}

// ListenerCount returns the number of active subscriptions for name.
func (b *Bus) ListenerCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[name])
}

// EventNames returns the sorted names that currently have at least one
// subscription. Names whose last handler was removed do not appear.
func (b *Bus) EventNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemoveAll drops every subscription for the given names, or for all
// names when called with none. In-flight publishes observe the removal.
func (b *Bus) RemoveAll(names ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(names) == 0 {
		for _, list := range b.handlers {
			for _, s := range list {
				s.removed.Store(true)
			}
		}
		b.handlers = make(map[string][]*Subscription)
		return
	}
	for _, name := range names {
		for _, s := range b.handlers[name] {
			s.removed.Store(true)
		}
		delete(b.handlers, name)
	}
}
