// Package prefs manages user preferences: a flat record merged over
// defaults at load, persisted write-through on every change, with
// change events on the bus so open screens can react immediately.
package prefs

import (
	"log/slog"
	"sync"
	"time"

	"github.com/castlebay/deskpulse/pkg/bus"
	"github.com/castlebay/deskpulse/pkg/config"
	"github.com/castlebay/deskpulse/pkg/storage"
	"github.com/castlebay/deskpulse/pkg/theme"
)

// storageKey is where the record lives in the preference store.
const storageKey = "preferences"

// Preferences is the complete user customization record. Unknown
// fields in a stored record are dropped on load; missing fields keep
// their defaults.
type Preferences struct {
	// Theme names the active color theme.
	Theme string `json:"theme"`

	// WidgetOrder is the display order. Names not configured on
	// this dashboard are dropped at load.
	WidgetOrder []string `json:"widgetOrder"`

	// HiddenWidgets lists widgets the user has turned off.
	HiddenWidgets []string `json:"hiddenWidgets"`

	// AutoRefresh is the master switch for interval refreshing.
	AutoRefresh bool `json:"autoRefresh"`

	// RefreshInterval applies to widgets without a configured
	// interval.
	RefreshInterval config.Duration `json:"refreshInterval"`

	// CompactMode collapses panel padding for dense screens.
	CompactMode bool `json:"compactMode"`

	// FontSize scales panel padding: small, normal or large.
	FontSize string `json:"fontSize"`
}

// Defaults returns the preference record used before any
// customization.
func Defaults() Preferences {
	return Preferences{
		Theme:           "default",
		AutoRefresh:     true,
		RefreshInterval: config.Duration{Duration: 5 * time.Minute},
		FontSize:        "normal",
	}
}

// Manager owns the live preference record. All reads return copies;
// all writes persist through the store and publish a change event.
type Manager struct {
	mu      sync.Mutex
	store   *storage.Store
	bus     *bus.Bus
	logger  *slog.Logger
	known   []string
	current Preferences
}

// NewManager returns a manager for the given store and bus. known is
// the configured widget set in default display order; stored orders
// are sanitized against it.
func NewManager(store *storage.Store, b *bus.Bus, known []string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:   store,
		bus:     b,
		logger:  logger,
		known:   append([]string(nil), known...),
		current: Defaults(),
	}
}

// Load merges the stored record over the defaults and returns the
// result. Corrupt or missing records read as pure defaults. Load does
// not write back.
func (m *Manager) Load() Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := Defaults()
	if m.store != nil {
		// Decode into a scratch record: a blob that fails partway
		// through unmarshal must not leak decoded fields into the
		// defaults.
		stored := Defaults()
		if m.store.Get(storageKey, &stored) {
			p = stored
		}
	}
	p = m.sanitize(p)
	m.current = p
	return clone(p)
}

// Current returns a copy of the live record.
func (m *Manager) Current() Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.current)
}

// SetTheme switches the active theme and announces the change.
func (m *Manager) SetTheme(name string) {
	if !theme.Known(name) {
		m.logger.Warn("prefs: unknown theme, keeping current", "theme", name)
		return
	}
	m.update("theme", func(p *Preferences) { p.Theme = name })
	m.publish(bus.EventThemeChanged, name)
}

// CycleTheme advances to the next registered theme and returns its
// name.
func (m *Manager) CycleTheme() string {
	next := theme.Cycle(m.Current().Theme)
	m.SetTheme(next)
	return next
}

// SetWidgetOrder replaces the display order. Unknown names are
// dropped; configured names missing from the list keep their default
// position after it.
func (m *Manager) SetWidgetOrder(order []string) {
	m.update("widgetOrder", func(p *Preferences) {
		p.WidgetOrder = append([]string(nil), order...)
		*p = m.sanitize(*p)
	})
}

// SetHidden shows or hides one widget.
func (m *Manager) SetHidden(name string, hidden bool) {
	m.update("hiddenWidgets", func(p *Preferences) {
		filtered := p.HiddenWidgets[:0]
		for _, n := range p.HiddenWidgets {
			if n != name {
				filtered = append(filtered, n)
			}
		}
		p.HiddenWidgets = filtered
		if hidden {
			p.HiddenWidgets = append(p.HiddenWidgets, name)
		}
	})
}

// ToggleHidden flips one widget's visibility and reports whether it
// is hidden now.
func (m *Manager) ToggleHidden(name string) bool {
	hidden := !m.IsHidden(name)
	m.SetHidden(name, hidden)
	return hidden
}

// IsHidden reports whether the widget is currently hidden.
func (m *Manager) IsHidden(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.current.HiddenWidgets {
		if n == name {
			return true
		}
	}
	return false
}

// VisibleOrder returns the display order with hidden widgets removed.
func (m *Manager) VisibleOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	hidden := make(map[string]bool, len(m.current.HiddenWidgets))
	for _, n := range m.current.HiddenWidgets {
		hidden[n] = true
	}
	var visible []string
	for _, n := range m.current.WidgetOrder {
		if !hidden[n] {
			visible = append(visible, n)
		}
	}
	return visible
}

// SetAutoRefresh flips the auto-refresh master switch.
func (m *Manager) SetAutoRefresh(on bool) {
	m.update("autoRefresh", func(p *Preferences) { p.AutoRefresh = on })
}

// SetRefreshInterval sets the fallback refresh interval. Non-positive
// values are ignored.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	if d <= 0 {
		m.logger.Warn("prefs: ignoring non-positive refresh interval", "interval", d)
		return
	}
	m.update("refreshInterval", func(p *Preferences) {
		p.RefreshInterval = config.Duration{Duration: d}
	})
}

// SetCompactMode flips compact rendering.
func (m *Manager) SetCompactMode(on bool) {
	m.update("compactMode", func(p *Preferences) { p.CompactMode = on })
}

// SetFontSize sets the padding scale: small, normal or large.
func (m *Manager) SetFontSize(size string) {
	switch size {
	case "small", "normal", "large":
	default:
		m.logger.Warn("prefs: unknown font size, keeping current", "size", size)
		return
	}
	m.update("fontSize", func(p *Preferences) { p.FontSize = size })
}

// update applies a mutation, persists write-through while still
// holding the lock so writes land in mutation order, then announces
// the change.
func (m *Manager) update(field string, mutate func(*Preferences)) {
	m.mu.Lock()
	mutate(&m.current)
	if m.store != nil && !m.store.Set(storageKey, m.current) {
		m.logger.Warn("prefs: persisting preferences failed", "field", field)
	}
	m.mu.Unlock()

	m.publish(bus.EventPrefsChanged, field)
}

func (m *Manager) publish(event string, args ...any) {
	if m.bus != nil {
		m.bus.Publish(event, args...)
	}
}

// sanitize enforces record invariants: a known theme, a valid font
// size, a positive interval, and a widget order that covers exactly
// the configured set.
func (m *Manager) sanitize(p Preferences) Preferences {
	if !theme.Known(p.Theme) {
		p.Theme = "default"
	}
	switch p.FontSize {
	case "small", "normal", "large":
	default:
		p.FontSize = "normal"
	}
	if p.RefreshInterval.Duration <= 0 {
		p.RefreshInterval = Defaults().RefreshInterval
	}

	known := make(map[string]bool, len(m.known))
	for _, n := range m.known {
		known[n] = true
	}

	var order []string
	seen := make(map[string]bool, len(m.known))
	for _, n := range p.WidgetOrder {
		if known[n] && !seen[n] {
			order = append(order, n)
			seen[n] = true
		}
	}
	for _, n := range m.known {
		if !seen[n] {
			order = append(order, n)
		}
	}
	p.WidgetOrder = order

	var hidden []string
	for _, n := range p.HiddenWidgets {
		if known[n] {
			hidden = append(hidden, n)
		}
	}
	p.HiddenWidgets = hidden
	return p
}

func clone(p Preferences) Preferences {
	p.WidgetOrder = append([]string(nil), p.WidgetOrder...)
	p.HiddenWidgets = append([]string(nil), p.HiddenWidgets...)
	return p
}
