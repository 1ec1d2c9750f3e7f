// Package netwatch tracks whether the intranet is reachable and
// announces transitions on the bus. Components never poll it beyond
// the Online snapshot; the refresh coordinator reacts to the
// network:offline and network:online events.
package netwatch

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/castlebay/deskpulse/pkg/bus"
)

// DefaultProbeInterval is used when no interval is configured.
const DefaultProbeInterval = 30 * time.Second

// Prober answers one reachability check.
type Prober interface {
	Probe(ctx context.Context) bool
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context) bool

// Probe implements Prober.
func (f ProberFunc) Probe(ctx context.Context) bool { return f(ctx) }

// StaticProber always reports the same state. It backs dashboards
// with no probe URL configured, which are treated as always online.
type StaticProber bool

// Probe implements Prober.
func (p StaticProber) Probe(context.Context) bool { return bool(p) }

// HTTPProber checks reachability with a HEAD request. Any response,
// even an error status, proves the network path works; only transport
// failures count as offline.
type HTTPProber struct {
	url    string
	client *http.Client
}

// NewHTTPProber returns a prober for the given URL. A nil client gets
// a default with a 5 second timeout.
func NewHTTPProber(url string, client *http.Client) HTTPProber {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return HTTPProber{url: url, client: client}
}

// Probe implements Prober.
func (p HTTPProber) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Monitor runs the probe on a fixed interval and publishes
// network:online and network:offline on transitions only. It starts
// optimistic: the first probe result is published only if it differs
// from online.
type Monitor struct {
	bus      *bus.Bus
	prober   Prober
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	online bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor returns a stopped monitor. Call Start to begin probing.
func NewMonitor(b *bus.Bus, prober Prober, interval time.Duration, logger *slog.Logger) *Monitor {
	if prober == nil {
		prober = StaticProber(true)
	}
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		bus:      b,
		prober:   prober,
		interval: interval,
		logger:   logger,
		online:   true,
	}
}

// Online returns the last observed connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Start begins the probe loop. A second Start is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.loop(ctx, m.done)
}

// Stop ends the probe loop and waits for it to finish. Safe to call
// on a never-started or already-stopped monitor.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Check runs one probe immediately and publishes a transition if the
// state changed. It returns the observed state.
func (m *Monitor) Check(ctx context.Context) bool {
	online := m.prober.Probe(ctx)
	m.transition(online)
	return online
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Probe once up front so a dashboard started offline pauses its
	// timers before the first full interval elapses.
	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// transition publishes the matching event when the observed state
// differs from the recorded one. The bus publish happens outside the
// monitor lock; subscribers may call Online re-entrantly.
func (m *Monitor) transition(online bool) {
	m.mu.Lock()
	changed := online != m.online
	m.online = online
	m.mu.Unlock()

	if !changed || m.bus == nil {
		return
	}
	if online {
		m.logger.Info("netwatch: connectivity regained")
		m.bus.Publish(bus.EventNetworkOnline)
	} else {
		m.logger.Warn("netwatch: connectivity lost")
		m.bus.Publish(bus.EventNetworkOffline)
	}
}
