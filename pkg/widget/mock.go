package widget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/castlebay/deskpulse/pkg/view"
)

// Mock is a configurable Widget for tests in this package and in
// packages that drive widgets, such as the orchestrator.
type Mock struct {
	name     string
	title    string
	interval time.Duration

	mu         sync.Mutex
	loads      int
	destroys   int
	actions    []string
	data       any
	err        error
	loadFunc   func(ctx context.Context) (any, error)
	renderFunc func(any) view.Panel
}

// MockOption configures a Mock.
type MockOption func(*Mock)

// WithTitle sets the display title. The default is the name.
func WithTitle(title string) MockOption {
	return func(m *Mock) { m.title = title }
}

// WithInterval sets the reported refresh interval.
func WithInterval(d time.Duration) MockOption {
	return func(m *Mock) { m.interval = d }
}

// WithData makes Load return the given data.
func WithData(data any) MockOption {
	return func(m *Mock) { m.data = data }
}

// WithLoadError makes Load fail with err.
func WithLoadError(err error) MockOption {
	return func(m *Mock) { m.err = err }
}

// WithLoadFunc replaces the whole Load behavior. The load counter
// still advances.
func WithLoadFunc(fn func(ctx context.Context) (any, error)) MockOption {
	return func(m *Mock) { m.loadFunc = fn }
}

// WithRenderFunc replaces the default rendering.
func WithRenderFunc(fn func(any) view.Panel) MockOption {
	return func(m *Mock) { m.renderFunc = fn }
}

// NewMock returns a mock widget with the given name.
func NewMock(name string, opts ...MockOption) *Mock {
	m := &Mock{name: name, title: name}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements Widget.
func (m *Mock) Name() string { return m.name }

// Title implements Widget.
func (m *Mock) Title() string { return m.title }

// RefreshInterval implements Widget.
func (m *Mock) RefreshInterval() time.Duration { return m.interval }

// Load implements Widget using the configured data, error or load
// function.
func (m *Mock) Load(ctx context.Context) (any, error) {
	m.mu.Lock()
	m.loads++
	fn := m.loadFunc
	data, err := m.data, m.err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Render implements Widget. Without a render func, nil data renders
// as an empty panel and anything else as a single line.
func (m *Mock) Render(data any) view.Panel {
	m.mu.Lock()
	fn := m.renderFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(data)
	}
	if data == nil {
		return view.Empty(m.title, "No data")
	}
	return view.Panel{
		Title:  m.title,
		Status: view.StatusOK,
		Lines:  []view.Line{{Left: fmt.Sprintf("%v", data)}},
	}
}

// Destroy implements Destroyer and counts calls.
func (m *Mock) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroys++
}

// HandleAction implements ActionHandler and records the id.
func (m *Mock) HandleAction(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, id)
}

// SetData changes what subsequent loads return and clears any
// configured error.
func (m *Mock) SetData(data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.err = nil
}

// SetError makes subsequent loads fail with err.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Loads returns how many times Load ran.
func (m *Mock) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

// Destroys returns how many times Destroy ran.
func (m *Mock) Destroys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroys
}

// Actions returns the recorded action ids.
func (m *Mock) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.actions...)
}
