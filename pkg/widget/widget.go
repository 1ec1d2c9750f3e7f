// Package widget defines the capability contract dashboard panels
// implement and the Runtime that drives each one through its
// lifecycle. Widgets only fetch and shape data; every stateful
// concern, loading indication, error handling, destruction, lives in
// the Runtime so each widget cannot get it differently wrong.
package widget

import (
	"context"
	"errors"
	"time"

	"github.com/castlebay/deskpulse/pkg/view"
)

var (
	// ErrNotImplemented signals a widget left a required operation
	// on the embedded Unimplemented placeholder.
	ErrNotImplemented = errors.New("widget: operation not implemented")

	// ErrAlreadyInitialized signals a second Init on one Runtime.
	ErrAlreadyInitialized = errors.New("widget: already initialized")

	// ErrNotInitialized signals a Refresh before Init.
	ErrNotInitialized = errors.New("widget: not initialized")

	// ErrDestroyed signals an operation on a destroyed Runtime.
	ErrDestroyed = errors.New("widget: destroyed")
)

// Widget is the contract a dashboard panel implements. Load fetches
// and shapes the widget's data; Render maps that data to a pure view
// description. Both must be safe to call from any goroutine; the
// Runtime serializes them per widget.
type Widget interface {
	// Name returns the stable identifier used in events, config
	// and preferences.
	Name() string

	// Title returns the display heading.
	Title() string

	// RefreshInterval returns the auto-refresh period. Zero
	// disables interval refreshing for this widget.
	RefreshInterval() time.Duration

	// Load fetches and decodes the widget's data.
	Load(ctx context.Context) (any, error)

	// Render maps loaded data to a view description. It must be
	// pure: no fetching, no stored state, no side effects.
	Render(data any) view.Panel
}

// Destroyer is implemented by widgets that hold resources needing
// cleanup beyond what the Runtime detaches.
type Destroyer interface {
	Destroy()
}

// ActionHandler is implemented by widgets whose panels carry actions.
// The Runtime dispatches each activation exactly once; retry on a
// failed panel is handled by the Runtime itself and never reaches the
// widget.
type ActionHandler interface {
	HandleAction(id string)
}

// State is a Runtime lifecycle state.
type State int

const (
	// StateUninitialized is the state before Init.
	StateUninitialized State = iota

	// StateInitializing covers the first load.
	StateInitializing

	// StateReady means the panel shows current data.
	StateReady

	// StateRefreshing covers a reload after Ready.
	StateRefreshing

	// StateError means the most recent load failed.
	StateError

	// StateDestroyed is terminal.
	StateDestroyed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateRefreshing:
		return "refreshing"
	case StateError:
		return "error"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Unimplemented is an embeddable placeholder for the data operations.
// Embedding it satisfies everything except Name and Title; leaving
// Load or Render unoverridden surfaces as an explicit error panel
// instead of silently rendering nothing.
type Unimplemented struct{}

// RefreshInterval disables auto-refresh for placeholder widgets.
func (Unimplemented) RefreshInterval() time.Duration { return 0 }

// Load reports that the widget never implemented loading.
func (Unimplemented) Load(context.Context) (any, error) {
	return nil, ErrNotImplemented
}

// Render reports that the widget never implemented rendering.
func (Unimplemented) Render(any) view.Panel {
	return view.ErrorPanel("unimplemented", ErrNotImplemented.Error())
}
