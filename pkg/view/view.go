// Package view defines renderer-independent descriptions of dashboard
// panels. Widgets map their data to these values and the terminal layer
// turns them into styled output, so rendering logic stays testable
// without a terminal attached.
package view

import "time"

// Status classifies the overall condition a panel is in.
type Status int

const (
	// StatusOK means the panel has content to show.
	StatusOK Status = iota

	// StatusLoading means the first load has not completed yet.
	StatusLoading

	// StatusEmpty means the load succeeded but produced nothing to show.
	StatusEmpty

	// StatusError means the most recent load failed.
	StatusError
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusLoading:
		return "loading"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Tone is a semantic color hint. The terminal layer maps tones to the
// active theme; panels never carry concrete colors.
type Tone int

const (
	// ToneDefault renders in the normal foreground.
	ToneDefault Tone = iota

	// ToneDim renders de-emphasized.
	ToneDim

	// ToneAccent renders highlighted.
	ToneAccent

	// ToneOK renders as a positive state.
	ToneOK

	// ToneWarn renders as a warning.
	ToneWarn

	// ToneError renders as a failure.
	ToneError
)

// ActionRetry is the well-known action id for retrying a failed load.
const ActionRetry = "retry"

// Action is an operation the user can trigger on a focused panel, for
// example with enter or a click. The id is dispatched back to the
// owning widget; the label is what the frontend shows.
type Action struct {
	// ID identifies the action to the dispatcher.
	ID string

	// Label is the human-readable caption.
	Label string
}

// Line is one row of panel content. Left/Right form a two-column row;
// Right may be empty for full-width text.
type Line struct {
	// Left is the leading column text.
	Left string

	// Right is the trailing column text, right-aligned when set.
	Right string

	// Tone hints how the row should be colored.
	Tone Tone

	// Badge is an optional short marker rendered before Left,
	// such as a priority tag.
	Badge string

	// BadgeTone hints how the badge should be colored.
	BadgeTone Tone
}

// Panel is the complete description of one widget's visual state.
type Panel struct {
	// Title is the panel heading.
	Title string

	// Status classifies the panel condition.
	Status Status

	// Busy marks a refresh in flight. Content stays visible; the
	// frontend adds a spinner to the heading.
	Busy bool

	// Message carries the status text for loading, empty and error
	// panels. Unused when Status is StatusOK.
	Message string

	// Lines is the panel body in display order.
	Lines []Line

	// Footer is an optional summary row below the body.
	Footer string

	// Action is an optional activatable operation, shown as a hint
	// on the focused panel.
	Action *Action

	// Updated records when the panel content was produced.
	Updated time.Time
}

// Loading returns the panel shown while a widget's first load runs.
func Loading(title string) Panel {
	return Panel{Title: title, Status: StatusLoading, Busy: true, Message: "Loading…"}
}

// Empty returns a panel for a load that succeeded with nothing to show.
// The message should tell the user why the panel is empty, not just
// that it is.
func Empty(title, message string) Panel {
	return Panel{Title: title, Status: StatusEmpty, Message: message}
}

// EmptyWithAction returns an empty panel offering a follow-up action.
func EmptyWithAction(title, message, actionLabel, actionID string) Panel {
	p := Empty(title, message)
	p.Action = &Action{ID: actionID, Label: actionLabel}
	return p
}

// ErrorPanel returns a panel for a failed load, offering a retry.
func ErrorPanel(title, message string) Panel {
	return Panel{
		Title:   title,
		Status:  StatusError,
		Message: message,
		Action:  &Action{ID: ActionRetry, Label: "Retry"},
	}
}

// HasContent reports whether the panel has body lines to keep showing
// during a refresh.
func (p Panel) HasContent() bool {
	return p.Status == StatusOK && len(p.Lines) > 0
}
