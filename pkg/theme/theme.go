// Package theme defines the color palettes the dashboard renders
// with. A palette is pure data; the terminal layer builds styles from
// it and passes the active theme down explicitly. Built-in themes are
// always available and user themes can be registered on top of them
// from TOML files.
package theme

import (
	"sort"
	"sync"

	"github.com/castlebay/deskpulse/pkg/view"
)

// Theme defines the complete color palette for the dashboard.
// Colors are hex strings like "#1a1b26"; terminals below truecolor
// get a downgraded rendition from the render pipeline.
type Theme struct {
	Name string `toml:"name"`

	// Base colors
	Background string `toml:"background"` // dashboard surface
	Foreground string `toml:"foreground"` // normal text
	Dim        string `toml:"dim"`        // secondary text
	Accent     string `toml:"accent"`     // highlights

	// Panel colors
	Border      string `toml:"border"`       // unfocused panel borders
	BorderFocus string `toml:"border_focus"` // focused panel border
	Title       string `toml:"title"`        // panel title text

	// Status colors
	OK    string `toml:"ok"`    // healthy rows
	Warn  string `toml:"warn"`  // needs attention
	Error string `toml:"error"` // failures

	// Chrome
	StatusBar     string `toml:"status_bar"`      // bottom bar fill
	StatusBarText string `toml:"status_bar_text"` // bottom bar text
}

// ToneColor maps a semantic tone to this theme's color for it.
func (t Theme) ToneColor(tone view.Tone) string {
	switch tone {
	case view.ToneDim:
		return t.Dim
	case view.ToneAccent:
		return t.Accent
	case view.ToneOK:
		return t.OK
	case view.ToneWarn:
		return t.Warn
	case view.ToneError:
		return t.Error
	default:
		return t.Foreground
	}
}

var (
	mu       sync.RWMutex
	registry = map[string]Theme{}
)

func init() {
	for _, t := range thBuiltins() {
		registry[t.Name] = t
	}
}

// Default returns the default theme.
func Default() Theme {
	return Get("default")
}

// Get returns a named theme, falling back to "default" if not found.
func Get(name string) Theme {
	mu.RLock()
	defer mu.RUnlock()
	if t, ok := registry[name]; ok {
		return t
	}
	return registry["default"]
}

// Known reports whether name resolves to a registered theme.
func Known(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := registry[name]
	return ok
}

// Register adds or replaces a theme. Themes with an empty name are
// ignored.
func Register(t Theme) {
	if t.Name == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[t.Name] = t
}

// Names returns the sorted registered theme names.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cycle returns the theme name after the given one in sorted order,
// wrapping around. Unknown names cycle to the first theme.
func Cycle(name string) string {
	names := Names()
	if len(names) == 0 {
		return "default"
	}
	for i, n := range names {
		if n == name {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// thBuiltins returns the themes that ship with the dashboard.
func thBuiltins() []Theme {
	return []Theme{
		{
			Name:          "default",
			Background:    "#1a1b26",
			Foreground:    "#c0caf5",
			Dim:           "#565f89",
			Accent:        "#7aa2f7",
			Border:        "#3b4261",
			BorderFocus:   "#7aa2f7",
			Title:         "#bb9af7",
			OK:            "#9ece6a",
			Warn:          "#e0af68",
			Error:         "#f7768e",
			StatusBar:     "#24283b",
			StatusBarText: "#a9b1d6",
		},
		{
			Name:          "dark",
			Background:    "#121212",
			Foreground:    "#d4d4d4",
			Dim:           "#6b6b6b",
			Accent:        "#569cd6",
			Border:        "#2d2d2d",
			BorderFocus:   "#569cd6",
			Title:         "#c586c0",
			OK:            "#6a9955",
			Warn:          "#d7ba7d",
			Error:         "#f44747",
			StatusBar:     "#1f1f1f",
			StatusBarText: "#bbbbbb",
		},
		{
			Name:          "light",
			Background:    "#fafafa",
			Foreground:    "#383a42",
			Dim:           "#a0a1a7",
			Accent:        "#4078f2",
			Border:        "#d3d4d6",
			BorderFocus:   "#4078f2",
			Title:         "#a626a4",
			OK:            "#50a14f",
			Warn:          "#c18401",
			Error:         "#e45649",
			StatusBar:     "#eaeaeb",
			StatusBarText: "#383a42",
		},
		{
			Name:          "highcontrast",
			Background:    "#000000",
			Foreground:    "#ffffff",
			Dim:           "#bbbbbb",
			Accent:        "#00ffff",
			Border:        "#ffffff",
			BorderFocus:   "#ffff00",
			Title:         "#ffff00",
			OK:            "#00ff00",
			Warn:          "#ffff00",
			Error:         "#ff0000",
			StatusBar:     "#ffffff",
			StatusBarText: "#000000",
		},
	}
}
