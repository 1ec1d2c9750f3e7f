package theme

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// LoadFromTOML parses a TOML theme definition. Colors left unset
// inherit from the default theme, so a user theme only has to name
// what it changes. Set colors must be six-digit hex.
func LoadFromTOML(data []byte) (Theme, error) {
	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return Theme{}, fmt.Errorf("theme: parse TOML: %w", err)
	}
	if t.Name == "" {
		return Theme{}, fmt.Errorf("theme: missing name")
	}
	merged := thMergeOverDefault(t)
	if err := thValidate(merged); err != nil {
		return Theme{}, err
	}
	return merged, nil
}

// LoadFile reads one theme file.
func LoadFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("theme: read %s: %w", path, err)
	}
	t, err := LoadFromTOML(data)
	if err != nil {
		return Theme{}, fmt.Errorf("theme: %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// LoadDir registers every .toml theme in dir. Invalid files are
// logged and skipped; a missing dir is not an error.
func LoadDir(dir string, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("theme: reading theme dir", "dir", dir, "error", err)
		}
		return 0
	}

	loaded := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		t, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			logger.Warn("theme: skipping invalid theme", "file", e.Name(), "error", err)
			continue
		}
		Register(t)
		loaded++
	}
	return loaded
}

// thMergeOverDefault fills unset colors from the default theme.
func thMergeOverDefault(t Theme) Theme {
	base := Default()
	merged := t
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&merged.Background, base.Background)
	fill(&merged.Foreground, base.Foreground)
	fill(&merged.Dim, base.Dim)
	fill(&merged.Accent, base.Accent)
	fill(&merged.Border, base.Border)
	fill(&merged.BorderFocus, base.BorderFocus)
	fill(&merged.Title, base.Title)
	fill(&merged.OK, base.OK)
	fill(&merged.Warn, base.Warn)
	fill(&merged.Error, base.Error)
	fill(&merged.StatusBar, base.StatusBar)
	fill(&merged.StatusBarText, base.StatusBarText)
	return merged
}

// thValidate checks every color is six-digit hex.
func thValidate(t Theme) error {
	colors := map[string]string{
		"background":      t.Background,
		"foreground":      t.Foreground,
		"dim":             t.Dim,
		"accent":          t.Accent,
		"border":          t.Border,
		"border_focus":    t.BorderFocus,
		"title":           t.Title,
		"ok":              t.OK,
		"warn":            t.Warn,
		"error":           t.Error,
		"status_bar":      t.StatusBar,
		"status_bar_text": t.StatusBarText,
	}
	for field, c := range colors {
		if !hexColorRegex.MatchString(c) {
			return fmt.Errorf("theme %q: invalid color %q for %s", t.Name, c, field)
		}
	}
	return nil
}
