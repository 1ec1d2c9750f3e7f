// Package config provides file-based configuration for deskpulse.
// TOML is the primary format; YAML is accepted by file extension.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the root configuration document.
type Config struct {
	General   GeneralConfig   `toml:"general" yaml:"general"`
	Storage   StorageConfig   `toml:"storage" yaml:"storage"`
	Refresh   RefreshConfig   `toml:"refresh" yaml:"refresh"`
	Network   NetworkConfig   `toml:"network" yaml:"network"`
	Theme     ThemeConfig     `toml:"theme" yaml:"theme"`
	Dashboard DashboardConfig `toml:"dashboard" yaml:"dashboard"`
	Widgets   []WidgetConfig  `toml:"widgets" yaml:"widgets"`
}

// GeneralConfig holds process-wide settings.
type GeneralConfig struct {
	// DataDir is the directory widget source paths resolve against.
	DataDir string `toml:"data_dir" yaml:"data_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// LogFile, when set, additionally appends logs to this file.
	LogFile string `toml:"log_file" yaml:"log_file"`

	// CacheTTL bounds how long a fetched source document may be
	// reused to absorb refresh bursts.
	CacheTTL Duration `toml:"cache_ttl" yaml:"cache_ttl"`
}

// StorageConfig locates the preference store.
type StorageConfig struct {
	// Path is the store file, or ":memory:" for no persistence.
	Path string `toml:"path" yaml:"path"`
}

// RefreshConfig controls the auto-refresh coordinator.
type RefreshConfig struct {
	// Enabled is the master switch for interval refreshing.
	Enabled bool `toml:"enabled" yaml:"enabled"`

	// DefaultInterval applies to widgets without their own interval.
	DefaultInterval Duration `toml:"default_interval" yaml:"default_interval"`
}

// NetworkConfig controls the connectivity monitor.
type NetworkConfig struct {
	// ProbeURL is checked periodically to decide online state.
	// Empty means the dashboard assumes it is always online.
	ProbeURL string `toml:"probe_url" yaml:"probe_url"`

	// ProbeInterval is the time between connectivity checks.
	ProbeInterval Duration `toml:"probe_interval" yaml:"probe_interval"`
}

// ThemeConfig selects the color theme.
type ThemeConfig struct {
	// Name is a built-in theme or one loadable from Dir.
	Name string `toml:"name" yaml:"name"`

	// Dir holds user theme files (<name>.toml).
	Dir string `toml:"dir" yaml:"dir"`
}

// DashboardConfig shapes the top-level display.
type DashboardConfig struct {
	// Title is shown in the header bar.
	Title string `toml:"title" yaml:"title"`

	// Columns is the grid width, clamped to 1..4.
	Columns int `toml:"columns" yaml:"columns"`

	// Preset names a widget set to use when no [[widgets]] blocks
	// are declared. See WidgetPreset.
	Preset string `toml:"preset" yaml:"preset"`
}

// WidgetConfig describes one widget instance.
type WidgetConfig struct {
	// Name is the stable widget identifier. Must be unique.
	Name string `toml:"name" yaml:"name"`

	// Title overrides the widget's display title.
	Title string `toml:"title" yaml:"title"`

	// Source is the JSON document to load: a path relative to the
	// data dir, an absolute path, or an http(s) URL.
	Source string `toml:"source" yaml:"source"`

	// Interval is the auto-refresh period. Zero uses the refresh
	// default; a disabled coordinator ignores it.
	Interval Duration `toml:"interval" yaml:"interval"`

	// Disabled removes the widget without deleting its config.
	Disabled bool `toml:"disabled" yaml:"disabled"`

	// MaxItems caps how many rows the widget shows. Zero means the
	// widget's own default.
	MaxItems int `toml:"max_items" yaml:"max_items"`

	// ShowCompleted includes finished tasks (tasks widget).
	ShowCompleted bool `toml:"show_completed" yaml:"show_completed"`

	// ShowClosed includes closed tickets (tickets widget).
	ShowClosed bool `toml:"show_closed" yaml:"show_closed"`

	// WindowDays bounds how far ahead the calendar widget looks.
	// Zero means the widget default.
	WindowDays int `toml:"window_days" yaml:"window_days"`
}

// ResolveSource returns the widget source as a fetchable location:
// URLs and absolute paths pass through, relative paths join dataDir.
func (w WidgetConfig) ResolveSource(dataDir string) string {
	if w.Source == "" {
		return ""
	}
	if u, err := url.Parse(w.Source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return w.Source
	}
	if filepath.IsAbs(w.Source) {
		return w.Source
	}
	return filepath.Join(dataDir, w.Source)
}

// DefaultConfig returns the configuration used when no file exists:
// the five standard intranet widgets reading from the local data dir.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	storePath := filepath.Join(xdgDataHome(home), "deskpulse", "deskpulse.db")

	return &Config{
		General: GeneralConfig{
			DataDir:  "data",
			LogLevel: "info",
			CacheTTL: Duration{2 * time.Second},
		},
		Storage: StorageConfig{
			Path: storePath,
		},
		Refresh: RefreshConfig{
			Enabled:         true,
			DefaultInterval: Duration{5 * time.Minute},
		},
		Network: NetworkConfig{
			ProbeInterval: Duration{30 * time.Second},
		},
		Theme: ThemeConfig{
			Name: "default",
			Dir:  filepath.Join(xdgConfigHome(home), "deskpulse", "themes"),
		},
		Dashboard: DashboardConfig{
			Title:   "deskpulse",
			Columns: 2,
			Preset:  "standard",
		},
		Widgets: WidgetPreset("standard"),
	}
}

// WidgetNames returns the configured widget names in declaration
// order, including disabled ones.
func (c *Config) WidgetNames() []string {
	names := make([]string, 0, len(c.Widgets))
	for _, w := range c.Widgets {
		names = append(names, w.Name)
	}
	return names
}

// Validate normalizes the configuration and rejects values the
// dashboard cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.General.LogLevel) {
	case "", "debug", "info", "warn", "error":
		c.General.LogLevel = strings.ToLower(c.General.LogLevel)
		if c.General.LogLevel == "" {
			c.General.LogLevel = "info"
		}
	default:
		return fmt.Errorf("config: unknown log level %q", c.General.LogLevel)
	}

	if c.Dashboard.Columns < 1 {
		c.Dashboard.Columns = 2
	}
	if c.Dashboard.Columns > 4 {
		c.Dashboard.Columns = 4
	}

	seen := make(map[string]bool, len(c.Widgets))
	for i, w := range c.Widgets {
		if w.Name == "" {
			return fmt.Errorf("config: widget #%d has no name", i+1)
		}
		if seen[w.Name] {
			return fmt.Errorf("config: duplicate widget name %q", w.Name)
		}
		seen[w.Name] = true
		if !w.Disabled && w.Source == "" {
			return fmt.Errorf("config: widget %q has no source", w.Name)
		}
	}
	return nil
}
