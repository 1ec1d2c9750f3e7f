package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromReaderTOML(t *testing.T) {
	doc := `
[general]
data_dir = "/srv/intranet"
log_level = "debug"
cache_ttl = "5s"

[refresh]
enabled = true
default_interval = "3m"

[network]
probe_url = "http://intranet.local/ping"
probe_interval = "10s"

[theme]
name = "dark"

[dashboard]
title = "IT Desk"
columns = 3

[[widgets]]
name = "tickets"
source = "tickets.json"
interval = "45s"
max_items = 12
show_closed = true
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	if cfg.General.DataDir != "/srv/intranet" {
		t.Errorf("DataDir = %q, want %q", cfg.General.DataDir, "/srv/intranet")
	}
	if cfg.General.CacheTTL.Duration != 5*time.Second {
		t.Errorf("CacheTTL = %v, want %v", cfg.General.CacheTTL.Duration, 5*time.Second)
	}
	if cfg.Network.ProbeURL != "http://intranet.local/ping" {
		t.Errorf("ProbeURL = %q, want %q", cfg.Network.ProbeURL, "http://intranet.local/ping")
	}
	if cfg.Dashboard.Columns != 3 {
		t.Errorf("Columns = %d, want 3", cfg.Dashboard.Columns)
	}
	if len(cfg.Widgets) != 1 {
		t.Fatalf("len(Widgets) = %d, want 1", len(cfg.Widgets))
	}
	w := cfg.Widgets[0]
	if w.Name != "tickets" || w.Interval.Duration != 45*time.Second || !w.ShowClosed {
		t.Errorf("widget = %+v, want tickets/45s/show_closed", w)
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	doc := `
general:
  data_dir: /srv/yaml
  log_level: warn
theme:
  name: light
widgets:
  - name: tasks
    source: tasks.yaml.json
    interval: 90s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.General.DataDir != "/srv/yaml" {
		t.Errorf("DataDir = %q, want %q", cfg.General.DataDir, "/srv/yaml")
	}
	if cfg.Theme.Name != "light" {
		t.Errorf("Theme.Name = %q, want %q", cfg.Theme.Name, "light")
	}
	if len(cfg.Widgets) != 1 || cfg.Widgets[0].Interval.Duration != 90*time.Second {
		t.Errorf("Widgets = %+v, want one tasks widget with 90s interval", cfg.Widgets)
	}
}

func TestLoadFromFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if len(cfg.Widgets) != 5 {
		t.Errorf("default widget count = %d, want 5", len(cfg.Widgets))
	}
	if cfg.Theme.Name != "default" {
		t.Errorf("Theme.Name = %q, want %q", cfg.Theme.Name, "default")
	}
}

func TestPresetAppliesWhenNoWidgetsDeclared(t *testing.T) {
	doc := `
[dashboard]
preset = "minimal"
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if len(cfg.Widgets) != 2 {
		t.Fatalf("minimal preset widget count = %d, want 2", len(cfg.Widgets))
	}
	if cfg.Widgets[0].Name != "tasks" || cfg.Widgets[1].Name != "calendar" {
		t.Errorf("minimal preset = %v, want [tasks calendar]", cfg.WidgetNames())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DESKPULSE_THEME", "highcontrast")
	t.Setenv("DESKPULSE_DATA_DIR", "/mnt/share")

	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if cfg.Theme.Name != "highcontrast" {
		t.Errorf("Theme.Name = %q, want env override %q", cfg.Theme.Name, "highcontrast")
	}
	if cfg.General.DataDir != "/mnt/share" {
		t.Errorf("DataDir = %q, want env override %q", cfg.General.DataDir, "/mnt/share")
	}
}

func TestDurationParsing(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"2m", 2 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"", 0, false},
		{"fast", 0, true},
		{"-5s", 0, true},
	}
	for _, tt := range tests {
		var d Duration
		err := d.UnmarshalText([]byte(tt.input))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && d.Duration != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.input, d.Duration, tt.want)
		}
	}
}

func TestValidateRejectsDuplicateWidgets(t *testing.T) {
	doc := `
[[widgets]]
name = "tasks"
source = "a.json"

[[widgets]]
name = "tasks"
source = "b.json"
`
	if _, err := LoadFromReader(strings.NewReader(doc)); err == nil {
		t.Errorf("LoadFromReader() with duplicate widget names: error = nil, want error")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	doc := `
[general]
log_level = "chatty"
`
	if _, err := LoadFromReader(strings.NewReader(doc)); err == nil {
		t.Errorf("LoadFromReader() with unknown log level: error = nil, want error")
	}
}

func TestValidateClampsColumns(t *testing.T) {
	doc := `
[dashboard]
columns = 9
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if cfg.Dashboard.Columns != 4 {
		t.Errorf("Columns = %d, want clamped 4", cfg.Dashboard.Columns)
	}
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"tasks.json", filepath.Join("/srv/data", "tasks.json")},
		{"/abs/tasks.json", "/abs/tasks.json"},
		{"https://intranet.local/api/tasks.json", "https://intranet.local/api/tasks.json"},
		{"", ""},
	}
	for _, tt := range tests {
		w := WidgetConfig{Source: tt.source}
		if got := w.ResolveSource("/srv/data"); got != tt.want {
			t.Errorf("ResolveSource(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}
