package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the first file found in the standard
// search order:
//
//  1. $DESKPULSE_CONFIG
//  2. $XDG_CONFIG_HOME/deskpulse/config.{toml,yaml,yml}
//  3. ~/.config/deskpulse/config.{toml,yaml,yml}
//  4. ./deskpulse.toml
//
// When no file exists the defaults apply. Environment overrides and
// validation run in every case.
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	return finalize(DefaultConfig())
}

// LoadFromFile reads configuration from a specific file. The format is
// chosen by extension: .yaml and .yml parse as YAML, everything else
// as TOML. A missing file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return finalize(DefaultConfig())
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	cfg.Widgets = nil
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return finalize(cfg)
}

// LoadFromReader reads TOML configuration from r.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Widgets = nil
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return finalize(cfg)
}

// finalize applies the widget preset when no widgets were declared,
// then environment overrides, then validation.
func finalize(cfg *Config) (*Config, error) {
	if len(cfg.Widgets) == 0 {
		cfg.Widgets = WidgetPreset(cfg.Dashboard.Preset)
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks environment variables and overrides config
// values. Environment wins over file settings.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DESKPULSE_THEME"); v != "" {
		cfg.Theme.Name = v
	}
	if v := os.Getenv("DESKPULSE_DATA_DIR"); v != "" {
		cfg.General.DataDir = v
	}
	if v := os.Getenv("DESKPULSE_STORE"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("DESKPULSE_LOG_LEVEL"); v != "" {
		cfg.General.LogLevel = v
	}
	if v := os.Getenv("DESKPULSE_PROBE_URL"); v != "" {
		cfg.Network.ProbeURL = v
	}
}

// configSearchPaths returns the ordered list of config file paths to
// try.
func configSearchPaths() []string {
	var paths []string
	if v := os.Getenv("DESKPULSE_CONFIG"); v != "" {
		paths = append(paths, v)
	}

	home, _ := os.UserHomeDir()
	dirs := []string{xdgConfigHome(home)}
	// If XDG_CONFIG_HOME was explicitly set, also try the default.
	if def := filepath.Join(home, ".config"); dirs[0] != def {
		dirs = append(dirs, def)
	}
	for _, dir := range dirs {
		for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
			paths = append(paths, filepath.Join(dir, "deskpulse", name))
		}
	}

	paths = append(paths, "deskpulse.toml")
	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgDataHome returns XDG_DATA_HOME or ~/.local/share as fallback.
func xdgDataHome(home string) string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "share")
}
