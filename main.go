// deskpulse is a terminal dashboard for intranet status feeds.
//
// It aggregates announcement, quick-link, task, calendar and ticket
// feeds from JSON files or HTTP endpoints and presents them in an
// auto-refreshing terminal grid.
//
// Usage:
//
//	deskpulse [flags]
//
// Flags:
//
//	-config string    Path to configuration file (default: standard search order)
//	-once             Render the dashboard once as plain text and exit
//	-theme string     Theme override for this run (auto|default|dark|light|highcontrast)
//	-list-themes      Print the available theme names and exit
//	-log-file string  Append logs to this file in addition to stderr
//	-verbose          Enable verbose logging
//	-version          Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/castlebay/deskpulse/pkg/config"
	"github.com/castlebay/deskpulse/pkg/dashboard"
	"github.com/castlebay/deskpulse/pkg/theme"
	"github.com/castlebay/deskpulse/pkg/tui"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		runOnce    = flag.Bool("once", false, "Render the dashboard once as plain text and exit")
		themeName  = flag.String("theme", "", "Theme override for this run")
		listThemes = flag.Bool("list-themes", false, "Print the available theme names and exit")
		logFile    = flag.String("log-file", "", "Append logs to this file in addition to stderr")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		showVer    = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("deskpulse %s (%s) built %s\n", version, commit, date)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg, *logFile, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if *themeName != "" {
		cfg.Theme.Name = *themeName
	}
	theme.LoadDir(cfg.Theme.Dir, logger.With("component", "theme"))
	if *listThemes {
		fmt.Println(strings.Join(theme.Names(), "\n"))
		return
	}
	cfg.Theme.Name = tui.ResolveTheme(cfg.Theme.Name)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger, *runOnce); err != nil {
		logger.Error("deskpulse failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, once bool) error {
	d, err := dashboard.New(cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Init(ctx); err != nil {
		return err
	}

	if once || !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(tui.RenderOnce(d, cfg.Dashboard.Title))
		return nil
	}

	m := tui.New(d, cfg)
	defer m.Close()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal session failed: %w", err)
	}
	return nil
}

// loadConfig resolves configuration: an explicit -config path wins,
// otherwise the standard search order applies.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// newLogger builds the process logger: stderr always, plus an append
// log file when one is configured. The returned func closes the file.
func newLogger(cfg *config.Config, override string, verbose bool) (*slog.Logger, func(), error) {
	level := slogLevel(cfg.General.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}

	path := cfg.General.LogFile
	if override != "" {
		path = override
	}

	out := io.Writer(os.Stderr)
	closeLog := func() {}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
		closeLog = func() { f.Close() }
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closeLog, nil
}

func slogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
