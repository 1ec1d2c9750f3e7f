package datasource

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/castlebay/deskpulse/pkg/bus"
)

// watchTarget ties a watched file back to the widget it feeds.
type watchTarget struct {
	widget   string
	location string
}

// watchDebounce is how long after the last write event a file must
// stay quiet before a refresh is requested. Editors and sync tools
// write in bursts.
const watchDebounce = 200 * time.Millisecond

// Watcher turns file writes under the data directory into
// widget:refresh-requested events, so edits to a local source file
// show up without waiting for the widget's next timer tick.
type Watcher struct {
	bus      *bus.Bus
	client   *Client
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	widgets map[string]watchTarget // absolute file path -> target
	timers  map[string]*time.Timer
	closed  bool

	done chan struct{}
}

// NewWatcher starts a filesystem watcher. Construction failure is
// reported so the caller can log and run without one; polling still
// refreshes every widget.
func NewWatcher(b *bus.Bus, client *Client, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		bus:      b,
		client:   client,
		logger:   logger,
		watcher:  fsw,
		debounce: watchDebounce,
		widgets:  make(map[string]watchTarget),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch registers a widget's source file. Directories are watched
// rather than files so replace-by-rename, the usual atomic-write
// pattern, keeps working. Non-file sources are ignored.
func (w *Watcher) Watch(widgetName, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.widgets[abs] = watchTarget{widget: widgetName, location: path}
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	w.logger.Debug("datasource: watching source file", "widget", widgetName, "path", abs)
	return nil
}

// Close stops the watcher and cancels pending debounce timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.fileChanged(ev.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("datasource: watch error", "error", err)
		}
	}
}

// fileChanged (re)arms the per-path debounce timer for a watched
// source file. Events for unrelated files in the same directory fall
// through.
func (w *Watcher) fileChanged(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	target, watched := w.widgets[abs]
	if !watched || w.closed {
		return
	}
	if t, ok := w.timers[abs]; ok {
		t.Stop()
	}
	w.timers[abs] = time.AfterFunc(w.debounce, func() {
		w.fire(abs, target)
	})
}

func (w *Watcher) fire(abs string, target watchTarget) {
	w.mu.Lock()
	delete(w.timers, abs)
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	if w.client != nil {
		// The cache is keyed by the configured location, not the
		// resolved absolute path.
		w.client.Invalidate(target.location)
	}
	w.logger.Debug("datasource: source file changed", "widget", target.widget, "path", abs)
	if w.bus != nil {
		w.bus.Publish(bus.EventWidgetRefreshRequested, target.widget)
	}
}
