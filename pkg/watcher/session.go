package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the fallback polling cadence used when the
// platform watcher cannot deliver events for the file.
const DefaultPollInterval = 2 * time.Second

// SessionWatcher watches a chat-session export file and invokes a callback,
// debounced, whenever the file changes. Editors and exporters often replace
// the file (write to temp, rename over), so the watch is placed on the
// parent directory and events are filtered by name.
type SessionWatcher struct {
	path      string
	debouncer *Debouncer
	onChange  func()

	fsw  *fsnotify.Watcher
	stop chan struct{}
}

// NewSessionWatcher creates a watcher for path. The callback runs on the
// watcher's goroutine after each debounced burst of changes.
func NewSessionWatcher(path string, debounce time.Duration, onChange func()) (*SessionWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &SessionWatcher{
		path:      path,
		debouncer: NewDebouncer(debounce),
		onChange:  onChange,
		fsw:       fsw,
		stop:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *SessionWatcher) run() {
	// Polling fallback: rename-over replacement can drop events on some
	// platforms, so the modtime is also checked on a slow tick.
	ticker := time.NewTicker(DefaultPollInterval)
	defer ticker.Stop()
	var lastMod time.Time
	if info, err := os.Stat(w.path); err == nil {
		lastMod = info.ModTime()
	}

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debouncer.Trigger(w.onChange)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the poll tick still covers us.
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			if info.ModTime().After(lastMod) {
				lastMod = info.ModTime()
				w.debouncer.Trigger(w.onChange)
			}
		}
	}
}

// Close stops the watcher and cancels any pending callback.
func (w *SessionWatcher) Close() error {
	close(w.stop)
	w.debouncer.Cancel()
	return w.fsw.Close()
}
