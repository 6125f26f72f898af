// Package configwatch reloads the daemon's logging level and format from
// its config file while the daemon is running, without requiring a
// restart. Shaped after the teacher's settings_watcher.go (mutex-guarded
// cache, versioned updates) but driven by filesystem events instead of
// polling a store.
package configwatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/semadraw/semadraw/internal/logger"
	"github.com/semadraw/semadraw/pkg/config"
)

// Watcher reloads config.LoggingConfig from a config file on write
// events and applies changes to the package-level logger.
type Watcher struct {
	mu      sync.RWMutex
	path    string
	fsw     *fsnotify.Watcher
	version int
	current config.LoggingConfig
	stopCh  chan struct{}
	stopped chan struct{}
}

// New creates a Watcher for the config file at path. Start watches path's
// parent directory, which must already exist; Start fails otherwise.
func New(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		path:    path,
		fsw:     fsw,
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}, nil
}

// LoadInitial reads the current config file once, caching its logging
// section without touching the live logger state.
func (w *Watcher) LoadInitial() error {
	cfg, err := config.Load(w.path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.current = cfg.Logging
	w.version++
	w.mu.Unlock()
	return nil
}

// Start begins watching the config file's directory for writes,
// reloading and applying the logging section on each change. Most
// editors replace a file on save rather than writing in place, so the
// parent directory is watched instead of the file itself.
func (w *Watcher) Start(ctx context.Context) error {
	dir := parentDir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch config directory %s: %w", dir, err)
	}

	go func() {
		defer close(w.stopped)
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if !matchesPath(ev, w.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				w.reload()
			case <-w.fsw.Errors:
				// fsnotify errors are not fatal to the watch loop; the
				// next successful event still gets applied.
			}
		}
	}()
	return nil
}

// Stop halts the watch loop and releases the underlying fsnotify
// watcher. Safe to call once.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.stopped
	w.fsw.Close()
}

// Current returns the most recently applied logging configuration.
func (w *Watcher) Current() config.LoggingConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Version returns the number of times the logging configuration has
// changed since the watcher started, including the initial load.
func (w *Watcher) Version() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

func (w *Watcher) reload() {
	cfg, err := config.Load(w.path)
	if err != nil {
		logger.Error("configwatch: reload failed", logger.Err(err))
		return
	}

	w.mu.Lock()
	changed := cfg.Logging != w.current
	if changed {
		w.current = cfg.Logging
		w.version++
	}
	w.mu.Unlock()

	if !changed {
		return
	}

	logger.SetLevel(cfg.Logging.Level)
	logger.SetFormat(cfg.Logging.Format)
	logger.Info("configwatch: applied reloaded logging configuration")
}

func matchesPath(ev fsnotify.Event, path string) bool {
	return ev.Name == path
}

func parentDir(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '/' {
		i--
	}
	if i <= 0 {
		return "."
	}
	return path[:i]
}
