// Package configwatcher reports changes to a settings file on disk.
package configwatcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/GoCodeAlone/plugkit"
)

// DefaultDebounce is how long the watcher waits after the last change
// before calling OnChange.
const DefaultDebounce = 250 * time.Millisecond

// ErrNoPath is returned by New when no file is given.
var ErrNoPath = errors.New("settings path is empty")

// Config holds configuration for the watcher.
type Config struct {
	// Path is the settings file to watch.
	Path string

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// OnChange is called with Path once a burst of changes settles.
	OnChange func(path string)

	Logger plugkit.StructuredLogger
}

// Watcher monitors one file. Editors often replace files instead of writing
// them in place, so the parent directory is watched and events are filtered
// by name.
type Watcher struct {
	mu      sync.Mutex
	config  Config
	fs      *fsnotify.Watcher
	stopCh  chan struct{}
	running bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// New creates a stopped watcher.
func New(config Config) (*Watcher, error) {
	if config.Path == "" {
		return nil, ErrNoPath
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", config.Path, err)
	}
	config.Path = abs
	return &Watcher{config: config}, nil
}

// Start begins watching. The watcher stops when ctx ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(w.config.Path)); err != nil {
		_ = fs.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.config.Path), err)
	}

	w.fs = fs
	w.stopCh = make(chan struct{})
	w.running = true

	go w.processEvents(ctx, fs.Events, fs.Errors, w.stopCh)
	w.debug("Started watching settings file", "path", w.config.Path)
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	_ = w.fs.Close()
	w.fs = nil

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()
}

// Running reports whether the watcher is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// The channels are passed in so Stop can nil out the watcher.
func (w *Watcher) processEvents(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, stop <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-stop:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-errs:
			if !ok {
				return
			}
			if w.config.Logger != nil {
				w.config.Logger.Error("Settings watcher error", "path", w.config.Path, "error", err)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.config.Path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	w.debug("Settings file changed", "path", event.Name, "op", event.Op.String())
	w.triggerDebounced()
}

func (w *Watcher) triggerDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.config.Debounce, func() {
		if w.Running() && w.config.OnChange != nil {
			w.config.OnChange(w.config.Path)
		}
	})
}

func (w *Watcher) debug(msg string, args ...any) {
	if w.config.Logger != nil {
		w.config.Logger.Debug(msg, args...)
	}
}
