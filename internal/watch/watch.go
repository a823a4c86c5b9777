// Package watch follows the selected file on disk so the dashboard can
// re-select it when it changes or disappears.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/yildizm/histodash/internal/logger"
)

// EventKind describes what happened to the watched file
type EventKind int

const (
	// Modified means the file was written or re-created
	Modified EventKind = iota
	// Removed means the file was deleted or renamed away
	Removed
)

// String returns the event kind name
func (k EventKind) String() string {
	if k == Removed {
		return "removed"
	}
	return "modified"
}

// Event is a change to the watched file
type Event struct {
	Kind EventKind
	Path string
}

// eventBuffer bounds queued events; extra events are dropped
const eventBuffer = 16

// Watcher watches at most one file. It watches the parent directory so that
// editors which replace files atomically are still seen.
type Watcher struct {
	fs     *fsnotify.Watcher
	log    *logger.Logger
	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	target string
	dir    string
	closed bool
}

// New starts a watcher with nothing selected
func New(log *logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	w := &Watcher{
		fs:     fsw,
		log:    log,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Events delivers changes to the watched file. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Watch replaces the watched file. An empty path stops watching.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}

	if w.dir != "" {
		if err := w.fs.Remove(w.dir); err != nil {
			w.log.Debug("failed to unwatch %s: %v", w.dir, err)
		}
		w.dir, w.target = "", ""
	}
	if path == "" {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("failed to watch file: %w", err)
	}

	w.dir, w.target = dir, abs
	w.log.Debug("watching %s", abs)
	return nil
}

// Target returns the absolute path being watched, or ""
func (w *Watcher) Target() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target
}

// Close stops the watcher and closes the Events channel
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	close(w.events)
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	w.mu.Lock()
	target := w.target
	w.mu.Unlock()

	if target == "" || filepath.Clean(ev.Name) != target {
		return
	}

	var out Event
	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		out = Event{Kind: Removed, Path: target}
	case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
		out = Event{Kind: Modified, Path: target}
	default:
		return
	}

	select {
	case w.events <- out:
	case <-w.done:
	default:
		w.log.Debug("dropping %s event for %s", out.Kind, target)
	}
}
