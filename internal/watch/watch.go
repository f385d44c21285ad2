// Package watch notices when files open in tabs change on disk.
package watch

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/marcus/codeshell/internal/tabs"
)

// Event reports the current on-disk state of a watched file.
type Event struct {
	Path        string
	Fingerprint uint64 // xxhash of the new content; zero when Removed
	Removed     bool
}

// Watcher watches the parent directories of a set of files so atomic
// rename-on-save is seen, and emits one Event per change to a watched file.
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger *slog.Logger
	events chan Event
	done   chan struct{}

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]int
}

// New starts a watcher with no files.
func New(logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Watcher{
		fsw:    fsw,
		logger: logger,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		files:  make(map[string]bool),
		dirs:   make(map[string]int),
	}
	go w.run()
	return w, nil
}

// Events delivers changes. It is never closed; select on Done as well.
func (w *Watcher) Events() <-chan Event { return w.events }

// Done is closed by Close.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Sync makes paths the exact watched set.
func (w *Watcher) Sync(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		want[p] = true
	}
	for p := range w.files {
		if !want[p] {
			w.unwatchLocked(p)
		}
	}
	for p := range want {
		if !w.files[p] {
			w.watchLocked(p)
		}
	}
}

// Watched returns the number of watched files.
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.files)
}

func (w *Watcher) watchLocked(path string) {
	dir := filepath.Dir(path)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Debug("watch: add failed", "dir", dir, "err", err)
			return
		}
	}
	w.dirs[dir]++
	w.files[path] = true
}

func (w *Watcher) unwatchLocked(path string) {
	delete(w.files, path)
	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fsw.Remove(dir)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watch: error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	w.mu.Lock()
	watched := w.files[path]
	w.mu.Unlock()
	if !watched || ev.Op == fsnotify.Chmod {
		return
	}

	out := Event{Path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		out.Removed = true
	case err != nil:
		w.logger.Debug("watch: read failed", "path", path, "err", err)
		return
	default:
		out.Fingerprint = tabs.Fingerprint(data)
	}

	select {
	case w.events <- out:
	case <-w.done:
	}
}
