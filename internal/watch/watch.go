// pattern: Imperative Shell

package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"codeprojects/internal/logging"
	"codeprojects/internal/project"
)

const (
	DefaultDebounce     = 300 * time.Millisecond
	DefaultPollInterval = 5 * time.Second
)

// Reloader is the part of the runner the watcher drives.
type Reloader interface {
	Sources() []string
	LoadAll() []project.Record
}

type Options struct {
	Debounce time.Duration
	// PollInterval controls how often directories that did not exist at
	// start are retried.
	PollInterval time.Duration
}

// Watcher reloads projects when any source file changes. Bursts of events
// collapse into one reload after the debounce delay.
type Watcher struct {
	reloader Reloader
	logger   *logging.ScopedLogger
	debounce time.Duration
	poll     time.Duration
	fs       *fsnotify.Watcher

	mu      sync.Mutex
	sources map[string]bool
	watched map[string]bool
	timer   *time.Timer
	closed  bool
}

func New(r Reloader, logger *logging.ScopedLogger, opts Options) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Watcher{
		reloader: r,
		logger:   logger,
		debounce: opts.Debounce,
		poll:     opts.PollInterval,
		fs:       fs,
		sources:  make(map[string]bool),
		watched:  make(map[string]bool),
	}, nil
}

// Start watches the parent directory of every source file until ctx is
// cancelled. Source files may not exist yet.
func (w *Watcher) Start(ctx context.Context) error {
	w.refreshSources()

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = w.Close()
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.forget(event.Name)
			}
			if !w.isSource(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("source changed", "path", event.Name, "op", event.Op.String())
			w.schedule()

		case <-ticker.C:
			w.refreshSources()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Close stops the watcher and any pending reload. It is safe to call twice.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	return w.fs.Close()
}

// Watched returns the directories currently watched.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	dirs := make([]string, 0, len(w.watched))
	for dir := range w.watched {
		dirs = append(dirs, dir)
	}
	return dirs
}

// refreshSources re-reads the source list (the detected editors may have
// changed on reload) and adds any parent directory that now exists.
func (w *Watcher) refreshSources() {
	paths := w.reloader.Sources()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	// fsnotify drops the watch of a deleted directory on its own.
	active := make(map[string]bool)
	for _, dir := range w.fs.WatchList() {
		active[filepath.Clean(dir)] = true
	}
	for dir := range w.watched {
		if !active[dir] {
			delete(w.watched, dir)
		}
	}

	w.sources = make(map[string]bool, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		w.sources[p] = true

		dir := filepath.Dir(p)
		if w.watched[dir] {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			w.logger.Warn("failed to watch directory", "dir", dir, "error", err)
			continue
		}
		w.watched[dir] = true
		w.logger.Debug("watching directory", "dir", dir)
	}
}

// forget stops tracking dir when it was a watched directory, so the next
// poll adds it again once it is recreated.
func (w *Watcher) forget(dir string) {
	dir = filepath.Clean(dir)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[dir] {
		delete(w.watched, dir)
		w.logger.Debug("watched directory removed", "dir", dir)
	}
}

func (w *Watcher) isSource(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sources[filepath.Clean(name)]
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}
	records := w.reloader.LoadAll()
	w.logger.Info("projects reloaded after change", "count", len(records))
}
