// Package watch reports changes to a single file, coalescing bursts of
// filesystem events.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// DefaultDebounce is used when no delay is configured.
const DefaultDebounce = 150 * time.Millisecond

// Change is sent once a burst of events on the file has settled.
type Change struct {
	Path string
	// Removed is set when the file no longer exists at Path.
	Removed bool
	Err     error
}

// Watcher follows one file. Its parent directory is watched so editors that
// replace the file through a rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	fs       *fsnotify.Watcher
	changes  chan Change
	log      logr.Logger
}

// New starts watching path. Call Run to deliver changes.
func New(path string, debounce time.Duration, lgr logr.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		fs:       fsw,
		changes:  make(chan Change, 1),
		log:      lgr.WithName("watch"),
	}, nil
}

// Changes delivers settled changes. It is closed when Run returns.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run forwards changes until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	defer w.fs.Close()

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		removed bool
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			w.log.V(1).Info("event", "op", ev.Op.String())
			switch {
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
				removed = false
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				removed = true
			default:
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.send(ctx, Change{Path: w.path, Removed: removed})

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error(err, "watcher error")
			w.send(ctx, Change{Path: w.path, Err: err})
		}
	}
}

func (w *Watcher) send(ctx context.Context, c Change) {
	select {
	case w.changes <- c:
	case <-ctx.Done():
	}
}
