// Package watch regenerates a project when its catalogs change.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"igloo/pkg/errors"
	"igloo/pkg/logger"
)

// DefaultDelay coalesces the burst of events editors emit for one save.
const DefaultDelay = 200 * time.Millisecond

// RebuildFunc regenerates the project. Its error is logged and watching
// continues.
type RebuildFunc func(ctx context.Context) error

// Watcher calls a RebuildFunc after TOML files in the watched directories
// are written, created or renamed.
type Watcher struct {
	fs      *fsnotify.Watcher
	rebuild RebuildFunc
	delay   time.Duration
}

// New watches dirs. Directories that do not exist are skipped with a
// warning; at least one must exist.
func New(dirs []string, delay time.Duration, rebuild RebuildFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}

	watched := 0
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			logger.Logger.Warnw("not watching directory", "path", dir, "error", err)
			continue
		}
		logger.Logger.Debugw("watching directory", "path", dir)
		watched++
	}
	if watched == 0 {
		fsw.Close()
		return nil, errors.Wrap(errors.ErrConfigNotFound, "no catalog directory to watch")
	}

	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Watcher{fs: fsw, rebuild: rebuild, delay: delay}, nil
}

// Run blocks until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if relevant(event) {
				logger.Logger.Debugw("catalog changed", "path", event.Name, "op", event.Op.String())
				pending = time.After(w.delay)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Logger.Warnw("watch error", "error", err)

		case <-pending:
			pending = nil
			if err := w.rebuild(ctx); err != nil {
				logger.Logger.Errorw("regeneration failed", "error", err)
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func relevant(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != ".toml" {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
