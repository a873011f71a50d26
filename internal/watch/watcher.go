// Package watch reports edits made to the JSON store file by anything other
// than the store itself.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/leadsync/internal/checksum"
)

// StoreFile is the part of the JSON store the watcher needs.
type StoreFile interface {
	Path() string
	LastWrite() string
}

// ChangeFunc is called with source "external" after an outside edit.
type ChangeFunc func(source string)

const debounce = 100 * time.Millisecond

// Watch observes the store file's directory until ctx is cancelled.
// Events are debounced; a change is reported only when the file content
// differs from both the last observed content and the store's own last
// write.
func Watch(ctx context.Context, store StoreFile, logger *slog.Logger, onChange ChangeFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	path := store.Path()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("path", path))

	last, _ := checksum.File(path)

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				schedule()
			}

		case <-timerCh:
			sum, _ := checksum.File(path)
			if sum == last {
				continue
			}
			last = sum
			if sum == store.LastWrite() {
				logger.Debug("watcher: own write", slog.String("path", path))
				continue
			}
			logger.Info("watcher: store file changed externally", slog.String("path", path))
			if onChange != nil {
				onChange("external")
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
