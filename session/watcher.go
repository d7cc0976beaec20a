package session

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Watcher observes a FileStore directory and reports when the persisted
// AuthRecord changes. A login, logout, or token refresh performed by a
// sibling process shows up here as a change notification.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	log       zerolog.Logger
}

// NewWatcher starts watching dir and invokes onChange for every mutation of
// the auth data file. onChange runs on the watcher goroutine; callers wanting
// the new state should re-Read the store.
func NewWatcher(dir string, logger zerolog.Logger, onChange func()) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("[NewWatcher] onChange callback is required")
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "[NewWatcher] fsnotify.NewWatcher")
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, errors.Wrap(err, "[NewWatcher] watch dir")
	}

	w := &Watcher{fsWatcher: fsWatcher, log: logger}
	go w.loop(onChange)
	return w, nil
}

func (w *Watcher) loop(onChange func()) {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != authDataFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug().Str("op", event.Op.String()).Msg("session auth data changed")
			onChange()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Err(err).Msg("session watcher error")
		}
	}
}

// Close stops the watcher; a callback already in flight may still complete.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
