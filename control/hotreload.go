// control/hotreload.go
// Author: momentics <momentics@gmail.com>
//
// Config file watcher. Rewrites of the watched JSON file are merged into the
// store, which dispatches its reload listeners.

package control

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-loads a ConfigStore whenever its backing file changes.
type Watcher struct {
	store   *ConfigStore
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher starts watching path and merging it into store on change. The
// file is loaded once up front so the store starts populated.
func NewWatcher(store *ConfigStore, path string) (*Watcher, error) {
	if err := store.LoadFile(path); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("control: watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files on save and
	// the inode-level watch would silently die.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("control: watch %s: %w", path, err)
	}
	w := &Watcher{store: store, path: path, watcher: fw, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := w.store.LoadFile(w.path); err != nil {
				log.Printf("[control] reload %s: %v", w.path, err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[control] watcher: %v", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
