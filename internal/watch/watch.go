// Package watch keeps the shared catalog honest about the upload
// directory: when a stored file disappears from disk behind the store's
// back, its entry is pruned so the catalog never advertises a dead
// download.
package watch

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"lanshare/internal/store"
)

// Watcher observes one upload directory. Pruning goes through the store's
// normal remove path, so the embedding application sees the update
// notification and persists the change.
type Watcher struct {
	st  *store.Store
	dir string
	fw  *fsnotify.Watcher
}

// New starts watching dir. Call Close to release the watcher.
func New(st *store.Store, dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{st: st, dir: filepath.Clean(dir), fw: fw}
	go w.loop()
	return w, nil
}

// Close stops the watch loop.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.prune()
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("service=lanshare msg=%q err=%v", "watch_error", err)
		}
	}
}

// prune removes catalog entries under the watched directory whose backing
// file no longer exists. Entries pointing outside the upload directory
// are left alone: those are local shares the user manages explicitly.
func (w *Watcher) prune() {
	for _, e := range w.st.Files() {
		if e.Kind != store.KindFile || !w.underDir(e.Path) {
			continue
		}
		if _, err := os.Stat(e.Path); os.IsNotExist(err) {
			if w.st.RemoveFile(e.ID) {
				log.Printf("service=lanshare msg=%q name=%s", "pruned_missing_upload", e.Name)
			}
		}
	}
}

func (w *Watcher) underDir(path string) bool {
	rel, err := filepath.Rel(w.dir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
