// Package dbwatch watches the backing database file for removal or
// replacement while the filesystem is mounted. It is purely a diagnostic:
// it logs what it observes and nothing more. The schema cache and open
// *sql.DB are never invalidated or rebuilt from here — a removed or
// replaced file still surfaces through the normal gateway error paths the
// next time a query touches it.
package dbwatch

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/domelive/vfs2db/internal/vfslog"
)

// Watcher logs fsnotify events against the directory holding the database
// file, filtered down to the file itself.
type Watcher struct {
	fsw    *fsnotify.Watcher
	path   string
	log    *vfslog.Logger
	done   chan struct{}
}

// Start begins watching the directory containing dbPath. The parent
// directory is watched rather than the file itself: a rename or unlink
// that replaces the file drops fsnotify's watch on the old inode, but a
// watch on the directory keeps seeing events for the name that matters.
func Start(dbPath string, log *vfslog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:  fsw,
		path: dbPath,
		log:  log,
		done: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	name := filepath.Base(w.path)
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				w.log.Warn("database file removed while mounted", "path", w.path)
			case event.Op&fsnotify.Rename != 0:
				w.log.Warn("database file renamed away while mounted", "path", w.path)
			case event.Op&fsnotify.Write != 0:
				w.log.Debug("database file written outside the mount", "path", w.path)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("database watch error", "err", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
