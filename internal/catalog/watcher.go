package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after a watcher-driven catalog change.
// kind is one of "indexed", "deleted", "reconciled".
type EventCallback func(kind string, path string)

const reconcileDelay = 200 * time.Millisecond

// Watch re-indexes card files as they change under dir until ctx is
// cancelled. Removals and renames schedule a debounced full Sync so stale
// rows disappear and renamed cards are picked up.
func Watch(ctx context.Context, db *DB, dir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, dir); err != nil {
		return err
	}
	logger.Info("catalog watcher: started", slog.String("dir", dir))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	notify := func(kind, path string) {
		if cb != nil {
			cb(kind, path)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("catalog watcher: stopped")
			return nil

		case <-reconcileCh:
			if err := Sync(db, dir, logger); err != nil {
				logger.Warn("catalog watcher: reconcile failed", slog.String("error", err.Error()))
			} else {
				notify("reconciled", "")
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("catalog watcher: add dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					scheduleReconcile()
					continue
				}
			}

			if !IsCardFile(ev.Name) {
				continue
			}
			rel, relErr := filepath.Rel(dir, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := os.ReadFile(ev.Name)
				if readErr != nil {
					logger.Warn("catalog watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				if idxErr := indexCard(db, rel, data); idxErr != nil {
					logger.Warn("catalog watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}
				logger.Debug("catalog watcher: indexed", slog.String("path", rel))
				notify("indexed", rel)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if delErr := db.Delete(rel); delErr != nil {
					logger.Warn("catalog watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					notify("deleted", rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("catalog watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
