package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

const debounceWindow = 300 * time.Millisecond

// startWatcher watches the content directory and triggers debounced rebuilds.
// The returned function stops the watcher.
func (s *Server) startWatcher(ctx context.Context) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := addDirsRecursive(watcher, s.cfg.Content.Dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	rebuildReq := make(chan struct{}, 1)
	trigger := newDebouncer(rebuildReq)

	go s.rebuildWorker(ctx, rebuildReq)
	go s.watchLoop(ctx, watcher, trigger)

	slog.Info("watching content directory", logfields.Path(s.cfg.Content.Dir))
	return func() { _ = watcher.Close() }, nil
}

// newDebouncer coalesces bursts of filesystem events into one rebuild request.
func newDebouncer(rebuildReq chan<- struct{}) func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
}

func (s *Server) rebuildWorker(ctx context.Context, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-rebuildReq:
			if !ok {
				return
			}
			slog.Info("change detected, rebuilding site")
			if err := s.rebuild(ctx, "watch"); err != nil {
				slog.Warn("rebuild failed", logfields.Error(err))
			}
		}
	}
}

func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, trigger func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if shouldIgnoreEvent(ev.Name) {
				continue
			}
			// New directories need their own watch before events fire inside.
			if ev.Op.Has(fsnotify.Create) {
				if err := addDirsRecursive(watcher, ev.Name); err != nil {
					slog.Debug("watch new path failed",
						logfields.Path(ev.Name), logfields.Error(err))
				}
			}
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

// addDirsRecursive registers root and every subdirectory with the watcher.
// Hidden directories are skipped. A non-directory root is a no-op.
func addDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && p != root {
			return filepath.SkipDir
		}
		if werr := watcher.Add(p); werr != nil {
			return fmt.Errorf("watch %s: %w", p, werr)
		}
		return nil
	})
}

// shouldIgnoreEvent filters editor temp files and hidden paths.
func shouldIgnoreEvent(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "#") {
		return true
	}
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"):
		return true
	}
	return false
}
