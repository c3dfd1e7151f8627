package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/book-of-knowledge/constants"
)

type WatchConfig struct {
	Roots       []string // directories to watch (recursive)
	AllowedExts map[string]struct{}
	InitialScan bool          // if true, walk roots and emit existing files
	Debounce    time.Duration // coalesce rapid create/write bursts
	SkipHidden  bool
	Logger      *slog.Logger
}

// StartWatcher watches cfg.Roots recursively and emits the paths of new or
// changed documents. Both channels close when ctx is cancelled.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		log.Error("watcher start failed: no roots provided")
		return nil, nil, errors.New("no roots provided")
	}
	if cfg.AllowedExts == nil {
		cfg.AllowedExts = constants.AllowedExtensions
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	var initial []string
	addDir := func(root string, collect bool) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if cfg.SkipHidden && path != root && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if collect && allowedIn(filepath.Ext(path), cfg.AllowedExts) {
				initial = append(initial, path)
			}
			return nil
		})
	}
	for _, r := range cfg.Roots {
		if err := addDir(r, cfg.InitialScan); err != nil {
			log.Error("failed to add root directory", "root", r, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				log.Warn("watcher close failed", "error", err)
			}
		}()

		emit := func(p string) bool {
			select {
			case evCh <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		pending := map[string]struct{}{}
		var timer *time.Timer
		var fire <-chan time.Time
		flush := func() bool {
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			for _, p := range paths {
				if !emit(p) {
					return false
				}
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Has(fsnotify.Create) {
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
						// files may land before the new directory is watched
						initial = initial[:0]
						if err := addDir(e.Name, true); err != nil {
							log.Warn("failed to add new directory to watcher", "path", e.Name, "error", err)
						}
						for _, p := range initial {
							pending[p] = struct{}{}
						}
					}
				}
				if (e.Has(fsnotify.Create) || e.Has(fsnotify.Write)) && allowedIn(filepath.Ext(e.Name), cfg.AllowedExts) {
					if cfg.SkipHidden && IsHidden(e.Name) {
						continue
					}
					pending[e.Name] = struct{}{}
				}
				if len(pending) == 0 {
					continue
				}
				if cfg.Debounce <= 0 {
					if !flush() {
						return
					}
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(cfg.Debounce)
				fire = timer.C
			case <-fire:
				fire = nil
				if !flush() {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
