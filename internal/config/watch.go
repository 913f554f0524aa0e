package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events one editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// FileWatcher reports changes to a fixed set of config files. It watches
// their parent directories so files that are replaced by rename, or created
// after startup, are still seen.
type FileWatcher struct {
	paths    map[string]bool
	dirs     []string
	debounce time.Duration
	onChange func(string) // called with path that changed
	logger   *log.Logger

	watcher *fsnotify.Watcher
	once    sync.Once
}

// NewFileWatcher creates a watcher for paths, creating missing parent
// directories so later files are still seen.
func NewFileWatcher(paths []string, debounce time.Duration, onChange func(string)) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	fw := &FileWatcher{
		paths:    make(map[string]bool, len(paths)),
		debounce: debounce,
		onChange: onChange,
		logger:   log.Default(),
		watcher:  w,
	}
	seenDir := map[string]bool{}
	for _, p := range paths {
		clean := filepath.Clean(p)
		fw.paths[clean] = true
		dir := filepath.Dir(clean)
		if seenDir[dir] {
			continue
		}
		seenDir[dir] = true
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("create config dir %s: %w", dir, err)
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		fw.dirs = append(fw.dirs, dir)
	}
	return fw, nil
}

// SetLogger routes watcher logs to l.
func (w *FileWatcher) SetLogger(l *log.Logger) { w.logger = l }

// Run delivers debounced change callbacks until ctx is done.
func (w *FileWatcher) Run(ctx context.Context) error {
	defer w.Close()

	pending := map[string]bool{}
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(ev.Name)
			if !w.paths[path] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			pending[path] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			for p := range pending {
				if w.onChange != nil {
					w.onChange(p)
				}
				delete(pending, p)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("[config] watch error: %v", err)
		}
	}
}

// Close terminates the watcher.
func (w *FileWatcher) Close() error {
	var err error
	w.once.Do(func() { err = w.watcher.Close() })
	return err
}

// Reloader re-resolves a profile when its files change. A config that fails
// to load or validate is logged and the previous Params stay in effect.
type Reloader struct {
	Loader    *Loader
	Profile   string
	Overrides Overrides
	Apply     func(Params)
	Logger    *log.Logger
}

// OnChange is a FileWatcher callback.
func (r *Reloader) OnChange(path string) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	r.Loader.Invalidate()
	_, p, err := r.Loader.Resolve(r.Profile, r.Overrides)
	if err != nil {
		logger.Printf("[config] reload after %s rejected: %v", filepath.Base(path), err)
		return
	}
	r.Apply(p)
	logger.Printf("[config] reloaded profile %q (version %s) after %s changed", r.Profile, p.Version, filepath.Base(path))
}
