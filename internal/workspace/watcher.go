package workspace

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Reloader is the part of the workspace the watcher drives.
type Reloader interface {
	Documents() []string
	Reload(path string) error
}

// Watcher reloads workspace documents when their files change on disk.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	target    Reloader
	debounce  time.Duration
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// WatcherConfig holds watcher options.
type WatcherConfig struct {
	Debounce time.Duration
}

// DefaultWatcherConfig returns the defaults used by the CLI.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{Debounce: 150 * time.Millisecond}
}

func NewWatcher(target Reloader, cfg WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating fsnotify watcher: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultWatcherConfig().Debounce
	}
	return &Watcher{
		fsWatcher: fsw,
		target:    target,
		debounce:  cfg.Debounce,
		done:      make(chan struct{}),
	}, nil
}

// Start watches the directories of every document currently open. Editors
// often replace files instead of writing them, so directories are watched
// rather than the files themselves.
func (w *Watcher) Start(ctx context.Context) error {
	dirs := make(map[string]struct{})
	for _, id := range w.target.Documents() {
		dirs[filepath.Dir(id)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return errors.Errorf("watching directory %s: %w", dir, err)
		}
	}
	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	log := zerolog.Ctx(ctx)

	var timer *time.Timer
	pending := make(map[string]struct{})
	fire := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}

	for {
		select {
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			path, relevant := w.relevant(ev)
			if !relevant {
				continue
			}
			pending[path] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case <-fire():
			timer = nil
			for path := range pending {
				if err := w.target.Reload(path); err != nil {
					log.Warn().Err(err).Str("path", path).Msg("reload failed")
				}
			}
			clear(pending)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watch error")

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) (string, bool) {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return "", false
	}
	path := filepath.Clean(ev.Name)
	for _, id := range w.target.Documents() {
		if id == path {
			return path, true
		}
	}
	return "", false
}
