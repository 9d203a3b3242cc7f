// Package watcher reports changes under the assets directory so connected
// browsers can reload.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dtdash/src/internal/domain"
)

// Publisher receives debounced asset events.
type Publisher func(domain.AssetEvent)

// Config contains watcher configuration
type Config struct {
	Dir            string
	Debounce       time.Duration
	IgnorePatterns []string
}

// DefaultConfig returns the default watcher configuration for dir
func DefaultConfig(dir string) Config {
	return Config{
		Dir:      dir,
		Debounce: 200 * time.Millisecond,
		IgnorePatterns: []string{
			".*",
			"*~",
			"*.swp",
			"*.tmp",
			"4913", // vim write probe
		},
	}
}

// Watcher watches the assets directory tree with fsnotify.
type Watcher struct {
	config    Config
	logger    *slog.Logger
	publish   Publisher
	fsw       *fsnotify.Watcher
	debouncer *BatchDebouncer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// New creates a new asset watcher
func New(config Config, logger *slog.Logger, publish Publisher) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Watcher{
		config:  config,
		logger:  logger,
		publish: publish,
		ctx:     ctx,
		cancel:  cancel,
	}
	w.debouncer = NewBatchDebouncer(config.Debounce, w.emit)
	return w
}

// Start begins watching. The directory must exist.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsw != nil {
		return nil
	}

	info, err := os.Stat(w.config.Dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.config.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", w.config.Dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.fsw = fsw

	if err := w.addTree(w.config.Dir); err != nil {
		fsw.Close()
		w.fsw = nil
		return err
	}

	w.logger.Info("Watching assets", "dir", w.config.Dir, "debounce", w.config.Debounce.String())

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop stops watching and drops pending events
func (w *Watcher) Stop() error {
	w.cancel()

	w.mu.Lock()
	fsw := w.fsw
	w.mu.Unlock()

	var err error
	if fsw != nil {
		err = fsw.Close()
	}
	w.wg.Wait()
	w.debouncer.Cancel()

	w.logger.Info("Asset watcher stopped")
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Asset watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.config.Dir, ev.Name)
	if err != nil || w.isIgnored(rel) {
		return
	}

	var op domain.AssetOp
	switch {
	case ev.Has(fsnotify.Create):
		op = domain.AssetCreated
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("Could not watch new directory", "dir", ev.Name, "error", err)
			}
		}
	case ev.Has(fsnotify.Write):
		op = domain.AssetModified
	case ev.Has(fsnotify.Remove):
		op = domain.AssetRemoved
	case ev.Has(fsnotify.Rename):
		op = domain.AssetRenamed
	default:
		// Chmod only
		return
	}

	w.debouncer.Add(domain.AssetEvent{
		Path: filepath.ToSlash(rel),
		Op:   op,
		Time: time.Now().UTC(),
	})
}

func (w *Watcher) emit(events []domain.AssetEvent) {
	if w.ctx.Err() != nil {
		return
	}
	for _, ev := range events {
		w.logger.Debug("Asset changed", "path", ev.Path, "op", string(ev.Op))
		w.publish(ev)
	}
}

// addTree watches root and every non-ignored directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.config.Dir {
			if rel, err := filepath.Rel(w.config.Dir, path); err == nil && w.isIgnored(rel) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// isIgnored matches each path element against the ignore patterns.
func (w *Watcher) isIgnored(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == "" || part == "." {
			continue
		}
		for _, pattern := range w.config.IgnorePatterns {
			if matched, _ := filepath.Match(pattern, part); matched {
				return true
			}
		}
	}
	return false
}
