package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"extractforge/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Updater receives a freshly parsed ConstraintConfig after project.yaml changes on disk. It is
// expected to apply the update via Engine.UpdateConfig only between runs — the watcher itself
// does not know whether a run is in flight; callers must gate that.
type Updater interface {
	UpdateConfig(ConstraintConfig)
}

// Watcher watches a single project.yaml file for edits and pushes the reparsed
// ConstraintConfig to an Updater, debounced to absorb editor save bursts.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	updater     Updater
	debounce    time.Duration
	lastApplied time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewWatcher creates a watcher for the project.yaml at path, pushing updates to updater.
func NewWatcher(path string, updater Updater) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{
		watcher:  fsw,
		path:     path,
		updater:  updater,
		debounce: 300 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Stop halts the watcher and releases its OS resources.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			w.handleChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryCLI).Warn("config watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleChange() {
	w.mu.Lock()
	now := time.Now()
	if now.Sub(w.lastApplied) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.lastApplied = now
	w.mu.Unlock()

	cfg, err := Load(w.path)
	if err != nil {
		logging.Get(logging.CategoryCLI).Warn("config reload failed for %s: %v", w.path, err)
		return
	}
	w.updater.UpdateConfig(cfg.Constraints)
	logging.Get(logging.CategoryCLI).Info("constraint policy reloaded from %s", w.path)
}
