package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the configuration file when it changes and applies the
// dynamic settings to a Runtime
type Watcher struct {
	path     string
	runtime  *Runtime
	logger   *zap.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher for the file at path
func NewWatcher(path string, runtime *Runtime, logger *zap.Logger) *Watcher {
	return &Watcher{
		path:     path,
		runtime:  runtime,
		logger:   logger,
		debounce: 100 * time.Millisecond,
	}
}

// Run watches until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory so editors that save by rename are still seen
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	w.logger.Info("Configuration watcher started", zap.String("path", w.path))

	reload := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Configuration watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			w.reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfigFrom(w.path)
	if err != nil {
		w.logger.Error("Invalid configuration, keeping current", zap.Error(err))
		return
	}

	oldTTL := w.runtime.CacheTTLSeconds()
	oldLevel := w.runtime.Level().Level()
	w.runtime.Apply(cfg)

	w.logger.Info("Configuration reloaded",
		zap.String("path", w.path),
		zap.Stringer("logLevel", w.runtime.Level().Level()),
		zap.Stringer("previousLogLevel", oldLevel),
		zap.Int("cacheTTLSeconds", w.runtime.CacheTTLSeconds()),
		zap.Int("previousCacheTTLSeconds", oldTTL),
	)
}
