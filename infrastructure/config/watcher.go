package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the YAML config file when it changes and notifies
// subscribers. It only watches in development.
type Watcher struct {
	config    *Config
	callbacks []func(*Config)
	mu        sync.RWMutex
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewWatcher starts watching initial.SourceFile. Without a source file, or
// outside development, the watcher only hands out the initial config.
func NewWatcher(initial *Config, logger *zap.Logger) (*Watcher, error) {
	return newWatcher(initial, logger, defaultDebounce)
}

func newWatcher(initial *Config, logger *zap.Logger, debounce time.Duration) (*Watcher, error) {
	w := &Watcher{
		config:   initial,
		logger:   logger,
		debounce: debounce,
		stopCh:   make(chan struct{}),
	}

	if !initial.IsDevelopment() || initial.SourceFile == "" {
		logger.Debug("Configuration hot reloading disabled",
			zap.String("environment", initial.Environment))
		return w, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: editors replace the file on save
	if err := fsWatcher.Add(filepath.Dir(initial.SourceFile)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}
	w.watcher = fsWatcher

	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled",
		zap.String("file", initial.SourceFile))
	return w, nil
}

// Config returns the current configuration
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// OnChange registers a callback run after every successful reload
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Close stops watching
func (w *Watcher) Close() error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	return nil
}

func (w *Watcher) watchLoop() {
	defer w.watcher.Close()

	target := filepath.Clean(w.config.SourceFile)
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()))

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	next, err := LoadFile(w.Config().SourceFile)
	if err != nil {
		w.logger.Error("Invalid configuration after reload, keeping previous", zap.Error(err))
		return
	}

	w.mu.Lock()
	previous := w.config
	w.config = next
	callbacks := append([]func(*Config){}, w.callbacks...)
	w.mu.Unlock()

	if previous.LogLevel != next.LogLevel {
		w.logger.Info("Log level changed",
			zap.String("from", previous.LogLevel),
			zap.String("to", next.LogLevel))
	}
	for _, fn := range callbacks {
		fn(next)
	}
}
