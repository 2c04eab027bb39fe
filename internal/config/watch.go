package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps a Config in sync with its file on disk
type Watcher struct {
	path   string
	logger *slog.Logger
	fsw    *fsnotify.Watcher

	mu        sync.RWMutex
	cfg       *Config
	listeners []func(old, cur *Config)

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher loads configPath and starts watching its directory for changes.
// The directory is watched rather than the file so that editors that replace
// the file on save are still picked up.
func NewWatcher(configPath string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(configPath)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		path:   filepath.Clean(configPath),
		logger: logger,
		fsw:    fsw,
		cfg:    cfg,
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Config returns a copy of the current config
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c := *w.cfg
	return &c
}

// WeekNumbersEnabled reports the current show_week_numbers value
func (w *Watcher) WeekNumbersEnabled() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg.ShowWeekNumbers
}

// OnChange registers fn to run after every successful reload. fn runs on the
// watcher goroutine.
func (w *Watcher) OnChange(fn func(old, cur *Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Reload re-reads the config file and notifies listeners. A file that fails
// to parse leaves the previous config in place.
func (w *Watcher) Reload() error {
	cfg, err := LoadFrom(w.path)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	w.mu.Lock()
	old := w.cfg
	w.cfg = cfg
	listeners := append([]func(old, cur *Config){}, w.listeners...)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(old, cfg)
	}
	return nil
}

// Close stops watching
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := w.Reload(); err != nil {
				w.logger.Warn("config reload failed", "path", w.path, "error", err)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}
