package config

import (
	"log/slog"
	"time"

	"github.com/dshills/edithistory/internal/config/watcher"
)

// Watcher reloads a configuration file whenever it changes.
type Watcher struct {
	path     string
	fw       *watcher.Watcher
	logger   *slog.Logger
	onReload func(*Config)
}

// NewWatcher starts watching path. onReload receives every configuration
// that loads and validates; failures are logged and the previous settings
// stay in effect.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger, onReload func(*Config)) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		path:     path,
		logger:   logger,
		onReload: onReload,
	}
	w.fw = watcher.New(
		watcher.WithDebounce(debounce),
		watcher.WithErrorHandler(func(err error) {
			logger.Warn("config watcher error", slog.String("error", err.Error()))
		}),
	)
	w.fw.OnChange(w.handleChange)

	if err := w.fw.Watch(path); err != nil {
		return nil, err
	}
	if err := w.fw.Start(); err != nil {
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() {
	w.fw.Stop()
}

func (w *Watcher) handleChange(ev watcher.Event) {
	if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
		w.logger.Info("config file gone, keeping settings",
			slog.String("path", ev.Path), slog.String("op", ev.Op.String()))
		return
	}

	c, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload failed",
			slog.String("path", ev.Path), slog.String("error", err.Error()))
		return
	}
	w.logger.Info("config reloaded", slog.String("path", ev.Path))
	w.onReload(c)
}
