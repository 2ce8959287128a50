package engine

import (
	"log/slog"

	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/history"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithInitial sets the initial document.
func WithInitial(v doc.Value) Option {
	return func(e *Engine) {
		e.initial = v
	}
}

// WithIndexWidth sets the default index width for growable lists and
// strings.
func WithIndexWidth(w schema.Width) Option {
	return func(e *Engine) {
		e.width = w
	}
}

// WithObserver installs a change observer. Callbacks run with the engine
// locked and must not call back into it.
func WithObserver(o history.Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithRecorder installs a statistics recorder.
func WithRecorder(r history.Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSizeBudget bounds the history footprint in bytes. Zero disables the
// bound.
func WithSizeBudget(bytes int) Option {
	return func(e *Engine) {
		if bytes >= 0 {
			e.budget = bytes
		}
	}
}
