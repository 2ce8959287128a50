package history

import (
	"log/slog"

	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// Option configures a Ledger during creation.
type Option func(*Ledger)

// WithInitial sets the initial document. Selection sets inside it are kept.
// The default is the schema's zero value.
func WithInitial(v doc.Value) Option {
	return func(l *Ledger) {
		l.initial = v
	}
}

// WithDefaultIndexWidth sets the index width used for growable sequences
// and string lengths that carry no override. The default is 32 bits.
func WithDefaultIndexWidth(w schema.Width) Option {
	return func(l *Ledger) {
		l.codec = codecFor(w)
	}
}

// WithObserver installs a change observer.
func WithObserver(o Observer) Option {
	return func(l *Ledger) {
		if o != nil {
			l.obs = o
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithRecorder installs a statistics recorder.
func WithRecorder(r Recorder) Option {
	return func(l *Ledger) {
		if r != nil {
			l.rec = r
		}
	}
}

// WithSizeBudget trims the oldest history after each committed action so
// the footprint stays within bytes. Zero disables the budget.
func WithSizeBudget(bytes int) Option {
	return func(l *Ledger) {
		if bytes >= 0 {
			l.budget = bytes
		}
	}
}
