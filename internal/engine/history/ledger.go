package history

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dshills/edithistory/internal/engine/codec"
	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// Footprint estimates, in bytes, for the bookkeeping that accompanies the
// event log.
const (
	offsetCost = 8
	recordCost = 48
)

// record is one entry of the action table.
type record struct {
	// first is the index into offsets of the action's first event. Elision
	// records own no events; their first equals the next record's.
	first int

	// elided is non-zero for an elision record and counts the records
	// before it that can no longer be redone, nested elision records
	// included.
	elided int

	// skip is set on the first record of an elided window: the absolute
	// index of the elision record that closed it. -1 otherwise.
	skip int

	id   uuid.UUID
	meta any
}

func (r *record) isElision() bool { return r.elided > 0 }

// pending is the action being built while handles are open.
type pending struct {
	meta    any
	id      uuid.UUID
	started bool

	// elided is the size of a redo window closed by the current edit, and
	// elidedFrom its first index. Both are reported once the edit commits.
	elided, elidedFrom int
}

// Ledger owns a document and the history of every edit made to it.
//
// A Ledger is not safe for concurrent use; the engine package wraps it in a
// mutex.
type Ledger struct {
	schema  *schema.Type
	root    doc.Value
	initial doc.Value
	codec   codec.Codec
	obs     Observer
	logger  *slog.Logger
	rec     Recorder
	budget  int

	log     *codec.Buffer
	offsets []int
	records []record
	base    int // absolute index of records[0]
	redo    int // trailing records available to redo, elision records included

	open    int
	pending pending
}

func codecFor(w schema.Width) codec.Codec {
	return codec.New(w)
}

// New creates a ledger for documents of type t.
func New(t *schema.Type, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		schema: t,
		codec:  codecFor(schema.WidthDefault),
		obs:    NopObserver{},
		logger: slog.Default(),
		rec:    nopRecorder{},
		log:    codec.NewBuffer([]byte{0}),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.initial == nil {
		l.root = doc.Zero(t)
	} else {
		if _, err := doc.Conform(t, l.initial); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInitial, err)
		}
		l.root = doc.CloneState(l.initial)
		l.initial = nil
	}
	return l, nil
}

// Schema returns the document type.
func (l *Ledger) Schema() *schema.Type { return l.schema }

// Codec returns the codec used for the event log.
func (l *Ledger) Codec() codec.Codec { return l.codec }

// Value returns the live document. Callers must not modify it.
func (l *Ledger) Value() doc.Value { return l.root }

// Snapshot returns a deep copy of the document including selection sets.
func (l *Ledger) Snapshot() doc.Value { return doc.CloneState(l.root) }

// TotalActions returns the number of action records ever created, including
// elision records and records removed by trimming.
func (l *Ledger) TotalActions() int { return l.base + len(l.records) }

// CursorIndex returns the absolute index one past the last applied record.
func (l *Ledger) CursorIndex() int { return l.base + len(l.records) - l.redo }

// RedoSize returns the number of trailing records available to redo,
// elision records included.
func (l *Ledger) RedoSize() int { return l.redo }

// EventCount returns the number of events held in the log.
func (l *Ledger) EventCount() int { return len(l.offsets) }

// IsActionOpen reports whether an action handle is open.
func (l *Ledger) IsActionOpen() bool { return l.open > 0 }

// PendingActionIndex returns the absolute index the open action has, or
// will have once it records its first edit. ok is false when no action is
// open.
func (l *Ledger) PendingActionIndex() (index int, ok bool) {
	if l.open == 0 {
		return -1, false
	}
	if l.pending.started {
		return l.TotalActions() - 1, true
	}
	if l.redo > 0 {
		return l.TotalActions() + 1, true
	}
	return l.TotalActions(), true
}

// CanUndo reports whether UndoAction would undo something.
func (l *Ledger) CanUndo() bool { return l.open == 0 && l.undoTarget() >= 0 }

// CanRedo reports whether RedoAction would redo something.
func (l *Ledger) CanRedo() bool { return l.open == 0 && l.redo > 0 }

// HistoryBytes estimates the memory held by the history: the event log plus
// per-event and per-record bookkeeping.
func (l *Ledger) HistoryBytes() int {
	return l.log.Len() + len(l.offsets)*offsetCost + len(l.records)*recordCost
}

// ActionID returns the identifier of the record at absolute index i.
// Elision records and trimmed indices return uuid.Nil.
func (l *Ledger) ActionID(i int) uuid.UUID {
	i -= l.base
	if i < 0 || i >= len(l.records) {
		return uuid.Nil
	}
	return l.records[i].id
}

// eventEnd returns the index one past the last event of record i.
func (l *Ledger) eventEnd(i int) int {
	if i+1 < len(l.records) {
		return l.records[i+1].first
	}
	return len(l.offsets)
}

// eventBytes returns the encoded bytes of event e.
func (l *Ledger) eventBytes(e int) []byte {
	end := l.log.Len()
	if e+1 < len(l.offsets) {
		end = l.offsets[e+1]
	}
	return l.log.Bytes()[l.offsets[e]:end]
}

// recordBytes returns the number of log bytes held by record i.
func (l *Ledger) recordBytes(i int) int {
	first, end := l.records[i].first, l.eventEnd(i)
	if first == end {
		return 0
	}
	stop := l.log.Len()
	if end < len(l.offsets) {
		stop = l.offsets[end]
	}
	return stop - l.offsets[first]
}

func (l *Ledger) mustBeIdle(what string) {
	if l.open > 0 {
		panic(fmt.Errorf("%w: cannot %s", ErrActionOpen, what))
	}
}

// SetSizeBudget changes the footprint budget applied after each committed
// action. Zero disables it. A lower budget takes effect at the next commit.
func (l *Ledger) SetSizeBudget(bytes int) {
	l.budget = max(bytes, 0)
}

// SizeBudget returns the footprint budget, or zero when none is set.
func (l *Ledger) SizeBudget() int { return l.budget }
