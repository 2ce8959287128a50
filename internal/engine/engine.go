package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/history"
	"github.com/dshills/edithistory/internal/engine/route"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// Re-export commonly used types for convenience.
type (
	// Route addresses a node of the document.
	Route = route.Route

	// Value is a document value.
	Value = doc.Value

	// RenderedAction describes one record of the action table.
	RenderedAction = history.RenderedAction

	// Observer receives document change notifications.
	Observer = history.Observer

	// Node edits a single node.
	Node = history.Node

	// Seq edits a list node.
	Seq = history.Seq
)

// Record statuses reported by Render.
const (
	Undoable      = history.Undoable
	Redoable      = history.Redoable
	Elided        = history.Elided
	ElisionMarker = history.ElisionMarker
)

// Engine is the facade over a history ledger.
//
// All operations are safe for concurrent use. Programmer errors raised by
// the ledger, such as a route that does not fit the schema or selecting an
// index twice, are returned as errors instead of panicking.
type Engine struct {
	mu sync.RWMutex

	ledger *history.Ledger
	schema *schema.Type
	logger *slog.Logger

	// Configuration
	initial  doc.Value
	width    schema.Width
	observer history.Observer
	recorder history.Recorder
	budget   int
}

// New creates an engine for documents of type t.
func New(t *schema.Type, opts ...Option) (*Engine, error) {
	e := &Engine{
		schema: t,
		width:  schema.WidthDefault,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	hopts := []history.Option{
		history.WithDefaultIndexWidth(e.width),
		history.WithLogger(e.logger),
		history.WithSizeBudget(e.budget),
		history.WithObserver(e.observer),
		history.WithRecorder(e.recorder),
	}
	if e.initial != nil {
		hopts = append(hopts, history.WithInitial(e.initial))
		e.initial = nil
	}

	l, err := history.New(t, hopts...)
	if err != nil {
		return nil, err
	}
	e.ledger = l
	return e, nil
}

// catch converts a programmer-error panic into *err. Runtime faults are
// not ledger errors and keep panicking.
func catch(err *error) {
	r := recover()
	if r == nil {
		return
	}
	e, ok := r.(error)
	if !ok {
		panic(r)
	}
	var rt runtime.Error
	if errors.As(e, &rt) {
		panic(r)
	}
	*err = e
}

// Schema returns the document type.
func (e *Engine) Schema() *schema.Type { return e.schema }

// Route parses a textual route such as "rows[*].cells[2]".
func (e *Engine) Route(path string) (Route, error) {
	return route.Parse(e.schema, path)
}

// ============================================================================
// Read Operations
// ============================================================================

// Get returns a copy of the value at path. For a route through "[*]" the
// result is a list of the values at every selected element.
func (e *Engine) Get(path string) (v Value, err error) {
	r, err := e.Route(path)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	defer catch(&err)
	return e.get(r), nil
}

func (e *Engine) get(r Route) Value {
	if r.HasSelection() {
		return doc.NewList(e.ledger.At(r).GetAll()...)
	}
	return e.ledger.At(r).Get()
}

// Native returns the value at path as plain Go data: maps for records,
// slices for lists, nil for absent optionals.
func (e *Engine) Native(path string) (x any, err error) {
	r, err := e.Route(path)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	defer catch(&err)
	return e.native(r, e.get(r)), nil
}

func (e *Engine) native(r Route, v Value) any {
	t := route.TypeAt(e.schema, r)
	if r.HasSelection() {
		return doc.ToNative(schema.SequenceOf(t), v)
	}
	return doc.ToNative(t, v)
}

// TypeOf returns the type of the node at path. For a route through "[*]"
// it is the type of each selected target.
func (e *Engine) TypeOf(path string) (t *schema.Type, err error) {
	r, err := e.Route(path)
	if err != nil {
		return nil, err
	}
	defer catch(&err)
	return route.TypeAt(e.schema, r), nil
}

// Selection returns the selected indices of the list at path.
func (e *Engine) Selection(path string) (sel []int, err error) {
	r, err := e.Route(path)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	defer catch(&err)
	return e.ledger.Seq(r).Selection(), nil
}

// Snapshot returns a deep copy of the document including selection sets.
func (e *Engine) Snapshot() Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Snapshot()
}

// Format renders the value at path as indented JSON.
func (e *Engine) Format(path string) (out string, err error) {
	r, err := e.Route(path)
	if err != nil {
		return "", err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	defer catch(&err)
	t := route.TypeAt(e.schema, r)
	if r.HasSelection() {
		t = schema.SequenceOf(t)
	}
	return doc.FormatIndent(t, e.get(r)), nil
}

// ============================================================================
// Edit Operations
// ============================================================================

// Tx gives access to the ledger inside Do. It must not be used after Do
// returns.
type Tx struct {
	e *Engine
}

// Node returns an accessor for the node at path.
func (tx *Tx) Node(path string) *Node {
	return tx.e.ledger.At(tx.route(path))
}

// Seq returns an accessor for the list at path.
func (tx *Tx) Seq(path string) *Seq {
	return tx.e.ledger.Seq(tx.route(path))
}

// At returns an accessor for the node at r.
func (tx *Tx) At(r Route) *Node { return tx.e.ledger.At(r) }

// Get returns a copy of the value at path.
func (tx *Tx) Get(path string) Value { return tx.e.get(tx.route(path)) }

// Native returns the value at path as plain Go data.
func (tx *Tx) Native(path string) any {
	r := tx.route(path)
	return tx.e.native(r, tx.e.get(r))
}

func (tx *Tx) route(path string) Route {
	r, err := tx.e.Route(path)
	if err != nil {
		panic(err)
	}
	return r
}

// Do runs fn inside one action labelled meta. Edits made by fn before an
// error or panic stay recorded in the action; the error is returned.
func (e *Engine) Do(meta any, fn func(tx *Tx) error) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer catch(&err)

	a := e.ledger.CreateAction(meta)
	defer a.Close()
	return fn(&Tx{e: e})
}

// Set replaces the value at path in an action of its own.
func (e *Engine) Set(path string, v Value) error {
	return e.Do(nil, func(tx *Tx) error {
		tx.Node(path).Set(v)
		return nil
	})
}

// SetNative converts x against the type at path and sets it.
func (e *Engine) SetNative(path string, x any) error {
	t, err := e.TypeOf(path)
	if err != nil {
		return err
	}
	v, err := doc.FromNative(t, x)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return e.Set(path, v)
}

// Reset sets the node at path to its zero value.
func (e *Engine) Reset(path string) error {
	return e.Do(nil, func(tx *Tx) error {
		tx.Node(path).Reset()
		return nil
	})
}

// Edit runs fn on the list at path in an action of its own.
func (e *Engine) Edit(path string, fn func(s *Seq)) error {
	return e.Do(nil, func(tx *Tx) error {
		fn(tx.Seq(path))
		return nil
	})
}

// ============================================================================
// History Operations
// ============================================================================

// Undo undoes the last reachable action and returns its index.
func (e *Engine) Undo() (i int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer catch(&err)
	i, ok := e.ledger.UndoAction()
	if !ok {
		return -1, ErrNothingToUndo
	}
	return i, nil
}

// Redo redoes the next action and returns its index.
func (e *Engine) Redo() (i int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer catch(&err)
	i, ok := e.ledger.RedoAction()
	if !ok {
		return -1, ErrNothingToRedo
	}
	return i, nil
}

// CanUndo reports whether Undo would succeed.
func (e *Engine) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (e *Engine) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.CanRedo()
}

// TotalActions returns the number of records ever created.
func (e *Engine) TotalActions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.TotalActions()
}

// CursorIndex returns the index one past the last applied record.
func (e *Engine) CursorIndex() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.CursorIndex()
}

// RedoSize returns the number of records that can be redone, elision
// records included.
func (e *Engine) RedoSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.RedoSize()
}

// HistoryBytes returns the estimated history footprint.
func (e *Engine) HistoryBytes() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.HistoryBytes()
}

// TrimHistory drops the records before index cut.
func (e *Engine) TrimHistory(cut int) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer catch(&err)
	e.ledger.TrimHistory(cut)
	return nil
}

// TrimHistoryToSize drops the oldest records until the footprint fits
// budget.
func (e *Engine) TrimHistoryToSize(budget int) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer catch(&err)
	e.ledger.TrimHistoryToSize(budget)
	return nil
}

// ClearHistory drops every record.
func (e *Engine) ClearHistory() (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer catch(&err)
	e.ledger.ClearHistory()
	return nil
}

// SetSizeBudget changes the footprint budget. When no redo is pending the
// history is trimmed to the new budget at once.
func (e *Engine) SetSizeBudget(bytes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ledger.SetSizeBudget(bytes)
	if bytes > 0 && !e.ledger.CanRedo() && e.ledger.HistoryBytes() > bytes {
		e.ledger.TrimHistoryToSize(bytes)
	}
	e.logger.Info("history budget changed", slog.Int("bytes", bytes))
}

// Render describes the retained history.
func (e *Engine) Render(includeEvents bool) []RenderedAction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.RenderChangeHistory(includeEvents)
}
