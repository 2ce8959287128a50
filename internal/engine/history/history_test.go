package history

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/route"
	"github.com/dshills/edithistory/internal/engine/schema"
)

var (
	rowType = schema.Record("Row",
		schema.F("label", schema.String),
		schema.F("tags", schema.SequenceOf(schema.String).Selectable()),
	)
	boardType = schema.Record("Board",
		schema.F("items", schema.SequenceOf(schema.Int32).Selectable()),
		schema.F("names", schema.SequenceOf(schema.String).Selectable()),
		schema.F("fixed", schema.ArrayOf(schema.Int32, 3)),
		schema.F("rows", schema.SequenceOf(rowType).Selectable()),
		schema.F("title", schema.String),
		schema.F("plain", schema.SequenceOf(schema.Int32)),
	)

	itemsRoute = route.Root().Field(0)
	namesRoute = route.Root().Field(1)
	fixedRoute = route.Root().Field(2)
	rowsRoute  = route.Root().Field(3)
	titleRoute = route.Root().Field(4)
	plainRoute = route.Root().Field(5)
)

func intList(vals ...int64) *doc.List {
	l := doc.NewList()
	for _, v := range vals {
		l.InsertAt(l.Len(), doc.Int(v))
	}
	return l
}

func strList(vals ...string) *doc.List {
	l := doc.NewList()
	for _, v := range vals {
		l.InsertAt(l.Len(), doc.String(v))
	}
	return l
}

func row(label string, tags ...string) *doc.Record {
	return doc.NewRecord(doc.String(label), strList(tags...))
}

func newBoard(items ...int64) doc.Value {
	return doc.NewRecord(
		intList(items...),
		strList("a", "b", "c", "d"),
		intList(0, 0, 0),
		doc.NewList(row("r0", "x", "y"), row("r1", "z"), row("r2")),
		doc.String(""),
		intList(),
	)
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLedger(t *testing.T, items []int64, opts ...Option) *Ledger {
	t.Helper()
	opts = append([]Option{WithInitial(newBoard(items...)), WithLogger(quiet())}, opts...)
	l, err := New(boardType, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func ints(l *Ledger, r route.Route) []int64 {
	list := l.At(r).Get().(*doc.List)
	out := make([]int64, list.Len())
	for i := range out {
		out[i] = int64(list.At(i).(doc.Int))
	}
	return out
}

func strs(l *Ledger, r route.Route) []string {
	list := l.At(r).Get().(*doc.List)
	out := make([]string, list.Len())
	for i := range out {
		out[i] = string(list.At(i).(doc.String))
	}
	return out
}

func wantInts(t *testing.T, l *Ledger, r route.Route, want ...int64) {
	t.Helper()
	if got := ints(l, r); !slices.Equal(got, want) {
		t.Errorf("%s = %v, want %v", r, got, want)
	}
}

func wantStrs(t *testing.T, l *Ledger, r route.Route, want ...string) {
	t.Helper()
	if got := strs(l, r); !slices.Equal(got, want) {
		t.Errorf("%s = %v, want %v", r, got, want)
	}
}

func wantSel(t *testing.T, l *Ledger, r route.Route, want ...int) {
	t.Helper()
	got := l.Seq(r).Selection()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !slices.Equal(got, want) {
		t.Errorf("%s selection = %v, want %v", r, got, want)
	}
}

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Errorf("recover() = %v, want %v", r, target)
		}
	}()
	fn()
}

// changeLog records observer callbacks as strings.
type changeLog struct {
	NopObserver
	calls []string
}

func (c *changeLog) ValueChanged(r route.Route, _, _ doc.Value) {
	c.calls = append(c.calls, fmt.Sprintf("changed %s", r))
}

func (c *changeLog) ElementAdded(r route.Route, i int) {
	c.calls = append(c.calls, fmt.Sprintf("added %s %d", r, i))
}

func (c *changeLog) ElementRemoved(r route.Route, i int) {
	c.calls = append(c.calls, fmt.Sprintf("removed %s %d", r, i))
}

func (c *changeLog) ElementMoved(r route.Route, from, to int) {
	c.calls = append(c.calls, fmt.Sprintf("moved %s %d->%d", r, from, to))
}

func (c *changeLog) SelectionsChanged(r route.Route) {
	c.calls = append(c.calls, fmt.Sprintf("selection %s", r))
}

func (c *changeLog) reset() []string {
	out := c.calls
	c.calls = nil
	return out
}

// countingRecorder tallies Recorder callbacks.
type countingRecorder struct {
	committed, undone, redone, elided, trimmed int
	bytes                                      int
}

func (c *countingRecorder) ActionCommitted(int, int)      { c.committed++ }
func (c *countingRecorder) ActionUndone()                 { c.undone++ }
func (c *countingRecorder) ActionRedone()                 { c.redone++ }
func (c *countingRecorder) ActionsElided(n int)           { c.elided += n }
func (c *countingRecorder) HistoryTrimmed(actions, _ int) { c.trimmed += actions }
func (c *countingRecorder) HistoryBytes(b int)            { c.bytes = b }
