package history

import (
	"testing"

	"github.com/dshills/edithistory/internal/engine/doc"
)

func appendAll(l *Ledger, vals ...int64) {
	for _, v := range vals {
		l.Seq(itemsRoute).Append(doc.Int(v))
	}
}

func statuses(l *Ledger) []Status {
	var out []Status
	for _, a := range l.RenderChangeHistory(false) {
		out = append(out, a.Status)
	}
	return out
}

func wantStatuses(t *testing.T, l *Ledger, want ...Status) {
	t.Helper()
	got := statuses(l)
	if len(got) != len(want) {
		t.Fatalf("statuses = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("status[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestElisionHidesUndoneActions(t *testing.T) {
	rec := &countingRecorder{}
	l := newLedger(t, nil, WithRecorder(rec))
	appendAll(l, 1, 2, 3)
	l.UndoAction()
	l.UndoAction()
	wantInts(t, l, itemsRoute, 1)

	appendAll(l, 9)
	if l.TotalActions() != 5 || l.RedoSize() != 0 {
		t.Fatalf("TotalActions, RedoSize = %d, %d, want 5, 0", l.TotalActions(), l.RedoSize())
	}
	if rec.elided != 2 {
		t.Errorf("elided = %d, want 2", rec.elided)
	}
	wantStatuses(t, l, Undoable, Elided, Elided, ElisionMarker, Undoable)

	if i, _ := l.UndoAction(); i != 4 {
		t.Errorf("UndoAction() = %d, want 4", i)
	}
	wantInts(t, l, itemsRoute, 1)
	if i, _ := l.UndoAction(); i != 0 {
		t.Errorf("UndoAction() = %d, want 0", i)
	}
	wantInts(t, l, itemsRoute)
	if _, ok := l.UndoAction(); ok {
		t.Error("UndoAction() ok = true past the first action")
	}
	wantStatuses(t, l, Redoable, Elided, Elided, ElisionMarker, Redoable)

	if i, _ := l.RedoAction(); i != 0 {
		t.Errorf("RedoAction() = %d, want 0", i)
	}
	if l.RedoSize() != 1 {
		t.Errorf("RedoSize() = %d, want 1", l.RedoSize())
	}
	if i, _ := l.RedoAction(); i != 4 {
		t.Errorf("RedoAction() = %d, want 4", i)
	}
	wantInts(t, l, itemsRoute, 1, 9)
	if _, ok := l.RedoAction(); ok {
		t.Error("RedoAction() ok = true at the end")
	}
}

func TestNestedElision(t *testing.T) {
	l := newLedger(t, nil)
	appendAll(l, 1, 2)
	l.UndoAction()
	appendAll(l, 3)
	wantInts(t, l, itemsRoute, 1, 3)

	l.UndoAction()
	l.UndoAction()
	if l.RedoSize() != 4 {
		t.Fatalf("RedoSize() = %d, want 4", l.RedoSize())
	}
	appendAll(l, 5)
	wantInts(t, l, itemsRoute, 5)
	wantStatuses(t, l, Elided, Elided, ElisionMarker, Elided, ElisionMarker, Undoable)

	l.UndoAction()
	wantInts(t, l, itemsRoute)
	if l.CanUndo() {
		t.Error("CanUndo() = true; elided actions resurfaced")
	}
	l.RedoAction()
	wantInts(t, l, itemsRoute, 5)
}

func TestTrimHistory(t *testing.T) {
	rec := &countingRecorder{}
	l := newLedger(t, nil, WithRecorder(rec))
	appendAll(l, 1, 2, 3, 4, 5)
	before := l.RenderChangeHistory(true)
	bytes := l.HistoryBytes()

	l.TrimHistory(2)
	if l.TotalActions() != 5 || l.CursorIndex() != 5 {
		t.Errorf("TotalActions, CursorIndex = %d, %d, want 5, 5", l.TotalActions(), l.CursorIndex())
	}
	if l.HistoryBytes() >= bytes {
		t.Errorf("HistoryBytes() = %d, want less than %d", l.HistoryBytes(), bytes)
	}
	if rec.trimmed != 2 {
		t.Errorf("trimmed = %d, want 2", rec.trimmed)
	}

	after := l.RenderChangeHistory(true)
	if len(after) != 3 || after[0].Index != 2 {
		t.Fatalf("retained = %+v, want records 2..4", after)
	}
	for i, a := range after {
		b := before[i+2]
		if a.ID != b.ID || a.Events[0].Summary != b.Events[0].Summary {
			t.Errorf("record %d = %+v, want %+v", a.Index, a, b)
		}
	}

	for want := 4; want >= 2; want-- {
		if i, ok := l.UndoAction(); !ok || i != want {
			t.Errorf("UndoAction() = %d, %v, want %d, true", i, ok, want)
		}
	}
	if _, ok := l.UndoAction(); ok {
		t.Error("UndoAction() reached a trimmed action")
	}
	wantInts(t, l, itemsRoute, 1, 2)

	expectPanic(t, ErrRedoPending, func() { l.TrimHistory(3) })
	for l.CanRedo() {
		l.RedoAction()
	}
	wantInts(t, l, itemsRoute, 1, 2, 3, 4, 5)
}

func TestTrimHistoryBounds(t *testing.T) {
	l := newLedger(t, nil)
	appendAll(l, 1, 2)
	l.TrimHistory(-3)
	if got := len(l.RenderChangeHistory(false)); got != 2 {
		t.Errorf("records after negative cut = %d, want 2", got)
	}
	l.TrimHistory(99)
	if got := len(l.RenderChangeHistory(false)); got != 0 {
		t.Errorf("records after cut past end = %d, want 0", got)
	}
	if l.HistoryBytes() != 1 {
		t.Errorf("HistoryBytes() = %d, want 1", l.HistoryBytes())
	}
	appendAll(l, 3)
	if i, _ := l.UndoAction(); i != 2 {
		t.Errorf("UndoAction() = %d, want 2", i)
	}
}

// elidedLedger builds records A0 A1 A2 E3 A4, where E3 closes the window
// A1 A2.
func elidedLedger(t *testing.T) *Ledger {
	t.Helper()
	l := newLedger(t, nil)
	appendAll(l, 1, 2, 3)
	l.UndoAction()
	l.UndoAction()
	appendAll(l, 4)
	return l
}

func TestTrimHistoryMovesBackOutOfWindow(t *testing.T) {
	l := elidedLedger(t)
	l.TrimHistory(2)
	rendered := l.RenderChangeHistory(false)
	if len(rendered) != 4 || rendered[0].Index != 1 {
		t.Fatalf("retained = %+v, want records 1..4", rendered)
	}
	wantStatuses(t, l, Elided, Elided, ElisionMarker, Undoable)

	l.UndoAction()
	if l.CanUndo() {
		t.Error("CanUndo() = true after undoing the only reachable action")
	}
	wantInts(t, l, itemsRoute, 1)
}

func TestTrimHistoryToSizeMovesForwardPastWindow(t *testing.T) {
	l := elidedLedger(t)
	first := l.RenderChangeHistory(false)[0]
	cost := first.ByteCount + offsetCost + recordCost

	// Dropping A0 A1 fits the budget, but the cut may not land inside the
	// window A1 A2.
	l.TrimHistoryToSize(l.HistoryBytes() - cost - 1)
	rendered := l.RenderChangeHistory(false)
	if len(rendered) != 1 || rendered[0].Index != 4 {
		t.Fatalf("retained = %+v, want only record 4", rendered)
	}
	if i, _ := l.UndoAction(); i != 4 {
		t.Errorf("UndoAction() = %d, want 4", i)
	}
	wantInts(t, l, itemsRoute, 1)
}

func TestTrimHistoryToSize(t *testing.T) {
	l := newLedger(t, nil)
	appendAll(l, 1, 2, 3)
	bytes := l.HistoryBytes()
	l.TrimHistoryToSize(bytes)
	if l.HistoryBytes() != bytes {
		t.Errorf("HistoryBytes() = %d, want unchanged %d", l.HistoryBytes(), bytes)
	}
	l.TrimHistoryToSize(1)
	if l.HistoryBytes() != 1 || l.CanUndo() {
		t.Errorf("HistoryBytes, CanUndo = %d, %v, want 1, false", l.HistoryBytes(), l.CanUndo())
	}
	if l.TotalActions() != 3 {
		t.Errorf("TotalActions() = %d, want 3", l.TotalActions())
	}
}

func TestSizeBudget(t *testing.T) {
	const budget = 300
	rec := &countingRecorder{}
	l := newLedger(t, nil, WithSizeBudget(budget), WithRecorder(rec))
	for i := range 20 {
		appendAll(l, int64(i))
		if l.HistoryBytes() > budget {
			t.Fatalf("HistoryBytes() = %d after action %d, want <= %d", l.HistoryBytes(), i, budget)
		}
	}
	if l.TotalActions() != 20 {
		t.Errorf("TotalActions() = %d, want 20", l.TotalActions())
	}
	if rec.trimmed == 0 || rec.bytes != l.HistoryBytes() {
		t.Errorf("recorder = %+v, HistoryBytes() = %d", rec, l.HistoryBytes())
	}

	undone := 0
	for l.CanUndo() {
		l.UndoAction()
		undone++
	}
	if undone == 0 || undone == 20 {
		t.Errorf("undone = %d, want a retained tail", undone)
	}
	want := make([]int64, 20-undone)
	for i := range want {
		want[i] = int64(i)
	}
	wantInts(t, l, itemsRoute, want...)
}
