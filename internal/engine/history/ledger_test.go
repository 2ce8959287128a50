package history

import (
	"testing"

	"github.com/google/uuid"

	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/schema"
)

func TestNewRejectsBadInitial(t *testing.T) {
	_, err := New(boardType, WithInitial(doc.String("nope")))
	if err == nil {
		t.Fatal("New() error = nil, want error")
	}
}

func TestNewZeroDocument(t *testing.T) {
	l, err := New(boardType)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	wantInts(t, l, itemsRoute)
	wantInts(t, l, fixedRoute, 0, 0, 0)
	if l.TotalActions() != 0 || l.CursorIndex() != 0 {
		t.Errorf("TotalActions, CursorIndex = %d, %d, want 0, 0", l.TotalActions(), l.CursorIndex())
	}
	if got := l.HistoryBytes(); got != 1 {
		t.Errorf("HistoryBytes() = %d, want 1", got)
	}
}

func TestAppendUndoRedoScenario(t *testing.T) {
	l := newLedger(t, []int64{10, 20, 30})
	items := l.Seq(itemsRoute)

	items.Append(doc.Int(40))
	wantInts(t, l, itemsRoute, 10, 20, 30, 40)
	if l.EventCount() != 1 {
		t.Errorf("EventCount() = %d, want 1", l.EventCount())
	}

	if i, ok := l.UndoAction(); !ok || i != 0 {
		t.Errorf("UndoAction() = %d, %v, want 0, true", i, ok)
	}
	wantInts(t, l, itemsRoute, 10, 20, 30)

	if i, ok := l.RedoAction(); !ok || i != 0 {
		t.Errorf("RedoAction() = %d, %v, want 0, true", i, ok)
	}
	wantInts(t, l, itemsRoute, 10, 20, 30, 40)

	items.Select(1)
	items.Remove(1)
	wantInts(t, l, itemsRoute, 10, 30, 40)
	wantSel(t, l, itemsRoute)

	l.UndoAction()
	wantInts(t, l, itemsRoute, 10, 20, 30, 40)
	wantSel(t, l, itemsRoute, 1)
}

func TestMoveToScenario(t *testing.T) {
	obs := &changeLog{}
	l := newLedger(t, nil, WithObserver(obs))
	names := l.Seq(namesRoute)

	names.MoveTo(0, 2)
	wantStrs(t, l, namesRoute, "b", "c", "a", "d")
	moved := obs.reset()
	want := []string{"moved 1 1->0", "moved 1 2->1", "moved 1 0->2"}
	if len(moved) != len(want) {
		t.Fatalf("notifications = %v, want %v", moved, want)
	}
	for i := range want {
		if moved[i] != want[i] {
			t.Errorf("notification %d = %q, want %q", i, moved[i], want[i])
		}
	}

	l.UndoAction()
	wantStrs(t, l, namesRoute, "a", "b", "c", "d")
	if got := len(obs.reset()); got != 3 {
		t.Errorf("undo notifications = %d, want 3", got)
	}

	l.RedoAction()
	wantStrs(t, l, namesRoute, "b", "c", "a", "d")
}

func TestActionGroupsEdits(t *testing.T) {
	l := newLedger(t, []int64{1, 2, 3})
	items := l.Seq(itemsRoute)

	a := l.CreateAction("batch")
	items.Append(doc.Int(4))
	inner := l.CreateAction("ignored")
	items.SetAt(0, doc.Int(9))
	inner.Close()
	if !l.IsActionOpen() {
		t.Error("IsActionOpen() = false after inner Close")
	}
	l.At(titleRoute).Set(doc.String("t"))
	a.Close()
	a.Close()

	if l.TotalActions() != 1 {
		t.Fatalf("TotalActions() = %d, want 1", l.TotalActions())
	}
	if l.EventCount() != 3 {
		t.Errorf("EventCount() = %d, want 3", l.EventCount())
	}
	rendered := l.RenderChangeHistory(false)
	if rendered[0].Metadata != "batch" {
		t.Errorf("Metadata = %v, want batch", rendered[0].Metadata)
	}

	l.UndoAction()
	wantInts(t, l, itemsRoute, 1, 2, 3)
	if got := l.At(titleRoute).Get(); got != doc.String("") {
		t.Errorf("title = %v, want empty", got)
	}
	l.RedoAction()
	wantInts(t, l, itemsRoute, 9, 2, 3, 4)
}

func TestEmptyActionLeavesNoRecord(t *testing.T) {
	l := newLedger(t, []int64{1})
	l.Do("nothing", func() {})
	if l.TotalActions() != 0 {
		t.Errorf("TotalActions() = %d, want 0", l.TotalActions())
	}

	l.Seq(itemsRoute).Append(doc.Int(2))
	l.UndoAction()
	l.Do("nothing", func() {})
	if l.RedoSize() != 1 {
		t.Errorf("RedoSize() = %d, want 1; an empty action must not elide", l.RedoSize())
	}
}

func TestNoOpSetRecordsNothing(t *testing.T) {
	l := newLedger(t, []int64{1})
	l.At(titleRoute).Set(doc.String(""))
	l.At(titleRoute).Reset()
	if l.TotalActions() != 0 {
		t.Errorf("TotalActions() = %d, want 0", l.TotalActions())
	}
}

func TestSetEqualListDropsSelection(t *testing.T) {
	l := newLedger(t, []int64{1, 2, 3})
	l.Seq(itemsRoute).Select(1)
	base := l.TotalActions()

	l.At(itemsRoute).Set(intList(1, 2, 3))
	if got := l.TotalActions(); got != base+1 {
		t.Fatalf("TotalActions() = %d, want %d", got, base+1)
	}
	wantInts(t, l, itemsRoute, 1, 2, 3)
	wantSel(t, l, itemsRoute)

	l.UndoAction()
	wantSel(t, l, itemsRoute, 1)

	l.RedoAction()
	l.At(itemsRoute).Set(intList(1, 2, 3))
	if got := l.TotalActions(); got != base+1 {
		t.Errorf("TotalActions() = %d after a repeated Set, want %d", got, base+1)
	}
}

func TestPendingActionIndex(t *testing.T) {
	l := newLedger(t, []int64{1})
	if _, ok := l.PendingActionIndex(); ok {
		t.Error("PendingActionIndex() ok = true with no open action")
	}

	a := l.CreateAction(nil)
	if i, ok := l.PendingActionIndex(); !ok || i != 0 {
		t.Errorf("PendingActionIndex() = %d, %v, want 0, true", i, ok)
	}
	l.Seq(itemsRoute).Append(doc.Int(2))
	if i, _ := l.PendingActionIndex(); i != 0 {
		t.Errorf("PendingActionIndex() after edit = %d, want 0", i)
	}
	a.Close()

	l.UndoAction()
	a = l.CreateAction(nil)
	if i, _ := l.PendingActionIndex(); i != 2 {
		t.Errorf("PendingActionIndex() with redo pending = %d, want 2", i)
	}
	l.Seq(itemsRoute).Append(doc.Int(3))
	if i, _ := l.PendingActionIndex(); i != 2 {
		t.Errorf("PendingActionIndex() after elision = %d, want 2", i)
	}
	a.Close()
}

func TestUndoRedoBounds(t *testing.T) {
	l := newLedger(t, nil)
	if _, ok := l.UndoAction(); ok {
		t.Error("UndoAction() ok = true on empty history")
	}
	if _, ok := l.RedoAction(); ok {
		t.Error("RedoAction() ok = true on empty history")
	}
	l.Seq(itemsRoute).Append(doc.Int(1))
	if !l.CanUndo() || l.CanRedo() {
		t.Errorf("CanUndo, CanRedo = %v, %v, want true, false", l.CanUndo(), l.CanRedo())
	}
	l.UndoAction()
	if _, ok := l.UndoAction(); ok {
		t.Error("second UndoAction() ok = true")
	}
	if l.CursorIndex() != 0 || l.RedoSize() != 1 {
		t.Errorf("CursorIndex, RedoSize = %d, %d, want 0, 1", l.CursorIndex(), l.RedoSize())
	}
}

func TestHistoryCallsPanicWhileOpen(t *testing.T) {
	l := newLedger(t, []int64{1})
	a := l.CreateAction(nil)
	defer a.Close()

	tests := []struct {
		name string
		fn   func()
	}{
		{"undo", func() { l.UndoAction() }},
		{"redo", func() { l.RedoAction() }},
		{"trim", func() { l.TrimHistory(0) }},
		{"trim to size", func() { l.TrimHistoryToSize(0) }},
		{"clear", func() { l.ClearHistory() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectPanic(t, ErrActionOpen, tt.fn)
		})
	}
}

func TestFailedEditLeavesNoTrace(t *testing.T) {
	l := newLedger(t, []int64{1, 2, 3})
	before := l.HistoryBytes()

	expectPanic(t, ErrIndexOutOfRange, func() { l.Seq(itemsRoute).Remove(7) })
	expectPanic(t, ErrAlreadySelected, func() { l.Seq(itemsRoute).SelectN(1, 1) })

	if l.HistoryBytes() != before || l.TotalActions() != 0 {
		t.Errorf("HistoryBytes, TotalActions = %d, %d, want %d, 0", l.HistoryBytes(), l.TotalActions(), before)
	}
	wantInts(t, l, itemsRoute, 1, 2, 3)
	wantSel(t, l, itemsRoute)
}

func TestFailedEditKeepsRedoWindow(t *testing.T) {
	rec := &countingRecorder{}
	l := newLedger(t, []int64{1}, WithRecorder(rec))
	l.Seq(itemsRoute).Append(doc.Int(2))
	l.UndoAction()

	expectPanic(t, ErrIndexOutOfRange, func() { l.Seq(itemsRoute).Remove(5) })
	if l.RedoSize() != 1 || l.TotalActions() != 1 {
		t.Errorf("RedoSize, TotalActions = %d, %d, want 1, 1", l.RedoSize(), l.TotalActions())
	}
	if rec.elided != 0 {
		t.Errorf("elided = %d after a failed edit, want 0", rec.elided)
	}
	l.RedoAction()
	wantInts(t, l, itemsRoute, 1, 2)

	l.UndoAction()
	l.Seq(itemsRoute).Append(doc.Int(3))
	if rec.elided != 1 {
		t.Errorf("elided = %d after a committed edit, want 1", rec.elided)
	}
}

func TestFailedEditInsideAction(t *testing.T) {
	l := newLedger(t, []int64{1})
	a := l.CreateAction(nil)
	l.Seq(itemsRoute).Append(doc.Int(2))
	expectPanic(t, ErrNotSelected, func() { l.Seq(itemsRoute).Deselect(0) })
	l.Seq(itemsRoute).Append(doc.Int(3))
	a.Close()

	if l.EventCount() != 2 {
		t.Errorf("EventCount() = %d, want 2", l.EventCount())
	}
	l.UndoAction()
	wantInts(t, l, itemsRoute, 1)
}

func TestActionIDs(t *testing.T) {
	l := newLedger(t, nil)
	l.Seq(itemsRoute).Append(doc.Int(1))
	l.Seq(itemsRoute).Append(doc.Int(2))
	a, b := l.ActionID(0), l.ActionID(1)
	if a == uuid.Nil || b == uuid.Nil || a == b {
		t.Errorf("ActionID = %v, %v, want distinct non-nil", a, b)
	}
	if l.ActionID(5) != uuid.Nil {
		t.Error("ActionID(5) should be nil")
	}
}

func TestClearHistory(t *testing.T) {
	rec := &countingRecorder{}
	l := newLedger(t, nil, WithRecorder(rec))
	l.Seq(itemsRoute).Append(doc.Int(1))
	l.Seq(itemsRoute).Append(doc.Int(2))

	l.UndoAction()
	expectPanic(t, ErrRedoPending, l.ClearHistory)
	l.RedoAction()

	l.ClearHistory()
	if l.TotalActions() != 2 || l.EventCount() != 0 || l.HistoryBytes() != 1 {
		t.Errorf("TotalActions, EventCount, HistoryBytes = %d, %d, %d, want 2, 0, 1",
			l.TotalActions(), l.EventCount(), l.HistoryBytes())
	}
	if l.CanUndo() {
		t.Error("CanUndo() = true after ClearHistory")
	}
	wantInts(t, l, itemsRoute, 1, 2)

	l.Seq(itemsRoute).Append(doc.Int(3))
	if i, _ := l.UndoAction(); i != 2 {
		t.Errorf("UndoAction() = %d, want 2", i)
	}
	if rec.committed != 3 || rec.undone != 2 || rec.redone != 1 || rec.trimmed != 2 {
		t.Errorf("recorder = %+v", rec)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	l := newLedger(t, []int64{1, 2})
	l.Seq(itemsRoute).Select(1)
	snap := l.Snapshot()
	l.Seq(itemsRoute).Append(doc.Int(3))
	l.Seq(itemsRoute).ClearSelections()

	items := snap.(*doc.Record).Fields[0].(*doc.List)
	if items.Len() != 2 || !items.IsSelected(1) {
		t.Errorf("snapshot items = %d elements, selected(1) = %v", items.Len(), items.IsSelected(1))
	}
}

func TestDefaultIndexWidth(t *testing.T) {
	narrow := newLedger(t, []int64{1}, WithDefaultIndexWidth(schema.Width8))
	wide := newLedger(t, []int64{1}, WithDefaultIndexWidth(schema.Width64))
	narrow.Seq(itemsRoute).Insert(0, doc.Int(0))
	wide.Seq(itemsRoute).Insert(0, doc.Int(0))
	if got, want := wide.HistoryBytes()-narrow.HistoryBytes(), 7; got != want {
		t.Errorf("byte difference = %d, want %d", got, want)
	}
}
