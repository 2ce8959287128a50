package history

import (
	"log/slog"

	"github.com/google/uuid"
)

// Action is a handle on the action being built. Edits made while any handle
// is open are undone and redone together. Handles nest: the action is
// committed when the last open handle is closed.
//
//	a := l.CreateAction("rename rows")
//	defer a.Close()
type Action struct {
	l      *Ledger
	closed bool
}

// CreateAction opens a handle. meta is stored with the action when this is
// the outermost handle and ignored otherwise.
func (l *Ledger) CreateAction(meta any) *Action {
	l.open++
	if l.open == 1 {
		l.pending = pending{meta: meta, id: uuid.New()}
	}
	return &Action{l: l}
}

// Close releases the handle. Safe to call more than once; only the first
// call has effect.
func (a *Action) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.l.closeAction()
}

// Do runs fn inside an action.
func (l *Ledger) Do(meta any, fn func()) {
	a := l.CreateAction(meta)
	defer a.Close()
	fn()
}

// startAction appends the record of the pending action. It runs when the
// action records its first event, so an action without edits leaves no
// trace and does not disturb the redo window.
func (l *Ledger) startAction() {
	if l.redo > 0 {
		l.elide()
	}
	l.records = append(l.records, record{
		first: len(l.offsets),
		skip:  -1,
		id:    l.pending.id,
		meta:  l.pending.meta,
	})
	l.pending.started = true
}

// elide closes the redo window with a single elision record. The window's
// events stay in the log until trimmed.
func (l *Ledger) elide() {
	start := len(l.records) - l.redo
	l.records[start].skip = l.base + len(l.records)
	l.records = append(l.records, record{
		first:  len(l.offsets),
		elided: l.redo,
		skip:   -1,
	})
	l.pending.elided = l.redo
	l.pending.elidedFrom = l.base + start
	l.redo = 0
}

// reportElision logs and records the redo window closed by the edit that
// just committed.
func (l *Ledger) reportElision() {
	if l.pending.elided == 0 {
		return
	}
	l.logger.Debug("elided redo window",
		slog.Int("records", l.pending.elided),
		slog.Int("from", l.pending.elidedFrom))
	l.rec.ActionsElided(l.pending.elided)
	l.pending.elided = 0
}

func (l *Ledger) closeAction() {
	l.open--
	if l.open > 0 {
		return
	}
	started := l.pending.started
	l.pending = pending{}
	if !started {
		return
	}

	i := len(l.records) - 1
	events := l.eventEnd(i) - l.records[i].first
	bytes := l.recordBytes(i)
	l.logger.Debug("action committed",
		slog.Int("index", l.base+i),
		slog.Int("events", events),
		slog.Int("bytes", bytes))
	l.rec.ActionCommitted(events, bytes)

	if l.budget > 0 && l.HistoryBytes() > l.budget {
		before := l.base
		l.TrimHistoryToSize(l.budget)
		l.logger.Debug("history over budget",
			slog.Int("budget", l.budget),
			slog.Int("trimmed", l.base-before),
			slog.Int("bytes", l.HistoryBytes()))
	}
	l.rec.HistoryBytes(l.HistoryBytes())
}

// undoTarget returns the relative index of the record UndoAction would
// undo, or -1.
func (l *Ledger) undoTarget() int {
	i := len(l.records) - l.redo - 1
	for i >= 0 && l.records[i].isElision() {
		i -= l.records[i].elided + 1
	}
	return i
}

// UndoAction undoes the action before the cursor, stepping over elided
// windows. It returns the absolute index of the undone action, or false
// when nothing can be undone. It panics if an action is open.
func (l *Ledger) UndoAction() (int, bool) {
	l.mustBeIdle("undo")
	i := l.undoTarget()
	if i < 0 {
		return -1, false
	}
	l.replayAction(i, dirUndo)
	l.redo = len(l.records) - i
	l.rec.ActionUndone()
	return l.base + i, true
}

// RedoAction redoes the action at the cursor and moves the cursor past any
// elided windows that follow it. It returns the absolute index of the
// redone action, or false when nothing can be redone. It panics if an action
// is open.
func (l *Ledger) RedoAction() (int, bool) {
	l.mustBeIdle("redo")
	if l.redo == 0 {
		return -1, false
	}
	i := len(l.records) - l.redo
	l.replayAction(i, dirRedo)

	c := i + 1
	for c < len(l.records) && l.records[c].skip >= 0 {
		c = l.records[c].skip - l.base + 1
	}
	l.redo = len(l.records) - c
	l.rec.ActionRedone()
	return l.base + i, true
}

// replayAction runs the events of record i in log order for redo and in
// reverse for undo.
func (l *Ledger) replayAction(i int, dir direction) {
	first, end := l.records[i].first, l.eventEnd(i)
	if dir == dirUndo {
		for e := end - 1; e >= first; e-- {
			l.replayEvent(e, dir)
		}
		return
	}
	for e := first; e < end; e++ {
		l.replayEvent(e, dir)
	}
}

// ClearHistory discards every event and record. Record indices keep
// counting from where they were. It panics if an action is open or redos
// are pending.
func (l *Ledger) ClearHistory() {
	l.mustBeIdle("clear history")
	if l.redo > 0 {
		panic(redoPending("clear history"))
	}
	dropped, bytes := len(l.records), l.log.Len()-1
	l.base += len(l.records)
	l.records = nil
	l.offsets = nil
	l.log.Reset([]byte{0})
	l.rec.HistoryTrimmed(dropped, bytes)
	l.rec.HistoryBytes(l.HistoryBytes())
}
