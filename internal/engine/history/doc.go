// Package history records edits to a schema-typed document and plays them
// back for undo and redo.
//
// A Ledger owns one document. Every change goes through a Node or Seq
// accessor, which appends an event to a single byte log and then applies the
// event to the document. Undo and redo read the same bytes back through one
// opcode switch, so forward edits, undo and redo cannot disagree.
//
// # Actions
//
// Events are grouped into actions, the unit of undo. Handles nest; the
// action is committed when the last one closes:
//
//	a := l.CreateAction("reorder")
//	l.Seq(items).MoveTo(0, 2)
//	l.Seq(items).Select(2)
//	a.Close()
//
//	l.UndoAction() // both edits undone
//
// An edit made with no open handle is an action of its own.
//
// # Event Layout
//
// Buffer byte 0 is reserved. Each event is
//
//	opcode | route | [selection indices] | operands
//
// Operands carry whatever the inverse needs: prior values for replacements,
// removed elements with the prior selection for removals, permutations for
// sorts. Reorders other than sort store only their arguments and recompute
// the permutation on replay.
//
// # Elision
//
// Starting an action while undone actions are pending closes the redo
// window with one elision record. The window's events stay in the log and
// still count in TotalActions, but undo steps over them and redo never
// replays them.
//
// # Trimming
//
// TrimHistory and TrimHistoryToSize drop the oldest records and their bytes.
// Action indices are absolute and survive trimming. A cut never separates an
// elision record from the window it closed.
//
// # Errors
//
// Invalid arguments, mismatched routes and history calls made in the wrong
// state are programmer errors and panic with a wrapped sentinel from
// errors.go. An edit that panics leaves no partial event behind.
//
// # Thread Safety
//
// A Ledger is not safe for concurrent use. The engine package provides a
// locked wrapper that also turns panics into errors.
package history
