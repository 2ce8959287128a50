// Package engine provides the locked facade over the edit history engine.
//
// The engine package combines a schema, a document, and the history of every
// edit made to it into a single thread-safe API. The CLI, the Lua runtime
// and the history viewer all work through it.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - schema: document types, index widths, YAML schema files
//   - doc: document values, selection sets and attached payload
//   - codec: the binary encoding of values and indices
//   - route: paths into the document and their binary form
//   - history: the event log, edit operations, undo/redo and trimming
//
// # Thread Safety
//
// All Engine operations are safe for concurrent use. Reads take a read lock;
// edits and history operations take the write lock. Callbacks passed to Do
// and Edit, and Observer callbacks, run with the lock held and must not call
// back into the Engine. Inside Do, read through the Tx (Get, Native) instead.
//
// # Basic Usage
//
//	t, _ := schema.ParseYAML(data)
//	e, _ := engine.New(t)
//
//	// One edit, one action
//	e.Edit("items", func(s *engine.Seq) {
//		s.Append(doc.Int(40))
//	})
//
//	// Several edits, one action
//	e.Do("reorder", func(tx *engine.Tx) error {
//		tx.Seq("items").MoveTo(0, 2)
//		tx.Seq("items").Select(2)
//		return nil
//	})
//
//	e.Undo()
//	e.Redo()
//
// # Routes
//
// Paths are written with field names and bracketed indices. "[*]" applies
// an edit to every selected element of a selectable list:
//
//	e.Set("rows[*].label", doc.String("done"))
//
// # Errors
//
// The history package panics on programmer errors. The Engine recovers
// those panics and returns them, so callers can test them with errors.Is
// against history.ErrAlreadySelected, route.ErrRouteMismatch and the other
// sentinels.
package engine
