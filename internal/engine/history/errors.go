package history

import "errors"

// Programmer errors. Operations panic with these (wrapped with context)
// rather than returning them; the engine facade recovers them into errors.
var (
	// ErrAlreadySelected indicates selecting an index that is selected.
	ErrAlreadySelected = errors.New("history: index already selected")

	// ErrNotSelected indicates deselecting an index that is not selected.
	ErrNotSelected = errors.New("history: index not selected")

	// ErrSizeMismatch indicates index and value lists of different lengths.
	ErrSizeMismatch = errors.New("history: index and value counts differ")

	// ErrActionOpen indicates undo, redo, trim or clear while an action is
	// open.
	ErrActionOpen = errors.New("history: action is open")

	// ErrRedoPending indicates trimming while undone actions can be redone.
	ErrRedoPending = errors.New("history: redo pending")

	// ErrNotSelectable indicates a selection operation on a list that has
	// no selection set.
	ErrNotSelectable = errors.New("history: list is not selectable")

	// ErrFixedSize indicates a size-changing operation on an array.
	ErrFixedSize = errors.New("history: array has fixed size")

	// ErrIndexOutOfRange indicates an element index past the end of a list.
	ErrIndexOutOfRange = errors.New("history: index out of range")

	// ErrTypeMismatch indicates a value or accessor that does not fit the
	// schema type of its node.
	ErrTypeMismatch = errors.New("history: type mismatch")

	// ErrInvalidInitial indicates an initial document that does not conform
	// to the schema.
	ErrInvalidInitial = errors.New("history: initial document does not match schema")
)
