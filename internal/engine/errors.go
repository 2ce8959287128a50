package engine

import "errors"

// Errors returned by engine operations. Ledger programmer errors are
// returned wrapped in their own sentinels from the history, route and
// codec packages.
var (
	// ErrNothingToUndo indicates no reachable action is before the cursor.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates no action is after the cursor.
	ErrNothingToRedo = errors.New("nothing to redo")
)
