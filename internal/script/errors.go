package script

import (
	"errors"
	"fmt"
)

// Errors for script execution.
var (
	// ErrStateClosed is returned when running on a closed runtime.
	ErrStateClosed = errors.New("script runtime is closed")

	// ErrInsideAction is raised by history operations called while an
	// action is open.
	ErrInsideAction = errors.New("not allowed inside an action")

	// ErrNotList is raised by list operations on a route that is not a list.
	ErrNotList = errors.New("route is not a list")
)

// Error is a failed script run.
type Error struct {
	// Chunk names the script: a file path or "<string>".
	Chunk string

	// Message is the Lua error message, including position information.
	Message string

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Chunk, e.Message)
}

// Unwrap returns the engine or context error that ended the run, if any.
func (e *Error) Unwrap() error { return e.cause }
