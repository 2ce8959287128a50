package schema

import "errors"

// Errors returned while building or parsing schemas.
var (
	// ErrUnknownType indicates a type expression names no scalar or record.
	ErrUnknownType = errors.New("unknown type")

	// ErrInvalidType indicates a malformed type expression.
	ErrInvalidType = errors.New("invalid type expression")

	// ErrCyclicType indicates records that contain themselves by value.
	ErrCyclicType = errors.New("cyclic record type")

	// ErrDuplicateField indicates two fields of one record share a name.
	ErrDuplicateField = errors.New("duplicate field name")

	// ErrInvalidWidth indicates an unrecognised index width.
	ErrInvalidWidth = errors.New("invalid index width")
)
