package doc

import "errors"

var (
	// ErrTypeMismatch indicates a value does not conform to its schema type.
	ErrTypeMismatch = errors.New("value does not match schema type")

	// ErrOutOfRange indicates an integer outside its declared width.
	ErrOutOfRange = errors.New("value out of range")
)
