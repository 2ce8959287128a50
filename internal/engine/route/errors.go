package route

import "errors"

var (
	// ErrRouteMismatch indicates a hop that does not apply to the node it
	// reaches, such as a field hop on a list or an index past the end.
	ErrRouteMismatch = errors.New("route: segment does not match document")

	// ErrDuplicateSelection indicates a second Selected hop in one route.
	ErrDuplicateSelection = errors.New("route: more than one selection hop")

	// ErrSyntax indicates a malformed textual route.
	ErrSyntax = errors.New("route: syntax error")
)
