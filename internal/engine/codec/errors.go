package codec

import "errors"

var (
	// ErrTruncated indicates a read past the end of the buffer. The event log
	// is written and read only by its ledger, so this is an invariant
	// violation, never a recoverable condition.
	ErrTruncated = errors.New("codec: truncated buffer")

	// ErrIndexOverflow indicates an index or count wider than its node's
	// declared index width.
	ErrIndexOverflow = errors.New("codec: index exceeds width")
)
