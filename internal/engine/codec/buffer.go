package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/dshills/edithistory/internal/engine/schema"
)

// Buffer is an append-only byte writer.
type Buffer struct {
	b []byte
}

// NewBuffer wraps b; writes append to it.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Bytes returns the written bytes.
func (w *Buffer) Bytes() []byte { return w.b }

// Len returns the number of written bytes.
func (w *Buffer) Len() int { return len(w.b) }

// Truncate discards everything after the first n bytes.
func (w *Buffer) Truncate(n int) { w.b = w.b[:n] }

// Reset replaces the underlying bytes.
func (w *Buffer) Reset(b []byte) { w.b = b }

// Byte appends one byte.
func (w *Buffer) Byte(v byte) { w.b = append(w.b, v) }

// Bool appends a boolean as one byte.
func (w *Buffer) Bool(v bool) {
	if v {
		w.b = append(w.b, 1)
	} else {
		w.b = append(w.b, 0)
	}
}

// Uint appends the low size bytes of v.
func (w *Buffer) Uint(size int, v uint64) {
	switch size {
	case 1:
		w.b = append(w.b, byte(v))
	case 2:
		w.b = binary.LittleEndian.AppendUint16(w.b, uint16(v))
	case 4:
		w.b = binary.LittleEndian.AppendUint32(w.b, uint32(v))
	case 8:
		w.b = binary.LittleEndian.AppendUint64(w.b, v)
	default:
		panic(fmt.Sprintf("codec: unsupported size %d", size))
	}
}

// Raw appends p verbatim.
func (w *Buffer) Raw(p []byte) { w.b = append(w.b, p...) }

// Index appends an index or count at the given width.
func (w *Buffer) Index(width schema.Width, i int) {
	if i < 0 || uint64(i) > width.Max() {
		panic(fmt.Errorf("%w: %d at width %s", ErrIndexOverflow, i, width))
	}
	w.Uint(width.Bytes(), uint64(i))
}

// Indices appends a count followed by the indices.
func (w *Buffer) Indices(width schema.Width, idxs []int) {
	w.Index(width, len(idxs))
	for _, i := range idxs {
		w.Index(width, i)
	}
}

// Reader reads sequentially from a byte slice.
type Reader struct {
	b   []byte
	off int
}

// NewReader returns a reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Offset returns the current read position.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.b) - r.off }

// Done reports whether every byte has been read.
func (r *Reader) Done() bool { return r.off >= len(r.b) }

func (r *Reader) need(n int) {
	if r.off+n > len(r.b) {
		panic(fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrTruncated, n, r.off, len(r.b)))
	}
}

// Byte reads one byte.
func (r *Reader) Byte() byte {
	r.need(1)
	v := r.b[r.off]
	r.off++
	return v
}

// Peek returns the next byte without consuming it.
func (r *Reader) Peek() byte {
	r.need(1)
	return r.b[r.off]
}

// Bool reads a boolean byte.
func (r *Reader) Bool() bool { return r.Byte() != 0 }

// Uint reads a size-byte little-endian unsigned integer.
func (r *Reader) Uint(size int) uint64 {
	r.need(size)
	p := r.b[r.off : r.off+size]
	r.off += size
	switch size {
	case 1:
		return uint64(p[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(p))
	case 4:
		return uint64(binary.LittleEndian.Uint32(p))
	case 8:
		return binary.LittleEndian.Uint64(p)
	}
	panic(fmt.Sprintf("codec: unsupported size %d", size))
}

// Int reads a size-byte two's complement integer and sign-extends it.
func (r *Reader) Int(size int) int64 {
	shift := 64 - 8*uint(size)
	return int64(r.Uint(size)<<shift) >> shift
}

// Raw reads n bytes. The returned slice aliases the reader's buffer.
func (r *Reader) Raw(n int) []byte {
	r.need(n)
	p := r.b[r.off : r.off+n]
	r.off += n
	return p
}

// Index reads an index or count at the given width.
func (r *Reader) Index(width schema.Width) int {
	return int(r.Uint(width.Bytes()))
}

// Indices reads a count followed by that many indices.
func (r *Reader) Indices(width schema.Width) []int {
	n := r.Index(width)
	out := make([]int, n)
	for i := range out {
		out[i] = r.Index(width)
	}
	return out
}
