package codec

import (
	"fmt"
	"math"

	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// Codec encodes values against their schema types. Width is the default
// index width for growable sequences and strings.
type Codec struct {
	Width schema.Width
}

// New returns a Codec using def as the default index width.
func New(def schema.Width) Codec {
	return Codec{Width: def}
}

// IndexWidth returns the index width of a list (or string) node.
func (c Codec) IndexWidth(t *schema.Type) schema.Width {
	return t.IndexWidthOr(c.Width)
}

// WriteValue appends the encoding of v.
func (c Codec) WriteValue(w *Buffer, t *schema.Type, v doc.Value) {
	c.write(w, t, v, false)
}

// WriteState appends the encoding of v followed, for every selectable list
// inside it, by that list's selection set.
func (c Codec) WriteState(w *Buffer, t *schema.Type, v doc.Value) {
	c.write(w, t, v, true)
}

// ReadValue decodes a value written by WriteValue.
func (c Codec) ReadValue(r *Reader, t *schema.Type) doc.Value {
	return c.read(r, t, false)
}

// ReadState decodes a value written by WriteState, restoring selections.
func (c Codec) ReadState(r *Reader, t *schema.Type) doc.Value {
	return c.read(r, t, true)
}

func (c Codec) write(w *Buffer, t *schema.Type, v doc.Value, state bool) {
	switch t.Kind() {
	case schema.KindScalar:
		c.writeScalar(w, t, v)

	case schema.KindRecord:
		rec := v.(*doc.Record)
		for i, f := range rec.Fields {
			c.write(w, t.FieldAt(i).Type, f, state)
		}

	case schema.KindSequence, schema.KindArray:
		l := v.(*doc.List)
		width := c.IndexWidth(t)
		w.Index(width, l.Len())
		for i := 0; i < l.Len(); i++ {
			c.write(w, t.ElemType(), l.At(i), state)
		}
		if state && t.IsSelectable() {
			w.Indices(width, l.Selection())
		}

	case schema.KindOptional:
		o := v.(*doc.Optional)
		w.Bool(o.Present())
		if o.Present() {
			c.write(w, t.ElemType(), o.Value, state)
		}

	default:
		panic(fmt.Sprintf("codec: cannot encode %s", t))
	}
}

func (c Codec) writeScalar(w *Buffer, t *schema.Type, v doc.Value) {
	k := t.ScalarKind()
	switch {
	case k == schema.ScalarBool:
		w.Bool(bool(v.(doc.Bool)))
	case k.IsSigned():
		w.Uint(k.Size(), uint64(v.(doc.Int)))
	case k.IsUnsigned():
		w.Uint(k.Size(), uint64(v.(doc.Uint)))
	case k == schema.ScalarFloat32:
		w.Uint(4, uint64(math.Float32bits(float32(v.(doc.Float)))))
	case k == schema.ScalarFloat64:
		w.Uint(8, math.Float64bits(float64(v.(doc.Float))))
	case k == schema.ScalarString:
		s := string(v.(doc.String))
		w.Index(c.IndexWidth(t), len(s))
		w.Raw([]byte(s))
	}
}

func (c Codec) read(r *Reader, t *schema.Type, state bool) doc.Value {
	switch t.Kind() {
	case schema.KindScalar:
		return c.readScalar(r, t)

	case schema.KindRecord:
		rec := &doc.Record{Fields: make([]doc.Value, t.FieldCount())}
		for i := range rec.Fields {
			rec.Fields[i] = c.read(r, t.FieldAt(i).Type, state)
		}
		return rec

	case schema.KindSequence, schema.KindArray:
		width := c.IndexWidth(t)
		n := r.Index(width)
		elems := make([]doc.Value, n)
		for i := range elems {
			elems[i] = c.read(r, t.ElemType(), state)
		}
		l := doc.NewList(elems...)
		if state && t.IsSelectable() {
			l.SetSelection(r.Indices(width))
		}
		return l

	case schema.KindOptional:
		if !r.Bool() {
			return doc.None()
		}
		return doc.Some(c.read(r, t.ElemType(), state))
	}
	panic(fmt.Sprintf("codec: cannot decode %s", t))
}

func (c Codec) readScalar(r *Reader, t *schema.Type) doc.Value {
	k := t.ScalarKind()
	switch {
	case k == schema.ScalarBool:
		return doc.Bool(r.Bool())
	case k.IsSigned():
		return doc.Int(r.Int(k.Size()))
	case k.IsUnsigned():
		return doc.Uint(r.Uint(k.Size()))
	case k == schema.ScalarFloat32:
		return doc.Float(math.Float32frombits(uint32(r.Uint(4))))
	case k == schema.ScalarFloat64:
		return doc.Float(math.Float64frombits(r.Uint(8)))
	default:
		n := r.Index(c.IndexWidth(t))
		return doc.String(r.Raw(n))
	}
}
