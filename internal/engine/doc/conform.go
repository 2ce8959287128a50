package doc

import (
	"fmt"
	"math"

	"github.com/dshills/edithistory/internal/engine/schema"
)

// Zero returns the default value of t: zero scalars, records of zero fields,
// empty sequences, arrays of zero elements and absent optionals.
func Zero(t *schema.Type) Value {
	switch t.Kind() {
	case schema.KindScalar:
		return zeroScalar(t.ScalarKind())
	case schema.KindRecord:
		r := &Record{Fields: make([]Value, t.FieldCount())}
		for i := range r.Fields {
			r.Fields[i] = Zero(t.FieldAt(i).Type)
		}
		return r
	case schema.KindSequence:
		return &List{}
	case schema.KindArray:
		elems := make([]Value, t.Len())
		for i := range elems {
			elems[i] = Zero(t.ElemType())
		}
		return &List{elems: elems}
	case schema.KindOptional:
		return &Optional{}
	}
	panic(fmt.Sprintf("doc: no zero value for %s", t))
}

func zeroScalar(k schema.ScalarKind) Value {
	switch {
	case k == schema.ScalarBool:
		return Bool(false)
	case k.IsSigned():
		return Int(0)
	case k.IsUnsigned():
		return Uint(0)
	case k.IsFloat():
		return Float(0)
	default:
		return String("")
	}
}

// Conform checks v against t and returns an owned, normalised copy: lists
// carry no state, float32 values are rounded to float32 precision.
func Conform(t *schema.Type, v Value) (Value, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil value for %s", ErrTypeMismatch, t)
	}
	switch t.Kind() {
	case schema.KindScalar:
		return conformScalar(t.ScalarKind(), v)

	case schema.KindRecord:
		r, ok := v.(*Record)
		if !ok || len(r.Fields) != t.FieldCount() {
			return nil, mismatch(t, v)
		}
		out := &Record{Fields: make([]Value, len(r.Fields))}
		for i, f := range r.Fields {
			fv, err := Conform(t.FieldAt(i).Type, f)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name(), t.FieldAt(i).Name, err)
			}
			out.Fields[i] = fv
		}
		return out, nil

	case schema.KindSequence, schema.KindArray:
		l, ok := v.(*List)
		if !ok {
			return nil, mismatch(t, v)
		}
		if t.Kind() == schema.KindArray && l.Len() != t.Len() {
			return nil, fmt.Errorf("%w: %s needs %d elements, got %d", ErrTypeMismatch, t, t.Len(), l.Len())
		}
		out := &List{elems: make([]Value, l.Len())}
		for i, e := range l.elems {
			ev, err := Conform(t.ElemType(), e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out.elems[i] = ev
		}
		return out, nil

	case schema.KindOptional:
		o, ok := v.(*Optional)
		if !ok {
			return nil, mismatch(t, v)
		}
		if !o.Present() {
			return &Optional{}, nil
		}
		ev, err := Conform(t.ElemType(), o.Value)
		if err != nil {
			return nil, err
		}
		return &Optional{Value: ev}, nil
	}
	return nil, mismatch(t, v)
}

// MustConform is Conform for values known to be valid; it panics otherwise.
func MustConform(t *schema.Type, v Value) Value {
	out, err := Conform(t, v)
	if err != nil {
		panic(err)
	}
	return out
}

func conformScalar(k schema.ScalarKind, v Value) (Value, error) {
	switch {
	case k == schema.ScalarBool:
		if b, ok := v.(Bool); ok {
			return b, nil
		}
	case k == schema.ScalarString:
		if s, ok := v.(String); ok {
			return s, nil
		}
	case k.IsSigned():
		i, ok := v.(Int)
		if !ok {
			break
		}
		bits := uint(k.Size() * 8)
		lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
		if bits == 64 {
			lo, hi = math.MinInt64, math.MaxInt64
		}
		if int64(i) < lo || int64(i) > hi {
			return nil, fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, i, k)
		}
		return i, nil
	case k.IsUnsigned():
		u, ok := v.(Uint)
		if !ok {
			break
		}
		if k != schema.ScalarUint64 && uint64(u) >= uint64(1)<<uint(k.Size()*8) {
			return nil, fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, u, k)
		}
		return u, nil
	case k == schema.ScalarFloat32:
		if f, ok := v.(Float); ok {
			return Float(float32(f)), nil
		}
	case k == schema.ScalarFloat64:
		if f, ok := v.(Float); ok {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %T is not %s", ErrTypeMismatch, v, k)
}

func mismatch(t *schema.Type, v Value) error {
	return fmt.Errorf("%w: %T is not %s", ErrTypeMismatch, v, t)
}
