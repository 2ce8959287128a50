package doc

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/dshills/edithistory/internal/engine/schema"
)

// FromNative converts plain Go data, as produced by YAML, JSON or Lua
// decoders, into a value of type t. Records accept maps keyed by field name
// or slices in field order; nil means "zero" except for optionals, where it
// means absent.
func FromNative(t *schema.Type, x any) (Value, error) {
	if x == nil {
		return Zero(t), nil
	}
	switch t.Kind() {
	case schema.KindScalar:
		return scalarFromNative(t.ScalarKind(), x)

	case schema.KindRecord:
		r := &Record{Fields: make([]Value, t.FieldCount())}
		switch m := x.(type) {
		case map[string]any:
			for name := range m {
				if _, ok := t.FieldIndex(name); !ok {
					return nil, fmt.Errorf("%w: %s has no field %q", ErrTypeMismatch, t.Name(), name)
				}
			}
			for i := range r.Fields {
				f := t.FieldAt(i)
				fv, err := FromNative(f.Type, m[f.Name])
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
				}
				r.Fields[i] = fv
			}
		case []any:
			if len(m) != len(r.Fields) {
				return nil, fmt.Errorf("%w: %s has %d fields, got %d", ErrTypeMismatch, t.Name(), len(r.Fields), len(m))
			}
			for i := range r.Fields {
				fv, err := FromNative(t.FieldAt(i).Type, m[i])
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", t.Name(), t.FieldAt(i).Name, err)
				}
				r.Fields[i] = fv
			}
		default:
			return nil, fmt.Errorf("%w: %T is not a record", ErrTypeMismatch, x)
		}
		return r, nil

	case schema.KindSequence, schema.KindArray:
		items, ok := x.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a list", ErrTypeMismatch, x)
		}
		if t.Kind() == schema.KindArray && len(items) != t.Len() {
			return nil, fmt.Errorf("%w: %s needs %d elements, got %d", ErrTypeMismatch, t, t.Len(), len(items))
		}
		l := &List{elems: make([]Value, len(items))}
		for i, item := range items {
			ev, err := FromNative(t.ElemType(), item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			l.elems[i] = ev
		}
		return l, nil

	case schema.KindOptional:
		ev, err := FromNative(t.ElemType(), x)
		if err != nil {
			return nil, err
		}
		return &Optional{Value: ev}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTypeMismatch, t)
}

func scalarFromNative(k schema.ScalarKind, x any) (Value, error) {
	switch {
	case k == schema.ScalarBool:
		if b, ok := x.(bool); ok {
			return conformScalar(k, Bool(b))
		}
	case k == schema.ScalarString:
		if s, ok := x.(string); ok {
			return conformScalar(k, String(s))
		}
	case k.IsSigned():
		if i, ok := toInt64(x); ok {
			return conformScalar(k, Int(i))
		}
	case k.IsUnsigned():
		if i, ok := toUint64(x); ok {
			return conformScalar(k, Uint(i))
		}
	case k.IsFloat():
		if f, ok := toFloat64(x); ok {
			return conformScalar(k, Float(f))
		}
	}
	return nil, fmt.Errorf("%w: %T (%v) is not %s", ErrTypeMismatch, x, x, k)
}

func toInt64(x any) (int64, bool) {
	switch n := x.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n), true
		}
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

func toUint64(x any) (uint64, bool) {
	switch n := x.(type) {
	case int:
		return uint64(n), n >= 0
	case int64:
		return uint64(n), n >= 0
	case uint64:
		return n, true
	case float64:
		if n == math.Trunc(n) && n >= 0 && n < math.MaxUint64 {
			return uint64(n), true
		}
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		return u, err == nil
	case string:
		u, err := strconv.ParseUint(n, 10, 64)
		return u, err == nil
	}
	return 0, false
}

func toFloat64(x any) (float64, bool) {
	switch n := x.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ToNative converts v to plain Go data: records become maps keyed by field
// name, lists become slices, absent optionals become nil.
func ToNative(t *schema.Type, v Value) any {
	switch x := v.(type) {
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case Uint:
		return uint64(x)
	case Float:
		return float64(x)
	case String:
		return string(x)
	case *Record:
		m := make(map[string]any, len(x.Fields))
		for i, f := range x.Fields {
			m[t.FieldAt(i).Name] = ToNative(t.FieldAt(i).Type, f)
		}
		return m
	case *List:
		out := make([]any, len(x.elems))
		for i, e := range x.elems {
			out[i] = ToNative(t.ElemType(), e)
		}
		return out
	case *Optional:
		if !x.Present() {
			return nil
		}
		return ToNative(t.ElemType(), x.Value)
	}
	return nil
}
