package doc

import (
	"cmp"
	"slices"
	"strings"
)

// Equal reports whether a and b hold the same data. List state is ignored.
func Equal(a, b Value) bool {
	return equal(a, b, false)
}

// EqualState reports whether a and b hold the same data and the same
// selection sets at every list.
func EqualState(a, b Value) bool {
	return equal(a, b, true)
}

func equal(a, b Value, state bool) bool {
	switch x := a.(type) {
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Uint:
		y, ok := b.(Uint)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && (x == y || (x != x && y != y))
	case String:
		y, ok := b.(String)
		return ok && x == y
	case *Record:
		y, ok := b.(*Record)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !equal(x.Fields[i], y.Fields[i], state) {
				return false
			}
		}
		return true
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.elems) != len(y.elems) {
			return false
		}
		if state && !slices.Equal(x.sel, y.sel) {
			return false
		}
		for i := range x.elems {
			if !equal(x.elems[i], y.elems[i], state) {
				return false
			}
		}
		return true
	case *Optional:
		y, ok := b.(*Optional)
		if !ok || x.Present() != y.Present() {
			return false
		}
		return !x.Present() || equal(x.Value, y.Value, state)
	}
	return a == nil && b == nil
}

// Compare orders two values of the same type. Records and lists compare
// lexicographically, absent optionals sort first, false sorts before true.
func Compare(a, b Value) int {
	switch x := a.(type) {
	case Bool:
		y := b.(Bool)
		switch {
		case x == y:
			return 0
		case !bool(x):
			return -1
		default:
			return 1
		}
	case Int:
		return cmp.Compare(x, b.(Int))
	case Uint:
		return cmp.Compare(x, b.(Uint))
	case Float:
		return cmp.Compare(x, b.(Float))
	case String:
		return strings.Compare(string(x), string(b.(String)))
	case *Record:
		y := b.(*Record)
		for i := range x.Fields {
			if c := Compare(x.Fields[i], y.Fields[i]); c != 0 {
				return c
			}
		}
		return 0
	case *List:
		y := b.(*List)
		n := min(len(x.elems), len(y.elems))
		for i := 0; i < n; i++ {
			if c := Compare(x.elems[i], y.elems[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(x.elems), len(y.elems))
	case *Optional:
		y := b.(*Optional)
		switch {
		case !x.Present() && !y.Present():
			return 0
		case !x.Present():
			return -1
		case !y.Present():
			return 1
		}
		return Compare(x.Value, y.Value)
	}
	return 0
}

// Less reports whether a sorts strictly before b.
func Less(a, b Value) bool {
	return Compare(a, b) < 0
}
