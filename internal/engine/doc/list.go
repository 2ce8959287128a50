package doc

import (
	"slices"

	"github.com/dshills/edithistory/internal/engine/schema"
)

// List is the value of a sequence or array node.
//
// Besides its elements a List carries a selection set and, once the caller
// attaches anything, a parallel slice of attached payload. Every structural
// primitive keeps both consistent with the elements.
type List struct {
	elems    []Value
	sel      []int
	attached []any
}

// NewList creates a list holding vals.
func NewList(vals ...Value) *List {
	return &List{elems: vals}
}

// Kind returns schema.KindSequence. Arrays are Lists too; the schema
// distinguishes them.
func (*List) Kind() schema.Kind { return schema.KindSequence }

// Clone returns a deep copy of the elements without selection or payload.
func (l *List) Clone() Value {
	out := &List{elems: make([]Value, len(l.elems))}
	for i, e := range l.elems {
		out.elems[i] = e.Clone()
	}
	return out
}

// CloneState returns a deep copy including the selection sets of this list
// and of every list nested inside it. Attached payload is copied shallowly.
func (l *List) CloneState() *List {
	out := &List{
		elems: make([]Value, len(l.elems)),
		sel:   slices.Clone(l.sel),
	}
	if l.attached != nil {
		out.attached = slices.Clone(l.attached)
	}
	for i, e := range l.elems {
		out.elems[i] = CloneState(e)
	}
	return out
}

// CloneState deep-copies v including nested list state.
func CloneState(v Value) Value {
	switch x := v.(type) {
	case *List:
		return x.CloneState()
	case *Record:
		out := &Record{Fields: make([]Value, len(x.Fields))}
		for i, f := range x.Fields {
			out.Fields[i] = CloneState(f)
		}
		return out
	case *Optional:
		if x.Value == nil {
			return &Optional{}
		}
		return &Optional{Value: CloneState(x.Value)}
	default:
		return v.Clone()
	}
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elems) }

// Cap returns the reserved capacity.
func (l *List) Cap() int { return cap(l.elems) }

// At returns element i.
func (l *List) At(i int) Value { return l.elems[i] }

// Slot returns a mutable reference to element i. The reference is valid
// until the next structural change.
func (l *List) Slot(i int) *Value { return &l.elems[i] }

// Elems returns a copy of the element slice.
func (l *List) Elems() []Value { return slices.Clone(l.elems) }

// Reserve grows capacity to at least n elements.
func (l *List) Reserve(n int) {
	if n > cap(l.elems) {
		l.elems = slices.Grow(l.elems, n-len(l.elems))
	}
}

// Clip drops unused capacity.
func (l *List) Clip() {
	l.elems = slices.Clip(l.elems)
}

// InsertAt inserts vals before index i. Selected indices at or after i shift
// right; attached slots for the new elements are empty.
func (l *List) InsertAt(i int, vals ...Value) {
	n := len(vals)
	if n == 0 {
		return
	}
	l.elems = slices.Insert(l.elems, i, vals...)
	for k, s := range l.sel {
		if s >= i {
			l.sel[k] = s + n
		}
	}
	if l.attached != nil {
		l.attached = slices.Insert(l.attached, i, make([]any, n)...)
	}
}

// EraseAt removes n elements starting at i and returns them. Removed
// elements leave the selection; later indices shift left.
func (l *List) EraseAt(i, n int) []Value {
	if n == 0 {
		return nil
	}
	removed := slices.Clone(l.elems[i : i+n])
	l.elems = slices.Delete(l.elems, i, i+n)
	if len(l.sel) > 0 {
		kept := l.sel[:0]
		for _, s := range l.sel {
			switch {
			case s < i:
				kept = append(kept, s)
			case s >= i+n:
				kept = append(kept, s-n)
			}
		}
		l.sel = kept
	}
	if l.attached != nil {
		l.attached = slices.Delete(l.attached, i, i+n)
	}
	return removed
}

// Permute reorders the elements so that new[p] = old[perm[p]]. Selected
// indices and attached slots follow their elements.
func (l *List) Permute(perm []int) {
	if len(perm) != len(l.elems) {
		panic("doc: permutation length mismatch")
	}
	elems := make([]Value, len(perm))
	for p, src := range perm {
		elems[p] = l.elems[src]
	}
	l.elems = elems

	if l.attached != nil {
		attached := make([]any, len(perm))
		for p, src := range perm {
			attached[p] = l.attached[src]
		}
		l.attached = attached
	}

	if len(l.sel) > 0 {
		inv := Inverse(perm)
		for k, s := range l.sel {
			l.sel[k] = inv[s]
		}
	}
}

// Resize truncates or extends the list to n elements, filling with zero().
func (l *List) Resize(n int, zero func() Value) {
	switch {
	case n < len(l.elems):
		l.EraseAt(n, len(l.elems)-n)
	case n > len(l.elems):
		fill := make([]Value, n-len(l.elems))
		for i := range fill {
			fill[i] = zero()
		}
		l.InsertAt(len(l.elems), fill...)
	}
}

// ReplaceElems swaps in a new element slice. The selection is cleared and
// attached slots are kept by index, truncated or padded to the new length.
func (l *List) ReplaceElems(vals []Value) {
	l.elems = vals
	l.sel = nil
	if l.attached != nil {
		switch {
		case len(l.attached) > len(vals):
			l.attached = l.attached[:len(vals)]
		case len(l.attached) < len(vals):
			l.attached = append(l.attached, make([]any, len(vals)-len(l.attached))...)
		}
	}
}

// Selection returns a copy of the selected indices in selection order.
func (l *List) Selection() []int { return slices.Clone(l.sel) }

// SelectionLen returns the number of selected indices.
func (l *List) SelectionLen() int { return len(l.sel) }

// IsSelected reports whether index i is selected.
func (l *List) IsSelected(i int) bool { return slices.Contains(l.sel, i) }

// SelectionPos returns the position of index i within the selection, or -1.
func (l *List) SelectionPos(i int) int { return slices.Index(l.sel, i) }

// SetSelection replaces the selection. The caller guarantees the indices
// are in range and distinct.
func (l *List) SetSelection(idxs []int) {
	if len(idxs) == 0 {
		l.sel = nil
		return
	}
	l.sel = slices.Clone(idxs)
}

// Select appends indices to the selection.
func (l *List) Select(idxs ...int) {
	l.sel = append(l.sel, idxs...)
}

// TruncateSelection keeps the first n selected indices.
func (l *List) TruncateSelection(n int) {
	l.sel = l.sel[:n]
}

// DeselectAt removes the selection entry at position pos.
func (l *List) DeselectAt(pos int) {
	l.sel = slices.Delete(l.sel, pos, pos+1)
}

// InsertSelectionAt puts index i back at position pos of the selection.
func (l *List) InsertSelectionAt(pos, i int) {
	l.sel = slices.Insert(l.sel, pos, i)
}

// Attach stores caller payload for element i. Payload is not recorded in
// history; it only follows its element through structural edits.
func (l *List) Attach(i int, data any) {
	if l.attached == nil {
		l.attached = make([]any, len(l.elems))
	}
	l.attached[i] = data
}

// Attached returns the payload attached to element i, or nil.
func (l *List) Attached(i int) any {
	if l.attached == nil {
		return nil
	}
	return l.attached[i]
}

// HasAttached reports whether any payload slots have been allocated.
func (l *List) HasAttached() bool { return l.attached != nil }

// Inverse returns the inverse of a permutation.
func Inverse(perm []int) []int {
	inv := make([]int, len(perm))
	for p, src := range perm {
		inv[src] = p
	}
	return inv
}
