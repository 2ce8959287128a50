package history

import (
	"fmt"
	"slices"

	"github.com/dshills/edithistory/internal/engine/codec"
	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/route"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// Seq edits a sequence or array node. Methods ending in N take an explicit
// index list; methods ending in Selected act on the list's own selection.
type Seq struct {
	Node
}

// Seq returns a list accessor for the node at r. It panics with
// ErrTypeMismatch if the node is not a list.
func (l *Ledger) Seq(r route.Route) *Seq {
	t := route.TypeAt(l.schema, r)
	if !t.IsSequence() {
		panic(fmt.Errorf("%w: %s is not a list", ErrTypeMismatch, t))
	}
	return &Seq{Node{l: l, r: r, t: t}}
}

func (s *Seq) elem() *schema.Type  { return s.t.ElemType() }
func (s *Seq) width() schema.Width { return s.l.codec.IndexWidth(s.t) }
func (s *Seq) c() codec.Codec      { return s.l.codec }

func (s *Seq) list() *doc.List { return s.target().List() }

// Len returns the number of elements.
func (s *Seq) Len() int { return s.list().Len() }

// At returns a copy of element i.
func (s *Seq) At(i int) doc.Value {
	list := s.list()
	checkIndex(i, list.Len())
	return doc.CloneState(list.At(i))
}

// Selection returns the selected indices in selection order.
func (s *Seq) Selection() []int { return s.list().Selection() }

// IsSelected reports whether index i is selected.
func (s *Seq) IsSelected(i int) bool { return s.list().IsSelected(i) }

// Attach stores caller payload with element i. Payload is not recorded; it
// follows its element through edits, undo and redo, and elements restored
// by undo come back without payload.
func (s *Seq) Attach(i int, data any) {
	list := s.list()
	checkIndex(i, list.Len())
	list.Attach(i, data)
}

// Attached returns the payload of element i.
func (s *Seq) Attached(i int) any {
	list := s.list()
	checkIndex(i, list.Len())
	return list.Attached(i)
}

func (s *Seq) edit(op OpKind, write func(list *doc.List, tg route.Target, w *codec.Buffer)) {
	s.l.edit(op, s.r, func(tg route.Target, w *codec.Buffer) {
		write(tg.List(), tg, w)
	})
}

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, n))
	}
}

func (s *Seq) mustGrow() {
	if !s.t.IsGrowable() {
		panic(fmt.Errorf("%w: %s", ErrFixedSize, s.t))
	}
}

func (s *Seq) mustSelect() {
	if !s.t.IsSelectable() {
		panic(fmt.Errorf("%w: %s", ErrNotSelectable, s.t))
	}
}

// checkRoom panics if growing list by n would exceed its index width.
func (s *Seq) checkRoom(list *doc.List, n int) {
	if uint64(list.Len()+n) > s.width().Max() {
		panic(fmt.Errorf("%w: %d elements exceed index width %s", ErrIndexOutOfRange, list.Len()+n, s.width()))
	}
}

func (s *Seq) conformAll(vals []doc.Value) []doc.Value {
	out := make([]doc.Value, len(vals))
	for i, v := range vals {
		out[i] = s.l.conform(s.elem(), v)
	}
	return out
}

// uniqueSorted returns the distinct indices in ascending order after
// checking each is below n.
func uniqueSorted(idxs []int, n int) []int {
	out := slices.Clone(idxs)
	for _, i := range out {
		checkIndex(i, n)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SetAt replaces element i.
func (s *Seq) SetAt(i int, v doc.Value) {
	s.l.At(s.r.Index(i)).Set(v)
}

// SetN replaces the elements at idxs with vals, pairwise.
func (s *Seq) SetN(idxs []int, vals []doc.Value) {
	if len(idxs) != len(vals) {
		panic(fmt.Errorf("%w: %d indices, %d values", ErrSizeMismatch, len(idxs), len(vals)))
	}
	vals = s.conformAll(vals)
	s.edit(OpSetN, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		for _, i := range idxs {
			checkIndex(i, list.Len())
		}
		w.Indices(s.width(), idxs)
		for k, i := range idxs {
			s.c().WriteState(w, s.elem(), list.At(i))
			s.c().WriteValue(w, s.elem(), vals[k])
		}
	})
}

// SetSelected replaces every selected element with v.
func (s *Seq) SetSelected(v doc.Value) {
	s.mustSelect()
	v = s.l.conform(s.elem(), v)
	s.edit(OpSetL, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		sel := list.Selection()
		w.Indices(s.width(), sel)
		for _, i := range sel {
			s.c().WriteState(w, s.elem(), list.At(i))
		}
		s.c().WriteValue(w, s.elem(), v)
	})
}

// Assign replaces the contents with n copies of v. Arrays only accept their
// own length.
func (s *Seq) Assign(n int, v doc.Value) {
	v = s.l.conform(s.elem(), v)
	s.assign(OpAssign, n, v)
}

// AssignDefault replaces the contents with n zero elements.
func (s *Seq) AssignDefault(n int) {
	s.assign(OpAssignDefault, n, nil)
}

func (s *Seq) assign(op OpKind, n int, v doc.Value) {
	s.edit(op, func(list *doc.List, tg route.Target, w *codec.Buffer) {
		if n < 0 || (!s.t.IsGrowable() && n != s.t.Len()) {
			panic(fmt.Errorf("%w: cannot assign %d elements to %s", ErrFixedSize, n, s.t))
		}
		if uint64(n) > s.width().Max() {
			panic(fmt.Errorf("%w: %d elements exceed index width %s", ErrIndexOutOfRange, n, s.width()))
		}
		s.c().WriteState(w, tg.Type, list)
		w.Index(s.width(), n)
		if op == OpAssign {
			s.c().WriteValue(w, s.elem(), v)
		}
	})
}

// Reserve grows the capacity to at least n elements.
func (s *Seq) Reserve(n int) {
	if n < 0 {
		panic(fmt.Errorf("%w: negative capacity %d", ErrIndexOutOfRange, n))
	}
	s.edit(OpReserve, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		w.Uint(8, uint64(list.Cap()))
		w.Uint(8, uint64(n))
	})
}

// Trim releases unused capacity.
func (s *Seq) Trim() {
	s.edit(OpTrim, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		w.Uint(8, uint64(list.Cap()))
	})
}

// Append adds v at the end.
func (s *Seq) Append(v doc.Value) {
	s.mustGrow()
	v = s.l.conform(s.elem(), v)
	s.edit(OpAppend, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		s.checkRoom(list, 1)
		s.c().WriteValue(w, s.elem(), v)
	})
}

// AppendN adds vals at the end, in order.
func (s *Seq) AppendN(vals ...doc.Value) {
	s.mustGrow()
	vals = s.conformAll(vals)
	s.edit(OpAppendN, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		s.checkRoom(list, len(vals))
		w.Index(s.width(), len(vals))
		for _, v := range vals {
			s.c().WriteValue(w, s.elem(), v)
		}
	})
}

// Insert puts v before index i; i may equal Len.
func (s *Seq) Insert(i int, v doc.Value) {
	s.mustGrow()
	v = s.l.conform(s.elem(), v)
	s.edit(OpInsert, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		checkIndex(i, list.Len()+1)
		s.checkRoom(list, 1)
		w.Index(s.width(), i)
		s.c().WriteValue(w, s.elem(), v)
	})
}

// InsertN puts vals, in order, before index i.
func (s *Seq) InsertN(i int, vals ...doc.Value) {
	s.mustGrow()
	vals = s.conformAll(vals)
	s.edit(OpInsertN, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		checkIndex(i, list.Len()+1)
		s.checkRoom(list, len(vals))
		w.Index(s.width(), i)
		w.Index(s.width(), len(vals))
		for _, v := range vals {
			s.c().WriteValue(w, s.elem(), v)
		}
	})
}

// Remove deletes element i. It leaves the selection if selected.
func (s *Seq) Remove(i int) {
	s.remove(OpRemove, func(list *doc.List) []int {
		checkIndex(i, list.Len())
		return []int{i}
	})
}

// RemoveN deletes the elements at idxs. Duplicates are ignored.
func (s *Seq) RemoveN(idxs ...int) {
	s.remove(OpRemoveN, func(list *doc.List) []int {
		return uniqueSorted(idxs, list.Len())
	})
}

// RemoveSelected deletes every selected element.
func (s *Seq) RemoveSelected() {
	s.mustSelect()
	s.remove(OpRemoveL, func(list *doc.List) []int {
		return uniqueSorted(list.Selection(), list.Len())
	})
}

func (s *Seq) remove(op OpKind, pick func(*doc.List) []int) {
	s.mustGrow()
	s.edit(op, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		idxs := pick(list)
		w.Indices(s.width(), idxs)
		for _, i := range idxs {
			s.c().WriteState(w, s.elem(), list.At(i))
		}
		w.Indices(s.width(), list.Selection())
	})
}

// Sort orders the elements ascending.
func (s *Seq) Sort() { s.sort(OpSort) }

// SortDesc orders the elements descending.
func (s *Seq) SortDesc() { s.sort(OpSortDesc) }

func (s *Seq) sort(op OpKind) {
	s.edit(op, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		w.Indices(s.width(), sortPerm(list.Elems(), op == OpSortDesc))
	})
}

// Swap exchanges elements i and j.
func (s *Seq) Swap(i, j int) {
	s.edit(OpSwap, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		checkIndex(i, list.Len())
		checkIndex(j, list.Len())
		w.Index(s.width(), i)
		w.Index(s.width(), j)
	})
}

// MoveUp moves element i one place toward the front.
func (s *Seq) MoveUp(i int) { s.moveOne(OpMoveUp, i, 0) }

// MoveTop moves element i to the front.
func (s *Seq) MoveTop(i int) { s.moveOne(OpMoveTop, i, 0) }

// MoveDown moves element i one place toward the back.
func (s *Seq) MoveDown(i int) { s.moveOne(OpMoveDown, i, 0) }

// MoveBottom moves element i to the back.
func (s *Seq) MoveBottom(i int) { s.moveOne(OpMoveBottom, i, 0) }

// MoveTo moves element i so that it ends at index t. Elements in between
// shift by one toward the vacated place. A t past the end is clamped to the
// last index, as in MoveToN.
func (s *Seq) MoveTo(i, t int) { s.moveOne(OpMoveTo, i, t) }

// MoveUpN moves each element of idxs one place toward the front. Elements
// already packed against the front stay.
func (s *Seq) MoveUpN(idxs ...int) { s.moveMany(OpMoveUpN, idxs, 0) }

// MoveTopN moves the elements of idxs to the front, keeping their order.
func (s *Seq) MoveTopN(idxs ...int) { s.moveMany(OpMoveTopN, idxs, 0) }

// MoveDownN moves each element of idxs one place toward the back.
func (s *Seq) MoveDownN(idxs ...int) { s.moveMany(OpMoveDownN, idxs, 0) }

// MoveBottomN moves the elements of idxs to the back, keeping their order.
func (s *Seq) MoveBottomN(idxs ...int) { s.moveMany(OpMoveBottomN, idxs, 0) }

// MoveToN gathers the elements of idxs, in index order, into a block that
// starts at t, clamped so the block fits.
func (s *Seq) MoveToN(t int, idxs ...int) { s.moveMany(OpMoveToN, idxs, t) }

// MoveUpSelected is MoveUpN over the selection.
func (s *Seq) MoveUpSelected() { s.moveSelected(OpMoveUpL, 0) }

// MoveTopSelected is MoveTopN over the selection.
func (s *Seq) MoveTopSelected() { s.moveSelected(OpMoveTopL, 0) }

// MoveDownSelected is MoveDownN over the selection.
func (s *Seq) MoveDownSelected() { s.moveSelected(OpMoveDownL, 0) }

// MoveBottomSelected is MoveBottomN over the selection.
func (s *Seq) MoveBottomSelected() { s.moveSelected(OpMoveBottomL, 0) }

// MoveToSelected is MoveToN over the selection.
func (s *Seq) MoveToSelected(t int) { s.moveSelected(OpMoveToL, t) }

func (s *Seq) moveOne(op OpKind, i, t int) {
	s.edit(op, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		checkIndex(i, list.Len())
		w.Index(s.width(), i)
		if op == OpMoveTo {
			t = min(t, list.Len()-1)
			checkIndex(t, list.Len())
			w.Index(s.width(), t)
		}
	})
}

func (s *Seq) moveMany(op OpKind, idxs []int, t int) {
	s.moveWith(op, t, func(list *doc.List) []int {
		return uniqueSorted(idxs, list.Len())
	})
}

func (s *Seq) moveSelected(op OpKind, t int) {
	s.mustSelect()
	s.moveWith(op, t, func(list *doc.List) []int {
		return uniqueSorted(list.Selection(), list.Len())
	})
}

func (s *Seq) moveWith(op OpKind, t int, pick func(*doc.List) []int) {
	if t < 0 {
		panic(fmt.Errorf("%w: target %d", ErrIndexOutOfRange, t))
	}
	s.edit(op, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		idxs := pick(list)
		w.Indices(s.width(), idxs)
		if shape, _, _ := op.moveVariant(); shape == moveTo {
			w.Index(s.width(), min(t, list.Len()-len(idxs)))
		}
	})
}

// SelectAll selects every unselected element, appending them in index
// order after the current selection.
func (s *Seq) SelectAll() { s.withPrior(OpSelectAll, nil) }

// ClearSelections empties the selection.
func (s *Seq) ClearSelections() { s.withPrior(OpClearSelections, nil) }

// SortSelections orders the selection by index, ascending.
func (s *Seq) SortSelections() { s.withPrior(OpSortSelections, nil) }

// SortSelectionsDesc orders the selection by index, descending.
func (s *Seq) SortSelectionsDesc() { s.withPrior(OpSortSelectionsDesc, nil) }

// Select adds i to the selection. It panics with ErrAlreadySelected if i is
// selected.
func (s *Seq) Select(i int) {
	s.mustSelect()
	s.edit(OpSelect, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		checkIndex(i, list.Len())
		if list.IsSelected(i) {
			panic(fmt.Errorf("%w: %d", ErrAlreadySelected, i))
		}
		w.Index(s.width(), i)
	})
}

// SelectN adds idxs to the selection in the given order.
func (s *Seq) SelectN(idxs ...int) {
	s.withPrior(OpSelectN, func(list *doc.List) {
		seen := make(map[int]bool, len(idxs))
		for _, i := range idxs {
			checkIndex(i, list.Len())
			if seen[i] || list.IsSelected(i) {
				panic(fmt.Errorf("%w: %d", ErrAlreadySelected, i))
			}
			seen[i] = true
		}
	}, idxs...)
}

// Deselect removes i from the selection. It panics with ErrNotSelected if i
// is not selected.
func (s *Seq) Deselect(i int) {
	s.mustSelect()
	s.edit(OpDeselect, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		checkIndex(i, list.Len())
		pos := list.SelectionPos(i)
		if pos < 0 {
			panic(fmt.Errorf("%w: %d", ErrNotSelected, i))
		}
		w.Index(s.width(), i)
		w.Index(s.width(), pos)
	})
}

// DeselectN removes idxs from the selection.
func (s *Seq) DeselectN(idxs ...int) {
	s.withPrior(OpDeselectN, func(list *doc.List) {
		seen := make(map[int]bool, len(idxs))
		for _, i := range idxs {
			checkIndex(i, list.Len())
			if seen[i] || !list.IsSelected(i) {
				panic(fmt.Errorf("%w: %d", ErrNotSelected, i))
			}
			seen[i] = true
		}
	}, idxs...)
}

// Toggle flips the selection state of i.
func (s *Seq) Toggle(i int) {
	s.mustSelect()
	s.edit(OpToggle, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		checkIndex(i, list.Len())
		pos := list.SelectionPos(i)
		w.Bool(pos >= 0)
		w.Index(s.width(), i)
		if pos >= 0 {
			w.Index(s.width(), pos)
		}
	})
}

// ToggleN flips the selection state of each index in turn.
func (s *Seq) ToggleN(idxs ...int) {
	s.withPrior(OpToggleN, func(list *doc.List) {
		for _, i := range idxs {
			checkIndex(i, list.Len())
		}
	}, idxs...)
}

// withPrior records a selection operation whose undo restores the prior
// selection. idxs is written only for the N forms.
func (s *Seq) withPrior(op OpKind, check func(*doc.List), idxs ...int) {
	s.mustSelect()
	s.edit(op, func(list *doc.List, _ route.Target, w *codec.Buffer) {
		if check != nil {
			check(list)
		}
		w.Indices(s.width(), list.Selection())
		if op == OpSelectN || op == OpDeselectN || op == OpToggleN {
			w.Indices(s.width(), idxs)
		}
	})
}
