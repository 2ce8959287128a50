package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/edithistory/internal/engine"
	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// ============================================================================
// doc module
// ============================================================================

func (r *Runtime) docModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"get":       r.docGet,
		"set":       r.docSet,
		"reset":     r.docReset,
		"len":       r.docLen,
		"selection": r.docSelection,
		"format":    r.docFormat,

		"append":          r.docAppend,
		"insert":          r.docInsert,
		"set_at":          r.docSetAt,
		"remove":          r.docRemove,
		"remove_selected": r.seqOp((*engine.Seq).RemoveSelected),
		"swap":            r.docSwap,
		"sort":            r.seqOp((*engine.Seq).Sort),
		"sort_desc":       r.seqOp((*engine.Seq).SortDesc),

		"move_up":       r.moveOp((*engine.Seq).MoveUp),
		"move_down":     r.moveOp((*engine.Seq).MoveDown),
		"move_top":      r.moveOp((*engine.Seq).MoveTop),
		"move_bottom":   r.moveOp((*engine.Seq).MoveBottom),
		"move_to":       r.docMoveTo,
		"move_selected": r.docMoveSelected,

		"select":               r.indexOp((*engine.Seq).Select, (*engine.Seq).SelectN),
		"deselect":             r.indexOp((*engine.Seq).Deselect, (*engine.Seq).DeselectN),
		"toggle":               r.indexOp((*engine.Seq).Toggle, (*engine.Seq).ToggleN),
		"select_all":           r.seqOp((*engine.Seq).SelectAll),
		"clear_selections":     r.seqOp((*engine.Seq).ClearSelections),
		"sort_selections":      r.seqOp((*engine.Seq).SortSelections),
		"sort_selections_desc": r.seqOp((*engine.Seq).SortSelectionsDesc),
	})
	return mod
}

// edit runs fn on the list at path, inside the open action if there is one.
func (r *Runtime) edit(L *lua.LState, path string, fn func(s *engine.Seq)) {
	r.call(L, func() error {
		if r.tx != nil {
			fn(r.tx.Seq(path))
			return nil
		}
		return r.engine.Edit(path, fn)
	})
}

// value converts the Lua argument at n to a value of the node at path, or
// of its elements when elem is set.
func (r *Runtime) value(L *lua.LState, path string, elem bool, n int) doc.Value {
	t, err := r.engine.TypeOf(path)
	if err != nil {
		r.raise(L, err)
	}
	if elem {
		if !t.IsSequence() {
			r.raise(L, fmt.Errorf("%w: %s", ErrNotList, path))
		}
		t = t.ElemType()
	}
	return r.convert(L, t, L.Get(n))
}

func (r *Runtime) convert(L *lua.LState, t *schema.Type, lv lua.LValue) doc.Value {
	x, err := fromLua(t, lv)
	if err != nil {
		r.raise(L, err)
	}
	v, err := doc.FromNative(t, x)
	if err != nil {
		r.raise(L, err)
	}
	return v
}

func (r *Runtime) docGet(L *lua.LState) int {
	path := L.CheckString(1)
	var x any
	r.call(L, func() (err error) {
		if r.tx != nil {
			x = r.tx.Native(path)
			return nil
		}
		x, err = r.engine.Native(path)
		return err
	})
	L.Push(toLua(L, x))
	return 1
}

func (r *Runtime) docSet(L *lua.LState) int {
	path := L.CheckString(1)
	v := r.value(L, path, false, 2)
	r.call(L, func() error {
		if r.tx != nil {
			r.tx.Node(path).Set(v)
			return nil
		}
		return r.engine.Set(path, v)
	})
	return 0
}

func (r *Runtime) docReset(L *lua.LState) int {
	path := L.CheckString(1)
	r.call(L, func() error {
		if r.tx != nil {
			r.tx.Node(path).Reset()
			return nil
		}
		return r.engine.Reset(path)
	})
	return 0
}

func (r *Runtime) docLen(L *lua.LState) int {
	path := L.CheckString(1)
	var n int
	r.call(L, func() error {
		if r.tx != nil {
			n = r.tx.Seq(path).Len()
			return nil
		}
		v, err := r.engine.Get(path)
		if err != nil {
			return err
		}
		l, ok := v.(*doc.List)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotList, path)
		}
		n = l.Len()
		return nil
	})
	L.Push(lua.LNumber(n))
	return 1
}

func (r *Runtime) docSelection(L *lua.LState) int {
	path := L.CheckString(1)
	var sel []int
	r.call(L, func() (err error) {
		if r.tx != nil {
			sel = r.tx.Seq(path).Selection()
			return nil
		}
		sel, err = r.engine.Selection(path)
		return err
	})
	L.Push(toLua(L, sel))
	return 1
}

func (r *Runtime) docFormat(L *lua.LState) int {
	path := L.OptString(1, "")
	if r.tx != nil {
		r.raise(L, fmt.Errorf("doc.format: %w", ErrInsideAction))
	}
	s, err := r.engine.Format(path)
	if err != nil {
		r.raise(L, err)
	}
	L.Push(lua.LString(s))
	return 1
}

// docAppend appends one or more values: doc.append(path, v, ...).
func (r *Runtime) docAppend(L *lua.LState) int {
	path := L.CheckString(1)
	vals := r.values(L, path, 2)
	r.edit(L, path, func(s *engine.Seq) {
		if len(vals) == 1 {
			s.Append(vals[0])
			return
		}
		s.AppendN(vals...)
	})
	return 0
}

// docInsert inserts values before index i: doc.insert(path, i, v, ...).
func (r *Runtime) docInsert(L *lua.LState) int {
	path := L.CheckString(1)
	i := L.CheckInt(2)
	vals := r.values(L, path, 3)
	r.edit(L, path, func(s *engine.Seq) {
		if len(vals) == 1 {
			s.Insert(i, vals[0])
			return
		}
		s.InsertN(i, vals...)
	})
	return 0
}

func (r *Runtime) values(L *lua.LState, path string, from int) []doc.Value {
	if L.GetTop() < from {
		L.ArgError(from, "value expected")
	}
	vals := make([]doc.Value, 0, L.GetTop()-from+1)
	for n := from; n <= L.GetTop(); n++ {
		vals = append(vals, r.value(L, path, true, n))
	}
	return vals
}

func (r *Runtime) docSetAt(L *lua.LState) int {
	path := L.CheckString(1)
	i := L.CheckInt(2)
	v := r.value(L, path, true, 3)
	r.edit(L, path, func(s *engine.Seq) { s.SetAt(i, v) })
	return 0
}

// docRemove removes one or more indices: doc.remove(path, i, ...).
func (r *Runtime) docRemove(L *lua.LState) int {
	path := L.CheckString(1)
	idxs := checkIndices(L, 2)
	r.edit(L, path, func(s *engine.Seq) {
		if len(idxs) == 1 {
			s.Remove(idxs[0])
			return
		}
		s.RemoveN(idxs...)
	})
	return 0
}

func (r *Runtime) docSwap(L *lua.LState) int {
	path := L.CheckString(1)
	i, j := L.CheckInt(2), L.CheckInt(3)
	r.edit(L, path, func(s *engine.Seq) { s.Swap(i, j) })
	return 0
}

func (r *Runtime) docMoveTo(L *lua.LState) int {
	path := L.CheckString(1)
	i, t := L.CheckInt(2), L.CheckInt(3)
	r.edit(L, path, func(s *engine.Seq) { s.MoveTo(i, t) })
	return 0
}

// docMoveSelected moves every selected element:
// doc.move_selected(path, "up"|"down"|"top"|"bottom"|"to", [target]).
func (r *Runtime) docMoveSelected(L *lua.LState) int {
	path := L.CheckString(1)
	var fn func(s *engine.Seq)
	switch dir := L.CheckString(2); dir {
	case "up":
		fn = (*engine.Seq).MoveUpSelected
	case "down":
		fn = (*engine.Seq).MoveDownSelected
	case "top":
		fn = (*engine.Seq).MoveTopSelected
	case "bottom":
		fn = (*engine.Seq).MoveBottomSelected
	case "to":
		t := L.CheckInt(3)
		fn = func(s *engine.Seq) { s.MoveToSelected(t) }
	default:
		L.ArgError(2, fmt.Sprintf("unknown direction %q", dir))
	}
	r.edit(L, path, fn)
	return 0
}

// seqOp binds a list operation without arguments.
func (r *Runtime) seqOp(op func(*engine.Seq)) lua.LGFunction {
	return func(L *lua.LState) int {
		r.edit(L, L.CheckString(1), op)
		return 0
	}
}

// moveOp binds a single-element move.
func (r *Runtime) moveOp(op func(*engine.Seq, int)) lua.LGFunction {
	return func(L *lua.LState) int {
		path := L.CheckString(1)
		i := L.CheckInt(2)
		r.edit(L, path, func(s *engine.Seq) { op(s, i) })
		return 0
	}
}

// indexOp binds a selection operation taking one index, or many with the
// batch form.
func (r *Runtime) indexOp(one func(*engine.Seq, int), many func(*engine.Seq, ...int)) lua.LGFunction {
	return func(L *lua.LState) int {
		path := L.CheckString(1)
		idxs := checkIndices(L, 2)
		r.edit(L, path, func(s *engine.Seq) {
			if len(idxs) == 1 {
				one(s, idxs[0])
				return
			}
			many(s, idxs...)
		})
		return 0
	}
}

// checkIndices reads the integer arguments from n on. A single table
// argument is read as a list of indices.
func checkIndices(L *lua.LState, n int) []int {
	if tbl, ok := L.Get(n).(*lua.LTable); ok {
		idxs := make([]int, 0, tbl.Len())
		for i := 1; i <= tbl.Len(); i++ {
			num, ok := tbl.RawGetInt(i).(lua.LNumber)
			if !ok {
				L.ArgError(n, "indices must be numbers")
			}
			idxs = append(idxs, int(num))
		}
		return idxs
	}
	if L.GetTop() < n {
		L.ArgError(n, "index expected")
	}
	idxs := make([]int, 0, L.GetTop()-n+1)
	for i := n; i <= L.GetTop(); i++ {
		idxs = append(idxs, L.CheckInt(i))
	}
	return idxs
}

// ============================================================================
// hist module
// ============================================================================

func (r *Runtime) histModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"action":       r.histAction,
		"undo":         r.histUndo,
		"redo":         r.histRedo,
		"can_undo":     r.idle(func(L *lua.LState) int { L.Push(lua.LBool(r.engine.CanUndo())); return 1 }),
		"can_redo":     r.idle(func(L *lua.LState) int { L.Push(lua.LBool(r.engine.CanRedo())); return 1 }),
		"total":        r.idle(func(L *lua.LState) int { L.Push(lua.LNumber(r.engine.TotalActions())); return 1 }),
		"cursor":       r.idle(func(L *lua.LState) int { L.Push(lua.LNumber(r.engine.CursorIndex())); return 1 }),
		"bytes":        r.idle(func(L *lua.LState) int { L.Push(lua.LNumber(r.engine.HistoryBytes())); return 1 }),
		"trim":         r.idle(r.histTrim),
		"trim_to_size": r.idle(r.histTrimToSize),
		"clear":        r.idle(r.histClear),
	})
	return mod
}

// idle guards a history operation that must not run inside an action.
func (r *Runtime) idle(fn lua.LGFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		if r.tx != nil {
			r.raise(L, ErrInsideAction)
		}
		return fn(L)
	}
}

// histAction runs fn as one action: hist.action(label, fn).
func (r *Runtime) histAction(L *lua.LState) int {
	label := L.CheckString(1)
	fn := L.CheckFunction(2)

	if r.tx != nil {
		L.Push(fn)
		L.Call(0, 0)
		return 0
	}

	err := r.engine.Do(label, func(tx *engine.Tx) error {
		r.tx = tx
		defer func() { r.tx = nil }()
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
	if err != nil {
		r.raise(L, err)
	}
	return 0
}

func (r *Runtime) histUndo(L *lua.LState) int {
	return r.step(L, r.engine.Undo, engine.ErrNothingToUndo)
}

func (r *Runtime) histRedo(L *lua.LState) int {
	return r.step(L, r.engine.Redo, engine.ErrNothingToRedo)
}

// step pushes the index of the action moved over, or nil when there was
// none.
func (r *Runtime) step(L *lua.LState, fn func() (int, error), none error) int {
	if r.tx != nil {
		r.raise(L, ErrInsideAction)
	}
	i, err := fn()
	switch {
	case errors.Is(err, none):
		L.Push(lua.LNil)
	case err != nil:
		r.raise(L, err)
	default:
		L.Push(lua.LNumber(i))
	}
	return 1
}

func (r *Runtime) histTrim(L *lua.LState) int {
	if err := r.engine.TrimHistory(L.CheckInt(1)); err != nil {
		r.raise(L, err)
	}
	return 0
}

func (r *Runtime) histTrimToSize(L *lua.LState) int {
	if err := r.engine.TrimHistoryToSize(L.CheckInt(1)); err != nil {
		r.raise(L, err)
	}
	return 0
}

func (r *Runtime) histClear(L *lua.LState) int {
	if err := r.engine.ClearHistory(); err != nil {
		r.raise(L, err)
	}
	return 0
}
