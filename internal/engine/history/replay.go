package history

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/edithistory/internal/engine/codec"
	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/route"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// direction selects what replayOp does with an event's operands.
type direction uint8

const (
	dirUndo direction = iota
	dirRedo
	dirDescribe // read operands and summarise them; touch nothing
)

// replayOp interprets the operands of one event. Edits, undo, redo and
// history rendering all go through this one switch.
func (l *Ledger) replayOp(op OpKind, r route.Route, rd *codec.Reader, dir direction, sum *strings.Builder) {
	head, _, fan := r.Split()
	if !fan {
		l.replayTarget(op, r, rd, dir, sum)
		return
	}
	lt := route.Unwrap(route.TypeAt(l.schema, head))
	idxs := rd.Indices(l.codec.IndexWidth(lt))
	if dir == dirDescribe {
		fmt.Fprintf(sum, "for selection %v: ", idxs)
	}
	for k, i := range idxs {
		if dir == dirDescribe && k > 0 {
			sum.WriteString("; ")
		}
		l.replayTarget(op, r.Concrete(i), rd, dir, sum)
	}
}

// player carries the state of one target while its operands are replayed.
type player struct {
	l    *Ledger
	obs  Observer
	dir  direction
	rd   *codec.Reader
	r    route.Route
	t    *schema.Type
	slot *doc.Value // nil when describing
	sum  *strings.Builder
}

func (p *player) list() *doc.List     { return (*p.slot).(*doc.List) }
func (p *player) elem() *schema.Type  { return p.t.ElemType() }
func (p *player) width() schema.Width { return p.l.codec.IndexWidth(p.t) }
func (p *player) index() int          { return p.rd.Index(p.width()) }
func (p *player) indices() []int      { return p.rd.Indices(p.width()) }

func (p *player) value(t *schema.Type) doc.Value { return p.l.codec.ReadValue(p.rd, t) }
func (p *player) state(t *schema.Type) doc.Value { return p.l.codec.ReadState(p.rd, t) }

func (p *player) say(format string, args ...any) {
	fmt.Fprintf(p.sum, format, args...)
}

func (p *player) describing() bool { return p.dir == dirDescribe }
func (p *player) undoing() bool    { return p.dir == dirUndo }

// replace swaps the value in slot. Lists are replaced in place so attached
// payload stays with its index; next's selection becomes the list's.
func (p *player) replace(slot *doc.Value, r route.Route, t *schema.Type, prev, next doc.Value) {
	if cur, ok := (*slot).(*doc.List); ok {
		nl := next.(*doc.List)
		hadSel := cur.SelectionLen() > 0
		cur.ReplaceElems(nl.Elems())
		cur.SetSelection(nl.Selection())
		p.obs.ValueChanged(r, prev, cur)
		if t.IsSelectable() && (hadSel || cur.SelectionLen() > 0) {
			p.obs.SelectionsChanged(r)
		}
		return
	}
	*slot = next
	p.obs.ValueChanged(r, prev, next)
}

func (p *player) insertAt(i int, vals []doc.Value) {
	list := p.list()
	list.InsertAt(i, vals...)
	for k := range vals {
		p.obs.ElementAdded(p.r, i+k)
	}
	if list.SelectionLen() > 0 {
		p.obs.SelectionsChanged(p.r)
	}
}

func (p *player) eraseAt(i, n int) {
	list := p.list()
	hadSel := list.SelectionLen() > 0
	list.EraseAt(i, n)
	for k := n - 1; k >= 0; k-- {
		p.obs.ElementRemoved(p.r, i+k)
	}
	if hadSel {
		p.obs.SelectionsChanged(p.r)
	}
}

func (p *player) permute(perm []int) {
	if isIdentity(perm) {
		return
	}
	list := p.list()
	list.Permute(perm)
	for to, from := range perm {
		if from != to {
			p.obs.ElementMoved(p.r, from, to)
		}
	}
	if list.SelectionLen() > 0 {
		p.obs.SelectionsChanged(p.r)
	}
}

func (p *player) format(t *schema.Type, v doc.Value) string {
	return doc.Format(t, v)
}

func (p *player) formatAll(t *schema.Type, vals []doc.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = doc.Format(t, v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func repeat(n int, fn func() doc.Value) []doc.Value {
	out := make([]doc.Value, n)
	for i := range out {
		out[i] = fn()
	}
	return out
}

func (l *Ledger) replayTarget(op OpKind, r route.Route, rd *codec.Reader, dir direction, sum *strings.Builder) {
	p := &player{l: l, obs: l.obs, dir: dir, rd: rd, r: r, sum: sum}
	if dir == dirDescribe {
		p.t = route.TypeAt(l.schema, r)
	} else {
		tg := route.Resolve(&l.root, l.schema, r)
		p.slot, p.t = tg.Slot, tg.Type
	}

	switch op {
	case OpSet, OpReset, OpAssign, OpAssignDefault:
		old := p.state(p.t)
		var next doc.Value
		switch op {
		case OpSet:
			next = p.value(p.t)
		case OpReset:
			next = doc.Zero(p.t)
		case OpAssign:
			n := p.index()
			v := p.value(p.elem())
			next = doc.NewList(repeat(n, v.Clone)...)
		case OpAssignDefault:
			n := p.index()
			next = doc.NewList(repeat(n, func() doc.Value { return doc.Zero(p.elem()) })...)
		}
		switch p.dir {
		case dirDescribe:
			p.say("%s -> %s", p.format(p.t, old), p.format(p.t, next))
		case dirUndo:
			p.replace(p.slot, r, p.t, next, old)
		case dirRedo:
			p.replace(p.slot, r, p.t, old, next)
		}

	case OpSetN, OpSetL:
		idxs := p.indices()
		olds := make([]doc.Value, len(idxs))
		nexts := make([]doc.Value, len(idxs))
		for k := range idxs {
			olds[k] = p.state(p.elem())
			if op == OpSetN {
				nexts[k] = p.value(p.elem())
			}
		}
		if op == OpSetL {
			v := p.value(p.elem())
			for k := range nexts {
				nexts[k] = v.Clone()
			}
		}
		switch p.dir {
		case dirDescribe:
			for k, i := range idxs {
				if k > 0 {
					p.say(", ")
				}
				p.say("[%d] %s -> %s", i, p.format(p.elem(), olds[k]), p.format(p.elem(), nexts[k]))
			}
		case dirUndo:
			list := p.list()
			for k := len(idxs) - 1; k >= 0; k-- {
				i := idxs[k]
				p.replace(list.Slot(i), r.Index(i), p.elem(), nexts[k], olds[k])
			}
		case dirRedo:
			list := p.list()
			for k, i := range idxs {
				p.replace(list.Slot(i), r.Index(i), p.elem(), olds[k], nexts[k])
			}
		}

	case OpReserve, OpTrim:
		oldCap := int(p.rd.Uint(8))
		n := 0
		if op == OpReserve {
			n = int(p.rd.Uint(8))
		}
		switch p.dir {
		case dirDescribe:
			if op == OpReserve {
				p.say("capacity %d -> %d", oldCap, n)
			} else {
				p.say("capacity %d -> fit", oldCap)
			}
		case dirUndo:
			list := p.list()
			list.Clip()
			list.Reserve(oldCap)
		case dirRedo:
			if op == OpReserve {
				p.list().Reserve(n)
			} else {
				p.list().Clip()
			}
		}

	case OpAppend, OpAppendN, OpInsert, OpInsertN:
		at := -1
		if op == OpInsert || op == OpInsertN {
			at = p.index()
		}
		n := 1
		if op == OpAppendN || op == OpInsertN {
			n = p.index()
		}
		vals := repeat(n, func() doc.Value { return p.value(p.elem()) })
		switch p.dir {
		case dirDescribe:
			if at >= 0 {
				p.say("at %d ", at)
			}
			if n == 1 && (op == OpAppend || op == OpInsert) {
				p.say("%s", p.format(p.elem(), vals[0]))
			} else {
				p.say("%s", p.formatAll(p.elem(), vals))
			}
		case dirUndo:
			if at < 0 {
				at = p.list().Len() - n
			}
			p.eraseAt(at, n)
		case dirRedo:
			if at < 0 {
				at = p.list().Len()
			}
			p.insertAt(at, vals)
		}

	case OpRemove, OpRemoveN, OpRemoveL:
		idxs := p.indices()
		vals := make([]doc.Value, len(idxs))
		for k := range idxs {
			vals[k] = p.state(p.elem())
		}
		prior := p.indices()
		switch p.dir {
		case dirDescribe:
			for k, i := range idxs {
				if k > 0 {
					p.say(", ")
				}
				p.say("[%d] %s", i, p.format(p.elem(), vals[k]))
			}
		case dirUndo:
			list := p.list()
			for k, i := range idxs {
				list.InsertAt(i, vals[k])
				p.obs.ElementAdded(r, i)
			}
			if p.t.IsSelectable() {
				list.SetSelection(prior)
				if len(prior) > 0 {
					p.obs.SelectionsChanged(r)
				}
			}
		case dirRedo:
			list := p.list()
			for k := len(idxs) - 1; k >= 0; k-- {
				list.EraseAt(idxs[k], 1)
				p.obs.ElementRemoved(r, idxs[k])
			}
			if len(prior) > 0 {
				p.obs.SelectionsChanged(r)
			}
		}

	case OpSort, OpSortDesc, OpSwap,
		OpMoveUp, OpMoveUpN, OpMoveUpL,
		OpMoveTop, OpMoveTopN, OpMoveTopL,
		OpMoveDown, OpMoveDownN, OpMoveDownL,
		OpMoveBottom, OpMoveBottomN, OpMoveBottomL,
		OpMoveTo, OpMoveToN, OpMoveToL:
		var perm func() []int
		switch op {
		case OpSort, OpSortDesc:
			stored := p.indices()
			if p.describing() {
				p.say("order %v", stored)
			}
			perm = func() []int { return stored }
		case OpSwap:
			i, j := p.index(), p.index()
			if p.describing() {
				p.say("%d <-> %d", i, j)
			}
			perm = func() []int { return swapPerm(p.list().Len(), i, j) }
		default:
			shape, multi, _ := op.moveVariant()
			var idxs []int
			if multi {
				idxs = p.indices()
			} else {
				idxs = []int{p.index()}
			}
			target := 0
			if shape == moveTo {
				target = p.index()
			}
			if p.describing() {
				if multi {
					p.say("%v", idxs)
				} else {
					p.say("%d", idxs[0])
				}
				if shape == moveTo {
					p.say(" -> %d", target)
				}
			}
			perm = func() []int { return movePerm(shape, p.list().Len(), idxs, target) }
		}
		switch p.dir {
		case dirUndo:
			p.permute(doc.Inverse(perm()))
		case dirRedo:
			p.permute(perm())
		}

	case OpSelect, OpDeselect, OpToggle:
		was := op == OpDeselect
		if op == OpToggle {
			was = p.rd.Bool()
		}
		i := p.index()
		pos := 0
		if was {
			pos = p.index()
		}
		if p.describing() {
			switch {
			case op != OpToggle:
				p.say("%d", i)
			case was:
				p.say("-%d", i)
			default:
				p.say("+%d", i)
			}
			return
		}
		list := p.list()
		switch {
		case was && p.undoing():
			list.InsertSelectionAt(pos, i)
		case was:
			list.DeselectAt(pos)
		case p.undoing():
			list.DeselectAt(list.SelectionPos(i))
		default:
			list.Select(i)
		}
		p.obs.SelectionsChanged(r)

	case OpSelectAll, OpClearSelections, OpSelectN, OpDeselectN, OpToggleN,
		OpSortSelections, OpSortSelectionsDesc:
		prior := p.indices()
		var idxs []int
		if op == OpSelectN || op == OpDeselectN || op == OpToggleN {
			idxs = p.indices()
		}
		switch p.dir {
		case dirDescribe:
			if idxs != nil {
				p.say("%v ", idxs)
			}
			p.say("(was %v)", prior)
			return
		case dirUndo:
			p.list().SetSelection(prior)
		case dirRedo:
			p.redoSelection(op, idxs)
		}
		p.obs.SelectionsChanged(r)

	default:
		panic(fmt.Sprintf("history: unknown opcode %d", op))
	}
}

// redoSelection applies a selection operation whose undo restores a stored
// prior selection.
func (p *player) redoSelection(op OpKind, idxs []int) {
	list := p.list()
	switch op {
	case OpSelectAll:
		for i := 0; i < list.Len(); i++ {
			if !list.IsSelected(i) {
				list.Select(i)
			}
		}
	case OpClearSelections:
		list.SetSelection(nil)
	case OpSelectN:
		list.Select(idxs...)
	case OpDeselectN:
		for _, i := range idxs {
			list.DeselectAt(list.SelectionPos(i))
		}
	case OpToggleN:
		for _, i := range idxs {
			if pos := list.SelectionPos(i); pos >= 0 {
				list.DeselectAt(pos)
			} else {
				list.Select(i)
			}
		}
	case OpSortSelections, OpSortSelectionsDesc:
		sel := list.Selection()
		slices.Sort(sel)
		if op == OpSortSelectionsDesc {
			slices.Reverse(sel)
		}
		list.SetSelection(sel)
	}
}
