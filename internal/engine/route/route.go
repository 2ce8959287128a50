package route

import (
	"fmt"
	"slices"

	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// SegmentKind identifies a hop.
type SegmentKind uint8

const (
	SegField SegmentKind = iota
	SegIndex
	SegSelected
)

// Segment is one hop of a route.
type Segment struct {
	Kind  SegmentKind
	Index int
}

// Route is a path from the document root. The zero value is the root.
type Route struct {
	segs []Segment
	sel  int // position of the Selected hop plus one; 0 when absent
}

// Root returns the empty route.
func Root() Route { return Route{} }

func (r Route) push(s Segment) Route {
	out := Route{segs: make([]Segment, len(r.segs), len(r.segs)+1), sel: r.sel}
	copy(out.segs, r.segs)
	out.segs = append(out.segs, s)
	return out
}

// Field appends a record field hop.
func (r Route) Field(i int) Route {
	return r.push(Segment{Kind: SegField, Index: i})
}

// Index appends a list element hop.
func (r Route) Index(i int) Route {
	return r.push(Segment{Kind: SegIndex, Index: i})
}

// Selected appends a hop that fans out over the current selection. It
// panics if the route already has one.
func (r Route) Selected() Route {
	if r.sel != 0 {
		panic(ErrDuplicateSelection)
	}
	out := r.push(Segment{Kind: SegSelected})
	out.sel = len(out.segs)
	return out
}

// Len returns the number of hops.
func (r Route) Len() int { return len(r.segs) }

// IsRoot reports whether r is the empty route.
func (r Route) IsRoot() bool { return len(r.segs) == 0 }

// Segment returns hop i.
func (r Route) Segment(i int) Segment { return r.segs[i] }

// Segments returns a copy of the hops.
func (r Route) Segments() []Segment { return slices.Clone(r.segs) }

// HasSelection reports whether r fans out over a selection.
func (r Route) HasSelection() bool { return r.sel != 0 }

// Split divides a selection route around its Selected hop: head addresses
// the selectable list, tail continues from each selected element. ok is
// false when r has no Selected hop.
func (r Route) Split() (head, tail Route, ok bool) {
	if r.sel == 0 {
		return r, Route{}, false
	}
	return Route{segs: r.segs[:r.sel-1]}, Route{segs: r.segs[r.sel:]}, true
}

// Concrete replaces the Selected hop with Index(i). Routes without a
// Selected hop are returned unchanged.
func (r Route) Concrete(i int) Route {
	if r.sel == 0 {
		return r
	}
	out := Route{segs: slices.Clone(r.segs)}
	out.segs[r.sel-1] = Segment{Kind: SegIndex, Index: i}
	return out
}

// Join appends the hops of tail to r.
func (r Route) Join(tail Route) Route {
	out := r
	for _, s := range tail.segs {
		if s.Kind == SegSelected {
			out = out.Selected()
		} else {
			out = out.push(s)
		}
	}
	return out
}

// Equal reports whether two routes have the same hops.
func (r Route) Equal(o Route) bool {
	return slices.Equal(r.segs, o.segs)
}

func mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrRouteMismatch}, args...)...)
}

func unwrap(t *schema.Type) *schema.Type {
	for t.Kind() == schema.KindOptional {
		t = t.ElemType()
	}
	return t
}

// Unwrap strips optional layers from t.
func Unwrap(t *schema.Type) *schema.Type { return unwrap(t) }

// step returns the type reached by one hop from t.
func step(t *schema.Type, s Segment) *schema.Type {
	t = unwrap(t)
	switch s.Kind {
	case SegField:
		if !t.IsRecord() {
			panic(mismatch("field hop on %s", t))
		}
		if s.Index < 0 || s.Index >= t.FieldCount() {
			panic(mismatch("%s has no field %d", t.Name(), s.Index))
		}
		return t.FieldAt(s.Index).Type
	case SegIndex:
		if !t.IsSequence() {
			panic(mismatch("index hop on %s", t))
		}
		if s.Index < 0 || (t.Kind() == schema.KindArray && s.Index >= t.Len()) {
			panic(mismatch("index %d out of range for %s", s.Index, t))
		}
		return t.ElemType()
	case SegSelected:
		if !t.IsSelectable() {
			panic(mismatch("selection hop on non-selectable %s", t))
		}
		return t.ElemType()
	}
	panic(mismatch("unknown hop kind %d", s.Kind))
}

// TypeAt returns the schema type addressed by r. A Selected hop yields the
// element type. It panics with ErrRouteMismatch if a hop does not apply.
func TypeAt(t *schema.Type, r Route) *schema.Type {
	for _, s := range r.segs {
		t = step(t, s)
	}
	return t
}

// Target is a resolved node: a mutable slot and its schema type.
type Target struct {
	Slot  *doc.Value
	Type  *schema.Type
	Route Route
}

// Value returns the current value of the target.
func (t Target) Value() doc.Value { return *t.Slot }

// List returns the target as a list. It panics if the target is not one.
func (t Target) List() *doc.List {
	l, ok := (*t.Slot).(*doc.List)
	if !ok {
		panic(mismatch("%s is not a list", t.Type))
	}
	return l
}

func deref(slot *doc.Value, t *schema.Type) (*doc.Value, *schema.Type) {
	for t.Kind() == schema.KindOptional {
		o, ok := (*slot).(*doc.Optional)
		if !ok || !o.Present() {
			panic(mismatch("hop through absent %s", t))
		}
		slot, t = &o.Value, t.ElemType()
	}
	return slot, t
}

func descend(slot *doc.Value, t *schema.Type, s Segment) (*doc.Value, *schema.Type) {
	slot, t = deref(slot, t)
	next := step(t, s)
	switch s.Kind {
	case SegField:
		rec, ok := (*slot).(*doc.Record)
		if !ok {
			panic(mismatch("%T is not a record", *slot))
		}
		return rec.Slot(s.Index), next
	case SegIndex:
		l, ok := (*slot).(*doc.List)
		if !ok {
			panic(mismatch("%T is not a list", *slot))
		}
		if s.Index >= l.Len() {
			panic(mismatch("index %d out of range for length %d", s.Index, l.Len()))
		}
		return l.Slot(s.Index), next
	}
	panic(mismatch("selection hop must be made concrete before resolving"))
}

// Resolve walks r from the root slot. Routes with a Selected hop must be
// made concrete first; use Each to fan out.
func Resolve(root *doc.Value, t *schema.Type, r Route) Target {
	slot := root
	for _, s := range r.segs {
		slot, t = descend(slot, t, s)
	}
	return Target{Slot: slot, Type: t, Route: r}
}

// Selection resolves the selectable list named by the Selected hop of r and
// returns it with a copy of its current selection. Optionals around the
// list are looked through.
func Selection(root *doc.Value, t *schema.Type, r Route) (Target, []int) {
	head, _, ok := r.Split()
	if !ok {
		panic(mismatch("route has no selection hop"))
	}
	list := Resolve(root, t, head)
	list.Slot, list.Type = deref(list.Slot, list.Type)
	if !list.Type.IsSelectable() {
		panic(mismatch("selection hop on non-selectable %s", list.Type))
	}
	return list, list.List().Selection()
}

// Each calls fn once per target of r. Plain routes have one target; routes
// with a Selected hop have one per selected index, in selection order.
func Each(root *doc.Value, t *schema.Type, r Route, fn func(Target)) {
	if !r.HasSelection() {
		fn(Resolve(root, t, r))
		return
	}
	_, sel := Selection(root, t, r)
	for _, i := range sel {
		fn(Resolve(root, t, r.Concrete(i)))
	}
}
