package history

import (
	"fmt"

	"github.com/dshills/edithistory/internal/engine/codec"
	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/route"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// Node edits the node a route addresses. When the route has a selection
// hop, every edit applies to each selected target and is recorded as one
// event.
type Node struct {
	l *Ledger
	r route.Route
	t *schema.Type
}

// At returns an accessor for the node at r. It panics with
// route.ErrRouteMismatch if r does not fit the schema.
func (l *Ledger) At(r route.Route) *Node {
	return &Node{l: l, r: r, t: route.TypeAt(l.schema, r)}
}

// Route returns the node's route.
func (n *Node) Route() route.Route { return n.r }

// Type returns the node's schema type.
func (n *Node) Type() *schema.Type { return n.t }

func (n *Node) target() route.Target {
	return route.Resolve(&n.l.root, n.l.schema, n.r)
}

// Get returns a copy of the node's value, selection sets included. The route
// must not have a selection hop.
func (n *Node) Get() doc.Value {
	return doc.CloneState(n.target().Value())
}

// GetAll returns a copy of the value of every target, in selection order.
func (n *Node) GetAll() []doc.Value {
	var out []doc.Value
	route.Each(&n.l.root, n.l.schema, n.r, func(tg route.Target) {
		out = append(out, doc.CloneState(tg.Value()))
	})
	return out
}

// Set replaces the node's value. Setting a value equal to the current one,
// selection sets included, records nothing. A list keeps its attached
// payload by index and loses its selection.
func (n *Node) Set(v doc.Value) {
	v = n.l.conform(n.t, v)
	if !n.r.HasSelection() && doc.EqualState(n.target().Value(), v) {
		return
	}
	n.l.edit(OpSet, n.r, func(tg route.Target, w *codec.Buffer) {
		n.l.codec.WriteState(w, tg.Type, tg.Value())
		n.l.codec.WriteValue(w, tg.Type, v)
	})
}

// Reset sets the node to the zero value of its type.
func (n *Node) Reset() {
	if !n.r.HasSelection() && doc.EqualState(n.target().Value(), doc.Zero(n.t)) {
		return
	}
	n.l.edit(OpReset, n.r, func(tg route.Target, w *codec.Buffer) {
		n.l.codec.WriteState(w, tg.Type, tg.Value())
	})
}

// Seq returns a list accessor for the same node.
func (n *Node) Seq() *Seq {
	return n.l.Seq(n.r)
}

func (l *Ledger) conform(t *schema.Type, v doc.Value) doc.Value {
	out, err := doc.Conform(t, v)
	if err != nil {
		panic(fmt.Errorf("%w: %w", ErrTypeMismatch, err))
	}
	return out
}
