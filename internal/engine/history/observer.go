package history

import (
	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/route"
)

// Observer receives notifications for every change the ledger makes to the
// document, whether from an edit, an undo or a redo. Routes are concrete:
// selection hops are replaced by the index they reached.
//
// Embed NopObserver to implement only the callbacks you need.
type Observer interface {
	// ValueChanged reports that the node at r was replaced.
	ValueChanged(r route.Route, prev, next doc.Value)

	// ElementAdded reports a new element at index of the list at r.
	ElementAdded(r route.Route, index int)

	// ElementRemoved reports that the element at index was removed.
	ElementRemoved(r route.Route, index int)

	// ElementMoved reports that the element formerly at from is now at to.
	ElementMoved(r route.Route, from, to int)

	// SelectionsChanged reports that the selection set of r changed.
	SelectionsChanged(r route.Route)
}

// NopObserver implements Observer with no-op methods.
type NopObserver struct{}

func (NopObserver) ValueChanged(route.Route, doc.Value, doc.Value) {}
func (NopObserver) ElementAdded(route.Route, int)                 {}
func (NopObserver) ElementRemoved(route.Route, int)               {}
func (NopObserver) ElementMoved(route.Route, int, int)            {}
func (NopObserver) SelectionsChanged(route.Route)                 {}

// Recorder receives ledger statistics. internal/metrics provides a
// Prometheus implementation.
type Recorder interface {
	ActionCommitted(events, bytes int)
	ActionUndone()
	ActionRedone()
	ActionsElided(count int)
	HistoryTrimmed(actions, bytes int)
	HistoryBytes(bytes int)
}

type nopRecorder struct{}

func (nopRecorder) ActionCommitted(int, int) {}
func (nopRecorder) ActionUndone()            {}
func (nopRecorder) ActionRedone()            {}
func (nopRecorder) ActionsElided(int)        {}
func (nopRecorder) HistoryTrimmed(int, int)  {}
func (nopRecorder) HistoryBytes(int)         {}
