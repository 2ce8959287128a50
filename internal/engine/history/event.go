package history

import (
	"github.com/dshills/edithistory/internal/engine/codec"
	"github.com/dshills/edithistory/internal/engine/route"
)

// An event is laid out as
//
//	opcode byte | route | [selection indices] | operands per target
//
// The selection indices are present only when the route has a selection
// hop: they are the selection at the time of the edit, and replay visits
// the same targets in the same order.

// mark captures the ledger state an aborted edit must return to.
type mark struct {
	bytes, events, records, redo int
	started                      bool
	skipAt, skip                 int
}

func (l *Ledger) mark() mark {
	m := mark{
		bytes:   l.log.Len(),
		events:  len(l.offsets),
		records: len(l.records),
		redo:    l.redo,
		started: l.pending.started,
		skipAt:  -1,
	}
	if l.redo > 0 {
		m.skipAt = len(l.records) - l.redo
		m.skip = l.records[m.skipAt].skip
	}
	return m
}

func (l *Ledger) rollback(m mark) {
	l.log.Truncate(m.bytes)
	l.offsets = l.offsets[:m.events]
	l.records = l.records[:m.records]
	l.redo = m.redo
	l.pending.started = m.started
	l.pending.elided = 0
	if m.skipAt >= 0 {
		l.records[m.skipAt].skip = m.skip
	}
}

// edit records one operation on every target of r and then applies it by
// replaying the recorded bytes forward, so an edit and its redo take the
// same path. write emits the operands for one target and must panic, before
// the document is touched, on any invalid argument; the partial event is
// then discarded.
func (l *Ledger) edit(op OpKind, r route.Route, write func(tg route.Target, w *codec.Buffer)) {
	if l.open == 0 {
		a := l.CreateAction(nil)
		defer a.Close()
	}

	m := l.mark()
	done := false
	defer func() {
		if !done {
			l.rollback(m)
		}
	}()

	if !l.pending.started {
		l.startAction()
	}
	start := l.log.Len()
	l.offsets = append(l.offsets, start)
	l.log.Byte(byte(op))
	route.Encode(l.codec, l.log, l.schema, r)
	payload := l.log.Len() - start

	if r.HasSelection() {
		list, sel := route.Selection(&l.root, l.schema, r)
		l.log.Indices(l.codec.IndexWidth(list.Type), sel)
		for _, i := range sel {
			write(route.Resolve(&l.root, l.schema, r.Concrete(i)), l.log)
		}
	} else {
		write(route.Resolve(&l.root, l.schema, r), l.log)
	}

	rd := codec.NewReader(l.log.Bytes()[start:])
	rd.Raw(payload)
	l.replayOp(op, r, rd, dirRedo, nil)
	done = true
	l.reportElision()
}

// replayEvent decodes event e and replays it in direction dir.
func (l *Ledger) replayEvent(e int, dir direction) {
	rd := codec.NewReader(l.eventBytes(e))
	op := OpKind(rd.Byte())
	r := route.Decode(l.codec, rd, l.schema)
	l.replayOp(op, r, rd, dir, nil)
}
