package history

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/edithistory/internal/engine/codec"
	"github.com/dshills/edithistory/internal/engine/route"
)

// Status classifies a rendered record.
type Status uint8

const (
	// Undoable records are before the cursor and reachable by undo.
	Undoable Status = iota
	// Redoable records are after the cursor and reachable by redo.
	Redoable
	// Elided records belong to a redo window closed by a later action.
	Elided
	// ElisionMarker is the record that closed a redo window.
	ElisionMarker
)

var statusNames = [...]string{
	Undoable:      "undoable",
	Redoable:      "redoable",
	Elided:        "elided",
	ElisionMarker: "elision",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// RenderedEvent describes one event of a rendered action.
type RenderedEvent struct {
	Op        OpKind
	Route     string
	Summary   string
	ByteCount int
}

// RenderedAction describes one record of the action table.
type RenderedAction struct {
	Index      int
	ID         uuid.UUID
	Status     Status
	Metadata   any
	ByteCount  int
	EventCount int

	// Elided is the number of records an elision marker closed.
	Elided int

	Events []RenderedEvent
}

// RenderChangeHistory describes every retained record, oldest first.
// Event summaries are decoded from the log and never touch the document.
func (l *Ledger) RenderChangeHistory(includeEvents bool) []RenderedAction {
	status := make([]Status, len(l.records))
	cursor := len(l.records) - l.redo
	for i := range l.records {
		if i >= cursor {
			status[i] = Redoable
		}
	}
	for i, rec := range l.records {
		if !rec.isElision() {
			continue
		}
		status[i] = ElisionMarker
		for k := i - rec.elided; k < i; k++ {
			if status[k] != ElisionMarker {
				status[k] = Elided
			}
		}
	}

	out := make([]RenderedAction, len(l.records))
	for i, rec := range l.records {
		first, end := rec.first, l.eventEnd(i)
		ra := RenderedAction{
			Index:      l.base + i,
			ID:         rec.id,
			Status:     status[i],
			Metadata:   rec.meta,
			ByteCount:  l.recordBytes(i),
			EventCount: end - first,
			Elided:     rec.elided,
		}
		if includeEvents {
			for e := first; e < end; e++ {
				ra.Events = append(ra.Events, l.describeEvent(e))
			}
		}
		out[i] = ra
	}
	return out
}

func (l *Ledger) describeEvent(e int) RenderedEvent {
	b := l.eventBytes(e)
	rd := codec.NewReader(b)
	op := OpKind(rd.Byte())
	r := route.Decode(l.codec, rd, l.schema)
	var sum strings.Builder
	l.replayOp(op, r, rd, dirDescribe, &sum)
	return RenderedEvent{
		Op:        op,
		Route:     route.Format(l.schema, r),
		Summary:   sum.String(),
		ByteCount: len(b),
	}
}
