package history

import (
	"fmt"
	"log/slog"
)

func redoPending(what string) error {
	return fmt.Errorf("%w: cannot %s", ErrRedoPending, what)
}

// TrimHistory discards every record before absolute index cut together with
// their events. A cut that falls inside an elided window moves back to the
// start of that window, so an elision record never outlives the records it
// counts. Retained records keep their indices. It panics if an action is
// open or redos are pending.
func (l *Ledger) TrimHistory(cut int) {
	l.mustBeIdle("trim history")
	if l.redo > 0 {
		panic(redoPending("trim history"))
	}
	rel := min(max(cut-l.base, 0), len(l.records))
	l.dropBefore(l.resolveCut(rel, false))
}

// TrimHistoryToSize discards the oldest records until HistoryBytes is at
// most budget. Records are removed whole; a cut inside an elided window
// moves forward past the window's elision record. It panics if an action is
// open or redos are pending.
func (l *Ledger) TrimHistoryToSize(budget int) {
	l.mustBeIdle("trim history")
	if l.redo > 0 {
		panic(redoPending("trim history"))
	}
	if l.HistoryBytes() <= budget {
		return
	}
	cut := 0
	for cut < len(l.records) && l.footprintFrom(cut) > budget {
		cut++
	}
	l.dropBefore(l.resolveCut(cut, true))
}

// resolveCut adjusts a relative cut so no elided window is split: a window
// of records [s, e) closed by the elision record at e is split when
// s < cut <= e.
func (l *Ledger) resolveCut(cut int, forward bool) int {
	for {
		moved := false
		for e := cut; e < len(l.records); e++ {
			n := l.records[e].elided
			if n == 0 {
				continue
			}
			if s := e - n; s < cut {
				if forward {
					cut = e + 1
				} else {
					cut = s
				}
				moved = true
				break
			}
		}
		if !moved {
			return cut
		}
	}
}

// firstEventFrom returns the first event index kept by a cut at relative
// record index cut.
func (l *Ledger) firstEventFrom(cut int) int {
	if cut < len(l.records) {
		return l.records[cut].first
	}
	return len(l.offsets)
}

// droppedBytes returns the number of log bytes before event k, excluding the
// reserved first byte.
func (l *Ledger) droppedBytes(k int) int {
	if k < len(l.offsets) {
		return l.offsets[k] - 1
	}
	return l.log.Len() - 1
}

// footprintFrom returns HistoryBytes as it would be after dropping the
// records before cut.
func (l *Ledger) footprintFrom(cut int) int {
	k := l.firstEventFrom(cut)
	return l.log.Len() - l.droppedBytes(k) +
		(len(l.offsets)-k)*offsetCost +
		(len(l.records)-cut)*recordCost
}

func (l *Ledger) dropBefore(cut int) {
	if cut <= 0 {
		return
	}
	k := l.firstEventFrom(cut)
	dropped := l.droppedBytes(k)

	buf := make([]byte, 1, l.log.Len()-dropped)
	buf = append(buf, l.log.Bytes()[1+dropped:]...)
	l.log.Reset(buf)

	offsets := make([]int, len(l.offsets)-k)
	for i, off := range l.offsets[k:] {
		offsets[i] = off - dropped
	}
	l.offsets = offsets

	records := make([]record, len(l.records)-cut)
	copy(records, l.records[cut:])
	for i := range records {
		records[i].first -= k
	}
	l.records = records
	l.base += cut

	l.logger.Debug("history trimmed",
		slog.Int("records", cut),
		slog.Int("events", k),
		slog.Int("bytes", dropped),
		slog.Int("base", l.base))
	l.rec.HistoryTrimmed(cut, dropped)
	l.rec.HistoryBytes(l.HistoryBytes())
}
