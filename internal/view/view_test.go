package view

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/edithistory/internal/engine"
	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/schema"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newEngine(t *testing.T, labels ...string) *engine.Engine {
	t.Helper()
	e, err := engine.New(
		schema.Record("Doc", schema.F("items", schema.SequenceOf(schema.Int32))),
		engine.WithLogger(quiet),
	)
	require.NoError(t, err)
	for i, l := range labels {
		require.NoError(t, e.Do(l, func(tx *engine.Tx) error {
			tx.Seq("items").Append(doc.Int(i))
			return nil
		}))
	}
	return e
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	require.NoError(t, s.Init())
	s.SetSize(80, 12)
	t.Cleanup(s.Fini)
	return s
}

// line returns the text of row y with trailing blanks removed.
func line(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := range w {
		r, _, _, _ := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestDrawStatuses(t *testing.T) {
	e := newEngine(t, "first", "second", "third")
	_, err := e.Undo()
	require.NoError(t, err)
	_, err = e.Undo()
	require.NoError(t, err)
	require.NoError(t, e.Do("fourth", func(tx *engine.Tx) error {
		tx.Seq("items").Append(doc.Int(9))
		return nil
	}))

	s := newScreen(t)
	v := New(s, e, WithLogger(quiet))
	v.Draw()

	assert.Contains(t, line(s, 0), "cursor 5")
	assert.Contains(t, line(s, 1), "undoable")
	assert.Contains(t, line(s, 1), "first")
	assert.Contains(t, line(s, 2), "elided")
	assert.Contains(t, line(s, 2), "second")
	assert.Contains(t, line(s, 3), "elided")
	assert.Contains(t, line(s, 4), "elision")
	assert.Contains(t, line(s, 4), "(closed 2)")
	assert.True(t, strings.HasPrefix(line(s, 5), ">"), "cursor marks the last applied action")
	assert.Contains(t, line(s, 5), "fourth")
	assert.Contains(t, line(s, 11), "u undo")
}

func TestHandleKeys(t *testing.T) {
	e := newEngine(t, "first", "second")
	s := newScreen(t)
	v := New(s, e, WithLogger(quiet))

	assert.False(t, v.HandleKey(key('u')))
	assert.Equal(t, 1, e.CursorIndex())
	v.Draw()
	assert.Contains(t, line(s, 11), "undo #1")
	assert.Contains(t, line(s, 2), "redoable")

	assert.False(t, v.HandleKey(key('u')))
	assert.False(t, v.HandleKey(key('u')))
	v.Draw()
	assert.Contains(t, line(s, 11), engine.ErrNothingToUndo.Error())

	assert.False(t, v.HandleKey(key('r')))
	assert.Equal(t, 1, e.CursorIndex())

	assert.False(t, v.HandleKey(key('e')))
	v.Draw()
	assert.Contains(t, line(s, 2), "append")

	assert.True(t, v.HandleKey(key('q')))
	assert.True(t, v.HandleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}

func TestScrollIsClamped(t *testing.T) {
	labels := make([]string, 30)
	for i := range labels {
		labels[i] = "a"
	}
	e := newEngine(t, labels...)
	s := newScreen(t)
	v := New(s, e, WithLogger(quiet))

	for range 100 {
		v.HandleKey(key('j'))
	}
	v.Draw()
	assert.Contains(t, line(s, 10), "  29  ", "last row is visible")

	for range 100 {
		v.HandleKey(key('k'))
	}
	v.Draw()
	assert.Contains(t, line(s, 1), "   0  ")
}

func TestRunQuitsOnKey(t *testing.T) {
	e := newEngine(t, "only")
	s := tcell.NewSimulationScreen("")
	v := New(s, e, WithLogger(quiet), WithEvents(true))

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		return strings.Contains(line(s, 0), "history")
	}, 2*time.Second, 10*time.Millisecond)

	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after q")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e := newEngine(t)
	s := tcell.NewSimulationScreen("")
	v := New(s, e, WithLogger(quiet))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(line(s, 0), "history")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
