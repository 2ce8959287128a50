// Package view draws the history of an engine in a terminal and lets the
// user step through it with undo and redo.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/edithistory/internal/engine"
)

// History is the part of the engine the viewer drives.
type History interface {
	Render(includeEvents bool) []engine.RenderedAction
	Undo() (int, error)
	Redo() (int, error)
	CursorIndex() int
	HistoryBytes() int
}

var _ History = (*engine.Engine)(nil)

// Styles of the rows by record status.
var (
	styleDefault  = tcell.StyleDefault
	styleHeader   = tcell.StyleDefault.Bold(true).Reverse(true)
	styleCursor   = tcell.StyleDefault.Bold(true)
	styleRedoable = tcell.StyleDefault.Dim(true)
	styleElided   = tcell.StyleDefault.Dim(true).StrikeThrough(true)
	styleElision  = tcell.StyleDefault.Italic(true)
	styleEvent    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleFooter   = tcell.StyleDefault.Reverse(true)
)

const helpText = "u undo  r redo  e events  j/k scroll  q quit"

// Viewer is an interactive history table.
type Viewer struct {
	mu     sync.Mutex
	screen tcell.Screen
	hist   History
	logger *slog.Logger

	showEvents bool
	offset     int
	message    string
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithEvents starts the viewer with event rows expanded.
func WithEvents(show bool) Option {
	return func(v *Viewer) {
		v.showEvents = show
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.logger = l
		}
	}
}

// New creates a viewer drawing h on screen. The screen is initialized by
// Run.
func New(screen tcell.Screen, h History, opts ...Option) *Viewer {
	v := &Viewer{
		screen: screen,
		hist:   h,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewTerminal creates a viewer on the controlling terminal.
func NewTerminal(h History, opts ...Option) (*Viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return New(screen, h, opts...), nil
}

// Run initializes the screen and handles input until the user quits or
// ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer v.screen.Fini()

	stop := context.AfterFunc(ctx, func() {
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort; loop also exits on Fini
	})
	defer stop()

	v.Draw()
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch e := ev.(type) {
		case *tcell.EventKey:
			if v.HandleKey(e) {
				return nil
			}
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		v.Draw()
	}
}

// HandleKey applies a key press and reports whether the viewer should
// quit.
func (v *Viewer) HandleKey(ev *tcell.EventKey) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.scroll(-1)
		return false
	case tcell.KeyDown:
		v.scroll(1)
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case 'u':
		v.step("undo", v.hist.Undo, engine.ErrNothingToUndo)
	case 'r':
		v.step("redo", v.hist.Redo, engine.ErrNothingToRedo)
	case 'e':
		v.showEvents = !v.showEvents
	case 'k':
		v.scroll(-1)
	case 'j':
		v.scroll(1)
	}
	return false
}

func (v *Viewer) step(what string, fn func() (int, error), none error) {
	i, err := fn()
	switch {
	case errors.Is(err, none):
		v.message = none.Error()
	case err != nil:
		v.message = err.Error()
		v.logger.Warn(what+" failed", slog.String("error", err.Error()))
	default:
		v.message = fmt.Sprintf("%s #%d", what, i)
	}
}

func (v *Viewer) scroll(delta int) {
	v.offset = max(v.offset+delta, 0)
}

// row is one line of the table.
type row struct {
	text  string
	style tcell.Style
}

// rows lays out the table below the header.
func (v *Viewer) rows() []row {
	cursor := v.hist.CursorIndex()
	var out []row
	for _, a := range v.hist.Render(v.showEvents) {
		mark := ' '
		if a.Index == cursor-1 {
			mark = '>'
		}
		text := fmt.Sprintf("%c %4d  %-8s  %6dB  %3d ev  %s",
			mark, a.Index, a.Status, a.ByteCount, a.EventCount, label(a))
		style := styleDefault
		switch {
		case mark == '>':
			style = styleCursor
		case a.Status == engine.Redoable:
			style = styleRedoable
		case a.Status == engine.Elided:
			style = styleElided
		case a.Status == engine.ElisionMarker:
			style = styleElision
		}
		out = append(out, row{text, style})

		for _, ev := range a.Events {
			out = append(out, row{
				text:  fmt.Sprintf("          %-20s %-24s %s", ev.Op, ev.Route, ev.Summary),
				style: styleEvent,
			})
		}
	}
	return out
}

func label(a engine.RenderedAction) string {
	switch {
	case a.Status == engine.ElisionMarker:
		return fmt.Sprintf("(closed %d)", a.Elided)
	case a.Metadata == nil:
		return ""
	}
	return fmt.Sprint(a.Metadata)
}

// Draw renders the table onto the screen.
func (v *Viewer) Draw() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.screen.Clear()
	width, height := v.screen.Size()
	if height < 3 {
		v.screen.Show()
		return
	}

	header := fmt.Sprintf(" history  cursor %d  bytes %d", v.hist.CursorIndex(), v.hist.HistoryBytes())
	drawLine(v.screen, 0, width, header, styleHeader)

	rows := v.rows()
	body := height - 2
	v.offset = min(v.offset, max(len(rows)-body, 0))
	for y := 0; y < body && v.offset+y < len(rows); y++ {
		r := rows[v.offset+y]
		drawLine(v.screen, y+1, width, r.text, r.style)
	}

	footer := " " + helpText
	if v.message != "" {
		footer += "  | " + v.message
	}
	drawLine(v.screen, height-1, width, footer, styleFooter)
	v.screen.Show()
}

// drawLine writes s at row y, padding with the style to width.
func drawLine(s tcell.Screen, y, width int, text string, style tcell.Style) {
	x := 0
	for _, r := range text {
		if x >= width {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < width; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}
