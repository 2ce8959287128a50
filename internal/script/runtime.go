package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/edithistory/internal/engine"
)

// DefaultTimeout bounds a single DoString or DoFile call.
const DefaultTimeout = 5 * time.Second

// Runtime executes Lua code against one engine.
type Runtime struct {
	mu sync.Mutex
	L  *lua.LState

	engine  *engine.Engine
	logger  *slog.Logger
	out     io.Writer
	timeout time.Duration

	// tx is the open action while hist.action runs its callback.
	tx *engine.Tx

	// lastErr is the most recent engine error raised into Lua.
	lastErr error
	closed  bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOutput redirects print. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		if w != nil {
			r.out = w
		}
	}
}

// WithTimeout bounds each run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		r.timeout = d
	}
}

// New creates a sandboxed runtime bound to e.
func New(e *engine.Engine, opts ...Option) *Runtime {
	r := &Runtime{
		engine:  e,
		logger:  slog.Default(),
		out:     os.Stdout,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	L.SetGlobal("print", L.NewFunction(r.print))
	r.L = L

	L.SetGlobal("doc", r.docModule(L))
	L.SetGlobal("hist", r.histModule(L))
	return r
}

// openSafeLibraries opens base, table, string and math, then removes the
// base functions that reach the file system.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoString runs code.
func (r *Runtime) DoString(ctx context.Context, code string) error {
	return r.run(ctx, "<string>", func() error {
		return r.L.DoString(code)
	})
}

// DoFile runs the script at path.
func (r *Runtime) DoFile(ctx context.Context, path string) error {
	return r.run(ctx, path, func() error {
		return r.L.DoFile(path)
	})
}

// Close releases the Lua state. It is safe to call more than once.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.L.Close()
}

func (r *Runtime) run(ctx context.Context, chunk string, fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrStateClosed
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	r.lastErr = nil
	start := time.Now()
	err := fn()
	if err == nil {
		r.logger.Debug("script finished",
			slog.String("chunk", chunk),
			slog.Duration("elapsed", time.Since(start)))
		return nil
	}

	serr := &Error{Chunk: chunk, Message: err.Error()}
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		serr.Message = apiErr.Object.String()
	}
	switch {
	case ctx.Err() != nil:
		serr.cause = ctx.Err()
	case r.lastErr != nil && strings.Contains(serr.Message, r.lastErr.Error()):
		serr.cause = r.lastErr
	}
	r.logger.Warn("script failed",
		slog.String("chunk", chunk),
		slog.String("error", serr.Message))
	return serr
}

// print writes its arguments to the configured output, tab separated.
func (r *Runtime) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}

// raise reports err as a Lua error. It does not return.
func (r *Runtime) raise(L *lua.LState, err error) {
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		r.lastErr = err
	}
	L.RaiseError("%s", err.Error())
}

// call runs fn and raises its error. Ledger programmer errors panic with
// an error value; those are raised too.
func (r *Runtime) call(L *lua.LState, fn func() error) {
	if err := protect(fn); err != nil {
		r.raise(L, err)
	}
}

func protect(fn func() error) (err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		e, ok := p.(error)
		if !ok {
			panic(p)
		}
		var rt runtime.Error
		var apiErr *lua.ApiError
		if errors.As(e, &rt) || errors.As(e, &apiErr) {
			panic(p)
		}
		err = e
	}()
	return fn()
}
