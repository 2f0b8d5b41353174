package script

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// DefaultTimeout bounds a single chunk run.
const DefaultTimeout = 2 * time.Second

// Chunk is a compiled script.
type Chunk struct {
	name  string
	proto *lua.FunctionProto
}

// Name returns the chunk name used in errors and log lines.
func (c *Chunk) Name() string {
	return c.name
}

// Runtime executes chunks on a single Lua state.
//
// gopher-lua's LState is not goroutine-safe; Run serializes access.
type Runtime struct {
	mu sync.Mutex

	L       *lua.LState
	out     io.Writer
	log     zerolog.Logger
	timeout time.Duration
	current string
	closed  bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithOutput sets the writer used by print.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.out = w
	}
}

// WithLogger sets the logger used by keychord.log.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runtime) {
		r.log = log
	}
}

// WithTimeout sets the per-run timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		r.timeout = d
	}
}

// New creates a sandboxed runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		out:     io.Discard,
		log:     zerolog.Nop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.install()
	return r
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (r *Runtime) install() {
	r.L.SetGlobal("print", r.L.NewFunction(r.luaPrint))

	mod := r.L.SetFuncs(r.L.NewTable(), map[string]lua.LGFunction{
		"log": r.luaLog,
	})
	r.L.SetGlobal("keychord", mod)
}

func (r *Runtime) luaPrint(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}

func (r *Runtime) luaLog(L *lua.LState) int {
	msg := L.ToStringMeta(L.Get(1)).String()
	r.log.Info().Str("script", r.current).Msg(msg)
	return 0
}

// Compile parses src into a chunk. It does not touch the Lua state.
func Compile(name, src string) (*Chunk, error) {
	stmts, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	proto, err := lua.Compile(stmts, name)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return &Chunk{name: name, proto: proto}, nil
}

// Run executes chunk with the global combo set to comboName.
func (r *Runtime) Run(chunk *Chunk, comboName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	r.current = chunk.name
	r.L.SetGlobal("combo", lua.LString(comboName))

	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	r.L.Push(r.L.NewFunctionFromProto(chunk.proto))
	if err := r.L.PCall(0, 0, nil); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s", ErrTimeout, chunk.name)
		}
		return fmt.Errorf("running %s: %w", chunk.name, err)
	}
	return nil
}

// Global returns the string form of a global, or "" if it is nil.
func (r *Runtime) Global(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ""
	}
	v := r.L.GetGlobal(name)
	if v == lua.LNil {
		return ""
	}
	return v.String()
}

// Close releases the Lua state.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.L.Close()
	r.closed = true
	return nil
}
