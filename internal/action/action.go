// Package action turns configured bindings into combo callbacks.
package action

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/input/combo"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/script"
)

// Errors returned by Build.
var (
	// ErrUnknownAction indicates a binding action with no implementation.
	ErrUnknownAction = errors.New("unknown action")

	// ErrUnavailable indicates the builder lacks what an action needs.
	ErrUnavailable = errors.New("action unavailable")
)

// Builder creates callbacks for bindings.
type Builder struct {
	log  zerolog.Logger
	out  io.Writer
	lua  *script.Runtime
	quit func()
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used by log actions and for script failures.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}

// WithOutput sets the writer used by print actions.
func WithOutput(w io.Writer) Option {
	return func(b *Builder) {
		b.out = w
	}
}

// WithRuntime enables lua actions.
func WithRuntime(rt *script.Runtime) Option {
	return func(b *Builder) {
		b.lua = rt
	}
}

// WithQuit enables quit actions.
func WithQuit(fn func()) Option {
	return func(b *Builder) {
		b.quit = fn
	}
}

// NewBuilder creates a builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		log: zerolog.Nop(),
		out: io.Discard,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the callback for bind. Lua sources are compiled here so
// syntax errors surface at load time rather than on the first fire.
func (b *Builder) Build(bind config.Binding) (combo.Callback, error) {
	codes, err := bind.Codes()
	if err != nil {
		return nil, err
	}
	name := bind.Label()
	keys := key.FormatCombo(codes)

	switch bind.Action {
	case config.ActionLog:
		msg := bind.Message
		if msg == "" {
			msg = "combo triggered"
		}
		return func() {
			b.log.Info().Str("binding", name).Str("keys", keys).Msg(msg)
		}, nil

	case config.ActionPrint:
		msg := bind.Message
		if msg == "" {
			msg = name
		}
		return func() {
			fmt.Fprintln(b.out, msg)
		}, nil

	case config.ActionLua:
		if b.lua == nil {
			return nil, fmt.Errorf("%w: %s: no lua runtime", ErrUnavailable, name)
		}
		chunk, err := script.Compile(name, bind.Script)
		if err != nil {
			return nil, err
		}
		return func() {
			if err := b.lua.Run(chunk, keys); err != nil {
				b.log.Error().Err(err).Str("binding", name).Msg("lua action failed")
			}
		}, nil

	case config.ActionQuit:
		if b.quit == nil {
			return nil, fmt.Errorf("%w: %s: quit not supported here", ErrUnavailable, name)
		}
		return b.quit, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, bind.Action)
	}
}
