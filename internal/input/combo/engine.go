package combo

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/keychord/internal/input/key"
)

// Source delivers raw key-down and key-up events.
type Source interface {
	OnKeyDown(handler func(key.Code))
	OnKeyUp(handler func(key.Code))
}

// Resetter is implemented by sources that can report that held state is no
// longer trustworthy, for example when the input surface loses focus.
type Resetter interface {
	OnReset(handler func())
}

// Kind is the type of a key event.
type Kind uint8

const (
	// Pressed is a key-down transition.
	Pressed Kind = iota + 1
	// Released is a key-up transition.
	Released
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// Event is a single press or release of one key.
type Event struct {
	Kind Kind
	Code key.Code
}

// Press returns a key-down event.
func Press(c key.Code) Event {
	return Event{Kind: Pressed, Code: c}
}

// Release returns a key-up event.
func Release(c key.Code) Event {
	return Event{Kind: Released, Code: c}
}

// Fired describes a combo whose callback has run.
type Fired struct {
	Signature Signature
	At        time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry makes the engine match against reg instead of a fresh registry.
func WithRegistry(reg *Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.registry = reg
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithFireHook adds a hook run after every fired callback.
func WithFireHook(hook func(Fired)) Option {
	return func(e *Engine) {
		if hook != nil {
			e.hooks = append(e.hooks, hook)
		}
	}
}

// Engine tracks held keys and fires registered combos on key-down.
type Engine struct {
	id uuid.UUID

	// mu serialises held-set mutation and lookup. Callbacks run after it
	// is released so they may call back into the engine.
	mu   sync.Mutex
	held *HeldSet

	registry *Registry
	hooks    []func(Fired)
	log      zerolog.Logger
}

// New creates an engine bound to src. A nil src yields an engine that is
// driven only through Notify.
func New(src Source, opts ...Option) *Engine {
	e := &Engine{
		id:       uuid.New(),
		held:     NewHeldSet(),
		registry: NewRegistry(),
		log:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.log = e.log.With().Str("engine", e.id.String()).Logger()

	if src != nil {
		src.OnKeyDown(func(c key.Code) { e.Notify(Press(c)) })
		src.OnKeyUp(func(c key.Code) { e.Notify(Release(c)) })
		if r, ok := src.(Resetter); ok {
			r.OnReset(e.Reset)
		}
	}

	return e
}

// ID returns the engine instance identifier.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Registry returns the registry the engine matches against.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Register binds cb to codes in the engine's registry.
func (e *Engine) Register(codes []key.Code, cb Callback) error {
	if err := e.registry.Register(codes, cb); err != nil {
		return err
	}
	e.log.Debug().Str("combo", key.FormatCombo(codes)).Msg("combo registered")
	return nil
}

// Replace swaps every registered combo for set at once. See Registry.Replace.
func (e *Engine) Replace(set map[Signature]Callback) error {
	if err := e.registry.Replace(set); err != nil {
		return err
	}
	e.log.Debug().Int("combos", len(set)).Msg("combos replaced")
	return nil
}

// Notify applies one key event. On a press the callback registered for the
// resulting held set, if any, runs exactly once before Notify returns.
// Panics raised by the callback propagate to the caller.
func (e *Engine) Notify(ev Event) {
	switch ev.Kind {
	case Pressed:
		e.press(ev.Code)
	case Released:
		e.mu.Lock()
		e.held.Release(ev.Code)
		e.mu.Unlock()
	}
}

func (e *Engine) press(c key.Code) {
	e.mu.Lock()
	e.held.Press(c)
	sig := SignatureOf(e.held.Snapshot())
	cb, ok := e.registry.Lookup(sig)
	e.mu.Unlock()

	if !ok {
		return
	}

	e.log.Debug().Str("combo", sig.Describe()).Msg("combo fired")
	cb()

	if len(e.hooks) == 0 {
		return
	}
	fired := Fired{Signature: sig, At: time.Now()}
	for _, hook := range e.hooks {
		hook(fired)
	}
}

// Held returns the currently held keys in ascending order.
func (e *Engine) Held() []key.Code {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.held.Snapshot()
}

// Reset releases every held key without firing anything. Adapters call it
// when key-up events may have been lost.
func (e *Engine) Reset() {
	e.mu.Lock()
	n := e.held.Len()
	e.held.Clear()
	e.mu.Unlock()

	if n > 0 {
		e.log.Debug().Int("released", n).Msg("held keys reset")
	}
}
