package app

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/keychord/internal/action"
	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/config/loader"
	"github.com/dshills/keychord/internal/input/combo"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/input/source"
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/script"
)

// DefaultQuitKey is bound to quit unless the configuration claims it.
const DefaultQuitKey = "ctrl+c"

// Application loads bindings into a combo engine and feeds it from key sources.
type Application struct {
	mu sync.RWMutex

	// Core infrastructure
	config *config.Config
	loader *loader.Loader
	log    zerolog.Logger

	// Matching
	bus     *source.Emitter
	engine  *combo.Engine
	lua     *script.Runtime
	actions *action.Builder
	metrics *Metrics

	// bindings maps each registered signature to the entry that owns it.
	bindings  map[combo.Signature]config.Binding
	quitCodes []key.Code

	// State
	running  atomic.Bool
	cancel   context.CancelFunc
	quit     chan struct{}
	quitOnce sync.Once

	// Options
	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty means no bindings.
	ConfigPath string

	// QuitKey is bound to quit unless a configured binding uses the same keys.
	// Empty disables the fallback.
	QuitKey string

	// Watch reloads the configuration when the file changes while a source runs.
	Watch bool

	// Output receives print actions and Lua print calls.
	Output io.Writer

	// Logger overrides the logger built from the configuration.
	Logger *zerolog.Logger

	// LogOutput is where the configured logger writes. Defaults to stderr.
	LogOutput io.Writer
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	if opts.Output == nil {
		opts.Output = io.Discard
	}

	app := &Application{
		opts:     opts,
		loader:   loader.New(),
		bus:      &source.Emitter{},
		metrics:  NewMetrics(),
		bindings: make(map[combo.Signature]config.Binding),
		quit:     make(chan struct{}),
	}

	if opts.QuitKey != "" {
		codes, err := key.ParseCombo(opts.QuitKey)
		if err != nil {
			return nil, NewComponentError("options", "parse quit key", err)
		}
		app.quitCodes = codes
	}

	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = app.loader.Load(opts.ConfigPath)
	} else {
		cfg, err = app.loader.Default()
	}
	if err != nil {
		return nil, NewComponentError("config", "load", err)
	}

	app.log = app.buildLogger(cfg)
	app.lua = script.New(
		script.WithOutput(opts.Output),
		script.WithLogger(app.component("lua")),
	)
	app.actions = action.NewBuilder(
		action.WithLogger(app.component("action")),
		action.WithOutput(opts.Output),
		action.WithRuntime(app.lua),
		action.WithQuit(app.Quit),
	)
	app.engine = combo.New(app.bus,
		combo.WithLogger(app.component("engine")),
		combo.WithFireHook(app.onFire),
	)

	app.bus.OnKeyDown(func(key.Code) { app.metrics.RecordKeyDown() })
	app.bus.OnKeyUp(func(key.Code) { app.metrics.RecordKeyUp() })
	app.bus.OnReset(app.metrics.RecordReset)

	if err := app.Apply(cfg); err != nil {
		_ = app.lua.Close()
		return nil, err
	}

	return app, nil
}

func (app *Application) buildLogger(cfg *config.Config) zerolog.Logger {
	if app.opts.Logger != nil {
		return *app.opts.Logger
	}

	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(cfg.Logging.Level)
	if cfg.Logging.Format != "" {
		lc.Format = cfg.Logging.Format
	}
	lc.Output = os.Stderr
	if app.opts.LogOutput != nil {
		lc.Output = app.opts.LogOutput
	}
	return logging.New(lc)
}

func (app *Application) component(name string) zerolog.Logger {
	return app.log.With().Str("component", name).Logger()
}

type built struct {
	codes    []key.Code
	callback combo.Callback
	binding  config.Binding
}

// Apply replaces every registered combo with the bindings in cfg in one
// swap, so presses during a reload match either the old or the new set.
// Callbacks are built before anything is replaced, so a failing binding
// leaves the previous set in place.
func (app *Application) Apply(cfg *config.Config) error {
	var errs ErrorList
	items := make([]built, 0, len(cfg.Bindings))
	for i, b := range cfg.Bindings {
		cb, err := app.actions.Build(b)
		if err != nil {
			errs.Add(&BindingError{Index: i, Name: b.Label(), Err: err})
			continue
		}
		codes, _ := b.Codes()
		items = append(items, built{codes: codes, callback: cb, binding: b})
	}
	if err := errs.AsError(); err != nil {
		return err
	}

	bindings := make(map[combo.Signature]config.Binding, len(items)+1)
	set := make(map[combo.Signature]combo.Callback, len(items)+1)
	for _, it := range items {
		sig := combo.SignatureOf(it.codes)
		if prev, ok := bindings[sig]; ok {
			app.log.Warn().
				Str("binding", it.binding.Label()).
				Str("replaces", prev.Label()).
				Str("keys", sig.Describe()).
				Msg("binding overrides earlier binding")
		}
		set[sig] = it.callback
		bindings[sig] = it.binding
	}

	if len(app.quitCodes) > 0 {
		sig := combo.SignatureOf(app.quitCodes)
		if _, taken := bindings[sig]; !taken {
			set[sig] = app.Quit
			bindings[sig] = config.Binding{
				Name:   "quit",
				Keys:   key.FormatCombo(app.quitCodes),
				Action: config.ActionQuit,
			}
		}
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	if err := app.engine.Replace(set); err != nil {
		return err
	}
	app.bindings = bindings
	app.config = cfg
	return nil
}

func (app *Application) onFire(f combo.Fired) {
	app.metrics.RecordFire(f.Signature, f.At)
}

// BindingInfo describes one active binding.
type BindingInfo struct {
	Name   string
	Keys   string
	Action string
	Fires  uint64
}

// Bindings lists the active bindings in registry order.
func (app *Application) Bindings() []BindingInfo {
	registered := app.engine.Registry().Bindings()

	app.mu.RLock()
	defer app.mu.RUnlock()

	out := make([]BindingInfo, 0, len(registered))
	for _, r := range registered {
		info := BindingInfo{Keys: key.FormatCombo(r.Codes)}
		if b, ok := app.bindings[r.Signature]; ok {
			info.Name = b.Label()
			info.Action = b.Action
		}
		info.Fires = app.metrics.Fires(r.Signature)
		out = append(out, info)
	}
	return out
}

// Quit stops the running source loop before its next event. A quit
// requested while nothing runs stops the next loop at once. Safe to call
// more than once.
func (app *Application) Quit() {
	app.quitOnce.Do(func() {
		close(app.quit)
	})

	app.mu.RLock()
	cancel := app.cancel
	app.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

func (app *Application) quitRequested() bool {
	select {
	case <-app.quit:
		return true
	default:
		return false
	}
}

// Shutdown releases the Lua runtime.
func (app *Application) Shutdown() {
	_ = app.lua.Close()
}

// IsRunning returns true while a source loop is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the applied configuration.
func (app *Application) Config() *config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.config
}

// Engine returns the combo engine.
func (app *Application) Engine() *combo.Engine {
	return app.engine
}

// Bus returns the emitter every source is forwarded into.
func (app *Application) Bus() *source.Emitter {
	return app.bus
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Logger returns the application logger.
func (app *Application) Logger() zerolog.Logger {
	return app.log
}
