package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/keychord/internal/config/watcher"
	"github.com/dshills/keychord/internal/input/combo"
	"github.com/dshills/keychord/internal/input/source"
	"github.com/dshills/keychord/internal/logging"
)

// feed is a key source that can also report lost key state.
type feed interface {
	combo.Source
	combo.Resetter
}

// RunTerminal reads keys from term until ctx is done or a quit action fires.
// It returns ErrQuit after a quit action.
func (app *Application) RunTerminal(ctx context.Context, term *source.Terminal) error {
	return app.run(ctx, term, term.Run)
}

// Replay plays s until it ends, ctx is done or a quit action fires.
// It returns ErrQuit after a quit action.
func (app *Application) Replay(ctx context.Context, s *source.Script) error {
	return app.run(ctx, s, s.Play)
}

// run forwards src into the bus and blocks in loop. A source stays attached
// after run returns, so each source should be run once. The source and the
// config watcher log through the logger on ctx, or the application logger
// if ctx carries none.
func (app *Application) run(ctx context.Context, src feed, loop func(context.Context) error) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if logging.FromContext(ctx).GetLevel() == zerolog.Disabled {
		ctx = logging.WithContext(ctx, app.log)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src.OnKeyDown(app.bus.Press)
	src.OnKeyUp(app.bus.Release)
	src.OnReset(app.bus.Reset)

	var wg sync.WaitGroup
	if app.opts.Watch && app.opts.ConfigPath != "" {
		w, err := watcher.New(app.opts.ConfigPath)
		if err != nil {
			return NewComponentError("watcher", "start", err)
		}
		defer w.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Run(logging.WithComponent(ctx, "watcher"), func() { _ = app.Reload() })
		}()
		app.log.Info().Str("path", w.Path()).Msg("watching config")
	}

	app.mu.Lock()
	app.cancel = cancel
	app.mu.Unlock()
	defer func() {
		app.mu.Lock()
		app.cancel = nil
		app.mu.Unlock()
	}()
	if app.quitRequested() {
		cancel()
	}

	err := loop(logging.WithComponent(ctx, "source"))
	cancel()
	wg.Wait()

	if app.quitRequested() {
		return ErrQuit
	}
	return err
}

// Reload reads the configuration file again and applies it. On failure the
// current bindings stay active.
func (app *Application) Reload() error {
	if app.opts.ConfigPath == "" {
		return nil
	}

	cfg, err := app.loader.Load(app.opts.ConfigPath)
	if err == nil {
		err = app.Apply(cfg)
	}
	app.metrics.RecordReload(err)

	if err != nil {
		app.log.Error().Err(err).Str("path", app.opts.ConfigPath).Msg("config reload failed")
		return err
	}
	app.log.Info().Int("bindings", len(cfg.Bindings)).Msg("config reloaded")
	return nil
}
