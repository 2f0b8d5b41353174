package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/input/combo"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/input/source"
	"github.com/dshills/keychord/internal/logging"
)

const baseConfig = `
[[bindings]]
name = "save"
keys = "ctrl+s"
action = "print"
message = "saved"

[[bindings]]
name = "undo"
keys = "ctrl+alt+z"
action = "lua"
script = 'print("undo " .. combo)'

[[bindings]]
name = "leave"
keys = "ctrl+q"
action = "quit"
`

// syncBuffer is a bytes.Buffer safe for the watcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "keychord.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newTestApp(t *testing.T, opts Options) (*Application, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	nop := zerolog.Nop()
	opts.Output = out
	opts.Logger = &nop

	app, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(app.Shutdown)
	return app, out
}

func replay(t *testing.T, app *Application, script string) error {
	t.Helper()
	s, err := source.ParseScript(strings.NewReader(script))
	require.NoError(t, err)
	return app.Replay(context.Background(), s)
}

func TestReplayFiresBindings(t *testing.T) {
	path := writeConfig(t, t.TempDir(), baseConfig)
	app, out := newTestApp(t, Options{ConfigPath: path})

	err := replay(t, app, "tap ctrl+s\ndown alt\ndown ctrl\ndown z\nup z\ndown z\nreset\n")
	require.NoError(t, err)

	assert.Equal(t, "saved\nundo ctrl+alt+z\nundo ctrl+alt+z\n", out.String())

	s := app.Metrics().Snapshot()
	assert.Equal(t, uint64(1), s.Fires[combo.SignatureOf([]key.Code{key.Ctrl, 'S'})])
	assert.Equal(t, uint64(2), s.Fires[combo.SignatureOf([]key.Code{key.Ctrl, key.Alt, 'Z'})])
	assert.Equal(t, uint64(6), s.KeyDowns)
	assert.Equal(t, uint64(1), s.Resets)
	assert.Empty(t, app.Engine().Held())
}

func TestReplayQuit(t *testing.T) {
	path := writeConfig(t, t.TempDir(), baseConfig)
	app, out := newTestApp(t, Options{ConfigPath: path})

	err := replay(t, app, "tap ctrl+q\nwait 1h\ntap ctrl+s\n")
	assert.ErrorIs(t, err, ErrQuit)
	assert.Empty(t, out.String())
	assert.False(t, app.IsRunning())
}

func TestQuitKeyFallback(t *testing.T) {
	app, _ := newTestApp(t, Options{QuitKey: DefaultQuitKey})

	bindings := app.Bindings()
	require.Len(t, bindings, 1)
	assert.Equal(t, BindingInfo{Name: "quit", Keys: "ctrl+c", Action: config.ActionQuit}, bindings[0])

	assert.ErrorIs(t, replay(t, app, "tap ctrl+c\n"), ErrQuit)
}

func TestQuitKeyYieldsToConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[[bindings]]
name = "copy"
keys = "ctrl+c"
action = "print"
message = "copied"
`)
	app, out := newTestApp(t, Options{ConfigPath: path, QuitKey: "ctrl+c"})

	require.NoError(t, replay(t, app, "tap ctrl+c\n"))
	assert.Equal(t, "copied\n", out.String())
}

func TestNewErrors(t *testing.T) {
	_, err := New(Options{QuitKey: "ctrl+hyper"})
	assert.ErrorIs(t, err, key.ErrUnknownKey)

	_, err = New(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")})
	var cerr *ComponentError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "config", cerr.Component)

	path := writeConfig(t, t.TempDir(), "[[bindings]]\nkeys = \"f1\"\naction = \"lua\"\nscript = \"if then\"\n")
	_, err = New(Options{ConfigPath: path})
	var berr *BindingError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, 0, berr.Index)
	assert.Equal(t, "f1", berr.Name)
}

func TestBindingsListing(t *testing.T) {
	path := writeConfig(t, t.TempDir(), baseConfig)
	app, _ := newTestApp(t, Options{ConfigPath: path})

	require.NoError(t, replay(t, app, "tap ctrl+s\n"))

	assert.Equal(t, []BindingInfo{
		{Name: "undo", Keys: "ctrl+alt+z", Action: config.ActionLua},
		{Name: "leave", Keys: "ctrl+q", Action: config.ActionQuit},
		{Name: "save", Keys: "ctrl+s", Action: config.ActionPrint, Fires: 1},
	}, app.Bindings())
}

func TestApplyDuplicateKeysLastWins(t *testing.T) {
	app, out := newTestApp(t, Options{})

	require.NoError(t, app.Apply(&config.Config{Bindings: []config.Binding{
		{Name: "first", Keys: "ctrl+s", Action: config.ActionPrint, Message: "first"},
		{Name: "second", Keys: "s+ctrl", Action: config.ActionPrint, Message: "second"},
	}}))

	require.NoError(t, replay(t, app, "tap ctrl+s\n"))
	assert.Equal(t, "second\n", out.String())
	assert.Equal(t, 1, app.Engine().Registry().Len())
}

func TestApplyFailureKeepsBindings(t *testing.T) {
	path := writeConfig(t, t.TempDir(), baseConfig)
	app, _ := newTestApp(t, Options{ConfigPath: path})
	before := app.Bindings()

	err := app.Apply(&config.Config{Bindings: []config.Binding{
		{Keys: "f1", Action: config.ActionPrint},
		{Keys: "f2", Action: "launch"},
	}})
	require.Error(t, err)

	var berr *BindingError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, 1, berr.Index)
	assert.Equal(t, before, app.Bindings())
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, baseConfig)
	app, out := newTestApp(t, Options{ConfigPath: path})

	writeConfig(t, dir, "[[bindings]]\nkeys = \"f5\"\naction = \"print\"\nmessage = \"refresh\"\n")
	require.NoError(t, app.Reload())

	require.NoError(t, replay(t, app, "tap ctrl+s\ntap f5\n"))
	assert.Equal(t, "refresh\n", out.String())

	writeConfig(t, dir, "[[bindings]\n")
	var perr *config.ParseError
	require.ErrorAs(t, app.Reload(), &perr)
	assert.Len(t, app.Bindings(), 1, "failed reload keeps the current bindings")

	s := app.Metrics().Snapshot()
	assert.Equal(t, uint64(1), s.Reloads)
	assert.Equal(t, uint64(1), s.ReloadFailures)
}

func TestWatchReloadsWhileRunning(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, baseConfig)
	app, _ := newTestApp(t, Options{ConfigPath: path, Watch: true})

	s, err := source.ParseScript(strings.NewReader("wait 1h\n"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Replay(context.Background(), s) }()

	require.Eventually(t, app.IsRunning, 2*time.Second, 10*time.Millisecond)
	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeConfig(t, dir, "[[bindings]]\nname = \"refresh\"\nkeys = \"f5\"\naction = \"print\"\n")

	require.Eventually(t, func() bool {
		b := app.Bindings()
		return len(b) == 1 && b[0].Name == "refresh"
	}, 5*time.Second, 20*time.Millisecond)

	app.Quit()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrQuit)
	case <-time.After(2 * time.Second):
		t.Fatal("Replay did not stop after Quit")
	}
}

func TestRunAlreadyRunning(t *testing.T) {
	app, _ := newTestApp(t, Options{})

	s, err := source.ParseScript(strings.NewReader("wait 1h\n"))
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- app.Replay(context.Background(), s) }()
	require.Eventually(t, app.IsRunning, 2*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, replay(t, app, "tap a\n"), ErrAlreadyRunning)

	app.Quit()
	assert.ErrorIs(t, <-done, ErrQuit)
}

// fakeScreen serves events from a channel.
type fakeScreen struct {
	events chan tcell.Event
}

func (s *fakeScreen) Init() error { return nil }
func (s *fakeScreen) Fini() {}

func (s *fakeScreen) PollEvent() tcell.Event {
	ev, ok := <-s.events
	if !ok {
		return nil
	}
	return ev
}

func (s *fakeScreen) PostEvent(ev tcell.Event) error {
	select {
	case s.events <- ev:
		return nil
	default:
		return errors.New("queue full")
	}
}

func TestRunTerminal(t *testing.T) {
	path := writeConfig(t, t.TempDir(), baseConfig)
	app, out := newTestApp(t, Options{ConfigPath: path, QuitKey: DefaultQuitKey})

	screen := &fakeScreen{events: make(chan tcell.Event, 8)}
	term := source.NewTerminalWithScreen(screen)

	screen.events <- tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl)
	screen.events <- tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModCtrl|tcell.ModAlt)
	screen.events <- tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)

	err := app.RunTerminal(context.Background(), term)
	assert.ErrorIs(t, err, ErrQuit)
	assert.Equal(t, "saved\nundo ctrl+alt+z\n", out.String())
	assert.Equal(t, uint64(1), app.Metrics().Fires(combo.SignatureOf([]key.Code{key.Ctrl, 'C'})))
}

func TestFireHookCountsUnnamedCombo(t *testing.T) {
	app, _ := newTestApp(t, Options{})

	require.NoError(t, app.Engine().Register([]key.Code{key.F9}, func() {}))
	app.Bus().Press(key.F9)

	assert.Equal(t, uint64(1), app.Metrics().Fires(combo.SignatureOf([]key.Code{key.F9})))
}

func TestApplyDuringPressesMissesNothing(t *testing.T) {
	app, out := newTestApp(t, Options{QuitKey: DefaultQuitKey})
	cfg := &config.Config{Bindings: []config.Binding{
		{Name: "save", Keys: "ctrl+s", Action: config.ActionPrint, Message: "saved"},
		{Name: "find", Keys: "ctrl+f", Action: config.ActionPrint, Message: "found"},
	}}
	require.NoError(t, app.Apply(cfg))

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				assert.NoError(t, app.Apply(cfg))
			}
		}
	}()

	const presses = 2000
	app.Bus().Press(key.Ctrl)
	for i := 0; i < presses; i++ {
		app.Bus().Press('S')
		app.Bus().Release('S')
	}
	close(done)
	wg.Wait()

	assert.Equal(t, presses, strings.Count(out.String(), "saved\n"))
	assert.Equal(t, uint64(presses), app.Metrics().Fires(combo.SignatureOf([]key.Code{key.Ctrl, 'S'})))
}

func TestFireCountsPerCombo(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[[bindings]]
name = "quit"
keys = "ctrl+q"
action = "print"
message = "not really"

[[bindings]]
name = "jump"
keys = "f1"
action = "print"

[[bindings]]
name = "jump"
keys = "f2"
action = "print"
`)
	app, _ := newTestApp(t, Options{ConfigPath: path, QuitKey: DefaultQuitKey})

	require.NoError(t, replay(t, app, "tap ctrl+q\ntap ctrl+q\ntap f2\n"))

	tests := []struct {
		keys  string
		name  string
		fires uint64
	}{
		{"ctrl+c", "quit", 0},
		{"ctrl+q", "quit", 2},
		{"f1", "jump", 0},
		{"f2", "jump", 1},
	}
	got := make(map[string]BindingInfo)
	for _, b := range app.Bindings() {
		got[b.Keys] = b
	}
	require.Len(t, got, len(tests))
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			b, ok := got[tt.keys]
			require.True(t, ok)
			assert.Equal(t, tt.name, b.Name)
			assert.Equal(t, tt.fires, b.Fires)
		})
	}
}

func TestNewWithoutConfigHonorsEnv(t *testing.T) {
	t.Setenv("KEYCHORD_LOG_LEVEL", "debug")
	t.Setenv("KEYCHORD_LOG_FORMAT", "json")

	var logs syncBuffer
	app, err := New(Options{LogOutput: &logs})
	require.NoError(t, err)
	t.Cleanup(app.Shutdown)

	assert.Equal(t, zerolog.DebugLevel, app.Logger().GetLevel())
	assert.Equal(t, "debug", app.Config().Logging.Level)

	logger := app.Logger()
	logger.Debug().Msg("visible")
	assert.Contains(t, logs.String(), `"message":"visible"`)
}

func TestNewWithoutConfigRejectsBadEnv(t *testing.T) {
	t.Setenv("KEYCHORD_LOG_LEVEL", "loud")

	_, err := New(Options{})
	var cerr *ComponentError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "config", cerr.Component)
	assert.ErrorIs(t, err, config.ErrValidationFailed)
}

func TestRunPassesLoggerThroughContext(t *testing.T) {
	var appLogs, ctxLogs syncBuffer
	appLog := zerolog.New(&appLogs).Level(zerolog.DebugLevel)
	app, err := New(Options{Logger: &appLog})
	require.NoError(t, err)
	t.Cleanup(app.Shutdown)

	s, err := source.ParseScript(strings.NewReader("tap f1\n"))
	require.NoError(t, err)
	require.NoError(t, app.Replay(context.Background(), s))
	assert.Contains(t, appLogs.String(), `"component":"source"`)
	assert.Contains(t, appLogs.String(), `"message":"script started"`)

	ctxLog := zerolog.New(&ctxLogs).Level(zerolog.DebugLevel)
	s, err = source.ParseScript(strings.NewReader("tap f1\n"))
	require.NoError(t, err)
	require.NoError(t, app.Replay(logging.WithContext(context.Background(), ctxLog), s))
	assert.Contains(t, ctxLogs.String(), `"message":"script started"`)
}
