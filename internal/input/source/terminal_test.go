package source

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

// fakeScreen serves events from a channel. PollEvent returns nil once the
// channel is closed.
type fakeScreen struct {
	events  chan tcell.Event
	initErr error
	inited  bool
	closed  bool
}

func newFakeScreen() *fakeScreen {
	return &fakeScreen{events: make(chan tcell.Event, 16)}
}

func (s *fakeScreen) Init() error {
	s.inited = true
	return s.initErr
}

func (s *fakeScreen) Fini() { s.closed = true }

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

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want []key.Code
	}{
		{"letter", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), []key.Code{90}},
		{"upper letter", tcell.NewEventKey(tcell.KeyRune, 'Z', tcell.ModNone), []key.Code{key.Shift, 90}},
		{"alt letter", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModAlt), []key.Code{key.Alt, 90}},
		{"ctrl alt letter", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModCtrl|tcell.ModAlt), []key.Code{key.Ctrl, key.Alt, 90}},
		{"digit", tcell.NewEventKey(tcell.KeyRune, '5', tcell.ModNone), []key.Code{53}},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), []key.Code{key.Space}},
		{"symbol", tcell.NewEventKey(tcell.KeyRune, ',', tcell.ModNone), []key.Code{188}},
		{"shifted symbol", tcell.NewEventKey(tcell.KeyRune, '!', tcell.ModNone), []key.Code{key.Shift, 49}},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), []key.Code{key.Enter}},
		{"shift f5", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModShift), []key.Code{key.Shift, key.F5}},
		{"backtab", tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), []key.Code{key.Shift, key.Tab}},
		{"ctrl s control code", tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl), []key.Code{key.Ctrl, 83}},
		{"meta up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModMeta), []key.Code{key.Meta, key.Up}},
		{"unmapped rune", tcell.NewEventKey(tcell.KeyRune, 'é', tcell.ModNone), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TranslateKey(tt.ev))
		})
	}
}

func TestTerminalRunExpandsKeys(t *testing.T) {
	screen := newFakeScreen()
	term := NewTerminalWithScreen(screen)
	var r recorder
	r.attach(term)

	screen.events <- tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModCtrl|tcell.ModAlt)
	screen.events <- tcell.NewEventFocus(false)
	close(screen.events)

	require.NoError(t, term.Run(context.Background()))

	assert.True(t, screen.inited)
	assert.True(t, screen.closed)
	assert.Equal(t, []string{"+ctrl", "+alt", "+z", "-z", "-alt", "-ctrl"}, r.events)
	assert.Equal(t, 1, r.resets)
}

func TestTerminalRunStopsOnCancel(t *testing.T) {
	screen := newFakeScreen()
	term := NewTerminalWithScreen(screen)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- term.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestTerminalRunInitError(t *testing.T) {
	screen := newFakeScreen()
	screen.initErr = errors.New("no tty")
	term := NewTerminalWithScreen(screen)

	err := term.Run(context.Background())
	assert.EqualError(t, err, "no tty")
	assert.False(t, screen.closed)
}

func TestTerminalRunLogsToContextLogger(t *testing.T) {
	screen := newFakeScreen()
	term := NewTerminalWithScreen(screen)

	var logs bytes.Buffer
	ctx := logging.WithComponent(logging.WithContext(context.Background(), zerolog.New(&logs).Level(zerolog.DebugLevel)), "source")

	screen.events <- tcell.NewEventKey(tcell.KeyRune, 'é', tcell.ModNone)
	screen.events <- tcell.NewEventFocus(false)
	close(screen.events)

	require.NoError(t, term.Run(ctx))

	out := logs.String()
	assert.Contains(t, out, `"message":"terminal key has no code"`)
	assert.Contains(t, out, `"message":"terminal lost focus"`)
	assert.Contains(t, out, `"component":"source"`)
}
