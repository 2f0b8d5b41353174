package source

import (
	"context"
	"errors"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

// ErrTerminalRunning is returned by Run when the terminal loop is already active.
var ErrTerminalRunning = errors.New("terminal source already running")

// Screen is the subset of tcell.Screen the terminal source uses.
type Screen interface {
	Init() error
	Fini()
	PollEvent() tcell.Event
	PostEvent(ev tcell.Event) error
}

// Terminal feeds key events read from a tcell screen.
//
// Terminals report one event per keystroke with its modifiers and no key-up,
// so each event is expanded into presses of the modifiers and the key,
// followed by releases in reverse order. Losing focus emits a reset.
type Terminal struct {
	Emitter

	screen  Screen
	running chan struct{}
}

// NewTerminal creates a terminal source on a new tcell screen.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen creates a terminal source on an existing screen.
func NewTerminalWithScreen(screen Screen) *Terminal {
	return &Terminal{
		screen:  screen,
		running: make(chan struct{}, 1),
	}
}

// Run initialises the screen and delivers key events until ctx is done or
// the screen stops producing events. The screen is finalised on return.
// Diagnostics go to the logger carried by ctx.
func (t *Terminal) Run(ctx context.Context) error {
	select {
	case t.running <- struct{}{}:
	default:
		return ErrTerminalRunning
	}
	defer func() { <-t.running }()

	if err := t.screen.Init(); err != nil {
		return err
	}
	defer t.screen.Fini()

	log := logging.FromContext(ctx)
	log.Debug().Msg("terminal started")

	stop := context.AfterFunc(ctx, func() {
		// Wake PollEvent so the loop can observe cancellation.
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch e := ev.(type) {
		case *tcell.EventKey:
			t.handleKey(log, e)
		case *tcell.EventFocus:
			if !e.Focused {
				log.Debug().Msg("terminal lost focus")
				t.Reset()
			}
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

func (t *Terminal) handleKey(log *zerolog.Logger, e *tcell.EventKey) {
	codes := TranslateKey(e)
	if len(codes) == 0 {
		log.Debug().
			Int("key", int(e.Key())).
			Int32("rune", e.Rune()).
			Msg("terminal key has no code")
		return
	}
	t.Tap(codes...)
}

// TranslateKey maps a tcell key event to the codes held for it: modifiers
// first, then the key. Returns nil if the key has no code.
func TranslateKey(e *tcell.EventKey) []key.Code {
	mods := e.Modifiers()

	var main key.Code
	switch {
	case e.Key() == tcell.KeyRune:
		var shifted bool
		main, shifted = runeCode(e.Rune())
		if shifted {
			mods |= tcell.ModShift
		}
	case e.Key() == tcell.KeyBacktab:
		main = key.Tab
		mods |= tcell.ModShift
	default:
		if c, ok := specialKeys[e.Key()]; ok {
			main = c
		} else if e.Key() >= tcell.KeyCtrlA && e.Key() <= tcell.KeyCtrlZ {
			main = key.Code('A' + (e.Key() - tcell.KeyCtrlA))
			mods |= tcell.ModCtrl
		}
	}

	if main == key.CodeNone {
		return nil
	}

	codes := make([]key.Code, 0, 5)
	if mods&tcell.ModCtrl != 0 {
		codes = append(codes, key.Ctrl)
	}
	if mods&tcell.ModAlt != 0 {
		codes = append(codes, key.Alt)
	}
	if mods&tcell.ModShift != 0 {
		codes = append(codes, key.Shift)
	}
	if mods&tcell.ModMeta != 0 {
		codes = append(codes, key.Meta)
	}
	return append(codes, main)
}

// runeCode maps a typed character to its key and whether Shift produced it.
// Shifted symbols assume a US layout.
func runeCode(r rune) (key.Code, bool) {
	if c := key.Letter(r); c != key.CodeNone {
		return c, unicode.IsUpper(r)
	}
	if c := key.Digit(r); c != key.CodeNone {
		return c, false
	}
	if r == ' ' {
		return key.Space, false
	}
	if c, ok := key.Lookup(string(r)); ok {
		return c, false
	}
	if base, ok := shiftedSymbols[r]; ok {
		c, _ := runeCode(base)
		return c, true
	}
	return key.CodeNone, false
}

// specialKeys maps tcell's named keys to codes. Control-letter aliases such
// as KeyTab/KeyCtrlI share values, so only the named form is listed.
var specialKeys = map[tcell.Key]key.Code{
	tcell.KeyEnter:      key.Enter,
	tcell.KeyTab:        key.Tab,
	tcell.KeyBackspace:  key.Backspace,
	tcell.KeyBackspace2: key.Backspace,
	tcell.KeyEscape:     key.Escape,
	tcell.KeyDelete:     key.Delete,
	tcell.KeyInsert:     key.Insert,
	tcell.KeyHome:       key.Home,
	tcell.KeyEnd:        key.End,
	tcell.KeyPgUp:       key.PageUp,
	tcell.KeyPgDn:       key.PageDown,
	tcell.KeyUp:         key.Up,
	tcell.KeyDown:       key.Down,
	tcell.KeyLeft:       key.Left,
	tcell.KeyRight:      key.Right,
	tcell.KeyPause:      key.Pause,
	tcell.KeyF1:         key.F1,
	tcell.KeyF2:         key.F2,
	tcell.KeyF3:         key.F3,
	tcell.KeyF4:         key.F4,
	tcell.KeyF5:         key.F5,
	tcell.KeyF6:         key.F6,
	tcell.KeyF7:         key.F7,
	tcell.KeyF8:         key.F8,
	tcell.KeyF9:         key.F9,
	tcell.KeyF10:        key.F10,
	tcell.KeyF11:        key.F11,
	tcell.KeyF12:        key.F12,
}

// shiftedSymbols maps shifted characters to their unshifted key.
var shiftedSymbols = map[rune]rune{
	'!': '1',
	'@': '2',
	'#': '3',
	'$': '4',
	'%': '5',
	'^': '6',
	'&': '7',
	'*': '8',
	'(': '9',
	')': '0',
	'_': '-',
	'+': '=',
	'{': '[',
	'}': ']',
	'|': '\\',
	':': ';',
	'"': '\'',
	'<': ',',
	'>': '.',
	'?': '/',
	'~': '`',
}
