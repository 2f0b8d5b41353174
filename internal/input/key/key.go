package key

import (
	"strconv"
)

// Code identifies one physical key.
// Values follow the browser keyCode numbering, so letters are their
// uppercase ASCII value and digits their ASCII value.
type Code uint16

const (
	// CodeNone represents no key.
	CodeNone Code = 0

	Backspace Code = 8
	Tab       Code = 9
	Enter     Code = 13

	// Modifier keys
	Shift Code = 16
	Ctrl  Code = 17
	Alt   Code = 18

	Pause    Code = 19
	CapsLock Code = 20
	Escape   Code = 27
	Space    Code = 32

	// Navigation keys
	PageUp   Code = 33
	PageDown Code = 34
	End      Code = 35
	Home     Code = 36
	Left     Code = 37
	Up       Code = 38
	Right    Code = 39
	Down     Code = 40
	Insert   Code = 45
	Delete   Code = 46

	// Meta is the left window/command key.
	Meta      Code = 91
	MetaRight Code = 92
	Select    Code = 93

	// Function keys
	F1  Code = 112
	F2  Code = 113
	F3  Code = 114
	F4  Code = 115
	F5  Code = 116
	F6  Code = 117
	F7  Code = 118
	F8  Code = 119
	F9  Code = 120
	F10 Code = 121
	F11 Code = 122
	F12 Code = 123

	NumLock    Code = 144
	ScrollLock Code = 145
)

// String returns the canonical name of the key, or "#<code>" when the
// code has no name in the table.
func (c Code) String() string {
	if name, ok := canonical[c]; ok {
		return name
	}
	return "#" + strconv.FormatUint(uint64(c), 10)
}

// IsModifier reports whether the key is a modifier key.
func (c Code) IsModifier() bool {
	switch c {
	case Shift, Ctrl, Alt, Meta, MetaRight:
		return true
	}
	return false
}

// IsLetter reports whether the key is one of A-Z.
func (c Code) IsLetter() bool {
	return c >= 'A' && c <= 'Z'
}

// IsDigit reports whether the key is one of the top-row digits.
func (c Code) IsDigit() bool {
	return c >= '0' && c <= '9'
}

// IsFunctionKey reports whether the key is F1-F12.
func (c Code) IsFunctionKey() bool {
	return c >= F1 && c <= F12
}

// IsNumpad reports whether the key lives on the numeric pad.
func (c Code) IsNumpad() bool {
	return c >= 96 && c <= 111
}

// Class names the group the key belongs to: modifier, letter, digit,
// function, numpad or other.
func (c Code) Class() string {
	switch {
	case c.IsModifier():
		return "modifier"
	case c.IsLetter():
		return "letter"
	case c.IsDigit():
		return "digit"
	case c.IsFunctionKey():
		return "function"
	case c.IsNumpad():
		return "numpad"
	default:
		return "other"
	}
}

// Letter returns the code for an ASCII letter in either case.
// Returns CodeNone for anything else.
func Letter(r rune) Code {
	switch {
	case r >= 'a' && r <= 'z':
		return Code(r - 'a' + 'A')
	case r >= 'A' && r <= 'Z':
		return Code(r)
	}
	return CodeNone
}

// Digit returns the code for a top-row digit character.
// Returns CodeNone for anything else.
func Digit(r rune) Code {
	if r >= '0' && r <= '9' {
		return Code(r)
	}
	return CodeNone
}
