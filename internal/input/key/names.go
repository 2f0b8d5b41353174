package key

// names maps primary key names to codes. Each code appears once so the
// table can be inverted for display.
var names = map[string]Code{
	"backspace":  Backspace,
	"tab":        Tab,
	"enter":      Enter,
	"shift":      Shift,
	"ctrl":       Ctrl,
	"alt":        Alt,
	"pause":      Pause,
	"capslock":   CapsLock,
	"escape":     Escape,
	"space":      Space,
	"pageup":     PageUp,
	"pagedown":   PageDown,
	"end":        End,
	"home":       Home,
	"left":       Left,
	"up":         Up,
	"right":      Right,
	"down":       Down,
	"insert":     Insert,
	"delete":     Delete,
	"0":          48,
	"1":          49,
	"2":          50,
	"3":          51,
	"4":          52,
	"5":          53,
	"6":          54,
	"7":          55,
	"8":          56,
	"9":          57,
	"a":          65,
	"b":          66,
	"c":          67,
	"d":          68,
	"e":          69,
	"f":          70,
	"g":          71,
	"h":          72,
	"i":          73,
	"j":          74,
	"k":          75,
	"l":          76,
	"m":          77,
	"n":          78,
	"o":          79,
	"p":          80,
	"q":          81,
	"r":          82,
	"s":          83,
	"t":          84,
	"u":          85,
	"v":          86,
	"w":          87,
	"x":          88,
	"y":          89,
	"z":          90,
	"meta":       Meta,
	"metaright":  MetaRight,
	"select":     Select,
	"f1":         F1,
	"f2":         F2,
	"f3":         F3,
	"f4":         F4,
	"f5":         F5,
	"f6":         F6,
	"f7":         F7,
	"f8":         F8,
	"f9":         F9,
	"f10":        F10,
	"f11":        F11,
	"f12":        F12,
	"numlock":    NumLock,
	"scrolllock": ScrollLock,
}

// numpad is the numeric-pad sub-table, addressed as "numpad.<name>".
var numpad = map[string]Code{
	"0":        96,
	"1":        97,
	"2":        98,
	"3":        99,
	"4":        100,
	"5":        101,
	"6":        102,
	"7":        103,
	"8":        104,
	"9":        105,
	"multiply": 106,
	"add":      107,
	"enter":    108,
	"subtract": 109,
	"decimal":  110,
	"divide":   111,
}

// punctuation is the named punctuation sub-table, addressed as
// "punct.<name>" or by the bare symbol.
var punctuation = map[string]Code{
	"semicolon":    186,
	"equals":       187,
	"comma":        188,
	"dash":         189,
	"period":       190,
	"slash":        191,
	"backtick":     192,
	"openbracket":  219,
	"backslash":    220,
	"closebracket": 221,
	"quote":        222,
}

// symbols maps unshifted punctuation characters to their codes.
var symbols = map[string]Code{
	";":  186,
	"=":  187,
	",":  188,
	"-":  189,
	".":  190,
	"/":  191,
	"`":  192,
	"[":  219,
	"\\": 220,
	"]":  221,
	"'":  222,
}

// aliases are alternative spellings accepted by Lookup.
var aliases = map[string]Code{
	"bs":         Backspace,
	"return":     Enter,
	"cr":         Enter,
	"control":    Ctrl,
	"option":     Alt,
	"esc":        Escape,
	"pgup":       PageUp,
	"pgdn":       PageDown,
	"ins":        Insert,
	"del":        Delete,
	"cmd":        Meta,
	"command":    Meta,
	"super":      Meta,
	"win":        Meta,
	"pausebreak": Pause,
}

const (
	numpadPrefix      = "numpad."
	punctuationPrefix = "punct."
)

// canonical inverts the primary tables for display.
var canonical = buildCanonical()

func buildCanonical() map[Code]string {
	m := make(map[Code]string, len(names)+len(numpad)+len(punctuation))
	for name, c := range names {
		m[c] = name
	}
	for name, c := range numpad {
		m[c] = numpadPrefix + name
	}
	for name, c := range punctuation {
		m[c] = punctuationPrefix + name
	}
	return m
}

// Entry is one row of the key-name table.
type Entry struct {
	Name string
	Code Code
}

// Table returns every canonical name and its code, ordered by code.
func Table() []Entry {
	entries := make([]Entry, 0, len(canonical))
	for c, name := range canonical {
		entries = append(entries, Entry{Name: name, Code: c})
	}
	sortEntries(entries)
	return entries
}
