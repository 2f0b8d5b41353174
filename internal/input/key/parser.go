package key

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
	ErrUnknownKey  = errors.New("unknown key name")
)

// comboSeparator separates key names in a combo specification.
const comboSeparator = "+"

// Lookup returns the code for a key name (case-insensitive).
//
// Accepted forms:
//   - Primary names and aliases: "ctrl", "control", "enter", "esc", "f5", "z"
//   - Numpad keys: "numpad.0", "numpad.add"
//   - Punctuation: "punct.comma" or the bare symbol ","
//   - Raw codes: "#90"
func Lookup(name string) (Code, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CodeNone, false
	}

	if c, ok := symbols[name]; ok {
		return c, true
	}

	if raw, ok := strings.CutPrefix(name, "#"); ok {
		n, err := strconv.ParseUint(raw, 10, 16)
		if err != nil || n == 0 {
			return CodeNone, false
		}
		return Code(n), true
	}

	folded := cases.Fold().String(name)

	if c, ok := names[folded]; ok {
		return c, true
	}
	if c, ok := aliases[folded]; ok {
		return c, true
	}
	if rest, ok := strings.CutPrefix(folded, numpadPrefix); ok {
		c, ok := numpad[rest]
		return c, ok
	}
	if rest, ok := strings.CutPrefix(folded, punctuationPrefix); ok {
		c, ok := punctuation[rest]
		return c, ok
	}
	return CodeNone, false
}

// MustLookup returns the code for a key name and panics if it is unknown.
// Use only for known-valid names in initialization code.
func MustLookup(name string) Code {
	c, ok := Lookup(name)
	if !ok {
		panic("unknown key name: " + name)
	}
	return c
}

// ParseCombo parses a combo specification such as "ctrl+alt+z" into its
// key codes, in the order written. Duplicate keys are kept; callers that
// need a set canonicalise separately.
func ParseCombo(spec string) ([]Code, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrEmptySpec
	}

	parts := strings.Split(spec, comboSeparator)
	codes := make([]Code, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty key in %q", ErrInvalidSpec, spec)
		}
		c, ok := Lookup(part)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, part)
		}
		codes = append(codes, c)
	}
	return codes, nil
}

// MustParseCombo parses a combo specification and panics on error.
func MustParseCombo(spec string) []Code {
	codes, err := ParseCombo(spec)
	if err != nil {
		panic("invalid combo specification: " + spec + ": " + err.Error())
	}
	return codes
}

// FormatCombo renders codes as a specification that ParseCombo accepts.
// Modifiers come first, then the remaining keys in ascending code order.
func FormatCombo(codes []Code) string {
	sorted := slices.Clone(codes)
	slices.SortFunc(sorted, func(a, b Code) int {
		am, bm := a.IsModifier(), b.IsModifier()
		if am != bm {
			if am {
				return -1
			}
			return 1
		}
		return int(a) - int(b)
	})
	sorted = slices.Compact(sorted)

	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = c.String()
	}
	return strings.Join(parts, comboSeparator)
}

// NormalizeCombo parses and re-formats a combo specification.
func NormalizeCombo(spec string) (string, error) {
	codes, err := ParseCombo(spec)
	if err != nil {
		return "", err
	}
	return FormatCombo(codes), nil
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		return int(a.Code) - int(b.Code)
	})
}
