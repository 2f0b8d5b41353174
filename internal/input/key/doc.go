// Package key provides key identifiers and the key-name table for the input system.
//
// A Code identifies one physical key. Codes use the browser keyCode
// numbering (ctrl=17, alt=18, enter=13, letters are their uppercase ASCII
// value), which gives every key a stable, totally ordered identity.
//
// # Key Names
//
// The name table is fixed at package initialisation and never mutated:
//
//   - Primary names: "ctrl", "alt", "shift", "enter", "f5", "a", "7"
//   - Aliases: "control", "option", "esc", "return", "cmd", "pgup"
//   - Numpad sub-table: "numpad.0" .. "numpad.9", "numpad.add", "numpad.divide"
//   - Punctuation sub-table: "punct.comma", "punct.slash", or the bare symbol
//   - Raw codes: "#250"
//
// # Combo Specifications
//
// A combo specification joins key names with "+", for example "ctrl+alt+z".
// Order and case are irrelevant to the keys it names.
package key
