// Package script runs Lua combo actions.
//
// A Runtime owns one sandboxed gopher-lua state shared by every compiled
// chunk, so globals set by one action are visible to later runs. Only the
// base, table, string and math libraries are opened, and the loaders that
// could reach the file system are removed.
//
// Scripts see three extras:
//
//	combo              the fired combo, e.g. "ctrl+alt+z"
//	print(...)         writes to the runtime output
//	keychord.log(msg)  writes an info line to the runtime logger
package script
