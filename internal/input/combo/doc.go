// Package combo detects simultaneous key combinations and dispatches callbacks.
//
// An Engine is bound to one event Source. Every key-down inserts the key into
// the engine's HeldSet, derives the Signature of the held keys, and invokes the
// callback registered under that signature, if any, before Notify returns.
// Key-up only removes the key; it never fires a callback.
//
//	reg := combo.NewRegistry()
//	_ = reg.RegisterSpec("ctrl+alt+z", undo)
//	eng := combo.New(src, combo.WithRegistry(reg))
//
// A Signature is the ascending, duplicate-free list of key codes joined with
// "+", so the same set of keys always yields the same signature whatever the
// order they were registered or pressed in.
package combo
