package combo

import (
	"slices"

	"github.com/dshills/keychord/internal/input/key"
)

// HeldSet tracks the keys currently held down. A key is present iff the
// most recent event for it was a press not yet followed by a release.
//
// HeldSet is not safe for concurrent use; Engine serialises access to its own set.
type HeldSet struct {
	keys map[key.Code]struct{}
}

// NewHeldSet returns an empty held set.
func NewHeldSet() *HeldSet {
	return &HeldSet{keys: make(map[key.Code]struct{})}
}

// Press marks c as held. Pressing a held key is a no-op.
func (h *HeldSet) Press(c key.Code) {
	h.keys[c] = struct{}{}
}

// Release marks c as not held. Releasing a key that is not held is a no-op.
func (h *HeldSet) Release(c key.Code) {
	delete(h.keys, c)
}

// Has reports whether c is held.
func (h *HeldSet) Has(c key.Code) bool {
	_, ok := h.keys[c]
	return ok
}

// Len returns the number of held keys.
func (h *HeldSet) Len() int {
	return len(h.keys)
}

// Clear releases every key.
func (h *HeldSet) Clear() {
	clear(h.keys)
}

// Snapshot returns the held keys in ascending order. The slice is a copy
// the caller may keep or modify.
func (h *HeldSet) Snapshot() []key.Code {
	codes := make([]key.Code, 0, len(h.keys))
	for c := range h.keys {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}
