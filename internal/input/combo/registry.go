package combo

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/keychord/internal/input/key"
)

// Callback is invoked synchronously when its combo is completed by a press.
type Callback func()

// Registry maps combo signatures to callbacks.
// At most one callback exists per signature; registering again replaces it.
type Registry struct {
	mu sync.RWMutex

	// entries holds all registered combos by signature.
	entries map[Signature]entry
}

type entry struct {
	codes    []key.Code
	callback Callback
}

// Binding describes one registered combo.
type Binding struct {
	Signature Signature
	Codes     []key.Code
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Signature]entry),
	}
}

// Register binds cb to the set of keys in codes, in any order.
// A prior callback for the same set is replaced. An empty codes collection is
// accepted; its signature can never be matched by a press.
// Returns ErrInvalidRegistration if cb is nil.
func (r *Registry) Register(codes []key.Code, cb Callback) error {
	if cb == nil {
		return fmt.Errorf("%w: nil callback for %q", ErrInvalidRegistration, key.FormatCombo(codes))
	}

	sig := SignatureOf(codes)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[sig] = entry{
		codes:    sig.Codes(),
		callback: cb,
	}
	return nil
}

// Bind is the variadic form of Register.
func (r *Registry) Bind(cb Callback, codes ...key.Code) error {
	return r.Register(codes, cb)
}

// RegisterSpec parses a combo specification such as "ctrl+alt+z" and
// registers cb for it.
func (r *Registry) RegisterSpec(spec string, cb Callback) error {
	codes, err := key.ParseCombo(spec)
	if err != nil {
		return fmt.Errorf("parsing combo %q: %w", spec, err)
	}
	return r.Register(codes, cb)
}

// Unregister removes the combo for codes. Returns false if none was registered.
func (r *Registry) Unregister(codes []key.Code) bool {
	sig := SignatureOf(codes)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[sig]; !ok {
		return false
	}
	delete(r.entries, sig)
	return true
}

// Replace swaps the whole registry for set in one step, so a concurrent
// Lookup sees either the old combos or the new ones. Returns
// ErrInvalidRegistration and leaves the registry unchanged if any callback
// is nil.
func (r *Registry) Replace(set map[Signature]Callback) error {
	entries := make(map[Signature]entry, len(set))
	for sig, cb := range set {
		if cb == nil {
			return fmt.Errorf("%w: nil callback for %q", ErrInvalidRegistration, sig.Describe())
		}
		entries[sig] = entry{codes: sig.Codes(), callback: cb}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = entries
	return nil
}

// Clear removes every combo.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
}

// Lookup returns the callback registered under sig.
func (r *Registry) Lookup(sig Signature) (Callback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[sig]
	if !ok {
		return nil, false
	}
	return e.callback, true
}

// Len returns the number of registered combos.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Bindings returns all registered combos ordered by signature.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	bindings := make([]Binding, 0, len(r.entries))
	for sig, e := range r.entries {
		bindings = append(bindings, Binding{
			Signature: sig,
			Codes:     slices.Clone(e.codes),
		})
	}
	r.mu.RUnlock()

	slices.SortFunc(bindings, func(a, b Binding) int {
		return slices.Compare(a.Codes, b.Codes)
	})
	return bindings
}
