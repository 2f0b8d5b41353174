package source

import (
	"sync"

	"github.com/dshills/keychord/internal/input/key"
)

// Emitter fans key events out to subscribed handlers.
type Emitter struct {
	mu    sync.RWMutex
	down  []func(key.Code)
	up    []func(key.Code)
	reset []func()
}

// OnKeyDown subscribes h to key-down events.
func (e *Emitter) OnKeyDown(h func(key.Code)) {
	if h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.down = append(e.down, h)
}

// OnKeyUp subscribes h to key-up events.
func (e *Emitter) OnKeyUp(h func(key.Code)) {
	if h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.up = append(e.up, h)
}

// OnReset subscribes h to reset notifications.
func (e *Emitter) OnReset(h func()) {
	if h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset = append(e.reset, h)
}

// Press emits a key-down for c.
func (e *Emitter) Press(c key.Code) {
	for _, h := range e.handlers(&e.down) {
		h(c)
	}
}

// Release emits a key-up for c.
func (e *Emitter) Release(c key.Code) {
	for _, h := range e.handlers(&e.up) {
		h(c)
	}
}

// Tap presses codes in order, then releases them in reverse order.
func (e *Emitter) Tap(codes ...key.Code) {
	for _, c := range codes {
		e.Press(c)
	}
	for i := len(codes) - 1; i >= 0; i-- {
		e.Release(codes[i])
	}
}

// Reset notifies subscribers that held state should be discarded.
func (e *Emitter) Reset() {
	e.mu.RLock()
	handlers := append([]func(){}, e.reset...)
	e.mu.RUnlock()

	for _, h := range handlers {
		h()
	}
}

// handlers copies a handler list so handlers run without the lock held.
func (e *Emitter) handlers(list *[]func(key.Code)) []func(key.Code) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]func(key.Code){}, (*list)...)
}
