package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/keychord/internal/input/combo"
)

// Metrics tracks key traffic and combo fires.
type Metrics struct {
	mu sync.RWMutex

	// Key traffic
	keyDowns atomic.Uint64
	keyUps   atomic.Uint64
	resets   atomic.Uint64

	// Config reloads
	reloads        atomic.Uint64
	reloadFailures atomic.Uint64

	// Fires per combo
	fires    map[combo.Signature]uint64
	lastFire time.Time

	// Start time for uptime calculation
	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		fires:     make(map[combo.Signature]uint64),
		startTime: time.Now(),
	}
}

// RecordKeyDown records a key press.
func (m *Metrics) RecordKeyDown() {
	m.keyDowns.Add(1)
}

// RecordKeyUp records a key release.
func (m *Metrics) RecordKeyUp() {
	m.keyUps.Add(1)
}

// RecordReset records a held-state reset.
func (m *Metrics) RecordReset() {
	m.resets.Add(1)
}

// RecordReload records a configuration reload attempt.
func (m *Metrics) RecordReload(err error) {
	if err != nil {
		m.reloadFailures.Add(1)
		return
	}
	m.reloads.Add(1)
}

// RecordFire records that the combo sig fired at t.
func (m *Metrics) RecordFire(sig combo.Signature, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fires[sig]++
	if t.After(m.lastFire) {
		m.lastFire = t
	}
}

// Fires returns how often the combo sig has fired.
func (m *Metrics) Fires(sig combo.Signature) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fires[sig]
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	fires := make(map[combo.Signature]uint64, len(m.fires))
	var total uint64
	for sig, n := range m.fires {
		fires[sig] = n
		total += n
	}
	lastFire := m.lastFire
	startTime := m.startTime
	m.mu.RUnlock()

	return MetricsSnapshot{
		Uptime:         time.Since(startTime),
		KeyDowns:       m.keyDowns.Load(),
		KeyUps:         m.keyUps.Load(),
		Resets:         m.resets.Load(),
		Reloads:        m.reloads.Load(),
		ReloadFailures: m.reloadFailures.Load(),
		TotalFires:     total,
		Fires:          fires,
		LastFire:       lastFire,
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.keyDowns.Store(0)
	m.keyUps.Store(0)
	m.resets.Store(0)
	m.reloads.Store(0)
	m.reloadFailures.Store(0)

	m.mu.Lock()
	m.fires = make(map[combo.Signature]uint64)
	m.lastFire = time.Time{}
	m.startTime = time.Now()
	m.mu.Unlock()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	KeyDowns       uint64
	KeyUps         uint64
	Resets         uint64
	Reloads        uint64
	ReloadFailures uint64
	TotalFires     uint64
	Fires          map[combo.Signature]uint64
	LastFire       time.Time
}

// FireRate returns combo fires per key press, as a percentage.
func (s MetricsSnapshot) FireRate() float64 {
	if s.KeyDowns == 0 {
		return 0
	}
	return float64(s.TotalFires) / float64(s.KeyDowns) * 100
}
