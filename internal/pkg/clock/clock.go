// Package clock provides the "now" source consulted for every past/future comparison.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// Real reads the system clock
type Real struct{}

// Now returns time.Now
func (Real) Now() time.Time { return time.Now() }

// Mock is a settable clock for tests and replays
type Mock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewMock creates a Mock frozen at now
func NewMock(now time.Time) *Mock {
	return &Mock{now: now}
}

// Now returns the frozen time
func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set moves the clock to t
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
