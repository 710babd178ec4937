package services

import (
	"sync"
	"time"
)

// MockClock is a Clock implementation for testing that returns a fixed,
// adjustable instant.
type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewMockClock creates a mock clock pinned to the given instant
func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

// SetAsMockForTesting sets this mock as the global clock instance for testing
func (m *MockClock) SetAsMockForTesting() {
	SetClock(m)
}

// Now returns the pinned instant
func (m *MockClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set moves the mock clock to a new instant
func (m *MockClock) Set(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Advance moves the mock clock forward by d
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
