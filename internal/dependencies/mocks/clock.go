package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/mcoot/gamerelay-go/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. Functions
// scheduled with AfterFunc only fire when the clock is advanced past their
// deadline, which makes timer-driven behavior deterministic in tests.
type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*mockTimer
}

type mockTimer struct {
	deadline time.Time
	f        func()
	stopped  bool
	fired    bool
}

// Stop cancels the timer if it has not fired
func (t *mockTimer) Stop() bool {
	t.stopped = true
	return !t.fired
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers f to fire when the clock advances past d from now
func (c *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTimer{deadline: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires any timers whose deadlines were
// reached, in deadline order. Timer functions run on the caller's goroutine.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)

	var due []*mockTimer
	var remaining []*mockTimer
	for _, t := range c.timers {
		switch {
		case t.stopped || t.fired:
			// Drop it.
		case !t.deadline.After(c.now):
			t.fired = true
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	c.timers = remaining
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	c.mu.Unlock()

	// Fire outside the lock so timer functions may schedule new timers.
	for _, t := range due {
		t.f()
	}
}

// Set sets the clock to the given time without firing timers
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// PendingTimers returns the number of scheduled, unfired timers
func (c *MockClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
