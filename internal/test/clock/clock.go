// Package clock provides a manually driven ports.TimeProvider for tests.
package clock

import (
	"sort"
	"sync"
	"time"

	"github.com/zorro901/presenotion/internal/domain/ports"
)

// FakeTimeProvider runs AfterFunc callbacks only when Advance moves the clock
// past their deadline. Callbacks run synchronously on the Advance goroutine.
type FakeTimeProvider struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	provider *FakeTimeProvider
	deadline time.Time
	fn       func()
	done     bool
}

// NewFakeTimeProvider creates a fake clock starting at start
func NewFakeTimeProvider(start time.Time) *FakeTimeProvider {
	return &FakeTimeProvider{now: start}
}

// Now returns the fake current time
func (f *FakeTimeProvider) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// AfterFunc schedules fn to run once the clock reaches now+d
func (f *FakeTimeProvider) AfterFunc(d time.Duration, fn func()) ports.Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTimer{provider: f, deadline: f.now.Add(d), fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward and fires due timers in deadline order
func (f *FakeTimeProvider) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now

	var due, pending []*fakeTimer
	for _, t := range f.timers {
		switch {
		case t.done:
		case !t.deadline.After(now):
			t.done = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	f.timers = pending
	f.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	for _, t := range due {
		t.fn()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped
func (f *FakeTimeProvider) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, t := range f.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// Stop cancels the timer
func (t *fakeTimer) Stop() bool {
	t.provider.mu.Lock()
	defer t.provider.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	return true
}

// Ensure FakeTimeProvider implements ports.TimeProvider
var _ ports.TimeProvider = (*FakeTimeProvider)(nil)
