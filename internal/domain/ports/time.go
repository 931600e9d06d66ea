package ports

import "time"

// TimeProvider abstracts the clock and timers so debounce behavior is testable
type TimeProvider interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback that can be cancelled
type Timer interface {
	// Stop cancels the callback; it returns false if the callback already ran
	// or the timer was already stopped
	Stop() bool
}

// RealTimeProvider implements TimeProvider using the standard time package
type RealTimeProvider struct{}

// NewRealTimeProvider creates a new real time provider implementation
func NewRealTimeProvider() TimeProvider {
	return &RealTimeProvider{}
}

// Now returns the current time
func (tp *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// AfterFunc runs f on its own goroutine after d
func (tp *RealTimeProvider) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
