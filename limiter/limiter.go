// Package limiter implements fixed window request admission control.
// A single shared instance limits the whole service, there is no per-client
// partitioning. The counter lives in memory only, a process restart clears it.
package limiter

import (
	"sync"
	"time"
)

// FixedWindow counts admissions inside a wall clock window of fixed length.
// The window is reset lazily on the next admission check after it elapsed,
// there is no background timer. Safe for concurrent use.
type FixedWindow struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	requests    int
	resetAt     time.Time
	now         func() time.Time
}

func NewFixedWindow(maxRequests int, window time.Duration) *FixedWindow {
	return newFixedWindow(maxRequests, window, time.Now)
}

// newFixedWindow allows tests to inject a fake clock
func newFixedWindow(maxRequests int, window time.Duration, now func() time.Time) *FixedWindow {
	return &FixedWindow{
		maxRequests: maxRequests,
		window:      window,
		resetAt:     now().Add(window),
		now:         now,
	}
}

// Allow reports whether the current request is admitted. When denied, the
// returned time tells the caller when the current window resets. The check
// and the increment happen under the same lock, so two concurrent callers
// can never both be admitted past capacity.
func (l *FixedWindow) Allow() (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// reset counter if the window has passed
	if l.now().After(l.resetAt) {
		l.requests = 0
		l.resetAt = l.now().Add(l.window)
	}

	if l.requests >= l.maxRequests {
		return false, l.resetAt
	}

	l.requests++
	return true, l.resetAt
}
