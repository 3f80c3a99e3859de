package mind

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// WindowLimiter caps calls to an optional backend with a fixed-window counter.
// It never blocks: a false from TryAcquire means "skip the optional action".
type WindowLimiter struct {
	mu          sync.Mutex
	clock       clockwork.Clock
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
}

// NewWindowLimiter returns a limiter granting limit calls per window.
func NewWindowLimiter(clock clockwork.Clock, limit int, window time.Duration) *WindowLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if limit < 0 {
		limit = 0
	}
	return &WindowLimiter{
		clock:       clock,
		limit:       limit,
		window:      window,
		windowStart: clock.Now(),
	}
}

// TryAcquire takes one slot in the current window. A rejection leaves the state untouched.
func (l *WindowLimiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Sub(l.windowStart) > l.window {
		l.count = 0
		l.windowStart = now
	}
	if l.count < l.limit {
		l.count++
		return true
	}
	return false
}

// Remaining returns the slots left in the current window, as the next TryAcquire would see it.
func (l *WindowLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.clock.Now().Sub(l.windowStart) > l.window {
		return l.limit
	}
	return l.limit - l.count
}

// Limit returns the configured quota per window.
func (l *WindowLimiter) Limit() int { return l.limit }
