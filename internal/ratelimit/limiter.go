// Package ratelimit provides the per-identity sliding-window counter that
// guards the AI proxy endpoints.
package ratelimit

import (
	"sync"
	"time"
)

const sweepEvery = 256

// Limiter counts attempts per identity inside a trailing window. Attempts
// older than the window are dropped before counting, so a burst that filled
// the window stops blocking once it ages out.
type Limiter struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	attempts map[string][]time.Time
	calls    int
	now      func() time.Time
}

// New creates a limiter allowing max attempts per identity within window.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:      max,
		window:   window,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records an attempt for identity and reports whether it is within
// quota. Check and record are atomic per identity.
func (l *Limiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.attempts[identity][:0]
	for _, ts := range l.attempts[identity] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(cutoff)
	}

	if len(recent) >= l.max {
		l.attempts[identity] = recent
		return false
	}

	l.attempts[identity] = append(recent, now)
	return true
}

// RetryAfter is the hint, in seconds, returned with a rejection.
func (l *Limiter) RetryAfter() int {
	return int(l.window / time.Second)
}

// sweep drops identities whose newest attempt fell out of the window, so the
// map stays bounded under long uptime with many distinct callers.
func (l *Limiter) sweep(cutoff time.Time) {
	for identity, timestamps := range l.attempts {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(l.attempts, identity)
		}
	}
}
