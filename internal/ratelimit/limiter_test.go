package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

func newTestLimiter(max int, window time.Duration) (*Limiter, *time.Time) {
	limiter := New(max, window)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	return limiter, &now
}

// TestAllowWithinQuota verifies the full quota is granted inside one window
// and the next attempt is denied.
func TestAllowWithinQuota(t *testing.T) {
	limiter, clock := newTestLimiter(30, time.Minute)

	for i := 0; i < 30; i++ {
		*clock = clock.Add(time.Second)
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	if limiter.Allow("10.0.0.1") {
		t.Fatal("attempt 31 should be denied")
	}
}

// TestWindowSlides verifies a denied identity recovers once its attempts age
// out of the window instead of being locked out permanently.
func TestWindowSlides(t *testing.T) {
	limiter, clock := newTestLimiter(30, time.Minute)

	for i := 0; i < 30; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("quota should be exhausted")
	}

	*clock = clock.Add(time.Minute + time.Second)
	if !limiter.Allow("10.0.0.1") {
		t.Fatal("attempt after the window elapsed should be allowed")
	}
}

// TestIdentitiesAreIndependent verifies one caller's burst does not consume
// another caller's quota.
func TestIdentitiesAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)

	if !limiter.Allow("a") {
		t.Fatal("first identity should be allowed")
	}
	if !limiter.Allow("b") {
		t.Fatal("second identity should be allowed")
	}
	if limiter.Allow("a") {
		t.Fatal("first identity should be over quota")
	}
}

// TestSweepBoundsMap verifies stale identities are evicted so the map does
// not grow without bound under many distinct callers.
func TestSweepBoundsMap(t *testing.T) {
	limiter, clock := newTestLimiter(30, time.Minute)

	for i := 0; i < sweepEvery-1; i++ {
		limiter.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}

	*clock = clock.Add(2 * time.Minute)
	limiter.Allow("fresh")

	limiter.mu.Lock()
	size := len(limiter.attempts)
	limiter.mu.Unlock()

	if size != 1 {
		t.Fatalf("expected only the fresh identity tracked, got %d", size)
	}
}

// TestRetryAfter verifies the hint matches the window in seconds.
func TestRetryAfter(t *testing.T) {
	limiter := New(30, time.Minute)
	if got := limiter.RetryAfter(); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
}
