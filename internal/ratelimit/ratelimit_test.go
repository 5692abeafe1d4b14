package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	limiter := New(Config{RequestsPerMinute: 3})
	defer limiter.Stop()

	userID := "user-12345"

	for i := 0; i < 3; i++ {
		if !limiter.Allow(userID) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if limiter.Allow(userID) {
		t.Error("Fourth request should be blocked due to rate limit")
	}
}

func TestLimiter_DifferentUsers(t *testing.T) {
	limiter := New(Config{RequestsPerMinute: 1})
	defer limiter.Stop()

	if !limiter.Allow("a") {
		t.Error("User a first request should be allowed")
	}
	if !limiter.Allow("b") {
		t.Error("User b first request should be allowed")
	}
	if limiter.Allow("a") {
		t.Error("User a second request should be blocked")
	}
	if limiter.Allow("b") {
		t.Error("User b second request should be blocked")
	}
}

func TestLimiter_RemainingRequests(t *testing.T) {
	limiter := New(Config{RequestsPerMinute: 5})
	defer limiter.Stop()

	userID := "user-12345"

	if remaining := limiter.RemainingRequests(userID); remaining != 5 {
		t.Errorf("RemainingRequests() = %d, want 5", remaining)
	}

	limiter.Allow(userID)
	limiter.Allow(userID)
	limiter.Allow(userID)

	if remaining := limiter.RemainingRequests(userID); remaining != 2 {
		t.Errorf("RemainingRequests() = %d, want 2", remaining)
	}

	limiter.Allow(userID)
	limiter.Allow(userID)

	if remaining := limiter.RemainingRequests(userID); remaining != 0 {
		t.Errorf("RemainingRequests() = %d, want 0", remaining)
	}
}

func TestLimiter_ResetTime(t *testing.T) {
	limiter := New(Config{RequestsPerMinute: 1})
	defer limiter.Stop()

	before := time.Now()
	limiter.Allow("u")

	resetTime := limiter.ResetTime("u")

	expectedReset := before.Add(time.Minute)
	tolerance := 2 * time.Second

	if resetTime.Before(expectedReset.Add(-tolerance)) || resetTime.After(expectedReset.Add(tolerance)) {
		t.Errorf("ResetTime() = %v, expected around %v", resetTime, expectedReset)
	}
}

func TestLimiter_DefaultConfig(t *testing.T) {
	limiter := New(Config{})
	defer limiter.Stop()

	if limiter.Limit() != 10 {
		t.Errorf("Limit() = %d, want 10", limiter.Limit())
	}

	for i := 0; i < 10; i++ {
		if !limiter.Allow("u") {
			t.Errorf("Request %d should be allowed with default config", i+1)
		}
	}

	if limiter.Allow("u") {
		t.Error("11th request should be blocked")
	}
}

func TestLimiter_Evict(t *testing.T) {
	limiter := New(Config{RequestsPerMinute: 2})
	defer limiter.Stop()

	limiter.mu.Lock()
	limiter.requests["stale"] = []time.Time{time.Now().Add(-2 * time.Minute)}
	limiter.mu.Unlock()
	limiter.Allow("fresh")

	limiter.evict()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if _, ok := limiter.requests["stale"]; ok {
		t.Error("stale key should be evicted")
	}
	if _, ok := limiter.requests["fresh"]; !ok {
		t.Error("fresh key should be kept")
	}
}

func TestLimiter_StopIdempotent(t *testing.T) {
	limiter := New(Config{CleanupInterval: time.Millisecond})
	limiter.Stop()
	limiter.Stop()
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := New(Config{RequestsPerMinute: 100})
	defer limiter.Stop()

	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 20; j++ {
				limiter.Allow("u")
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	if remaining := limiter.RemainingRequests("u"); remaining != 0 {
		t.Errorf("RemainingRequests() = %d, want 0 after concurrent access", remaining)
	}
}
