package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://example.com/foo"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different domain should also work immediately
	if err := limiter.Wait(ctx, "http://google.com"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 10 rps, burst 1: second request on the same domain must wait ~100ms
	limiter := NewLimiter(10, 1)
	ctx := context.Background()
	url := "http://example.com"

	if err := limiter.Wait(ctx, url); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, url); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected rate limiting delay, got %v", elapsed)
	}
}

func TestLimiter_PerDomainIsolation(t *testing.T) {
	// Burst exhausted on one domain must not delay another
	limiter := NewLimiter(0.1, 1)

	if !limiter.Allow("http://slow.example.com") {
		t.Fatal("expected first request allowed")
	}
	if limiter.Allow("http://slow.example.com") {
		t.Error("expected second request on same domain denied")
	}
	if !limiter.Allow("http://other.example.org") {
		t.Error("expected request on different domain allowed")
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	limiter := NewLimiter(10, 1)
	if limiter.Allow("://not-a-url") {
		t.Error("expected invalid URL to be denied")
	}
}
