package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterWindow(t *testing.T) {
	current := time.Date(2025, 9, 22, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return current }})

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(context.Background(), "1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if decision.Remaining != 3-i-1 {
			t.Fatalf("request %d remaining = %d", i, decision.Remaining)
		}
	}

	decision, err := limiter.Allow(context.Background(), "1.2.3.4", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if decision.Allowed {
		t.Fatal("fourth request in window should be denied")
	}
	if decision.ResetAt != current.Add(time.Minute) {
		t.Fatalf("reset at = %v", decision.ResetAt)
	}

	// window rolls over
	current = current.Add(time.Minute + time.Second)
	decision, err = limiter.Allow(context.Background(), "1.2.3.4", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("request after window rollover should be allowed")
	}
}

func TestMemoryLimiterKeysIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})

	if d, _ := limiter.Allow(context.Background(), "a", 1, time.Minute); !d.Allowed {
		t.Fatal("first key should be allowed")
	}
	if d, _ := limiter.Allow(context.Background(), "a", 1, time.Minute); d.Allowed {
		t.Fatal("first key should be exhausted")
	}
	if d, _ := limiter.Allow(context.Background(), "b", 1, time.Minute); !d.Allowed {
		t.Fatal("second key must not share the first key's window")
	}
}

func TestMemoryLimiterZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	for i := 0; i < 10; i++ {
		decision, err := limiter.Allow(context.Background(), "a", 0, time.Minute)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !decision.Allowed {
			t.Fatal("zero limit disables limiting")
		}
	}
}
