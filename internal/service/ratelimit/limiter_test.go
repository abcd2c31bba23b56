package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstThenRefill(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("1.2.3.4") || !l.Allow("1.2.3.4") {
		t.Fatalf("burst of 2 should pass")
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("third call should be limited")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatalf("other key must have its own bucket")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("1.2.3.4") {
		t.Fatalf("expected refill after 1.5s")
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("only one token should have refilled")
	}
}

func TestLimiterPrune(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(1, 1)
	l.now = func() time.Time { return now }
	l.Allow("a")
	now = now.Add(10 * time.Minute)
	l.Allow("b")
	if n := l.Prune(time.Minute); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
}
