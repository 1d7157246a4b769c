package server

import (
	"fmt"
	"testing"
	"time"
)

func TestIPLimiterIsolatesClients(t *testing.T) {
	l := newIPLimiter(1, 1, 100, time.Minute)

	if !l.Allow("192.0.2.1") {
		t.Fatal("first request must pass")
	}
	if l.Allow("192.0.2.1") {
		t.Error("second request in the window must be rejected")
	}
	if !l.Allow("192.0.2.2") {
		t.Error("a different client must have its own bucket")
	}
}

func TestIPLimiterBounded(t *testing.T) {
	l := newIPLimiter(1, 1, 10, time.Minute)

	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i))
	}

	// One slot may be admitted past the bound before eviction runs.
	if got := l.size(); got > 11 {
		t.Errorf("expected client map bounded near 10, got %d", got)
	}
}

func TestIPLimiterEvictsStale(t *testing.T) {
	l := newIPLimiter(1, 1, 2, time.Minute)

	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.2")

	// Advance past the TTL; admitting a third client sweeps both.
	l.now = func() time.Time { return now.Add(2 * time.Minute) }
	l.Allow("10.0.0.3")

	if got := l.size(); got != 1 {
		t.Errorf("expected stale entries evicted, got %d clients", got)
	}
}
