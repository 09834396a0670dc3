/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package quota

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a settable clock for deterministic window tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestGovernor(max int, window time.Duration) (*Governor, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	return NewGovernorWithClock(max, window, clock.Now), clock
}

func TestGovernorMonotonicity(t *testing.T) {
	g, clock := newTestGovernor(2, time.Minute)

	if !g.CanMakeRequestAndRecord() {
		t.Fatal("first request should be allowed")
	}
	if !g.CanMakeRequestAndRecord() {
		t.Fatal("second request should be allowed")
	}

	// Budget exhausted for the remainder of the window.
	for _, step := range []time.Duration{0, time.Second, 30 * time.Second, 59 * time.Second} {
		clock.Advance(step)
		if g.CanMakeRequestAndRecord() {
			t.Fatalf("request should be denied %v into the window", step)
		}
		if got := g.Remaining(); got != 0 {
			t.Fatalf("remaining = %d, want 0", got)
		}
	}
}

func TestGovernorWindowExpiry(t *testing.T) {
	g, clock := newTestGovernor(2, time.Minute)

	if !g.CanMakeRequestAndRecord() {
		t.Fatal("first request should be allowed")
	}
	clock.Advance(time.Second)
	if !g.CanMakeRequestAndRecord() {
		t.Fatal("second request should be allowed")
	}

	// t0+61s: the first recorded entry has expired.
	clock.Advance(60 * time.Second)
	if !g.CanMakeRequestAndRecord() {
		t.Fatal("request should succeed after the first entry expired")
	}
	if got := g.Remaining(); got != 0 {
		// Second entry plus the fresh one still occupy the window.
		t.Fatalf("remaining = %d, want 0", got)
	}
}

func TestGovernorExpiryRestoresRemaining(t *testing.T) {
	g, clock := newTestGovernor(2, time.Minute)

	if !g.CanMakeRequestAndRecord() {
		t.Fatal("first request should be allowed")
	}
	clock.Advance(time.Second)
	if !g.CanMakeRequestAndRecord() {
		t.Fatal("second request should be allowed")
	}

	clock.Advance(60 * time.Second)
	if got := g.Remaining(); got != 1 {
		t.Fatalf("remaining = %d, want 1 after first entry expired", got)
	}
}

func TestGovernorRefund(t *testing.T) {
	g, _ := newTestGovernor(2, time.Minute)

	before := g.Remaining()
	if !g.CanMakeRequestAndRecord() {
		t.Fatal("request should be allowed")
	}
	g.UndoLastRequest()
	if got := g.Remaining(); got != before {
		t.Fatalf("remaining = %d, want %d after refund", got, before)
	}
}

func TestGovernorTimeUntilReset(t *testing.T) {
	g, clock := newTestGovernor(2, time.Minute)

	if got := g.TimeUntilReset(); got != 0 {
		t.Fatalf("empty window should report zero reset, got %v", got)
	}

	g.CanMakeRequestAndRecord()
	clock.Advance(20 * time.Second)
	if got := g.TimeUntilReset(); got != 40*time.Second {
		t.Fatalf("reset = %v, want 40s", got)
	}
}

func TestGovernorSnapshot(t *testing.T) {
	g, _ := newTestGovernor(2, time.Minute)
	g.CanMakeRequestAndRecord()

	stats := g.Snapshot()
	if !stats.CanMakeRequest {
		t.Fatal("snapshot should still allow one request")
	}
	if stats.Remaining != 1 {
		t.Fatalf("snapshot remaining = %d, want 1", stats.Remaining)
	}
	if stats.MaxRequests != 2 || stats.WindowMS != 60000 {
		t.Fatalf("unexpected snapshot limits: %+v", stats)
	}
}

func TestGovernorConcurrentRecordNeverOversubscribes(t *testing.T) {
	g, _ := newTestGovernor(2, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.CanMakeRequestAndRecord() {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 2 {
		t.Fatalf("granted = %d, want exactly 2", granted)
	}
}
