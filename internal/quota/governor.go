/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package quota enforces the sliding-window budget for the external AI
// dependency. One Governor instance is shared by every in-flight request in
// the process; it is not a distributed limiter, a multi-instance deployment
// needs an external shared counter.
package quota

import (
	"sync"
	"time"
)

// Governor tracks AI request timestamps inside a trailing window.
type Governor struct {
	mu           sync.Mutex
	maxRequests  int
	window       time.Duration
	timestamps   []time.Time
	now          func() time.Time
}

// Stats is a diagnostic snapshot of the governor state.
type Stats struct {
	CanMakeRequest bool  `json:"canMakeRequest"`
	Remaining      int   `json:"remainingRequests"`
	TimeUntilReset int64 `json:"timeUntilReset"` // seconds
	MaxRequests    int   `json:"maxRequests"`
	WindowMS       int64 `json:"windowMs"`
}

// NewGovernor creates a governor allowing maxRequests per window.
func NewGovernor(maxRequests int, window time.Duration) *Governor {
	return &Governor{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// NewGovernorWithClock creates a governor with an injected clock for tests.
func NewGovernorWithClock(maxRequests int, window time.Duration, now func() time.Time) *Governor {
	g := NewGovernor(maxRequests, window)
	g.now = now
	return g
}

// prune drops timestamps older than the trailing window. Callers must hold mu.
func (g *Governor) prune(now time.Time) {
	cutoff := now.Add(-g.window)
	kept := g.timestamps[:0]
	for _, ts := range g.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	g.timestamps = kept
}

// CanMakeRequest reports whether a request would currently be allowed. It
// does not consume quota; use CanMakeRequestAndRecord before an actual call.
func (g *Governor) CanMakeRequest() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prune(g.now())
	return len(g.timestamps) < g.maxRequests
}

// CanMakeRequestAndRecord atomically consumes one unit of quota if available.
// This is the only safe way to spend quota under concurrent callers; a
// separate check followed by a record is a race.
func (g *Governor) CanMakeRequestAndRecord() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	g.prune(now)
	if len(g.timestamps) >= g.maxRequests {
		return false
	}
	g.timestamps = append(g.timestamps, now)
	return true
}

// UndoLastRequest refunds the most recently recorded unit. Callers invoke it
// directly after a recorded attempt fails for a reason unrelated to quota, so
// failed calls do not count against the budget.
func (g *Governor) UndoLastRequest() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.timestamps) > 0 {
		g.timestamps = g.timestamps[:len(g.timestamps)-1]
	}
}

// Remaining returns how many requests are still allowed in the current window.
func (g *Governor) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prune(g.now())
	remaining := g.maxRequests - len(g.timestamps)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// TimeUntilReset returns the duration until the oldest in-window timestamp
// expires, or zero when the window is empty.
func (g *Governor) TimeUntilReset() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	g.prune(now)
	if len(g.timestamps) == 0 {
		return 0
	}
	reset := g.timestamps[0].Add(g.window).Sub(now)
	if reset < 0 {
		return 0
	}
	return reset
}

// Snapshot returns the full diagnostic state in one locked pass.
func (g *Governor) Snapshot() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	g.prune(now)

	remaining := g.maxRequests - len(g.timestamps)
	if remaining < 0 {
		remaining = 0
	}

	var reset time.Duration
	if len(g.timestamps) > 0 {
		reset = g.timestamps[0].Add(g.window).Sub(now)
		if reset < 0 {
			reset = 0
		}
	}

	return Stats{
		CanMakeRequest: len(g.timestamps) < g.maxRequests,
		Remaining:      remaining,
		TimeUntilReset: int64(reset / time.Second),
		MaxRequests:    g.maxRequests,
		WindowMS:       g.window.Milliseconds(),
	}
}
