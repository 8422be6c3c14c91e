package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryTracker keeps activity records in process memory. It is the default
// store and suits a single API instance.
type MemoryTracker struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	window   time.Duration
	retain   time.Duration
	now      func() time.Time
}

// MemoryOption configures a MemoryTracker.
type MemoryOption func(*MemoryTracker)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryTracker) {
		m.now = now
	}
}

// WithTokenLifetime keeps idle records until tokens issued at their last
// touch have expired. Sweep honours it.
func WithTokenLifetime(d time.Duration) MemoryOption {
	return func(m *MemoryTracker) {
		m.retain = retention(m.window, d)
	}
}

// NewMemoryTracker creates a tracker with the given inactivity window. A
// non-positive window falls back to DefaultWindow.
func NewMemoryTracker(window time.Duration, opts ...MemoryOption) *MemoryTracker {
	if window <= 0 {
		window = DefaultWindow
	}
	m := &MemoryTracker{
		lastSeen: make(map[string]time.Time),
		window:   window,
		retain:   window,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Touch implements Tracker.
func (m *MemoryTracker) Touch(_ context.Context, userID string) (Outcome, error) {
	now := m.now()

	m.mu.Lock()
	last, seen := m.lastSeen[userID]
	outcome := classify(last, seen, now, m.window)
	if outcome == Expired {
		delete(m.lastSeen, userID)
	} else {
		m.lastSeen[userID] = now
	}
	m.mu.Unlock()

	observe(outcome)
	return outcome, nil
}

// Forget implements Tracker.
func (m *MemoryTracker) Forget(_ context.Context, userID string) error {
	m.mu.Lock()
	delete(m.lastSeen, userID)
	m.mu.Unlock()
	return nil
}

// Len returns the number of tracked identities.
func (m *MemoryTracker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lastSeen)
}

// Sweep removes every record idle for longer than both the window and the
// token lifetime as of now, and returns how many were removed. No token
// issued at a swept record's last touch can still verify.
func (m *MemoryTracker) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, last := range m.lastSeen {
		if now.Sub(last) > m.retain {
			delete(m.lastSeen, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryTracker) RunSweeper(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(m.now()); n > 0 {
				logger.DebugContext(ctx, "swept idle activity records",
					slog.Int("removed", n),
					slog.Int("remaining", m.Len()),
				)
			}
		}
	}
}
