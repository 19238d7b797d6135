package throttle

import (
	"context"
	"time"
)

// Window is the state of one counter.
type Window struct {
	Start time.Time
	Count int
}

// End is the instant the window closes.
func (w Window) End(length time.Duration) time.Time {
	return w.Start.Add(length)
}

// Store keeps fixed-window counters. Implementations must make the
// roll-then-increment of a single key atomic, and must not serialize
// unrelated keys.
type Store interface {
	// Get returns the counter for key as of now, rolled forward if its
	// window has elapsed, without changing it.
	Get(ctx context.Context, key string, now time.Time, length time.Duration) (Window, error)
	// Increment rolls the window for key if needed and adds one.
	Increment(ctx context.Context, key string, now time.Time, length time.Duration) (Window, error)
	// Reset drops the counter for key.
	Reset(ctx context.Context, key string) error
}

// roll advances start by whole window lengths so that now falls inside the
// window, zeroing count when it moves. A zero start opens a window at now.
func roll(start time.Time, count int, now time.Time, length time.Duration) (time.Time, int) {
	if start.IsZero() {
		return now, 0
	}
	if elapsed := now.Sub(start); elapsed >= length {
		return start.Add(elapsed / length * length), 0
	}
	return start, count
}
