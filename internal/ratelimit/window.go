// Package ratelimit implements the sliding-window admission gate that protects the
// upstream LLM calls of a single agent instance.
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultMaxRequests = 10
	DefaultWindow      = 60 * time.Second
)

// Clock returns the current time.
type Clock func() time.Time

// Window is a process-local sliding window of admission timestamps. State is not
// shared between instances and is lost on restart.
type Window struct {
	mu         sync.Mutex
	max        int
	window     time.Duration
	now        Clock
	timestamps []time.Time
}

type Option func(*Window)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(w *Window) {
		w.now = c
	}
}

// New creates a window admitting at most max calls per window. Non-positive values
// fall back to the defaults.
func New(max int, window time.Duration, opts ...Option) *Window {
	if max <= 0 {
		max = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	w := &Window{
		max:        max,
		window:     window,
		now:        time.Now,
		timestamps: make([]time.Time, 0, max),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// TryAdmit records and admits a call if fewer than max calls were admitted in the
// trailing window. A rejected call does not mutate the recorded timestamps.
func (w *Window) TryAdmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)
	if len(w.timestamps) >= w.max {
		return false
	}
	w.timestamps = append(w.timestamps, now)
	return true
}

// TimeUntilNextSlot returns how long until a call would be admitted, 0 if one would be
// admitted now.
func (w *Window) TimeUntilNextSlot() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)
	if len(w.timestamps) < w.max {
		return 0
	}
	wait := w.timestamps[0].Add(w.window).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// Len returns the number of admissions currently inside the window.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(w.now())
	return len(w.timestamps)
}

func (w *Window) Max() int { return w.max }

// prune drops timestamps that are at least one window old. Timestamps are appended in
// order, so the expired ones form a prefix.
func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.timestamps) && !w.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.timestamps = append(w.timestamps[:0], w.timestamps[i:]...)
	}
}
