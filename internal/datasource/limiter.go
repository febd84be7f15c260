package datasource

import (
	"context"
	"sync"
	"time"
)

// WindowLimiter enforces a hard cap of at most limit acquisitions per
// rolling window. Unlike a token bucket it never allows bursts above the
// cap inside any window-sized interval, which is what a strict
// requests-per-hour provider quota requires.
type WindowLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

// NewWindowLimiter creates a limiter allowing limit acquisitions per window
func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		limit:  limit,
		window: window,
		stamps: make([]time.Time, 0, limit),
		now:    time.Now,
	}
}

// Acquire blocks until a slot is available inside the rolling window or
// the context is cancelled.
func (l *WindowLimiter) Acquire(ctx context.Context) error {
	for {
		wait := l.tryAcquire()
		if wait == 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Available returns how many slots remain in the current window.
func (l *WindowLimiter) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return l.limit - len(l.stamps)
}

// tryAcquire records a slot if one is free, otherwise returns how long
// to wait for the oldest stamp to leave the window.
func (l *WindowLimiter) tryAcquire() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	if len(l.stamps) < l.limit {
		l.stamps = append(l.stamps, now)
		return 0
	}

	wait := l.stamps[0].Add(l.window).Sub(now)
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait
}

// prune drops stamps older than the window. Caller holds the lock.
func (l *WindowLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}
