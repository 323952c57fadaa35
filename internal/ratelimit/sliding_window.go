// Package ratelimit implements a per-key sliding window limiter used to cap
// write traffic per client.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string][]time.Time
	lastSweep time.Time
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter allows limit events per key within window. A limit of zero or
// less disables limiting.
func NewLimiter(limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: map[string][]time.Time{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the wait until the oldest event leaves the window.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

func (l *Limiter) Allow(key string) Result {
	if l.limit <= 0 {
		return Result{Allowed: true}
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.window {
		l.sweepLocked(now)
	}
	history := prune(l.buckets[key], now.Add(-l.window))
	result := Result{Limit: l.limit}
	if len(history) >= l.limit {
		l.buckets[key] = history
		result.ResetAt = history[0].Add(l.window)
		return result
	}

	history = append(history, now)
	l.buckets[key] = history
	result.Allowed = true
	result.Remaining = l.limit - len(history)
	result.ResetAt = history[0].Add(l.window)
	return result
}

// Sweep drops keys with no events inside the window. Allow sweeps on its
// own once per window.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(now)
}

func (l *Limiter) sweepLocked(now time.Time) int {
	l.lastSweep = now
	cutoff := now.Add(-l.window)
	removed := 0
	for key, history := range l.buckets {
		history = prune(history, cutoff)
		if len(history) == 0 {
			delete(l.buckets, key)
			removed++
			continue
		}
		l.buckets[key] = history
	}
	return removed
}

func prune(history []time.Time, cutoff time.Time) []time.Time {
	trimmed := history[:0]
	for _, ts := range history {
		if !ts.Before(cutoff) {
			trimmed = append(trimmed, ts)
		}
	}
	return trimmed
}
