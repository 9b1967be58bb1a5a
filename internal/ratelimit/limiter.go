// Implements a sliding-window request counter.

// Package ratelimit implements sliding-window rate limiting for HTTP
// handlers.
//
// The limiter keeps the exact timestamps of recent requests per key. State is
// process-local and keys are never evicted: a key that stops sending requests
// keeps its (pruned on next use) entry for the life of the process. This is a
// known scaling limit for deployments with many distinct clients; Keys
// reports the count so it can be monitored.
package ratelimit

import (
	"sync"
	"time"

	"github.com/lumina-fans/idolcms/internal/clock"
)

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int           // requests per window
	Remaining  int           // requests left in the current window
	ResetAt    time.Time     // when the oldest counted request leaves the window
	RetryAfter time.Duration // how long to wait before retrying (0 if allowed)
}

// Limiter counts requests per key over a trailing window.
type Limiter struct {
	clock clock.Clock

	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewLimiter returns a Limiter reading time from c.
func NewLimiter(c clock.Clock) *Limiter {
	if c == nil {
		c = clock.Real{}
	}
	return &Limiter{clock: c, hits: make(map[string][]time.Time)}
}

// Allow reports whether a request for key is accepted when at most
// maxRequests are permitted in any trailing window. A rejected request is not
// counted.
func (l *Limiter) Allow(key string, maxRequests int, window time.Duration) bool {
	return l.Check(key, maxRequests, window).Allowed
}

// Check is Allow with the details needed for response headers.
func (l *Limiter) Check(key string, maxRequests int, window time.Duration) Result {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	hits := l.hits[key]
	// Timestamps are appended in order, so the expired ones are a prefix.
	i := 0
	for i < len(hits) && now.Sub(hits[i]) >= window {
		i++
	}
	hits = hits[i:]

	res := Result{Limit: maxRequests}
	if len(hits) >= maxRequests {
		l.hits[key] = hits
		res.Remaining = 0
		if len(hits) > 0 {
			res.ResetAt = hits[0].Add(window)
			res.RetryAfter = res.ResetAt.Sub(now)
		} else {
			res.ResetAt = now.Add(window)
			res.RetryAfter = window
		}
		return res
	}

	hits = append(hits, now)
	l.hits[key] = hits
	res.Allowed = true
	res.Remaining = maxRequests - len(hits)
	res.ResetAt = hits[0].Add(window)
	return res
}

// Keys returns the number of keys tracked.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}
