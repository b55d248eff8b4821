package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SweepInterval is how often Run removes records whose window has expired.
const SweepInterval = time.Minute

// Policy is an independent fixed-window limit. Its name namespaces the keys
// so several policies can share one Limiter without interfering.
type Policy struct {
	Name    string
	Window  time.Duration
	Max     int
	Message string
}

// Decision is the outcome of a Check.
type Decision struct {
	Allowed bool
	// RetryAfter is the whole number of seconds until the window resets; set on rejection.
	RetryAfter int
	Remaining  int
	ResetAt    time.Time
}

type record struct {
	count   int
	resetAt time.Time
}

// Limiter counts requests per key in fixed, non-overlapping windows.
// It is safe for concurrent use; all record access happens under one mutex.
type Limiter struct {
	mu      sync.Mutex
	records map[string]*record
	now     func() time.Time
}

// New creates a limiter. A nil clock means time.Now.
func New(now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		records: make(map[string]*record),
		now:     now,
	}
}

// Check records one request for key and reports whether it is allowed.
func (l *Limiter) Check(key string, window time.Duration, max int) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[key]
	if !ok || now.After(rec.resetAt) {
		rec = &record{count: 1, resetAt: now.Add(window)}
		l.records[key] = rec
		return Decision{Allowed: true, Remaining: max - 1, ResetAt: rec.resetAt}
	}

	if rec.count >= max {
		return Decision{
			Allowed:    false,
			RetryAfter: retryAfterSeconds(rec.resetAt.Sub(now)),
			ResetAt:    rec.resetAt,
		}
	}

	rec.count++
	return Decision{Allowed: true, Remaining: max - rec.count, ResetAt: rec.resetAt}
}

// Allow applies a policy to a client key.
func (l *Limiter) Allow(p Policy, clientKey string) Decision {
	return l.Check(p.Name+":"+clientKey, p.Window, p.Max)
}

// Sweep removes every record whose window has already expired and returns how many it removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, rec := range l.records {
		if now.After(rec.resetAt) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Run sweeps every interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := l.Sweep()
			if onSweep != nil {
				onSweep(removed)
			}
		case <-ctx.Done():
			return
		}
	}
}

// retryAfterSeconds rounds up to whole seconds, never below one.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
