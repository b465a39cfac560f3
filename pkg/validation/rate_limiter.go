package validation

import (
	"sync"
	"time"
)

// IntervalLimiter allows at most one event per key every interval of
// wall-clock time.
type IntervalLimiter struct {
	interval time.Duration
	last     map[string]time.Time
	now      func() time.Time
	mu       sync.Mutex
}

// NewIntervalLimiter creates a limiter using the system clock.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return NewIntervalLimiterWithClock(interval, time.Now)
}

// NewIntervalLimiterWithClock creates a limiter reading time from now.
func NewIntervalLimiterWithClock(interval time.Duration, now func() time.Time) *IntervalLimiter {
	return &IntervalLimiter{
		interval: interval,
		last:     make(map[string]time.Time),
		now:      now,
	}
}

// Allow reports whether an event for key may happen now, and records it
// if so.
func (l *IntervalLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.last[key]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.last[key] = now
	return true
}

// Reset forgets every key.
func (l *IntervalLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last = make(map[string]time.Time)
}

// Interval returns the minimum spacing between events.
func (l *IntervalLimiter) Interval() time.Duration {
	return l.interval
}
