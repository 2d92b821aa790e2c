// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"sync"
	"time"
)

// MaxRequestsPerWindow is the global ceiling on new-prime registrations per
// sliding window (spec §3, §5: "MAX_REQUESTS_PER_WINDOW = 100 new primes per
// 1 s window"). Spec §9 item 1 flags that a per-agent-id keyed limiter would
// let a single spammer register unboundedly many distinct ids (one per
// second each); this implementation adopts the global-counter reading the
// spec settles on.
const MaxRequestsPerWindow = 100

// DefaultWindow is the sliding window length.
const DefaultWindow = time.Second

// slidingWindowLimiter bounds the rate of *new* registrations (cache hits
// never consume budget) using a simple timestamp queue. At 100 req/s this is
// cheap enough to not need a token bucket.
type slidingWindowLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	limit     int
	events    []time.Time
	now       func() time.Time
}

func newSlidingWindowLimiter(window time.Duration, limit int) *slidingWindowLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = MaxRequestsPerWindow
	}
	return &slidingWindowLimiter{
		window: window,
		limit:  limit,
		now:    time.Now,
	}
}

// allow reports whether one more event may be admitted right now, and if so
// records it.
func (l *slidingWindowLimiter) allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	i := 0
	for i < len(l.events) && l.events[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		l.events = l.events[i:]
	}

	if len(l.events) >= l.limit {
		return false
	}
	l.events = append(l.events, now)
	return true
}
