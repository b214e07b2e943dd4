// Package ratelimit spaces out requests against dealer sites. The batch
// scraper uses a fixed inter-request delay as its only backpressure: static
// throttling, not adaptive backoff.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Limiter interface {
	Wait(ctx context.Context) error
}

// FixedDelayLimiter enforces a minimum gap between consecutive actions. The
// first call never waits, so N actions incur N-1 delays.
type FixedDelayLimiter struct {
	delay      time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewFixedDelayLimiter(delay time.Duration) *FixedDelayLimiter {
	return &FixedDelayLimiter{delay: delay}
}

func (l *FixedDelayLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastAction.IsZero() {
		elapsed := time.Since(l.lastAction)
		if elapsed < l.delay {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.delay - elapsed):
			}
		}
	}

	l.lastAction = time.Now()
	return nil
}

func (l *FixedDelayLimiter) SetDelay(delay time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.delay = delay
}
