// Package ratelimit enforces a minimum interval between outbound RIDB API calls.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/opencampsites/ridb-collector/internal/metrics"
)

// DefaultInterval is the minimum spacing between RIDB requests.
const DefaultInterval = time.Second

// Limiter paces all outbound calls to the RIDB API. A single instance must be
// shared by every caller, including concurrent enrichment sub-fetches;
// otherwise the effective request rate exceeds the source's budget.
type Limiter struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// New creates a Limiter with the given minimum interval between calls.
// A non-positive interval falls back to DefaultInterval.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait blocks until the interval since the previous call has elapsed,
// respecting the context.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if duration := time.Since(start); duration > time.Millisecond {
		metrics.ObserveRateLimitDelay(duration)
	}
	return nil
}

// Interval reports the configured minimum spacing.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
