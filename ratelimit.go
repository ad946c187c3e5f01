package modtl

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the pause before each provider call.
const DefaultDelay = 600 * time.Millisecond

// RateLimiter enforces a fixed minimum delay before every call. Concurrent
// callers reserve consecutive slots, so calls are spaced by at least the
// delay no matter how many workers share the limiter.
type RateLimiter struct {
	delay time.Duration
	last  time.Time // Most recently reserved slot
	mu    sync.Mutex
}

// NewRateLimiter creates a rate limiter. A non-positive delay disables waiting.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	if delay < 0 {
		delay = 0
	}
	return &RateLimiter{delay: delay}
}

// reserve claims the next slot and returns how long to wait for it
// (must not be called with lock held).
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	slot := now.Add(r.delay)
	if next := r.last.Add(r.delay); next.After(slot) {
		slot = next
	}
	r.last = slot
	return slot.Sub(now)
}

// Wait blocks until the caller's slot arrives or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wait := r.reserve()
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Delay returns the configured delay.
func (r *RateLimiter) Delay() time.Duration {
	return r.delay
}

// RateLimitedProvider wraps a Provider with rate limiting.
type RateLimitedProvider struct {
	provider Provider
	limiter  *RateLimiter
}

// NewRateLimitedProvider creates a new rate-limited provider.
func NewRateLimitedProvider(provider Provider, delay time.Duration) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  NewRateLimiter(delay),
	}
}

// Translate implements Provider with rate limiting.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	// Wait for rate limit
	if err := p.limiter.Wait(ctx); err != nil {
		return "", &ProviderError{
			Message:   "rate limit wait cancelled",
			Cause:     err,
			Retryable: false,
		}
	}

	return p.provider.Translate(ctx, req)
}

// Limiter returns the underlying rate limiter for inspection.
func (p *RateLimitedProvider) Limiter() *RateLimiter {
	return p.limiter
}
