package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

const (
	DefaultCapacity     = 10
	DefaultRefillPerSec = 2
)

// TokenBucket throttles outbound provider calls. Consume never rejects:
// a caller short on budget is suspended until enough tokens accrue, so
// rate exhaustion is a delay, not an error path.
type TokenBucket struct {
	mu           sync.Mutex
	tokens       float64
	capacity     float64
	refillPerSec float64
	lastRefill   time.Time
	now          func() time.Time
}

func NewTokenBucket(capacity, refillPerSec float64) *TokenBucket {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if refillPerSec <= 0 {
		refillPerSec = DefaultRefillPerSec
	}
	now := time.Now
	return &TokenBucket{
		tokens:       capacity,
		capacity:     capacity,
		refillPerSec: refillPerSec,
		lastRefill:   now(),
		now:          now,
	}
}

// refill credits tokens for elapsed wall-clock time, capped at capacity.
// Must be called with mu held.
func (b *TokenBucket) refill() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.refillPerSec)
		b.lastRefill = now
	}
}

// Consume blocks until cost tokens are available, then debits them.
// Refill and debit happen under the same lock, so concurrent consumers
// never over-admit on a stale token count; a caller that wakes from its
// wait re-checks the budget before debiting. Returns early only if ctx
// is cancelled.
func (b *TokenBucket) Consume(ctx context.Context, cost float64) error {
	if cost > b.capacity {
		cost = b.capacity
	}
	for {
		b.mu.Lock()
		b.refill()
		if b.tokens >= cost {
			b.tokens -= cost
			b.mu.Unlock()
			return nil
		}
		wait := time.Duration((cost - b.tokens) / b.refillPerSec * float64(time.Second))
		b.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Available returns the current token balance after refill. Intended
// for tests and introspection.
func (b *TokenBucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	return b.tokens
}
