// Package ratelimit implements a per-identity token bucket admission
// controller for game creation.
package ratelimit

import (
	"time"

	"github.com/kazip/minesweeper-server/internal/shardmap"
)

type bucket struct {
	lastRefill time.Time
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
}

func newBucket(capacity, refillRate float64, now time.Time) bucket {
	return bucket{lastRefill: now, tokens: capacity, capacity: capacity, refillRate: refillRate}
}

// refill applies the continuous accrual tokens = min(capacity, tokens +
// elapsed_seconds * refill_rate), consistent with the per-second rate
// derived from the per-minute quota.
func (b bucket) refill(now time.Time) bucket {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return b
	}
	tokens := b.tokens + elapsed*b.refillRate
	if tokens > b.capacity {
		tokens = b.capacity
	}
	b.tokens = tokens
	b.lastRefill = now
	return b
}

func (b bucket) tryConsume() (bucket, bool) {
	if b.tokens < 1 {
		return b, false
	}
	b.tokens--
	return b, true
}

// Limiter admits or denies one request per identity, refilling each
// identity's bucket continuously at capacity/60 tokens per second.
type Limiter struct {
	capacity   float64
	refillRate float64
	buckets    *shardmap.Map[bucket]
	now        func() time.Time
}

// New constructs a Limiter where each identity may make capacity requests
// per minute. now defaults to time.Now; tests may override it.
func New(capacity uint32, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	cap64 := float64(capacity)
	return &Limiter{capacity: cap64, refillRate: cap64 / 60, buckets: shardmap.New[bucket](), now: now}
}

// Allow reports whether identity may proceed, consuming a token if so.
func (l *Limiter) Allow(identity string) bool {
	now := l.now()
	allowed := false
	l.buckets.Update(identity, func(b bucket, ok bool) bucket {
		if !ok {
			b = newBucket(l.capacity, l.refillRate, now)
		}
		b = b.refill(now)
		b, allowed = b.tryConsume()
		return b
	})
	return allowed
}
