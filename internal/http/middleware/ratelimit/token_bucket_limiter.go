package ratelimit

import (
	"sync"
	"time"
)

// Config stores TokenBucketLimiter settings.
type Config struct {
	Rate       float64       // tokens per second
	Burst      int           // bucket capacity
	TTL        time.Duration // idle buckets older than this are dropped, 0 keeps them
	MaxBuckets int           // 0 means unbounded
}

// TokenBucketLimiter keeps one token bucket per client key.
type TokenBucketLimiter struct {
	cfg   Config
	clock Clock

	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

type bucket struct {
	tokens float64
	refill time.Time
	seen   time.Time
}

// NewTokenBucketLimiter creates a limiter with an explicit config and clock.
func NewTokenBucketLimiter(clock Clock, cfg Config) *TokenBucketLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxBuckets < 0 {
		cfg.MaxBuckets = 0
	}
	return &TokenBucketLimiter{
		cfg:     cfg,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// NewTokenBucketPerWindow allows limit requests per window, with limit as the burst.
func NewTokenBucketPerWindow(clock Clock, limit int, window time.Duration, ttl time.Duration, maxBuckets int) *TokenBucketLimiter {
	if window <= 0 {
		window = time.Second
	}
	if limit <= 0 {
		limit = 1
	}
	return NewTokenBucketLimiter(clock, Config{
		Rate:       float64(limit) / window.Seconds(),
		Burst:      limit,
		TTL:        ttl,
		MaxBuckets: maxBuckets,
	})
}

// Allow takes one token from the key's bucket. A new key is rejected while the
// bucket table is full even after idle buckets are swept.
func (l *TokenBucketLimiter) Allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now, false)
	b, ok := l.buckets[key]
	if !ok {
		if l.full() {
			l.sweep(now, true)
			if l.full() {
				return false
			}
		}
		b = &bucket{tokens: float64(l.cfg.Burst), refill: now}
		l.buckets[key] = b
	}
	return b.take(now, l.cfg.Rate, float64(l.cfg.Burst))
}

func (l *TokenBucketLimiter) full() bool {
	return l.cfg.MaxBuckets > 0 && len(l.buckets) >= l.cfg.MaxBuckets
}

// sweep drops idle buckets at most once per max(TTL/2, 1m) unless forced.
func (l *TokenBucketLimiter) sweep(now time.Time, force bool) {
	if l.cfg.TTL <= 0 {
		return
	}
	if !force && now.Before(l.nextSweep) {
		return
	}
	every := l.cfg.TTL / 2
	if every < time.Minute {
		every = time.Minute
	}
	l.nextSweep = now.Add(every)

	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.cfg.TTL {
			delete(l.buckets, k)
		}
	}
}

func (b *bucket) take(now time.Time, rate, burst float64) bool {
	if dt := now.Sub(b.refill); dt > 0 {
		b.tokens = min(burst, b.tokens+dt.Seconds()*rate)
		b.refill = now
	}
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
