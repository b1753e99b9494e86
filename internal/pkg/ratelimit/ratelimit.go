// Package ratelimit provides a keyed token bucket limiter. Limiters for keys
// that stop sending requests expire from the cache on their own.
package ratelimit

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// KeyedRateLimiter hands every key (client IP for the auth routes) its own
// token bucket.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

// New creates a limiter allowing rps requests per second with the given burst.
// Idle keys are evicted after idleTTL.
func New(rps float64, burst int, idleTTL time.Duration) *KeyedRateLimiter {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyedRateLimiter{
		limiters: cache.New(idleTTL, idleTTL*2),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a request for key may proceed now.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	if x, found := krl.limiters.Get(key); found {
		limiter := x.(*rate.Limiter)
		// Touch so an active key never expires mid-burst.
		krl.limiters.SetDefault(key, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(krl.limit, krl.burst)
	krl.limiters.SetDefault(key, limiter)
	return limiter
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	return krl.limiters.ItemCount()
}
