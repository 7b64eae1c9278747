package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter manages per-client request throttling
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a rate limiter with the given per-client rate
func NewRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	if burst <= 0 {
		burst = requestsPerSecond
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Allow reports whether the client may make a request now
func (rl *RateLimiter) Allow(clientKey string) bool {
	return rl.getLimiter(clientKey).Allow()
}

// getLimiter returns the limiter for a client, creating one on first sight
func (rl *RateLimiter) getLimiter(clientKey string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[clientKey]
	rl.mu.RUnlock()
	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if limiter, exists = rl.limiters[clientKey]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[clientKey] = limiter
	return limiter
}
