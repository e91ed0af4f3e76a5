package infra

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter.
// Thread-safe and suitable for concurrent API calls.
type RateLimiter struct {
	mu          sync.Mutex
	tokens      float64
	maxTokens   float64
	refillRate  float64 // tokens per second
	lastRefill  time.Time
	minInterval time.Duration
	lastRequest time.Time
}

// NewRateLimiter creates a new rate limiter.
// maxRequests: maximum burst size
// perSecond: refill rate (requests per second)
func NewRateLimiter(maxRequests int, perSecond float64) *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		tokens:      float64(maxRequests),
		maxTokens:   float64(maxRequests),
		refillRate:  perSecond,
		lastRefill:  now,
		minInterval: time.Duration(float64(time.Second) / perSecond),
		lastRequest: now.Add(-time.Hour), // Allow immediate first request
	}
}

// Wait blocks until a token is available.
func (r *RateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	for r.tokens < 1 {
		waitTime := time.Duration(float64(time.Second) / r.refillRate)
		r.mu.Unlock()
		time.Sleep(waitTime)
		r.mu.Lock()
		r.refill()
	}

	r.tokens--
	r.lastRequest = time.Now()
}

// TryAcquire attempts to acquire a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1 {
		r.tokens--
		r.lastRequest = time.Now()
		return true
	}
	return false
}

// refill adds tokens based on elapsed time. Must be called with mutex held.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.tokens += elapsed * r.refillRate

	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}

	r.lastRefill = now
}

// Pre-configured limiters for the two REST surfaces the gateway talks to.
// Conservative limits: pagination bursts hit the candle service, order
// submissions are user-paced.
var (
	candleLimiter   *RateLimiter
	orderLimiter    *RateLimiter
	rateLimiterOnce sync.Once
)

// GetCandleLimiter returns the rate limiter for the historical-candle service.
// Limit: 5 requests/second with burst of 3 (bulk load + a pagination burst).
func GetCandleLimiter() *RateLimiter {
	rateLimiterOnce.Do(initLimiters)
	return candleLimiter
}

// GetOrderLimiter returns the rate limiter for the execution endpoints.
// Limit: 2 requests/second with burst of 2.
func GetOrderLimiter() *RateLimiter {
	rateLimiterOnce.Do(initLimiters)
	return orderLimiter
}

func initLimiters() {
	candleLimiter = NewRateLimiter(3, 5)
	orderLimiter = NewRateLimiter(2, 2)
}
