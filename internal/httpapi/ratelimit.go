package httpapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rotalog/rotalog-api/internal/auth"
	"github.com/rs/zerolog/log"
)

// RateLimitInfo describes the per-user rate limiting policy.
type RateLimitInfo struct {
	WindowSeconds int `json:"windowSeconds"`
	MaxRequests   int `json:"maxRequests"`
	Burst         int `json:"burst"`
}

// DefaultRateLimit allows 600 sync requests per minute per user with a
// burst of 120. Offline clients tend to arrive with a backlog, so the
// burst is generous relative to the sustained rate.
var DefaultRateLimit = RateLimitInfo{
	WindowSeconds: 60,
	MaxRequests:   600,
	Burst:         120,
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     float64(capacity),
		capacity:   float64(capacity),
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow consumes a token if one is available. When denied it reports
// how long until the next token.
func (tb *TokenBucket) Allow() (allowed bool, remaining int, retryAfter time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.refillRate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true, int(tb.tokens), 0
	}

	wait := time.Duration((1.0 - tb.tokens) / tb.refillRate * float64(time.Second))
	return false, 0, wait
}

// RateLimiter manages per-user token buckets
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*TokenBucket
	cfg     RateLimitInfo
}

func NewRateLimiter(cfg RateLimitInfo) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*TokenBucket),
		cfg:     cfg,
	}
}

func (rl *RateLimiter) bucket(userID string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[userID]
	if !ok {
		refill := float64(rl.cfg.MaxRequests) / float64(rl.cfg.WindowSeconds)
		b = NewTokenBucket(rl.cfg.Burst, refill)
		rl.buckets[userID] = b
	}
	return b
}

// Middleware enforces the per-user limit. Runs after auth so the
// bucket key is the authenticated user, not the remote address.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		allowed, remaining, retryAfter := rl.bucket(userID).Allow()
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.MaxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			secs := int(retryAfter.Seconds())
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))

			log.Warn().
				Str("userId", userID).
				Str("path", r.URL.Path).
				Msg("rate limit exceeded")

			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
