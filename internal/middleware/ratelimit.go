package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/forgo/qrmenu/api/internal/model"
)

// RateLimiter implements token bucket rate limiting per client
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int           // Requests per window
	window   time.Duration // Time window
	burst    int           // Extra requests allowed above rate
	cleanup  time.Duration // Cleanup interval for idle buckets
	exempt   []string      // Path prefixes never limited
	stopChan chan struct{}
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// RetryAfter returns whole seconds until the bucket resets, at least one
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(d.Reset.Sub(now).Seconds())
	if secs < 1 {
		return 1
	}
	return secs
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Rate    int           // Requests per window (default 100)
	Window  time.Duration // Time window (default 1 minute)
	Burst   int           // Max burst (default 20)
	Cleanup time.Duration // Cleanup interval (default 5 minutes)
	Exempt  []string      // Path prefixes that bypass the limiter
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = 5 * time.Minute
	}

	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     cfg.Rate,
		window:   cfg.Window,
		burst:    cfg.Burst,
		cleanup:  cfg.Cleanup,
		exempt:   cfg.Exempt,
		stopChan: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the cleanup goroutine
func (rl *RateLimiter) Stop() {
	close(rl.stopChan)
}

// Limit returns the configured requests per window
func (rl *RateLimiter) Limit() int {
	return rl.rate
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupIdle(time.Now())
		case <-rl.stopChan:
			return
		}
	}
}

// cleanupIdle drops buckets untouched for two windows; they would be full anyway
func (rl *RateLimiter) cleanupIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.window * 2)
	for key, b := range rl.buckets {
		if b.lastReset.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) capacity() int {
	return rl.rate + rl.burst
}

// refill credits tokens earned since the last reset, capped at capacity
func (rl *RateLimiter) refill(b *bucket, now time.Time) {
	elapsed := now.Sub(b.lastReset)
	if elapsed >= rl.window {
		b.tokens = rl.capacity()
		b.lastReset = now
		return
	}

	earned := int(float64(rl.rate) * (float64(elapsed) / float64(rl.window)))
	if earned == 0 {
		return
	}
	b.tokens = min(b.tokens+earned, rl.capacity())
	b.lastReset = now
}

// Allow spends one token from the key's bucket if any remain
func (rl *RateLimiter) Allow(key string) Decision {
	return rl.allowAt(key, time.Now())
}

func (rl *RateLimiter) allowAt(key string, now time.Time) Decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.capacity(), lastReset: now}
		rl.buckets[key] = b
	} else {
		rl.refill(b, now)
	}

	reset := b.lastReset.Add(rl.window)
	if b.tokens <= 0 {
		return Decision{Allowed: false, Remaining: 0, Reset: reset}
	}
	b.tokens--
	return Decision{Allowed: true, Remaining: b.tokens, Reset: reset}
}

func (rl *RateLimiter) isExempt(path string) bool {
	for _, prefix := range rl.exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// RateLimit returns a middleware that applies rate limiting per client IP
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.isExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			client := clientKey(r)
			d := limiter.Allow(client)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

			if !d.Allowed {
				retryAfter := d.RetryAfter(time.Now())
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				slog.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("client", client),
					slog.String("path", r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				model.NewRateLimitError(retryAfter).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
