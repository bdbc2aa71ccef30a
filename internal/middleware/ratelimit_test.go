package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg RateLimitConfig) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)
	return rl
}

// ============================================================================
// NewRateLimiter
// ============================================================================

func TestNewRateLimiter_Defaults(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(t, RateLimitConfig{})

	assert.Equal(t, 100, rl.rate)
	assert.Equal(t, time.Minute, rl.window)
	assert.Equal(t, 20, rl.burst)
	assert.Equal(t, 5*time.Minute, rl.cleanup)
	assert.Equal(t, 100, rl.Limit())
}

// ============================================================================
// Allow
// ============================================================================

func TestAllow_SpendsCapacity(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(t, RateLimitConfig{Rate: 3, Window: time.Minute, Burst: 2})
	now := time.Now()

	for want := 4; want >= 0; want-- {
		d := rl.allowAt("10.0.0.1", now)
		require.True(t, d.Allowed)
		assert.Equal(t, want, d.Remaining)
		assert.Equal(t, now.Add(time.Minute), d.Reset)
	}

	d := rl.allowAt("10.0.0.1", now)
	assert.False(t, d.Allowed)
	assert.Zero(t, d.Remaining)
}

func TestAllow_SeparateClients(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(t, RateLimitConfig{Rate: 1, Window: time.Minute, Burst: 1})
	now := time.Now()

	rl.allowAt("10.0.0.1", now)
	rl.allowAt("10.0.0.1", now)
	assert.False(t, rl.allowAt("10.0.0.1", now).Allowed)

	assert.True(t, rl.allowAt("10.0.0.2", now).Allowed)
}

func TestAllow_Refill(t *testing.T) {
	t.Parallel()
	start := time.Now()

	tests := []struct {
		name    string
		elapsed time.Duration
		allowed bool
		remain  int
	}{
		{"no time passed", 0, false, 0},
		{"partial window earns a share of rate", 30 * time.Second, true, 4},
		{"full window refills to capacity", time.Minute, true, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := newTestLimiter(t, RateLimitConfig{Rate: 10, Window: time.Minute, Burst: 5})
			for i := 0; i < 15; i++ {
				require.True(t, rl.allowAt("c", start).Allowed)
			}

			d := rl.allowAt("c", start.Add(tt.elapsed))

			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.remain, d.Remaining)
		})
	}
}

func TestAllow_RefillCappedAtCapacity(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(t, RateLimitConfig{Rate: 10, Window: time.Minute, Burst: 5})
	start := time.Now()
	rl.allowAt("c", start)

	d := rl.allowAt("c", start.Add(59*time.Second))

	assert.Equal(t, 14, d.Remaining)
}

func TestAllow_Concurrent(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(t, RateLimitConfig{Rate: 50, Window: time.Hour, Burst: 10})

	var mu sync.Mutex
	allowed := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 60, allowed)
}

func TestDecision_RetryAfter(t *testing.T) {
	t.Parallel()
	now := time.Now()

	assert.Equal(t, 30, Decision{Reset: now.Add(30 * time.Second)}.RetryAfter(now))
	assert.Equal(t, 1, Decision{Reset: now.Add(100 * time.Millisecond)}.RetryAfter(now))
	assert.Equal(t, 1, Decision{Reset: now.Add(-time.Second)}.RetryAfter(now))
}

// ============================================================================
// cleanupIdle
// ============================================================================

func TestCleanupIdle(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(t, RateLimitConfig{Window: time.Minute})
	now := time.Now()
	rl.allowAt("stale", now.Add(-3*time.Minute))
	rl.allowAt("fresh", now.Add(-30*time.Second))

	rl.cleanupIdle(now)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.buckets, "stale")
	assert.Contains(t, rl.buckets, "fresh")
}

// ============================================================================
// RateLimit middleware
// ============================================================================

func limitedRequest(path, addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimitMiddleware_SetsHeaders(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(t, RateLimitConfig{Rate: 10, Window: time.Minute, Burst: 5})
	handler := &captureHandler{}
	rr := httptest.NewRecorder()

	RateLimit(rl)(handler).ServeHTTP(rr, limitedRequest("/api/styles", "192.168.1.1:12345"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, handler.called)
	assert.Equal(t, "10", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "14", rr.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitMiddleware_Denied(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(t, RateLimitConfig{Rate: 2, Window: time.Minute, Burst: 1})
	mw := RateLimit(rl)(&captureHandler{})

	for i := 0; i < 3; i++ {
		mw.ServeHTTP(httptest.NewRecorder(), limitedRequest("/api/publish", "192.168.1.1:"+strconv.Itoa(40000+i)))
	}

	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, limitedRequest("/api/publish", "192.168.1.1:50000"))

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	other := httptest.NewRecorder()
	mw.ServeHTTP(other, limitedRequest("/api/publish", "192.168.1.2:50000"))
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimitMiddleware_ExemptPaths(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(t, RateLimitConfig{Rate: 1, Window: time.Minute, Burst: 1, Exempt: []string{"/health", "/metrics"}})
	mw := RateLimit(rl)(&captureHandler{})

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, limitedRequest("/health", "192.168.1.1:1"))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
	}

	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, limitedRequest("/api/menus", "192.168.1.1:1"))
	assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Remaining"))
}
