package middleware

import (
	"net/http"
	"time"

	"github.com/forgo/qrmenu/api/internal/metrics"
)

// unmatchedRoute labels requests no route pattern claimed
const unmatchedRoute = "unmatched"

// Metrics records request counts and latency keyed by route pattern.
// It must wrap the ServeMux directly so the matched pattern is visible afterwards.
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			route := r.Pattern
			if route == "" {
				route = unmatchedRoute
			}
			m.ObserveRequest(r.Method, route, wrapped.statusCode, time.Since(start))
		})
	}
}
