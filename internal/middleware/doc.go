// Package middleware provides HTTP middleware for the QR menu API.
//
// # Available Middleware
//
//   - RequestID: assigns or propagates X-Request-ID
//   - Logger: one structured slog line per request
//   - Recovery: turns panics into a 500 problem response
//   - CORS: origin allow-list for the builder frontend
//   - RateLimit: token bucket per client IP
//   - Idempotency: replays POST responses for a repeated Idempotency-Key
//   - Compress: gzip when the client accepts it
//   - Metrics: Prometheus request counter and latency by route pattern
//
// # Ordering
//
//	wrapped := middleware.Chain(mux,
//	    middleware.RequestID,
//	    middleware.Logger,
//	    middleware.Recovery,
//	    middleware.CORS(origins),
//	    middleware.RateLimit(limiter),
//	    middleware.Compress,
//	    middleware.Idempotency(store),
//	    middleware.Metrics(m),
//	)
//
// Metrics goes last so it sees the pattern the ServeMux matched.
// Compress wraps Idempotency so cached responses hold the uncompressed body
// and each replay is encoded for the client asking.
// Every wrapper that replaces the ResponseWriter keeps websocket upgrades working.
//
// # Context Values
//
//   - GetRequestID(ctx): Returns unique request identifier
package middleware
