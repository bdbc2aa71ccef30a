package middleware

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/forgo/qrmenu/api/internal/model"
)

// DefaultIdempotencyMaxBody caps how much of a keyed request body is read for fingerprinting
const DefaultIdempotencyMaxBody int64 = 1 << 20

// IdempotencyStore remembers successful POST responses by request fingerprint
type IdempotencyStore struct {
	mu       sync.RWMutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	maxBody  int64
	stopChan chan struct{}
}

// idempotencyEntry is immutable once done is closed
type idempotencyEntry struct {
	status    int
	headers   http.Header
	body      []byte
	expiresAt time.Time
	inFlight  bool
	done      chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep idempotency results (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
	MaxBody int64         // Largest keyed request body in bytes (default 1 MiB)
}

// NewIdempotencyStore creates a new idempotency store
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = time.Hour
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultIdempotencyMaxBody
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		maxBody:  cfg.MaxBody,
		stopChan: make(chan struct{}),
	}

	go store.cleanupLoop(cfg.Cleanup)

	return store
}

// Stop stops the cleanup goroutine
func (s *IdempotencyStore) Stop() {
	close(s.stopChan)
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if !entry.inFlight && !entry.expiresAt.After(now) {
			delete(s.entries, key)
		}
	}
}

// Len returns the number of tracked keys
func (s *IdempotencyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// claim returns a completed entry to replay, or a fresh in-flight entry owned
// by the caller. It waits while another request holds the key. A nil entry
// means ctx ended first.
func (s *IdempotencyStore) claim(ctx context.Context, key string) (entry *idempotencyEntry, owner bool) {
	for {
		s.mu.Lock()
		e, ok := s.entries[key]
		switch {
		case ok && e.inFlight:
			done := e.done
			s.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return nil, false
			}
		case ok && e.expiresAt.After(time.Now()):
			s.mu.Unlock()
			return e, false
		default:
			e = &idempotencyEntry{inFlight: true, done: make(chan struct{})}
			s.entries[key] = e
			s.mu.Unlock()
			return e, true
		}
	}
}

// finish completes an owned entry. Only 2xx responses are kept; anything
// else releases the key so a retry runs the handler again.
func (s *IdempotencyStore) finish(key string, e *idempotencyEntry, status int, headers http.Header, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status >= 200 && status < 300 {
		e.status = status
		e.headers = headers
		e.body = body
		e.expiresAt = time.Now().Add(s.ttl)
	} else if s.entries[key] == e {
		delete(s.entries, key)
	}
	e.inFlight = false
	close(e.done)
}

// generateKey fingerprints a request. Fields are length-prefixed so adjacent
// values cannot run together.
func generateKey(client, idempotencyKey, method, path string, body []byte) string {
	h, _ := blake2b.New256(nil)
	for _, part := range [][]byte{[]byte(client), []byte(idempotencyKey), []byte(method), []byte(path), body} {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// idempotencyResponseWriter captures the response for caching. Headers are
// copied before the header write goes down the chain, so encodings that outer
// writers add for this client are not replayed to the next one.
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status      int
	headers     http.Header
	wroteHeader bool
	body        bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = status
	w.headers = w.Header().Clone()
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// header returns the headers as the handler set them
func (w *idempotencyResponseWriter) header() http.Header {
	if w.headers == nil {
		return w.Header().Clone()
	}
	return w.headers
}

// Idempotency returns middleware that replays responses for repeated POST requests
// carrying the same Idempotency-Key from the same client.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := r.Header.Get("Idempotency-Key")
			if r.Method != http.MethodPost || idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, store.maxBody))
			if err != nil {
				detail := "Could not read request body"
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					detail = fmt.Sprintf("Request body too large (limit %d bytes)", tooLarge.Limit)
				}
				model.NewBadRequestError(detail).WriteJSON(w)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := generateKey(clientKey(r), idempotencyKey, r.Method, r.URL.Path, body)

			entry, owner := store.claim(r.Context(), key)
			if entry == nil {
				return
			}
			if !owner {
				replay(w, entry)
				return
			}

			irw := &idempotencyResponseWriter{ResponseWriter: w, status: http.StatusOK}
			completed := false
			defer func() {
				status := irw.status
				if !completed {
					status = http.StatusInternalServerError
				}
				store.finish(key, entry, status, irw.header(), irw.body.Bytes())
			}()

			next.ServeHTTP(irw, r)
			completed = true
		})
	}
}

// replay writes a cached response. Headers the current request already
// carries, such as its request ID, are left alone.
func replay(w http.ResponseWriter, entry *idempotencyEntry) {
	h := w.Header()
	for k, v := range entry.headers {
		if _, set := h[k]; set {
			continue
		}
		h[k] = append([]string(nil), v...)
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}
