package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/forgo/qrmenu/api/internal/metrics"
)

// ============================================================================
// Metrics Tests
// ============================================================================

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	t.Parallel()
	m := metrics.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/menus/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := Metrics(m)(mux)

	for _, path := range []string{"/api/menus/a", "/api/menus/b", "/nowhere"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	expected := `
# HELP qrmenu_http_requests_total HTTP requests by method, route pattern, and status
# TYPE qrmenu_http_requests_total counter
qrmenu_http_requests_total{method="GET",route="GET /api/menus/{id}",status="404"} 2
qrmenu_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "qrmenu_http_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestMetrics_NilPassesThrough(t *testing.T) {
	t.Parallel()
	handler := &captureHandler{}

	Metrics(nil)(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !handler.called {
		t.Error("handler should be called")
	}
}

// ============================================================================
// Upgrade Support Tests
// ============================================================================

type hijackRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

func TestResponseWriter_Hijack_Delegates(t *testing.T) {
	t.Parallel()
	rec := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	if _, _, err := rw.Hijack(); err != nil {
		t.Fatalf("Hijack failed: %v", err)
	}
	if !rec.hijacked {
		t.Error("expected underlying writer to be hijacked")
	}
	if rw.statusCode != http.StatusSwitchingProtocols {
		t.Errorf("expected status %d, got %d", http.StatusSwitchingProtocols, rw.statusCode)
	}
}

func TestResponseWriter_Hijack_Unsupported(t *testing.T) {
	t.Parallel()
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

	if _, _, err := rw.Hijack(); err == nil {
		t.Error("expected error when the writer cannot hijack")
	}
}

func TestCompress_WebsocketUpgrade_PassesWriterThrough(t *testing.T) {
	t.Parallel()
	rec := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(http.Hijacker); !ok {
			t.Error("expected a hijackable writer")
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/ws/builder", nil)
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Accept-Encoding", "gzip")

	Compress(handler).ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "" {
		t.Error("should not compress websocket upgrades")
	}
}

func TestCompress_DropsContentLength(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "11")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello world"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/publish/qr", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	Compress(handler).ServeHTTP(rr, req)

	if rr.Header().Get("Content-Length") != "" {
		t.Errorf("expected no Content-Length on gzip response, got %q", rr.Header().Get("Content-Length"))
	}
}

// ============================================================================
// clientKey Tests
// ============================================================================

func TestClientKey(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"192.168.1.1:12345": "192.168.1.1",
		"[::1]:8080":        "::1",
		"10.0.0.1":          "10.0.0.1",
	}
	for addr, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		if got := clientKey(req); got != want {
			t.Errorf("clientKey(%q) = %q, want %q", addr, got, want)
		}
	}
}
