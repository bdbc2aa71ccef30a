package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/forgo/qrmenu/api/internal/builder"
	"github.com/forgo/qrmenu/api/internal/catalog"
	"github.com/forgo/qrmenu/api/internal/codec"
)

func newBuilderServer(t *testing.T, origins []string) string {
	t.Helper()
	styles, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	NewBuilderHandler(builder.SessionConfig{
		Codec:     codec.New(testOrigin, 2000),
		Templates: styles,
	}, origins).RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/builder"
}

func TestBuilderHandler_Session(t *testing.T) {
	t.Parallel()
	url := newBuilderServer(t, []string{"http://localhost:5173"})

	header := http.Header{"Origin": {"http://localhost:5173"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var u builder.Update
	if err := conn.ReadJSON(&u); err != nil {
		t.Fatalf("reading initial state: %v", err)
	}
	if u.State.Title != builder.DefaultTitle {
		t.Errorf("expected default title, got %q", u.State.Title)
	}

	if err := conn.WriteJSON(builder.Action{Type: builder.ActionChooseTemplate, Name: "Purple Void"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&u); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(u.State.Background), "from-purple-900") {
		t.Errorf("expected Purple Void background, got %q", u.State.Background)
	}
}

func TestBuilderHandler_RejectsForeignOrigin(t *testing.T) {
	t.Parallel()
	url := newBuilderServer(t, []string{"http://localhost:5173"})

	header := http.Header{"Origin": {"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %+v", resp)
	}
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	check := originChecker([]string{"https://a.example.com"})
	tests := map[string]bool{
		"":                      true,
		"https://a.example.com": true,
		"https://b.example.com": false,
	}
	for origin, want := range tests {
		r := httptest.NewRequest(http.MethodGet, "/ws/builder", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		if got := check(r); got != want {
			t.Errorf("origin %q: got %v, want %v", origin, got, want)
		}
	}

	wildcard := originChecker([]string{"*"})
	r := httptest.NewRequest(http.MethodGet, "/ws/builder", nil)
	r.Header.Set("Origin", "https://b.example.com")
	if !wildcard(r) {
		t.Error("expected * to accept any origin")
	}
}
