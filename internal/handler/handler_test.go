package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/forgo/qrmenu/api/internal/catalog"
	"github.com/forgo/qrmenu/api/internal/codec"
	"github.com/forgo/qrmenu/api/internal/database"
	"github.com/forgo/qrmenu/api/internal/display"
	"github.com/forgo/qrmenu/api/internal/model"
	"github.com/forgo/qrmenu/api/internal/service"
	"github.com/forgo/qrmenu/api/internal/testing/fixtures"
	"github.com/forgo/qrmenu/api/internal/testing/helpers"
)

// ============================================================================
// In-memory Menu Repository
// ============================================================================

type memRepo struct {
	mu      sync.Mutex
	menus   map[string]model.Menu
	next    int
	saveErr error
	pingErr error
}

func newMemRepo() *memRepo {
	return &memRepo{menus: make(map[string]model.Menu)}
}

func (m *memRepo) Save(ctx context.Context, menu *model.Menu) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.next++
	id := fmt.Sprintf("menu-%d", m.next)
	m.menus[id] = menu.Content()
	return id, nil
}

func (m *memRepo) Fetch(ctx context.Context, id string) (*model.Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	stored, ok := m.menus[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	stored.ID = id
	return &stored, nil
}

func (m *memRepo) Ping(ctx context.Context) error {
	return m.pingErr
}

// ============================================================================
// Helpers
// ============================================================================

const testOrigin = "https://menus.example.com"

func newTestMux(t *testing.T, repo *memRepo) *http.ServeMux {
	t.Helper()

	svc := service.NewMenuService(service.MenuServiceConfig{
		Repo:   repo,
		Store:  repo,
		Codec:  codec.New(testOrigin, 2000),
		QRSize: 128,
		Driver: "memory",
	})

	styles, err := catalog.Default()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	renderer, err := display.NewRenderer()
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}

	mux := http.NewServeMux()
	NewMenuHandler(svc).RegisterRoutes(mux)
	NewPublishHandler(svc).RegisterRoutes(mux)
	NewCatalogHandler(styles).RegisterRoutes(mux)
	NewDisplayHandler(display.NewResolver(display.ResolverConfig{Menus: svc}), renderer).RegisterRoutes(mux)
	NewHealthHandler(svc, "memory").RegisterRoutes(mux)
	return mux
}

// ============================================================================
// Menu Tests
// ============================================================================

func TestMenuHandler_CreateThenGet(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())
	menu := fixtures.Menu()

	rr := helpers.NewRequest(t, http.MethodPost, "/api/menus").WithBody(menu).Do(mux)
	helpers.AssertStatus(t, rr, http.StatusCreated)

	var created model.CreateMenuResponse
	helpers.DecodeResponse(t, rr, &created)
	if created.ID == "" {
		t.Fatal("expected an id")
	}
	if got := rr.Header().Get("Location"); got != "/api/menus/"+created.ID {
		t.Errorf("unexpected Location %q", got)
	}

	rr = helpers.NewRequest(t, http.MethodGet, "/api/menus/"+created.ID).Do(mux)
	helpers.AssertStatus(t, rr, http.StatusOK)

	var fetched model.Menu
	helpers.DecodeResponse(t, rr, &fetched)
	if fetched.ID != created.ID {
		t.Errorf("expected id %q, got %q", created.ID, fetched.ID)
	}
	fetched.ID = ""
	want := menu.Content()
	if fmt.Sprintf("%+v", fetched) != fmt.Sprintf("%+v", want) {
		t.Errorf("fetched menu differs\n got: %+v\nwant: %+v", fetched, want)
	}
}

func TestMenuHandler_Create_InvalidMenu(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())

	rr := helpers.NewRequest(t, http.MethodPost, "/api/menus").
		WithBody(fixtures.Menu(fixtures.WithTitle(""), fixtures.WithItems())).
		Do(mux)

	helpers.AssertProblemDetails(t, rr, http.StatusUnprocessableEntity, model.ErrCodeValidation)
	helpers.AssertValidationError(t, rr, "title")
	helpers.AssertValidationError(t, rr, "items")
}

func TestMenuHandler_Create_BadJSON(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())

	tests := map[string]string{
		"malformed":     `{"title":`,
		"unknown field": `{"title":"Cafe","description":"Fresh daily","items":[{"name":"Coffee","desc":"","price":2.5}],"owner":"me"}`,
		"trailing data": `{"title":"Cafe","description":"Fresh daily","items":[{"name":"Coffee","desc":"","price":2.5}]} {}`,
		"price as text": `{"title":"Cafe","description":"Fresh daily","items":[{"name":"Coffee","desc":"","price":"2.5"}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rr := helpers.NewRequest(t, http.MethodPost, "/api/menus").WithRawBody(body).Do(mux)
			helpers.AssertProblemDetails(t, rr, http.StatusBadRequest, model.ErrCodeInvalidInput)
		})
	}
}

func TestMenuHandler_Create_StorageFailure(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.saveErr = fmt.Errorf("%w: socket closed", database.ErrConnection)
	mux := newTestMux(t, repo)

	rr := helpers.NewRequest(t, http.MethodPost, "/api/menus").WithBody(fixtures.Menu()).Do(mux)

	helpers.AssertProblemDetails(t, rr, http.StatusInternalServerError, model.ErrCodeDatabase)
	helpers.AssertJSONContains(t, rr, map[string]interface{}{"error": "Failed to save menu"})
	if strings.Contains(rr.Body.String(), "socket closed") {
		t.Errorf("storage detail leaked: %s", rr.Body.String())
	}
}

func TestMenuHandler_Get_NotFound(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())

	rr := helpers.NewRequest(t, http.MethodGet, "/api/menus/unknown").Do(mux)

	helpers.AssertProblemDetails(t, rr, http.StatusNotFound, model.ErrCodeNotFound)
	helpers.AssertJSONContains(t, rr, map[string]interface{}{"error": "Menu not found"})
}

func TestMenuHandler_Get_StorageFailure(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.saveErr = database.ErrQuery
	mux := newTestMux(t, repo)

	rr := helpers.NewRequest(t, http.MethodGet, "/api/menus/menu-1").Do(mux)

	helpers.AssertProblemDetails(t, rr, http.StatusInternalServerError, model.ErrCodeDatabase)
	helpers.AssertJSONContains(t, rr, map[string]interface{}{"error": "Failed to fetch menu"})
}

func TestMenuHandler_Get_ETag(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	mux := newTestMux(t, repo)
	id, _ := repo.Save(context.Background(), fixtures.Menu())

	rr := helpers.NewRequest(t, http.MethodGet, "/api/menus/"+id).Do(mux)
	helpers.AssertStatus(t, rr, http.StatusOK)
	etag := rr.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag")
	}

	rr = helpers.NewRequest(t, http.MethodGet, "/api/menus/"+id).WithHeader("If-None-Match", etag).Do(mux)
	helpers.AssertStatus(t, rr, http.StatusNotModified)
	if rr.Body.Len() != 0 {
		t.Errorf("expected empty body on 304, got %q", rr.Body.String())
	}

	rr = helpers.NewRequest(t, http.MethodGet, "/api/menus/"+id).WithHeader("If-None-Match", `"stale"`).Do(mux)
	helpers.AssertStatus(t, rr, http.StatusOK)
}

func TestETagMatches(t *testing.T) {
	t.Parallel()
	etag := ETag([]byte("menu"))

	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{etag, true},
		{"W/" + etag, true},
		{`"other", ` + etag, true},
		{"*", true},
		{`"other"`, false},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, etag); got != tt.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

// ============================================================================
// Publish Tests
// ============================================================================

func TestPublishHandler_Publish(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())

	rr := helpers.NewRequest(t, http.MethodPost, "/api/publish").WithBody(fixtures.Menu()).Do(mux)
	helpers.AssertStatus(t, rr, http.StatusOK)

	var pub model.Publication
	helpers.DecodeResponse(t, rr, &pub)
	if pub.URL != testOrigin+"/menu?data="+pub.Payload {
		t.Errorf("unexpected url %q", pub.URL)
	}
	decoded, err := codec.Decode(pub.Payload)
	if err != nil {
		t.Fatalf("payload does not decode: %v", err)
	}
	if decoded.Title != "Cafe" || len(decoded.Items) != 2 {
		t.Errorf("unexpected decoded menu: %+v", decoded)
	}
}

func TestPublishHandler_Publish_TooLarge(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())

	rr := helpers.NewRequest(t, http.MethodPost, "/api/publish").
		WithBody(fixtures.Menu(fixtures.WithManyItems(60))).
		Do(mux)

	helpers.AssertProblemDetails(t, rr, http.StatusUnprocessableEntity, model.ErrCodePayloadSize)
	helpers.AssertJSONContains(t, rr, map[string]interface{}{"limit": 2000})
	if strings.Contains(rr.Body.String(), "menu?data=") {
		t.Error("too-large response must not carry a link")
	}
}

func TestPublishHandler_Publish_Invalid(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())

	rr := helpers.NewRequest(t, http.MethodPost, "/api/publish").
		WithBody(fixtures.Menu(fixtures.WithDescription("  "))).
		Do(mux)

	helpers.AssertValidationError(t, rr, "description")
}

func TestPublishHandler_QRCode(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())

	rr := helpers.NewRequest(t, http.MethodPost, "/api/publish/qr").
		WithBody(fixtures.Menu(fixtures.WithTitle("Spice  Route Cafe"))).
		Do(mux)

	helpers.AssertStatus(t, rr, http.StatusOK)
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != "attachment; filename=Spice-Route-Cafe-menu-qr.png" {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if _, err := png.Decode(bytes.NewReader(rr.Body.Bytes())); err != nil {
		t.Errorf("body is not a PNG: %v", err)
	}
}

// ============================================================================
// Catalog Tests
// ============================================================================

func TestCatalogHandler_Styles(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())

	rr := helpers.NewRequest(t, http.MethodGet, "/api/styles").Do(mux)

	helpers.AssertStatus(t, rr, http.StatusOK)
	var got catalog.Catalog
	helpers.DecodeResponse(t, rr, &got)
	if len(got.Fonts) != 4 || len(got.FontColors) != 5 || len(got.Dietary) != 3 {
		t.Errorf("unexpected catalog sizes: %d fonts, %d colors, %d dietary", len(got.Fonts), len(got.FontColors), len(got.Dietary))
	}
	if _, ok := got.Template("Neon Grid"); !ok {
		t.Error("expected Neon Grid template")
	}
}

// ============================================================================
// Display Tests
// ============================================================================

func TestDisplayHandler_EmptyData(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())

	for _, path := range []string{"/menu?data=", "/menu", "/menu?data=%25%25%25", "/menu?data=aGVsbG8"} {
		t.Run(path, func(t *testing.T) {
			rr := helpers.NewRequest(t, http.MethodGet, path).Do(mux)

			helpers.AssertStatus(t, rr, http.StatusOK)
			helpers.AssertBodyContains(t, rr, "No menu data found. Please ensure the QR code is valid or contact the restaurant.")
		})
	}
}

func TestDisplayHandler_FromLink(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())
	payload, err := codec.Encode(fixtures.Menu())
	if err != nil {
		t.Fatal(err)
	}

	rr := helpers.NewRequest(t, http.MethodGet, "/menu?data="+payload).Do(mux)

	helpers.AssertStatus(t, rr, http.StatusOK)
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML, got %q", ct)
	}
	helpers.AssertBodyContains(t, rr, "Cafe", "Coffee", "₹2.50", "₹120.00", "Vegetarian")
}

func TestDisplayHandler_FromLegacyLink(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t, newMemRepo())
	raw := `{"title":"Cafe","description":"Fresh daily","items":[{"name":"Coffee","desc":"","price":2.5}],"font":"font-serif","fontColor":"text-white","background":"bg-black"}`
	payload := base64.StdEncoding.EncodeToString([]byte(raw))

	rr := helpers.NewRequest(t, http.MethodGet, "/menu?data="+strings.ReplaceAll(payload, "+", "%2B")).Do(mux)

	helpers.AssertStatus(t, rr, http.StatusOK)
	helpers.AssertBodyContains(t, rr, "Coffee", "font-serif")
}

func TestDisplayHandler_FromStore(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	mux := newTestMux(t, repo)
	id, _ := repo.Save(context.Background(), fixtures.Menu())

	rr := helpers.NewRequest(t, http.MethodGet, "/menu/"+id).Do(mux)
	helpers.AssertStatus(t, rr, http.StatusOK)
	helpers.AssertBodyContains(t, rr, "Masala Dosa")

	rr = helpers.NewRequest(t, http.MethodGet, "/menu/missing").Do(mux)
	helpers.AssertStatus(t, rr, http.StatusNotFound)
	helpers.AssertBodyContains(t, rr, "No menu data found")
}

func TestDisplayHandler_FromStore_StorageFailure(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.saveErr = database.ErrConnection
	mux := newTestMux(t, repo)

	rr := helpers.NewRequest(t, http.MethodGet, "/menu/menu-1").Do(mux)

	helpers.AssertProblemDetails(t, rr, http.StatusInternalServerError, model.ErrCodeDatabase)
}

// ============================================================================
// Health Tests
// ============================================================================

func TestHealthHandler(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	mux := newTestMux(t, repo)

	rr := helpers.NewRequest(t, http.MethodGet, "/health").Do(mux)
	helpers.AssertStatus(t, rr, http.StatusOK)
	helpers.AssertJSONContains(t, rr, map[string]interface{}{"status": "ok", "store": "memory"})

	repo.pingErr = database.ErrConnection
	rr = helpers.NewRequest(t, http.MethodGet, "/health").Do(mux)
	helpers.AssertProblemDetails(t, rr, http.StatusServiceUnavailable, model.ErrCodeDatabase)
}

// ============================================================================
// Error Mapper Tests
// ============================================================================

func TestMapServiceError_TooLargeUsesConfiguredLimit(t *testing.T) {
	t.Parallel()

	err := &service.TooLargeError{Limit: 900, Cause: fmt.Errorf("link is 1200 characters")}
	pd := MapServiceError(fmt.Errorf("publish: %w", err))

	if pd.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", pd.Status)
	}
	if pd.Limit == nil || *pd.Limit != 900 {
		t.Errorf("expected limit 900, got %v", pd.Limit)
	}
	if !strings.Contains(pd.Detail, "limit 900") {
		t.Errorf("detail does not name the limit: %q", pd.Detail)
	}
}

func TestMapServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, 0},
		{"not found", service.ErrMenuNotFound, http.StatusNotFound},
		{"validation", &service.ValidationError{Fields: []model.FieldError{{Field: "title", Message: "title is required"}}}, http.StatusUnprocessableEntity},
		{"too large", fmt.Errorf("%w: 2400 characters", service.ErrMenuTooLarge), http.StatusUnprocessableEntity},
		{"storage", fmt.Errorf("%w: timeout", service.ErrStorage), http.StatusInternalServerError},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pd := MapServiceError(tt.err)
			if tt.err == nil {
				if pd != nil {
					t.Errorf("expected nil, got %+v", pd)
				}
				return
			}
			if pd.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, pd.Status)
			}
			if pd.Status == http.StatusInternalServerError && strings.Contains(pd.Detail, "timeout") {
				t.Errorf("internal detail leaked: %q", pd.Detail)
			}
		})
	}
}
