package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/qrmenu/api/internal/database"
	"github.com/forgo/qrmenu/api/internal/model"
)

// ============================================================================
// Requests
// ============================================================================

// Request accumulates an httptest request and serves it against a handler
type Request struct {
	t      *testing.T
	method string
	target string
	body   io.Reader
	header http.Header
}

// NewRequest starts a request for method and target
func NewRequest(t *testing.T, method, target string) *Request {
	t.Helper()
	return &Request{t: t, method: method, target: target, header: http.Header{}}
}

// WithBody JSON-encodes v as the request body
func (r *Request) WithBody(v interface{}) *Request {
	r.t.Helper()
	b, err := json.Marshal(v)
	require.NoError(r.t, err, "encoding request body")
	return r.WithRawBody(string(b))
}

// WithRawBody sends s as a JSON body without re-encoding it
func (r *Request) WithRawBody(s string) *Request {
	r.body = bytes.NewBufferString(s)
	r.header.Set("Content-Type", "application/json")
	return r
}

// WithHeader sets a request header
func (r *Request) WithHeader(key, value string) *Request {
	r.header.Set(key, value)
	return r
}

// Build returns the assembled request
func (r *Request) Build() *http.Request {
	req := httptest.NewRequest(r.method, r.target, r.body)
	for k, v := range r.header {
		req.Header[k] = v
	}
	return req
}

// Do serves the request through h
func (r *Request) Do(h http.Handler) *httptest.ResponseRecorder {
	r.t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r.Build())
	return rr
}

// ============================================================================
// Responses
// ============================================================================

// AssertStatus checks the status code, printing the body on mismatch
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	assert.Equal(t, want, rr.Code, "body: %s", rr.Body.String())
}

// AssertProblemDetails checks an RFC 9457 response: status, optional code and
// a non-empty "error" member. A zero code skips the code check.
func AssertProblemDetails(t *testing.T, rr *httptest.ResponseRecorder, status int, code model.ErrorCode) {
	t.Helper()
	AssertStatus(t, rr, status)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	problem := decodeProblem(t, rr)
	assert.Equal(t, status, problem.Status, "problem status")
	if code != 0 {
		assert.Equal(t, code, problem.Code, "problem code")
	}
	assert.NotEmpty(t, problem.Message, "problem error member")
}

// AssertValidationError checks for a 422 naming field among its errors
func AssertValidationError(t *testing.T, rr *httptest.ResponseRecorder, field string) {
	t.Helper()
	AssertStatus(t, rr, http.StatusUnprocessableEntity)

	problem := decodeProblem(t, rr)
	fields := make([]string, 0, len(problem.Errors))
	for _, fe := range problem.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, field, "validation errors")
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) model.ProblemDetails {
	t.Helper()
	var problem model.ProblemDetails
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem), "body: %s", rr.Body.String())
	return problem
}

// AssertJSONContains checks top-level members of a JSON object body.
// Values are compared after a JSON round trip so 2000 matches 2000.0.
func AssertJSONContains(t *testing.T, rr *httptest.ResponseRecorder, want map[string]interface{}) {
	t.Helper()

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got), "body: %s", rr.Body.String())

	for key, v := range want {
		raw, ok := got[key]
		if !assert.True(t, ok, "missing member %q", key) {
			continue
		}
		expected, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, string(expected), string(raw), "member %q", key)
	}
}

// AssertBodyContains checks the body for each fragment
func AssertBodyContains(t *testing.T, rr *httptest.ResponseRecorder, fragments ...string) {
	t.Helper()
	body := rr.Body.String()
	for _, f := range fragments {
		assert.Contains(t, body, f)
	}
}

// DecodeResponse unmarshals the JSON body into v
func DecodeResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), "body: %s", rr.Body.String())
}

// ============================================================================
// Store
// ============================================================================

// AssertMenuStored checks that a SurrealDB menu record exists for id
func AssertMenuStored(t *testing.T, db database.Database, id string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.QueryOne(ctx, "SELECT * FROM type::thing('menu', $id)", map[string]interface{}{"id": id})
	if errors.Is(err, database.ErrNotFound) {
		t.Errorf("menu %s not stored", id)
		return
	}
	require.NoError(t, err, "looking up menu %s", id)
}
