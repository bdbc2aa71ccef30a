package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode represents API error codes
type ErrorCode int

const (
	// Resource errors (3xxx)
	ErrCodeNotFound ErrorCode = 3001

	// Validation errors (4xxx)
	ErrCodeValidation    ErrorCode = 4001
	ErrCodeInvalidInput  ErrorCode = 4002
	ErrCodeLimitExceeded ErrorCode = 4003
	ErrCodePayloadSize   ErrorCode = 4004

	// Internal errors (5xxx)
	ErrCodeInternal ErrorCode = 5001
	ErrCodeDatabase ErrorCode = 5002
)

// ProblemTypeBase prefixes every problem "type" URI
const ProblemTypeBase = "https://qrmenu.forgo.software/errors/"

// problemKind fixes the type, title, status and code of one family of problems
type problemKind struct {
	slug   string
	title  string
	status int
	code   ErrorCode
}

var (
	kindNotFound    = problemKind{"not-found", "Not Found", http.StatusNotFound, ErrCodeNotFound}
	kindValidation  = problemKind{"validation", "Validation Error", http.StatusUnprocessableEntity, ErrCodeValidation}
	kindTooLarge    = problemKind{"payload-too-large", "Menu Too Large", http.StatusUnprocessableEntity, ErrCodePayloadSize}
	kindBadRequest  = problemKind{"bad-request", "Bad Request", http.StatusBadRequest, ErrCodeInvalidInput}
	kindRateLimited = problemKind{"rate-limited", "Too Many Requests", http.StatusTooManyRequests, ErrCodeLimitExceeded}
	kindInternal    = problemKind{"internal", "Internal Server Error", http.StatusInternalServerError, ErrCodeInternal}
	kindStorage     = problemKind{"storage", "Internal Server Error", http.StatusInternalServerError, ErrCodeDatabase}
	kindUnavailable = problemKind{"unavailable", "Service Unavailable", http.StatusServiceUnavailable, ErrCodeDatabase}
)

func (k problemKind) problem(detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:    ProblemTypeBase + k.slug,
		Title:   k.title,
		Status:  k.status,
		Detail:  detail,
		Message: detail,
		Code:    k.code,
	}
}

// ProblemDetails is an RFC 9457 problem document.
// Message is serialized as "error" and mirrors Detail for clients that read
// only {"error": ...}.
type ProblemDetails struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`

	Message string    `json:"error"`
	Code    ErrorCode `json:"code,omitempty"`
	Limit   *int      `json:"limit,omitempty"`
}

// FieldError names one field that failed validation
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

// WriteJSON writes p with the problem+json media type
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	if p.Message == "" {
		p.Message = p.Detail
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func NewNotFoundError(resource string) *ProblemDetails {
	return kindNotFound.problem(resource + " not found")
}

// NewValidationError summarizes the first failure in detail and lists all of
// them under "errors".
func NewValidationError(fields []FieldError) *ProblemDetails {
	detail := "One or more fields failed validation"
	switch n := len(fields); {
	case n == 1:
		detail = fields[0].Field + ": " + fields[0].Message
	case n > 1:
		detail = fmt.Sprintf("%s: %s (and %d more errors)", fields[0].Field, fields[0].Message, n-1)
	}
	p := kindValidation.problem(detail)
	p.Errors = fields
	return p
}

// NewPayloadTooLargeError reports a share link over limit characters
func NewPayloadTooLargeError(limit int) *ProblemDetails {
	p := kindTooLarge.problem(fmt.Sprintf(
		"Menu data too large for QR code (limit %d characters). Reduce the number of items or shorten descriptions.", limit))
	p.Limit = &limit
	return p
}

func NewBadRequestError(detail string) *ProblemDetails {
	return kindBadRequest.problem(detail)
}

func NewRateLimitError(retryAfter int) *ProblemDetails {
	return kindRateLimited.problem(fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter))
}

func NewInternalError(detail string) *ProblemDetails {
	return kindInternal.problem(orDefault(detail, "An unexpected error occurred"))
}

func NewStorageError(detail string) *ProblemDetails {
	return kindStorage.problem(orDefault(detail, "Storage is unavailable"))
}

func NewServiceUnavailableError(detail string) *ProblemDetails {
	return kindUnavailable.problem(detail)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
