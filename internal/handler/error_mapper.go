package handler

import (
	"errors"
	"net/http"

	"github.com/forgo/qrmenu/api/internal/codec"
	"github.com/forgo/qrmenu/api/internal/model"
	"github.com/forgo/qrmenu/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
// Storage and unknown errors never expose their cause.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	var invalid *service.ValidationError
	var tooLarge *service.TooLargeError
	switch {
	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrMenuNotFound):
		return model.NewNotFoundError("Menu")

	// ===== Validation Errors → 422 =====
	case errors.As(err, &invalid):
		return model.NewValidationError(invalid.Fields)
	case errors.Is(err, service.ErrInvalidMenu):
		return model.NewValidationError([]model.FieldError{{Field: "menu", Message: err.Error()}})
	case errors.As(err, &tooLarge):
		return model.NewPayloadTooLargeError(tooLarge.Limit)
	case errors.Is(err, service.ErrMenuTooLarge):
		return model.NewPayloadTooLargeError(codec.DefaultMaxURLLength)

	// ===== Storage Errors → 500 =====
	case errors.Is(err, service.ErrStorage):
		return model.NewStorageError("")

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == http.StatusInternalServerError {
		pd.Detail = operation + ": an unexpected error occurred"
		pd.Message = pd.Detail
	}
	return pd
}
