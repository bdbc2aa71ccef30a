package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/qrmenu/api/internal/model"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Menu Errors =====
var (
	ErrMenuNotFound = errors.New("menu not found")
	ErrInvalidMenu  = errors.New("invalid menu")
	ErrMenuTooLarge = errors.New("menu data too large for QR code")
)

// ===== Storage Errors =====
var (
	ErrStorage = errors.New("menu storage unavailable")
)

// ValidationError carries every field rule a menu violated.
// It matches ErrInvalidMenu with errors.Is.
type ValidationError struct {
	Fields []model.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidMenu, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidMenu
}

// TooLargeError reports a share link over the configured ceiling.
// It matches ErrMenuTooLarge with errors.Is.
type TooLargeError struct {
	Limit int
	Cause error
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMenuTooLarge, e.Cause)
}

func (e *TooLargeError) Is(target error) bool {
	return target == ErrMenuTooLarge
}

func (e *TooLargeError) Unwrap() error {
	return e.Cause
}

// validateMenu returns a *ValidationError when the menu breaks any rule
func validateMenu(m *model.Menu) error {
	if m == nil {
		return &ValidationError{Fields: []model.FieldError{{Field: "menu", Message: "menu is required"}}}
	}
	if fields := m.Validate(); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
