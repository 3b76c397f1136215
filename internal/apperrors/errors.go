// Package apperrors defines the error kinds shared by repositories, services and
// handlers, and how each kind is reported over HTTP.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrForbidden         = errors.New("you do not have permission to perform this action")
	ErrUnauthenticated   = errors.New("authentication credentials were not provided")
	ErrInvalidCredential = errors.New("wrong confirmation code")
)

// ValidationError reports one or more malformed input fields.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// HTTPStatus maps an error onto the status code the API reports for it.
// Duplicates are reported as 400, like any other rejected input.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case IsValidation(err):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidCredential):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
