package handlers

import (
	"errors"
	"strconv"

	"yamdb/internal/apperrors"
	"yamdb/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// MaxPageSize caps the limit query parameter.
const MaxPageSize = 100

// ListResponse is the envelope of every collection endpoint.
type ListResponse[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}

func list[T any](c *fiber.Ctx, results []T, count int64) error {
	if results == nil {
		results = []T{}
	}
	return c.JSON(ListResponse[T]{Count: count, Results: results})
}

// respondError writes err with the status its kind maps to. Unexpected errors
// are logged and hidden behind a generic message.
func respondError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)

	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		return c.Status(status).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	}

	if status == fiber.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.Locals("requestid"),
		}).Error("request failed")
		return c.Status(status).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"message": message(err),
		"error":   err.Error(),
	})
}

func message(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "Not found"
	case errors.Is(err, apperrors.ErrConflict):
		return "Already exists"
	case errors.Is(err, apperrors.ErrInvalidCredential):
		return "Invalid confirmation code"
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return "Authentication credentials were not provided"
	case errors.Is(err, apperrors.ErrForbidden):
		return "You do not have permission to perform this action"
	default:
		return "Request failed"
	}
}

func badBody(c *fiber.Ctx, err error) error {
	logrus.WithError(err).WithField("path", c.Path()).Debug("unparsable request body")
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// pager reads limit and offset query parameters.
type pager struct {
	defaultLimit int
}

func (p pager) page(c *fiber.Ctx) (repositories.Page, error) {
	page := repositories.Page{Limit: p.defaultLimit}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, apperrors.NewValidationError("limit", "must be a positive integer")
		}
		page.Limit = n
	}
	if page.Limit > MaxPageSize {
		page.Limit = MaxPageSize
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, apperrors.NewValidationError("offset", "must be a non-negative integer")
		}
		page.Offset = n
	}
	return page, nil
}
