package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lexicore/internal/apperr"
)

// respondError maps an apperr.Kind to an HTTP status and fiber.Map response,
// instead of repeating the mapping at every call site.
func respondError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status := fiber.StatusInternalServerError
	switch kind {
	case apperr.NotFound:
		status = fiber.StatusNotFound
	case apperr.Validation:
		status = fiber.StatusBadRequest
	case apperr.Conflict:
		status = fiber.StatusConflict
	case apperr.InsufficientFunds:
		status = fiber.StatusUnprocessableEntity
	case apperr.NoCandidate:
		status = fiber.StatusUnprocessableEntity
	case apperr.ExternalUnavailable:
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
		"kind":  string(kind),
	})
}
