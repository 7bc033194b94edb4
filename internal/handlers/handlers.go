package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// getUserID extracts user ID from the X-User-Id header. Token verification
// itself is out of this core's scope; it only needs the identifier
// upstream auth produces.
func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr := c.Get("X-User-Id")
	if userIDStr == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "X-User-Id header required")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid user ID format")
	}
	return userID, nil
}

// Health reports process liveness.
// GET /health
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "lexicore",
	})
}

// Info describes the service.
// GET /
func Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":     "lexicore",
		"description": "Adaptive vocabulary learning core: survey engine, distractor generation, spaced-repetition scheduling, and currency economy.",
	})
}
