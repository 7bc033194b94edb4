package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"lexicore/internal/srs/assignment"
)

// AssignmentHandler exposes the algorithm-assignment contract.
type AssignmentHandler struct {
	assignments *assignment.Service
}

func NewAssignmentHandler(a *assignment.Service) *AssignmentHandler {
	return &AssignmentHandler{assignments: a}
}

// Get returns the caller's current algorithm assignment.
// GET /assignment
func (h *AssignmentHandler) Get(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	a, err := h.assignments.GetOrAssign(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"algorithm":    a.Algorithm,
		"reason":       a.AssignmentReason,
		"can_migrate":  a.CanMigrateToFSRS,
	})
}

// Migrate flips an eligible user to FSRS.
// POST /assignment/migrate
func (h *AssignmentHandler) Migrate(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	eligible, count, err := h.assignments.CanMigrateToFSRS(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	if !eligible {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"status":        "not_eligible",
			"review_count":  count,
		})
	}

	if err := h.assignments.MigrateToFSRS(ctx, userID, false); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "migrated", "algorithm": "fsrs"})
}
