package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"lexicore/internal/apperr"
	"lexicore/internal/economy"
)

// EconomyHandler exposes the user's Sparks/Essence/Energy/Blocks/level
// snapshot.
type EconomyHandler struct {
	economy *economy.Service
}

func NewEconomyHandler(e *economy.Service) *EconomyHandler {
	return &EconomyHandler{economy: e}
}

// GetProgress returns the caller's current Sparks/Essence/Energy/Blocks
// and level snapshot.
// GET /economy
func (h *EconomyHandler) GetProgress(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	xp, err := h.economy.GetProgress(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(xp)
}

type mcqResultRequest struct {
	IsCorrect       bool   `json:"is_correct"`
	IsFast          bool   `json:"is_fast"`
	WordBecameSolid bool   `json:"word_became_solid"`
	SenseID         string `json:"sense_id"`
}

// ReportMCQResult reports a multiple-choice result and grants the
// resulting Sparks/Essence/Block currency in one call.
// POST /economy/mcq-result
func (h *EconomyHandler) ReportMCQResult(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	var req mcqResultRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	result, err := h.economy.ProcessMCQResult(ctx, userID, economy.MCQResult{
		IsCorrect:       req.IsCorrect,
		IsFast:          req.IsFast,
		WordBecameSolid: req.WordBecameSolid,
		SenseID:         req.SenseID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
