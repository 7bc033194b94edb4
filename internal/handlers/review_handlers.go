package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lexicore/internal/apperr"
	"lexicore/internal/metrics"
	"lexicore/internal/models"
	"lexicore/internal/srs"
)

// ReviewHandler exposes the review-submission and retention-prediction
// contracts.
type ReviewHandler struct {
	srs *srs.Service
}

func NewReviewHandler(s *srs.Service) *ReviewHandler {
	return &ReviewHandler{srs: s}
}

type submitReviewRequest struct {
	UserID             uuid.UUID  `json:"user_id"`
	LearningProgressID uuid.UUID  `json:"learning_progress_id"`
	LearningPointID    string     `json:"learning_point_id"`
	Rating             int        `json:"rating"`
	ResponseTimeMs     *int64     `json:"response_time_ms"`
	ReviewDate         *time.Time `json:"review_date"`
	// Nonce identifies one logical submission attempt, so a client retry
	// after a dropped response produces at most one state change.
	Nonce string `json:"nonce"`
}

// SubmitReview handles a review submission.
// POST /reviews
func (h *ReviewHandler) SubmitReview(c *fiber.Ctx) error {
	var req submitReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
	}

	reviewDate := time.Now().UTC()
	if req.ReviewDate != nil {
		reviewDate = *req.ReviewDate
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	result, err := h.srs.SubmitReview(ctx, req.UserID, req.LearningProgressID, req.LearningPointID, models.Rating(req.Rating), req.ResponseTimeMs, reviewDate, req.Nonce)
	if err != nil {
		metrics.SRSReviews.WithLabelValues("unknown", "error").Inc()
		return respondError(c, err)
	}

	metrics.SRSReviews.WithLabelValues(string(result.AlgorithmType), ratingLabel(req.Rating)).Inc()
	return c.JSON(result)
}

type predictRetentionRequest struct {
	UserID             uuid.UUID  `json:"user_id"`
	LearningProgressID uuid.UUID  `json:"learning_progress_id"`
	TargetDate         *time.Time `json:"target_date"`
}

// PredictRetention handles a retention-prediction request.
// POST /reviews/predict-retention
func (h *ReviewHandler) PredictRetention(c *fiber.Ctx) error {
	var req predictRetentionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	retention, err := h.srs.PredictRetention(ctx, req.UserID, req.LearningProgressID, req.TargetDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"retention": retention})
}

func ratingLabel(r int) string {
	labels := []string{"again", "hard", "good", "easy", "perfect"}
	if r >= 0 && r < len(labels) {
		return labels[r]
	}
	return "unknown"
}
