package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lexicore/internal/apperr"
	"lexicore/internal/metrics"
	"lexicore/internal/models"
	"lexicore/internal/survey"
)

// SurveyHandler exposes the survey start/step contract.
type SurveyHandler struct {
	engine *survey.Engine
	store  survey.SessionStore
}

func NewSurveyHandler(engine *survey.Engine, store survey.SessionStore) *SurveyHandler {
	return &SurveyHandler{engine: engine, store: store}
}

type stepRequest struct {
	SessionID           *uuid.UUID          `json:"session_id"`
	PriorAnswer         *models.PriorAnswer `json:"prior_answer"`
	PriorQuestionDetails *models.Question   `json:"prior_question_details"`
}

// Step handles a single start-or-continue survey request.
// POST /survey/step
func (h *SurveyHandler) Step(c *fiber.Ctx) error {
	var req stepRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	var session *models.SurveySession
	var result *survey.StepResult
	err := withSessionLock(ctx, h.store, req.SessionID, func(ctx context.Context) error {
		if req.SessionID != nil {
			loaded, err := h.store.Load(ctx, *req.SessionID)
			if err != nil {
				return err
			}
			session = loaded
		}
		var stepErr error
		session, result, stepErr = h.engine.ProcessStep(session, req.PriorAnswer, req.PriorQuestionDetails)
		if stepErr != nil {
			return stepErr
		}
		return h.store.Save(ctx, session)
	})
	if err != nil {
		metrics.SurveySteps.WithLabelValues("error").Inc()
		return respondError(c, err)
	}

	if result.Continuing {
		metrics.SurveySteps.WithLabelValues("continue").Inc()
		return c.JSON(fiber.Map{
			"status":     "continue",
			"session_id": session.SessionID,
			"payload":    result.Question,
			"debug_info": result.DebugInfo,
		})
	}

	metrics.SurveySteps.WithLabelValues("complete").Inc()
	metrics.SurveyConfidenceAtCompletion.Observe(session.Confidence)
	return c.JSON(fiber.Map{
		"status":     "complete",
		"session_id": session.SessionID,
		"metrics": fiber.Map{
			"volume":  result.Report.Volume,
			"reach":   result.Report.Reach,
			"density": result.Report.Density,
		},
		"history":     result.Report.History,
		"methodology": result.Report.Methodology,
	})
}

// withSessionLock acquires the session's advisory lock for an existing
// session before running fn; a brand-new session (no id yet) has no row to
// lock, so fn simply runs directly and the first Save creates it.
func withSessionLock(ctx context.Context, store survey.SessionStore, sessionID *uuid.UUID, fn func(ctx context.Context) error) error {
	if sessionID == nil {
		return fn(ctx)
	}
	return store.WithLock(ctx, *sessionID, fn)
}
