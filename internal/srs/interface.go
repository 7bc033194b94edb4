// Package srs implements the Scheduling Subsystem: a common
// SpacedRepetitionAlgorithm interface with two implementations (SM-2+ and
// FSRS), a shared mastery/leech classifier, and a per-user algorithm
// assignment service.
package srs

import (
	"time"

	"github.com/google/uuid"

	"lexicore/internal/models"
)

// Algorithm is the polymorphic scheduling interface shared by both
// schedulers. Both implementations share the same CardState shape; FSRS
// carries its native state as an opaque blob inside it.
type Algorithm interface {
	AlgorithmType() models.AlgorithmType
	InitializeCard(userID, progressID uuid.UUID, learningPointID string, initialDifficulty float64) models.CardState
	ProcessReview(event models.ReviewEvent) (models.ReviewResult, error)
	PredictRetention(state models.CardState, targetDate *time.Time) float64
}

// DefaultFailureThreshold and DefaultEaseThreshold are the shared leech-detection
// defaults.
const (
	DefaultFailureThreshold = 3
	DefaultEaseThreshold    = 1.5
)
