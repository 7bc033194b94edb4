package srs

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"lexicore/internal/apperr"
	"lexicore/internal/models"
	"lexicore/internal/srs/assignment"
)

// Service is the composition point where the scheduling interface
// obtained for any user is determined solely by their algorithm
// assignment: it resolves a user's assigned Algorithm, then serializes
// reads/writes to that user's card under a row lock.
type Service struct {
	cards       *CardStore
	assignments *assignment.Service
	sm2         Algorithm
	fsrs        Algorithm
}

func NewService(cards *CardStore, assignments *assignment.Service, sm2Algo, fsrsAlgo Algorithm) *Service {
	return &Service{cards: cards, assignments: assignments, sm2: sm2Algo, fsrs: fsrsAlgo}
}

func (s *Service) algorithmFor(algType models.AlgorithmType) Algorithm {
	if algType == models.AlgorithmFSRS {
		return s.fsrs
	}
	return s.sm2
}

// SubmitReview processes a single review submission. If the card does
// not yet exist, it is initialized first using the user's assigned
// algorithm. nonce identifies this logical submission attempt: replaying
// the same (userID, progressID, nonce) returns the first call's result
// without touching the card again.
func (s *Service) SubmitReview(ctx context.Context, userID, progressID uuid.UUID, learningPointID string, rating models.Rating, responseTimeMs *int64, reviewDate time.Time, nonce string) (models.ReviewResult, error) {
	if rating < models.RatingAgain || rating > models.RatingPerfect {
		return models.ReviewResult{}, apperr.New(apperr.Validation, "rating out of range")
	}
	if responseTimeMs != nil && *responseTimeMs < 0 {
		return models.ReviewResult{}, apperr.New(apperr.Validation, "negative response time")
	}
	if nonce == "" {
		return models.ReviewResult{}, apperr.New(apperr.Validation, "nonce is required")
	}

	userAssignment, err := s.assignments.GetOrAssign(ctx, userID)
	if err != nil {
		return models.ReviewResult{}, err
	}
	algo := s.algorithmFor(userAssignment.Algorithm)

	var result models.ReviewResult
	err = s.cards.WithCardLock(ctx, userID, progressID, func(tx *sql.Tx) error {
		claimed, cached, err := s.cards.ClaimSubmissionTx(ctx, tx, userID, progressID, nonce, rating, reviewDate)
		if err != nil {
			return err
		}
		if !claimed {
			result = *cached
			return nil
		}

		before, err := s.cards.LoadTx(ctx, tx, userID, progressID)
		if err == nil && before.AlgorithmType != userAssignment.Algorithm {
			// The assignment is authoritative; a card never mixes
			// algorithms mid-lifetime.
			return apperr.New(apperr.Conflict, "card algorithm does not match current assignment")
		}
		if apperr.KindOf(err) == apperr.NotFound {
			before = algo.InitializeCard(userID, progressID, learningPointID, 0.5)
		} else if err != nil {
			return err
		}

		event := models.ReviewEvent{
			CardStateBefore: before,
			Rating:          rating,
			ResponseTimeMs:  responseTimeMs,
			ReviewDate:      reviewDate,
		}
		result, err = algo.ProcessReview(event)
		if err != nil {
			return err
		}
		if err := s.cards.SaveTx(ctx, tx, result.CardStateAfter); err != nil {
			return err
		}
		if userAssignment.Algorithm == models.AlgorithmFSRS {
			if err := s.cards.RecordFSRSReview(ctx, tx, userID, progressID, rating); err != nil {
				return err
			}
		}
		return s.cards.RecordSubmissionResultTx(ctx, tx, userID, progressID, nonce, result)
	})
	if err != nil {
		return models.ReviewResult{}, err
	}
	return result, nil
}

// PredictRetention predicts recall probability for a card at targetDate
// (or now, if nil), without recording a review.
func (s *Service) PredictRetention(ctx context.Context, userID, progressID uuid.UUID, targetDate *time.Time) (float64, error) {
	userAssignment, err := s.assignments.GetOrAssign(ctx, userID)
	if err != nil {
		return 0, err
	}
	algo := s.algorithmFor(userAssignment.Algorithm)

	var retention float64
	err = s.cards.WithCardLock(ctx, userID, progressID, func(tx *sql.Tx) error {
		state, err := s.cards.LoadTx(ctx, tx, userID, progressID)
		if err != nil {
			return err
		}
		retention = algo.PredictRetention(state, targetDate)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return retention, nil
}
