// Package fsrs adapts the open-spaced-repetition/go-fsrs library to the
// shared Algorithm interface.
package fsrs

import (
	"time"

	gofsrs "github.com/open-spaced-repetition/go-fsrs/v3"
	"github.com/google/uuid"

	"lexicore/internal/apperr"
	"lexicore/internal/models"
	"lexicore/internal/srs"
)

// Config carries the FSRS algorithm's tunables.
type Config struct {
	TargetRetention float64
	MaxIntervalDays int
}

func DefaultConfig() Config {
	return Config{TargetRetention: 0.9, MaxIntervalDays: 730}
}

// Algorithm wraps a *gofsrs.FSRS scheduler. Construction fails loudly if
// the library cannot be configured — this service must never silently
// degrade to SM-2+; callers see ExternalUnavailable instead.
type Algorithm struct {
	cfg       Config
	scheduler *gofsrs.FSRS
}

func New(cfg Config) (*Algorithm, error) {
	params := gofsrs.DefaultParam()
	params.RequestRetention = cfg.TargetRetention
	params.MaximumInterval = float64(cfg.MaxIntervalDays)

	scheduler := gofsrs.NewFSRS(params)
	if scheduler == nil {
		return nil, apperr.New(apperr.ExternalUnavailable, "fsrs scheduler unavailable")
	}
	return &Algorithm{cfg: cfg, scheduler: scheduler}, nil
}

func (a *Algorithm) AlgorithmType() models.AlgorithmType { return models.AlgorithmFSRS }

func (a *Algorithm) InitializeCard(userID, progressID uuid.UUID, learningPointID string, initialDifficulty float64) models.CardState {
	card := gofsrs.NewCard()
	now := time.Now().UTC()
	scheduled := now.AddDate(0, 0, 1)

	return models.CardState{
		UserID:              userID,
		LearningProgressID:  progressID,
		LearningPointID:     learningPointID,
		AlgorithmType:       models.AlgorithmFSRS,
		CurrentIntervalDays: 1,
		ScheduledDate:       scheduled,
		MasteryLevel:        models.MasteryLearning,
		Difficulty:          initialDifficulty,
		Stability:           card.Stability,
		FSRSState:           serializeCard(card),
	}
}

// ratingFor maps the shared 0..4 rating onto the library's 1..4 scale;
// Perfect (4) maps onto the library's Easy, the top of its range.
func ratingFor(r models.Rating) gofsrs.Rating {
	switch r {
	case models.RatingAgain:
		return gofsrs.Again
	case models.RatingHard:
		return gofsrs.Hard
	case models.RatingGood:
		return gofsrs.Good
	case models.RatingEasy, models.RatingPerfect:
		return gofsrs.Easy
	default:
		return gofsrs.Good
	}
}

func (a *Algorithm) ProcessReview(event models.ReviewEvent) (models.ReviewResult, error) {
	before := event.CardStateBefore
	card, err := deserializeCard(before.FSRSState)
	if err != nil {
		return models.ReviewResult{}, apperr.Wrap(apperr.ExternalUnavailable, "replay fsrs card state", err)
	}

	reviewDate := event.ReviewDate
	if reviewDate.IsZero() {
		reviewDate = time.Now().UTC()
	}

	schedule := a.scheduler.Repeat(card, reviewDate)
	info, ok := schedule[ratingFor(event.Rating)]
	if !ok {
		return models.ReviewResult{}, apperr.New(apperr.ExternalUnavailable, "fsrs scheduler returned no entry for rating")
	}
	updated := info.Card

	intervalDays := int(updated.ScheduledDays)
	if intervalDays > a.cfg.MaxIntervalDays {
		intervalDays = a.cfg.MaxIntervalDays
	}
	if intervalDays < 1 {
		intervalDays = 1
	}

	wasCorrect := event.Rating >= models.RatingGood
	consecutive := before.ConsecutiveCorrect
	if wasCorrect {
		consecutive++
	} else {
		consecutive = 0
	}

	totalReviews := before.TotalReviews + 1
	totalCorrect := before.TotalCorrect
	if wasCorrect {
		totalCorrect++
	}
	avgResponse := before.AvgResponseTimeMs
	if event.ResponseTimeMs != nil {
		n := float64(totalReviews)
		avgResponse = avgResponse*(n-1)/n + float64(*event.ResponseTimeMs)/n
	}

	nextReviewDate := reviewDate.AddDate(0, 0, intervalDays)
	retention := a.scheduler.GetRetrievability(updated, nextReviewDate)

	after := before
	after.CurrentIntervalDays = intervalDays
	after.LastReviewDate = &reviewDate
	after.ScheduledDate = nextReviewDate
	after.TotalReviews = totalReviews
	after.TotalCorrect = totalCorrect
	after.ConsecutiveCorrect = consecutive
	after.AvgResponseTimeMs = avgResponse
	after.Stability = updated.Stability
	after.Difficulty = updated.Difficulty
	after.RetentionProbability = retention
	after.FSRSState = serializeCard(updated)

	prevMastery := before.MasteryLevel
	newMastery := srs.CalculateMasteryLevel(after)
	after.MasteryLevel = newMastery
	after.IsLeech = newMastery == models.MasteryLeech

	result := models.ReviewResult{
		CardStateAfter:     after,
		NextReviewDate:     nextReviewDate,
		NextIntervalDays:   intervalDays,
		WasCorrect:         wasCorrect,
		RetentionPredicted: retention,
		MasteryChanged:     newMastery != prevMastery,
		AlgorithmType:      models.AlgorithmFSRS,
	}
	if result.MasteryChanged {
		result.NewMasteryLevel = &newMastery
	}
	result.BecameLeech = newMastery == models.MasteryLeech && prevMastery != models.MasteryLeech
	return result, nil
}

// PredictRetention defers to the library; a deserialization failure
// returns a neutral 0.5 rather than propagating an error, since this is
// a read-only convenience call.
func (a *Algorithm) PredictRetention(state models.CardState, targetDate *time.Time) float64 {
	card, err := deserializeCard(state.FSRSState)
	if err != nil {
		return 0.5
	}
	when := time.Now().UTC()
	if targetDate != nil {
		when = *targetDate
	}
	return a.scheduler.GetRetrievability(card, when)
}

func serializeCard(card gofsrs.Card) *models.FSRSState {
	return &models.FSRSState{
		Stability:     card.Stability,
		Difficulty:    card.Difficulty,
		Reps:          card.Reps,
		Lapses:        card.Lapses,
		ElapsedDays:   card.ElapsedDays,
		ScheduledDays: card.ScheduledDays,
		State:         int(card.State),
		Due:           card.Due,
		LastReview:    card.LastReview,
	}
}

func deserializeCard(s *models.FSRSState) (gofsrs.Card, error) {
	if s == nil {
		return gofsrs.Card{}, apperr.New(apperr.Internal, "missing fsrs_state on card")
	}
	return gofsrs.Card{
		Stability:     s.Stability,
		Difficulty:    s.Difficulty,
		Reps:          s.Reps,
		Lapses:        s.Lapses,
		ElapsedDays:   s.ElapsedDays,
		ScheduledDays: s.ScheduledDays,
		State:         gofsrs.State(s.State),
		Due:           s.Due,
		LastReview:    s.LastReview,
	}, nil
}
