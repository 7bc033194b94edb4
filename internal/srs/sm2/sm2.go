// Package sm2 implements the SM-2+ spaced-repetition algorithm: ease-factor
// adjustment, stepped initial intervals, and an exponential
// forgetting-curve retention estimate.
package sm2

import (
	"math"
	"time"

	"github.com/google/uuid"

	"lexicore/internal/models"
	"lexicore/internal/srs"
)

// Config carries the SM-2+ algorithm's tunables.
type Config struct {
	EFMin            float64
	EFMax            float64
	EFDefault        float64
	IntervalMax      int
	InitialIntervals []int
}

func DefaultConfig() Config {
	return Config{EFMin: 1.3, EFMax: 3.0, EFDefault: 2.5, IntervalMax: 365, InitialIntervals: []int{1, 3, 7}}
}

type Algorithm struct {
	cfg Config
}

func New(cfg Config) *Algorithm { return &Algorithm{cfg: cfg} }

func (a *Algorithm) AlgorithmType() models.AlgorithmType { return models.AlgorithmSM2Plus }

func (a *Algorithm) InitializeCard(userID, progressID uuid.UUID, learningPointID string, initialDifficulty float64) models.CardState {
	ef := clamp(a.cfg.EFDefault-(initialDifficulty-0.5)*0.6, a.cfg.EFMin, a.cfg.EFMax)
	now := time.Now().UTC()
	scheduled := now.AddDate(0, 0, 1)
	return models.CardState{
		UserID:              userID,
		LearningProgressID:  progressID,
		LearningPointID:     learningPointID,
		AlgorithmType:       models.AlgorithmSM2Plus,
		EaseFactor:          ef,
		CurrentIntervalDays: 1,
		ScheduledDate:       scheduled,
		MasteryLevel:        models.MasteryLearning,
	}
}

func (a *Algorithm) ProcessReview(event models.ReviewEvent) (models.ReviewResult, error) {
	before := event.CardStateBefore
	q := int(event.Rating) + 1 // SM-2 quality, 1..5

	deltaEF := 0.1 - float64(5-q)*(0.08+float64(5-q)*0.02)
	ef := clamp(before.EaseFactor+deltaEF, a.cfg.EFMin, a.cfg.EFMax)

	wasCorrect := event.Rating >= models.RatingGood
	consecutive := before.ConsecutiveCorrect
	if wasCorrect {
		consecutive++
	} else {
		consecutive = 0
	}

	interval := a.nextInterval(before.CurrentIntervalDays, ef, wasCorrect, consecutive)

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

	errorRate := 0.0
	if totalReviews > 0 {
		errorRate = 1 - float64(totalCorrect)/float64(totalReviews)
	}
	difficulty := 0.6*(1-(ef-a.cfg.EFMin)/(a.cfg.EFMax-a.cfg.EFMin)) + 0.4*errorRate

	reviewDate := event.ReviewDate
	if reviewDate.IsZero() {
		reviewDate = time.Now().UTC()
	}
	nextReviewDate := reviewDate.AddDate(0, 0, interval)

	after := before
	after.EaseFactor = ef
	after.CurrentIntervalDays = interval
	after.LastReviewDate = &reviewDate
	after.ScheduledDate = nextReviewDate
	after.TotalReviews = totalReviews
	after.TotalCorrect = totalCorrect
	after.ConsecutiveCorrect = consecutive
	after.AvgResponseTimeMs = avgResponse
	after.Difficulty = difficulty

	prevMastery := before.MasteryLevel
	newMastery := srs.CalculateMasteryLevel(after)
	after.MasteryLevel = newMastery
	after.IsLeech = newMastery == models.MasteryLeech

	retention := a.PredictRetention(after, nil)
	after.RetentionProbability = retention

	result := models.ReviewResult{
		CardStateAfter:     after,
		NextReviewDate:     nextReviewDate,
		NextIntervalDays:   interval,
		WasCorrect:         wasCorrect,
		RetentionPredicted: retention,
		MasteryChanged:     newMastery != prevMastery,
		AlgorithmType:       models.AlgorithmSM2Plus,
	}
	if result.MasteryChanged {
		result.NewMasteryLevel = &newMastery
	}
	result.BecameLeech = newMastery == models.MasteryLeech && prevMastery != models.MasteryLeech
	return result, nil
}

func (a *Algorithm) nextInterval(currentInterval int, ef float64, wasCorrect bool, consecutiveCorrect int) int {
	if !wasCorrect {
		return 1
	}
	if consecutiveCorrect <= len(a.cfg.InitialIntervals) {
		return a.cfg.InitialIntervals[consecutiveCorrect-1]
	}
	next := int(math.Floor(float64(currentInterval) * ef))
	if next > a.cfg.IntervalMax {
		next = a.cfg.IntervalMax
	}
	if next < 1 {
		next = 1
	}
	return next
}

// PredictRetention applies an exponential forgetting-curve proxy. The
// "stability" used here is explicitly a compatibility proxy derived from
// interval*ef, not a literature-accurate stability estimate — SM-2+ has
// no native notion of stability the way FSRS does.
func (a *Algorithm) PredictRetention(state models.CardState, targetDate *time.Time) float64 {
	if state.LastReviewDate == nil {
		return 0.5
	}
	stability := float64(state.CurrentIntervalDays) * state.EaseFactor / 2.5
	if stability <= 0 {
		return 0.5
	}
	when := time.Now().UTC()
	if targetDate != nil {
		when = *targetDate
	}
	elapsedDays := when.Sub(*state.LastReviewDate).Hours() / 24
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	r := math.Exp(-elapsedDays / stability)
	return clamp(r, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
