package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lexicore/internal/models"
)

func TestDetectLeech(t *testing.T) {
	t.Run("a card already flagged stays flagged", func(t *testing.T) {
		assert.True(t, DetectLeech(models.CardState{IsLeech: true}, 3, 1.5))
	})

	t.Run("consecutive failures past the threshold flags a leech", func(t *testing.T) {
		assert.True(t, DetectLeech(models.CardState{ConsecutiveCorrect: -3}, 3, 1.5))
	})

	t.Run("SM-2+ ease factor below threshold flags a leech", func(t *testing.T) {
		state := models.CardState{AlgorithmType: models.AlgorithmSM2Plus, EaseFactor: 1.2}
		assert.True(t, DetectLeech(state, 3, 1.5))
	})

	t.Run("FSRS stability below threshold flags a leech", func(t *testing.T) {
		state := models.CardState{AlgorithmType: models.AlgorithmFSRS, Stability: 0.2}
		assert.True(t, DetectLeech(state, 3, 1.5))
	})

	t.Run("low overall correctness rate flags a leech", func(t *testing.T) {
		state := models.CardState{TotalReviews: 5, TotalCorrect: 1}
		assert.True(t, DetectLeech(state, 3, 1.5))
	})

	t.Run("a healthy card is not a leech", func(t *testing.T) {
		state := models.CardState{AlgorithmType: models.AlgorithmSM2Plus, EaseFactor: 2.5, TotalReviews: 5, TotalCorrect: 5}
		assert.False(t, DetectLeech(state, 3, 1.5))
	})
}

func TestCalculateMasteryLevel(t *testing.T) {
	t.Run("leech overrides every other signal", func(t *testing.T) {
		state := models.CardState{IsLeech: true, CurrentIntervalDays: 1000}
		assert.Equal(t, models.MasteryLeech, CalculateMasteryLevel(state))
	})

	t.Run("SM-2+ long interval with enough streak reaches permanent", func(t *testing.T) {
		state := models.CardState{CurrentIntervalDays: 800, ConsecutiveCorrect: 10}
		assert.Equal(t, models.MasteryPermanent, CalculateMasteryLevel(state))
	})

	t.Run("SM-2+ short interval without streak stays learning", func(t *testing.T) {
		state := models.CardState{CurrentIntervalDays: 5, ConsecutiveCorrect: 1}
		assert.Equal(t, models.MasteryLearning, CalculateMasteryLevel(state))
	})

	t.Run("mastered tier is gated on a five-streak", func(t *testing.T) {
		gated := models.CardState{CurrentIntervalDays: 200, ConsecutiveCorrect: 2}
		assert.Equal(t, models.MasteryLearning, CalculateMasteryLevel(gated))

		ungated := models.CardState{CurrentIntervalDays: 200, ConsecutiveCorrect: 5}
		assert.Equal(t, models.MasteryMastered, CalculateMasteryLevel(ungated))
	})

	t.Run("FSRS high stability with streak reaches known", func(t *testing.T) {
		state := models.CardState{AlgorithmType: models.AlgorithmFSRS, Stability: 40, ConsecutiveCorrect: 6}
		assert.Equal(t, models.MasteryKnown, CalculateMasteryLevel(state))
	})

	t.Run("FSRS stability in [180,730) with streak reaches mastered, not known", func(t *testing.T) {
		state := models.CardState{AlgorithmType: models.AlgorithmFSRS, Stability: 200, ConsecutiveCorrect: 6}
		assert.Equal(t, models.MasteryMastered, CalculateMasteryLevel(state))
	})

	t.Run("FSRS stability at 730 reaches permanent", func(t *testing.T) {
		state := models.CardState{AlgorithmType: models.AlgorithmFSRS, Stability: 730, ConsecutiveCorrect: 6}
		assert.Equal(t, models.MasteryPermanent, CalculateMasteryLevel(state))
	})
}
