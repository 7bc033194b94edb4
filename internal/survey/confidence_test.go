package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lexicore/internal/models"
)

func TestMonotonicity(t *testing.T) {
	t.Run("fewer than two points is neutral", func(t *testing.T) {
		assert.Equal(t, 0.5, monotonicity(nil))
		assert.Equal(t, 0.5, monotonicity([]models.HistoryEntry{{Rank: 1000}}))
	})

	t.Run("all rising correctness scores perfectly", func(t *testing.T) {
		history := []models.HistoryEntry{
			{Rank: 1000, Correct: true},
			{Rank: 2000, Correct: true},
			{Rank: 3000, Correct: false},
		}
		assert.Equal(t, 1.0, monotonicity(history))
	})

	t.Run("a wrong-then-correct inversion penalizes the score", func(t *testing.T) {
		history := []models.HistoryEntry{
			{Rank: 1000, Correct: false},
			{Rank: 2000, Correct: true},
		}
		assert.Less(t, monotonicity(history), 1.0)
	})
}

func TestStabilityProxy(t *testing.T) {
	t.Run("fewer than five answers is the floor value", func(t *testing.T) {
		s := &models.SurveySession{History: make([]models.HistoryEntry, 2)}
		assert.Equal(t, 0.3, stabilityProxy(s))
	})

	t.Run("a narrow bound window scores high", func(t *testing.T) {
		s := &models.SurveySession{
			History:   make([]models.HistoryEntry, 5),
			LowBound:  3000,
			HighBound: 3500,
		}
		assert.Equal(t, 0.9, stabilityProxy(s))
	})

	t.Run("a wide bound window scores low", func(t *testing.T) {
		s := &models.SurveySession{
			History:   make([]models.HistoryEntry, 5),
			LowBound:  1,
			HighBound: 8000,
		}
		assert.Equal(t, 0.3, stabilityProxy(s))
	})
}

func TestComputeConfidence(t *testing.T) {
	t.Run("an empty session yields low confidence", func(t *testing.T) {
		s := &models.SurveySession{BandPerf: map[int]models.BandStats{}}
		assert.Less(t, computeConfidence(s), 0.3)
	})
}
