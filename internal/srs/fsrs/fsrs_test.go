package fsrs

import (
	"testing"
	"time"

	gofsrs "github.com/open-spaced-repetition/go-fsrs/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicore/internal/models"
)

func TestNewBuildsScheduler(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, models.AlgorithmFSRS, a.AlgorithmType())
}

func TestInitializeCard(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)

	state := a.InitializeCard(uuid.New(), uuid.New(), "bank.n.01", 0.4)
	assert.Equal(t, models.AlgorithmFSRS, state.AlgorithmType)
	assert.Equal(t, models.MasteryLearning, state.MasteryLevel)
	assert.NotNil(t, state.FSRSState, "a fresh card must carry a serialized state to replay on the next review")
}

func TestProcessReviewAdvancesState(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)

	before := a.InitializeCard(uuid.New(), uuid.New(), "bank.n.01", 0.4)
	result, err := a.ProcessReview(models.ReviewEvent{CardStateBefore: before, Rating: models.RatingGood, ReviewDate: time.Now().UTC()})
	require.NoError(t, err)

	assert.True(t, result.WasCorrect)
	assert.GreaterOrEqual(t, result.NextIntervalDays, 1)
	assert.NotNil(t, result.CardStateAfter.FSRSState)
	assert.Equal(t, 1, result.CardStateAfter.TotalReviews)
}

func TestProcessReviewRejectsMissingState(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)

	_, err = a.ProcessReview(models.ReviewEvent{CardStateBefore: models.CardState{FSRSState: nil}, Rating: models.RatingGood})
	assert.Error(t, err)
}

func TestProcessReviewAgainResetsStreak(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)

	before := a.InitializeCard(uuid.New(), uuid.New(), "bank.n.01", 0.4)
	before.ConsecutiveCorrect = 4

	result, err := a.ProcessReview(models.ReviewEvent{CardStateBefore: before, Rating: models.RatingAgain, ReviewDate: time.Now().UTC()})
	require.NoError(t, err)
	assert.False(t, result.WasCorrect)
	assert.Equal(t, 0, result.CardStateAfter.ConsecutiveCorrect)
}

func TestPredictRetentionOnFreshCard(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)

	state := a.InitializeCard(uuid.New(), uuid.New(), "bank.n.01", 0.4)
	retention := a.PredictRetention(state, nil)
	assert.GreaterOrEqual(t, retention, 0.0)
	assert.LessOrEqual(t, retention, 1.0)
}

func TestPredictRetentionOnMissingStateIsNeutral(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 0.5, a.PredictRetention(models.CardState{}, nil))
}

func TestRatingForMapping(t *testing.T) {
	assert.Equal(t, gofsrs.Again, ratingFor(models.RatingAgain))
	assert.Equal(t, gofsrs.Good, ratingFor(models.RatingGood))
	assert.Equal(t, ratingFor(models.RatingEasy), ratingFor(models.RatingPerfect), "both top-end ratings map onto the library's Easy")
}
