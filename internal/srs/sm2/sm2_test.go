package sm2

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicore/internal/models"
)

func TestInitializeCard(t *testing.T) {
	a := New(DefaultConfig())
	state := a.InitializeCard(uuid.New(), uuid.New(), "bank.n.01", 0.5)

	assert.Equal(t, models.AlgorithmSM2Plus, state.AlgorithmType)
	assert.Equal(t, 1, state.CurrentIntervalDays)
	assert.Equal(t, models.MasteryLearning, state.MasteryLevel)
	assert.InDelta(t, DefaultConfig().EFDefault, state.EaseFactor, 0.01)
}

func TestInitializeCardHarderStartLowersEase(t *testing.T) {
	a := New(DefaultConfig())
	easy := a.InitializeCard(uuid.New(), uuid.New(), "x", 0.0)
	hard := a.InitializeCard(uuid.New(), uuid.New(), "x", 1.0)
	assert.Greater(t, easy.EaseFactor, hard.EaseFactor)
}

func TestProcessReviewAgainResetsInterval(t *testing.T) {
	a := New(DefaultConfig())
	before := a.InitializeCard(uuid.New(), uuid.New(), "x", 0.5)
	before.CurrentIntervalDays = 30
	before.ConsecutiveCorrect = 4

	result, err := a.ProcessReview(models.ReviewEvent{CardStateBefore: before, Rating: models.RatingAgain, ReviewDate: time.Now().UTC()})
	require.NoError(t, err)
	assert.False(t, result.WasCorrect)
	assert.Equal(t, 1, result.NextIntervalDays)
	assert.Equal(t, 0, result.CardStateAfter.ConsecutiveCorrect)
}

func TestProcessReviewGoodGrowsInterval(t *testing.T) {
	a := New(DefaultConfig())
	before := a.InitializeCard(uuid.New(), uuid.New(), "x", 0.5)
	before.CurrentIntervalDays = 10
	before.ConsecutiveCorrect = 5 // past the stepped-interval phase

	result, err := a.ProcessReview(models.ReviewEvent{CardStateBefore: before, Rating: models.RatingGood, ReviewDate: time.Now().UTC()})
	require.NoError(t, err)
	assert.True(t, result.WasCorrect)
	assert.Greater(t, result.NextIntervalDays, before.CurrentIntervalDays)
}

func TestProcessReviewClampsEaseFactor(t *testing.T) {
	a := New(DefaultConfig())
	before := a.InitializeCard(uuid.New(), uuid.New(), "x", 0.5)
	before.EaseFactor = DefaultConfig().EFMin

	result, err := a.ProcessReview(models.ReviewEvent{CardStateBefore: before, Rating: models.RatingAgain, ReviewDate: time.Now().UTC()})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.CardStateAfter.EaseFactor, DefaultConfig().EFMin)
}

func TestPredictRetentionWithoutHistory(t *testing.T) {
	a := New(DefaultConfig())
	state := a.InitializeCard(uuid.New(), uuid.New(), "x", 0.5)
	assert.Equal(t, 0.5, a.PredictRetention(state, nil))
}

func TestProcessReviewIsDeterministicForIdenticalInput(t *testing.T) {
	a := New(DefaultConfig())
	before := a.InitializeCard(uuid.New(), uuid.New(), "x", 0.5)
	before.CurrentIntervalDays = 10
	before.ConsecutiveCorrect = 5
	reviewDate := time.Now().UTC().AddDate(0, 0, -3)

	eventA := models.ReviewEvent{CardStateBefore: before, Rating: models.RatingGood, ReviewDate: reviewDate}
	eventB := models.ReviewEvent{CardStateBefore: before, Rating: models.RatingGood, ReviewDate: reviewDate}

	resultA, err := a.ProcessReview(eventA)
	require.NoError(t, err)
	resultB, err := a.ProcessReview(eventB)
	require.NoError(t, err)

	// testify's assert.Equal compares floats exactly and would fail on the
	// clock jitter in the "now" reference PredictRetention reads internally;
	// cmp.Diff with a tight relative tolerance ignores that jitter while
	// still surfacing any real divergence between the two card states.
	opt := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(resultA.CardStateAfter, resultB.CardStateAfter, opt); diff != "" {
		t.Errorf("identical inputs produced diverging card states (-a +b):\n%s", diff)
	}
}

func TestPredictRetentionDecaysOverTime(t *testing.T) {
	a := New(DefaultConfig())
	reviewed := time.Now().UTC().AddDate(0, 0, -30)
	state := models.CardState{
		CurrentIntervalDays: 10,
		EaseFactor:          2.5,
		LastReviewDate:      &reviewed,
	}
	soon := reviewed.AddDate(0, 0, 1)
	later := reviewed.AddDate(0, 0, 60)

	rSoon := a.PredictRetention(state, &soon)
	rLater := a.PredictRetention(state, &later)
	assert.Greater(t, rSoon, rLater, "retention should decay as elapsed time grows")
}
