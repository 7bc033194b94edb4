package survey

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicore/internal/distractor"
	"lexicore/internal/models"
	"lexicore/internal/vocab"
)

func newEngine() *Engine {
	store := vocab.Fixture()
	ds := distractor.New(store, 0.7, rand.New(rand.NewSource(7)))
	return New(store, ds, DefaultConfig(), rand.New(rand.NewSource(7)))
}

func TestProcessStepFirstCall(t *testing.T) {
	e := newEngine()

	session, result, err := e.ProcessStep(nil, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.NotNil(t, result)
	assert.True(t, result.Continuing)
	assert.NotNil(t, result.Question)
	assert.Equal(t, models.SessionActive, session.Status)
	assert.Zero(t, session.Confidence, "a fresh session has graded nothing yet")
	assert.Zero(t, session.EstimatedVocab, "a fresh session has graded nothing yet")
}

func TestProcessStepGradesPriorAnswer(t *testing.T) {
	e := newEngine()

	session, result, err := e.ProcessStep(nil, nil, nil)
	require.NoError(t, err)
	q := result.Question

	var correctID string
	for _, o := range q.Options {
		if o.IsCorrect {
			correctID = o.ID
			break
		}
	}
	require.NotEmpty(t, correctID)

	prior := &models.PriorAnswer{QuestionID: q.QuestionID, SelectedOptionIDs: []string{correctID}, TimeTaken: 3.5}
	session, result, err = e.ProcessStep(session, prior, q)
	require.NoError(t, err)
	assert.Equal(t, 1, session.QuestionCount)
	require.Len(t, session.History, 1)
	assert.True(t, session.History[0].Correct)
	_ = result
}

func TestProcessStepRejectsStepOnCompletedSession(t *testing.T) {
	e := newEngine()
	session := &models.SurveySession{Status: models.SessionComplete}

	_, _, err := e.ProcessStep(session, nil, nil)
	assert.Error(t, err)
}

func TestShouldStopNeverBeforeMinQuestions(t *testing.T) {
	e := newEngine()
	session := &models.SurveySession{
		QuestionCount: e.cfg.MinQuestions - 1,
		Confidence:    1.0,
		BandPerf:      map[int]models.BandStats{},
	}
	assert.False(t, e.shouldStop(session))
}

func TestShouldStopAtMaxQuestions(t *testing.T) {
	e := newEngine()
	session := &models.SurveySession{
		QuestionCount: e.cfg.MaxQuestions,
		BandPerf:      map[int]models.BandStats{},
	}
	assert.True(t, e.shouldStop(session))
}

func TestShouldStopOnConfidenceThreshold(t *testing.T) {
	e := newEngine()
	session := &models.SurveySession{
		QuestionCount: e.cfg.MinQuestions,
		Confidence:    e.cfg.ConfidenceThreshold,
		BandPerf:      map[int]models.BandStats{},
	}
	assert.True(t, e.shouldStop(session))
}
