// Package survey implements the Survey Engine: a session-scoped adaptive
// vocabulary-size assessment built on frequency-band sampling.
package survey

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"lexicore/internal/apperr"
	"lexicore/internal/distractor"
	"lexicore/internal/models"
	"lexicore/internal/vocab"
)

const (
	minQuestionsFloor = 10
	maxQuestionsCap   = 35
	confidenceTarget  = 0.80

	questionTimeLimitSeconds = 12
)

// Config carries the survey engine's runtime tunables.
type Config struct {
	MinQuestions         int
	MaxQuestions         int
	ConfidenceThreshold  float64
	MinSamplesPerBand    int
	TargetSamplesPerBand int
	RecentWindow         int
}

// DefaultConfig returns the engine's default tunables.
func DefaultConfig() Config {
	return Config{
		MinQuestions:         minQuestionsFloor,
		MaxQuestions:         maxQuestionsCap,
		ConfidenceThreshold:  confidenceTarget,
		MinSamplesPerBand:    2,
		TargetSamplesPerBand: 4,
		RecentWindow:         20,
	}
}

// Engine runs process_step against a Vocabulary Store and Distractor
// Service, using a seedable PRNG for band selection and fallback sampling.
type Engine struct {
	store      *vocab.Store
	distractor *distractor.Service
	cfg        Config
	rng        *rand.Rand
}

func New(store *vocab.Store, ds *distractor.Service, cfg Config, rng *rand.Rand) *Engine {
	return &Engine{store: store, distractor: ds, cfg: cfg, rng: rng}
}

// StepResult is the outcome of ProcessStep: exactly one of Question or
// Report is populated, matching the engine's Continue/Complete variant.
type StepResult struct {
	Continuing bool
	Question   *models.Question
	Report     *models.TriMetricReport
	DebugInfo  map[string]interface{}
}

// ProcessStep advances the state machine. session is nil on the very first
// call (a new session is created); prior answer grades the question
// referenced by priorQuestion, if both are supplied.
func (e *Engine) ProcessStep(session *models.SurveySession, prior *models.PriorAnswer, priorQuestion *models.Question) (*models.SurveySession, *StepResult, error) {
	if session == nil {
		session = e.newSession()
	}
	if session.Status == models.SessionComplete {
		return session, nil, apperr.New(apperr.Conflict, "survey session already complete")
	}

	if prior != nil && priorQuestion != nil {
		e.grade(session, prior, priorQuestion)
	}

	if len(session.History) > 0 {
		session.Confidence = computeConfidence(session)
		session.EstimatedVocab = estimateVolume(session)
	}

	if e.shouldStop(session) {
		session.Status = models.SessionComplete
		report := &models.TriMetricReport{
			Volume:      session.EstimatedVocab,
			Reach:       reach(session),
			Density:     density(session),
			Methodology: methodologyText,
			History:     session.History,
		}
		return session, &StepResult{Continuing: false, Report: report}, nil
	}

	question, err := e.nextQuestion(session)
	if err != nil {
		return session, nil, err
	}

	return session, &StepResult{
		Continuing: true,
		Question:   question,
		DebugInfo: map[string]interface{}{
			"confidence":      session.Confidence,
			"estimated_vocab": session.EstimatedVocab,
			"question_count":  session.QuestionCount,
		},
	}, nil
}

const methodologyText = "Adaptive frequency-band sampling: bands are probed in order of estimated information gain until coverage, survey length, and confidence thresholds are jointly satisfied."

func (e *Engine) newSession() *models.SurveySession {
	return &models.SurveySession{
		SessionID: uuid.New(),
		Status:    models.SessionActive,
		LowBound:  1,
		HighBound: 8000,
		BandPerf:  map[int]models.BandStats{},
	}
}

// grade applies stateless correctness, band-performance counters,
// bound updates, and a full history entry.
func (e *Engine) grade(session *models.SurveySession, prior *models.PriorAnswer, q *models.Question) {
	correct := isCorrect(prior.SelectedOptionIDs)
	band := vocab.BandFor(q.Rank)

	stats := session.BandPerf[band]
	stats.Tested++
	if correct {
		stats.Correct++
	}
	session.BandPerf[band] = stats

	if correct {
		session.LowBound = maxInt(session.LowBound, q.Rank)
	} else {
		session.HighBound = minInt(session.HighBound, q.Rank)
	}

	var correctIDs []string
	for _, o := range q.Options {
		if o.IsCorrect {
			correctIDs = append(correctIDs, o.ID)
		}
	}

	session.QuestionCount++
	session.History = append(session.History, models.HistoryEntry{
		Rank:              q.Rank,
		Band:              band,
		Correct:           correct,
		TimeTakenSeconds:  prior.TimeTaken,
		Word:              q.Word,
		QuestionID:        q.QuestionID,
		QuestionNumber:    session.QuestionCount,
		SelectedOptionIDs: prior.SelectedOptionIDs,
		CorrectOptionIDs:  correctIDs,
		AllOptions:        q.Options,
	})

	session.RecentLemmas = append(session.RecentLemmas, lemmaOf(q.Word))
}

// lemmaOf normalizes a question's display word to the lemma form used for
// recent-word exclusion. Questions are always generated from a sense whose
// word already is the lemma, so this is currently an identity helper kept
// separate so callers never reach into sense internals to recompute it.
func lemmaOf(word string) string {
	return word
}

// shouldStop applies the three stopping rules. Never terminates before
// min_questions, regardless of the other rules.
func (e *Engine) shouldStop(session *models.SurveySession) bool {
	if session.QuestionCount < e.cfg.MinQuestions {
		return false
	}
	if session.QuestionCount >= e.cfg.MaxQuestions {
		return true
	}
	if session.Confidence >= e.cfg.ConfidenceThreshold {
		return true
	}
	allSampled := true
	for _, band := range vocab.Bands {
		if session.BandPerf[band].Tested < e.cfg.MinSamplesPerBand {
			allSampled = false
			break
		}
	}
	if allSampled && session.QuestionCount >= 16 {
		return true
	}
	return false
}
