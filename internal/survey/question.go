package survey

import (
	"github.com/google/uuid"

	"lexicore/internal/apperr"
	"lexicore/internal/models"
)

const maxWideningAttempts = 3

// nextQuestion picks a band and target rank, fetches one sense excluding
// recently seen lemmas, and widens the search radius (up to three
// attempts) without ever dropping the exclusion list before falling back
// to a wider window that still honors exclusions.
func (e *Engine) nextQuestion(session *models.SurveySession) (*models.Question, error) {
	band := selectNextBand(e.rng, session)
	targetRank := selectRankInBand(e.rng, band)

	recentWindow := e.cfg.RecentWindow
	if targetRank >= 7000 {
		recentWindow *= 2
	}
	exclude := recentLemmaSet(session.RecentLemmas, recentWindow)

	radius := 50
	var sense *models.Sense
	for attempt := 0; attempt < maxWideningAttempts; attempt++ {
		candidates := e.store.SensesByRankRange(maxIntOrOne(targetRank-radius), targetRank+radius, "", exclude, 20)
		if len(candidates) > 0 {
			picked := candidates[e.rng.Intn(len(candidates))]
			sense = &picked
			break
		}
		radius *= 2
	}

	if sense == nil {
		// Fall back to a much wider window, still honoring exclusions —
		// dropping the exclusion list is a known source of duplicate
		// headwords.
		candidates := e.store.SensesByRankRange(1, 8000, "", exclude, 40)
		if len(candidates) > 0 {
			picked := candidates[e.rng.Intn(len(candidates))]
			sense = &picked
		}
	}

	if sense == nil {
		return nil, apperr.New(apperr.NoCandidate, "no candidate sense available after exhausting search radius")
	}

	deck, ok := e.distractor.BuildDeck(sense.ID)
	if !ok {
		return nil, apperr.New(apperr.NoCandidate, "distractor service could not build a deck for the selected sense")
	}

	return &models.Question{
		QuestionID:       uuid.New(),
		Word:             sense.Word,
		Rank:             sense.FrequencyRank,
		Options:          deck.Options,
		TimeLimitSeconds: questionTimeLimitSeconds,
		Metadata:         deck.Metadata,
	}, nil
}

func recentLemmaSet(recent []string, window int) map[string]bool {
	set := map[string]bool{}
	start := 0
	if len(recent) > window {
		start = len(recent) - window
	}
	for _, lemma := range recent[start:] {
		set[lemma] = true
	}
	return set
}

func maxIntOrOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
