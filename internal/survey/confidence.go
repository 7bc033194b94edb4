package survey

import (
	"sort"

	"lexicore/internal/models"
	"lexicore/internal/vocab"
)

// computeConfidence blends survey length, band coverage, answer
// monotonicity, and a bounds-derived stability proxy into one score.
func computeConfidence(session *models.SurveySession) float64 {
	q := minFloat(float64(session.QuestionCount)/30, 1)
	c := coverage(session)
	m := monotonicity(session.History)
	st := stabilityProxy(session)
	return 0.25*q + 0.30*c + 0.25*m + 0.20*st
}

func coverage(session *models.SurveySession) float64 {
	tested := 0
	for _, band := range vocab.Bands {
		if session.BandPerf[band].Tested >= 2 {
			tested++
		}
	}
	return float64(tested) / float64(len(vocab.Bands))
}

// monotonicity is the fraction of adjacent history pairs (sorted by rank)
// that are not "wrong-then-correct" — rising difficulty should not reward
// inversions. Fewer than two data points yields a neutral 0.5.
func monotonicity(history []models.HistoryEntry) float64 {
	if len(history) < 2 {
		return 0.5
	}
	sorted := make([]models.HistoryEntry, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })

	pairs := len(sorted) - 1
	good := 0
	for i := 0; i < pairs; i++ {
		if !(sorted[i].Correct == false && sorted[i+1].Correct == true) {
			good++
		}
	}
	return float64(good) / float64(pairs)
}

// stabilityProxy is explicitly a compatibility proxy, not a statistical
// stability estimate: it reads the width of the session's
// [low_bound, high_bound] window as a cheap stand-in.
func stabilityProxy(session *models.SurveySession) float64 {
	if len(session.History) < 5 {
		return 0.3
	}
	width := session.HighBound - session.LowBound
	switch {
	case width < 2000:
		return 0.9
	case width < 4000:
		return 0.6
	default:
		return 0.3
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
