package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lexicore/internal/models"
)

func sessionWithBandPerf(perf map[int]models.BandStats) *models.SurveySession {
	return &models.SurveySession{BandPerf: perf}
}

func TestEstimateVolume(t *testing.T) {
	t.Run("all bands perfect caps at 8000", func(t *testing.T) {
		perf := map[int]models.BandStats{}
		for _, b := range bandsAsc() {
			perf[b] = models.BandStats{Tested: 4, Correct: 4}
		}
		assert.Equal(t, 8000, estimateVolume(sessionWithBandPerf(perf)))
	})

	t.Run("all bands zero yields zero", func(t *testing.T) {
		perf := map[int]models.BandStats{}
		for _, b := range bandsAsc() {
			perf[b] = models.BandStats{Tested: 4, Correct: 0}
		}
		assert.Equal(t, 0, estimateVolume(sessionWithBandPerf(perf)))
	})

	t.Run("untested bands interpolate from the previous band's accuracy", func(t *testing.T) {
		perf := map[int]models.BandStats{1000: {Tested: 4, Correct: 4}}
		vol := estimateVolume(sessionWithBandPerf(perf))
		assert.Greater(t, vol, 1000, "interpolated bands beyond the first should still contribute")
	})
}

func TestReach(t *testing.T) {
	t.Run("picks the highest well-sampled band above the accuracy floor", func(t *testing.T) {
		perf := map[int]models.BandStats{
			1000: {Tested: 2, Correct: 2},
			2000: {Tested: 2, Correct: 1},
			3000: {Tested: 2, Correct: 0},
		}
		assert.Equal(t, 2000, reach(sessionWithBandPerf(perf)))
	})

	t.Run("falls back to any tested band when none clear the sample floor", func(t *testing.T) {
		perf := map[int]models.BandStats{1000: {Tested: 1, Correct: 1}}
		assert.Equal(t, 1000, reach(sessionWithBandPerf(perf)))
	})

	t.Run("no tested bands returns zero", func(t *testing.T) {
		assert.Equal(t, 0, reach(sessionWithBandPerf(map[int]models.BandStats{})))
	})
}

func TestDensity(t *testing.T) {
	t.Run("no correct answers yields zero", func(t *testing.T) {
		s := &models.SurveySession{History: []models.HistoryEntry{{Correct: false}}}
		assert.Equal(t, 0.0, density(s))
	})

	t.Run("all correct answers yields one", func(t *testing.T) {
		s := &models.SurveySession{History: []models.HistoryEntry{{Correct: true}, {Correct: true}}}
		assert.Equal(t, 1.0, density(s))
	})

	t.Run("mixed answers defers to monotonicity", func(t *testing.T) {
		s := &models.SurveySession{History: []models.HistoryEntry{
			{Rank: 1000, Correct: true},
			{Rank: 2000, Correct: false},
		}}
		assert.Equal(t, monotonicity(s.History), density(s))
	})
}
