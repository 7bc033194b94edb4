package survey

import "lexicore/internal/models"

// estimateVolume walks bands ascending, taking the measured accuracy
// where tested, interpolating untested bands by stepping down 0.15 from
// the previous band's accuracy (floored at 0), and summing accuracy*1000
// across all eight bands. This is the Volume metric.
func estimateVolume(session *models.SurveySession) int {
	prevAccuracy := 0.0
	total := 0.0
	for _, band := range bandsAsc() {
		stats := session.BandPerf[band]
		var accuracy float64
		if stats.Tested > 0 {
			accuracy = float64(stats.Correct) / float64(stats.Tested)
		} else {
			accuracy = maxFloat(0, prevAccuracy-0.15)
		}
		total += accuracy * 1000
		prevAccuracy = accuracy
	}
	if total < 0 {
		total = 0
	}
	if total > 8000 {
		total = 8000
	}
	return int(total)
}

// reach returns the highest band with tested>=2 and accuracy>=0.5; it
// falls back to the highest band with any tested data at accuracy>=0.5,
// and further back to the lowest tested band.
func reach(session *models.SurveySession) int {
	bands := bandsAsc()

	best := -1
	for i := len(bands) - 1; i >= 0; i-- {
		band := bands[i]
		stats := session.BandPerf[band]
		if stats.Tested >= 2 && accuracyOf(stats) >= 0.5 {
			best = band
			break
		}
	}
	if best != -1 {
		return best
	}

	for i := len(bands) - 1; i >= 0; i-- {
		band := bands[i]
		stats := session.BandPerf[band]
		if stats.Tested > 0 && accuracyOf(stats) >= 0.5 {
			return band
		}
	}

	for _, band := range bands {
		if session.BandPerf[band].Tested > 0 {
			return band
		}
	}
	return 0
}

// density returns 0 with no correct answers, 1 if all correct,
// otherwise the session's monotonicity figure.
func density(session *models.SurveySession) float64 {
	correct := 0
	for _, h := range session.History {
		if h.Correct {
			correct++
		}
	}
	if correct == 0 {
		return 0
	}
	if correct == len(session.History) {
		return 1
	}
	return monotonicity(session.History)
}

func accuracyOf(s models.BandStats) float64 {
	if s.Tested == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Tested)
}

func bandsAsc() []int {
	return []int{1000, 2000, 3000, 4000, 5000, 6000, 7000, 8000}
}
