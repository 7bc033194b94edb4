package srs

import "lexicore/internal/models"

// DetectLeech applies the shared leech rule used by both algorithms.
// consecutiveCorrect is used as a running streak counter: a
// negative value encodes consecutive failures, so
// consecutiveCorrect <= -failureThreshold signals the card should be
// flagged. Once a card is leech it stays leech until an out-of-scope reset.
func DetectLeech(state models.CardState, failureThreshold int, easeThreshold float64) bool {
	if state.IsLeech {
		return true
	}
	if state.ConsecutiveCorrect <= -failureThreshold {
		return true
	}
	if state.AlgorithmType == models.AlgorithmSM2Plus && state.EaseFactor > 0 && state.EaseFactor < easeThreshold {
		return true
	}
	if state.AlgorithmType == models.AlgorithmFSRS && state.Stability > 0 && state.Stability < 0.5 {
		return true
	}
	if state.TotalReviews >= 5 {
		correctRate := float64(state.TotalCorrect) / float64(state.TotalReviews)
		if correctRate < 0.3 {
			return true
		}
	}
	return false
}

// CalculateMasteryLevel applies interval-based tiers for SM-2+,
// stability-based tiers for FSRS, each gated on a minimum
// consecutive-correct streak before advancing past "learning".
func CalculateMasteryLevel(state models.CardState) models.MasteryLevel {
	if DetectLeech(state, DefaultFailureThreshold, DefaultEaseThreshold) {
		return models.MasteryLeech
	}

	if state.AlgorithmType == models.AlgorithmFSRS {
		return masteryFromStability(state)
	}
	return masteryFromInterval(state)
}

func masteryFromInterval(state models.CardState) models.MasteryLevel {
	interval := state.CurrentIntervalDays
	switch {
	case interval >= 730:
		return gatedMastery(state, models.MasteryPermanent)
	case interval >= 180:
		return gatedMastery(state, models.MasteryMastered)
	default:
		if state.ConsecutiveCorrect >= 5 {
			return models.MasteryKnown
		}
		if state.ConsecutiveCorrect >= 3 {
			return models.MasteryFamiliar
		}
		return models.MasteryLearning
	}
}

func masteryFromStability(state models.CardState) models.MasteryLevel {
	stability := state.Stability
	switch {
	case stability >= 730:
		return gatedMastery(state, models.MasteryPermanent)
	case stability >= 180:
		return gatedMastery(state, models.MasteryMastered)
	case stability >= 30:
		return gatedMastery(state, models.MasteryKnown)
	case stability >= 5:
		return gatedMastery(state, models.MasteryFamiliar)
	default:
		return models.MasteryLearning
	}
}

// gatedMastery enforces the consecutive-correct gates required before a
// card may report familiar (>=3) or known-and-above (>=5), regardless of
// what the raw interval/stability threshold implies.
func gatedMastery(state models.CardState, proposed models.MasteryLevel) models.MasteryLevel {
	switch proposed {
	case models.MasteryFamiliar:
		if state.ConsecutiveCorrect >= 3 {
			return proposed
		}
		return models.MasteryLearning
	default:
		if state.ConsecutiveCorrect >= 5 {
			return proposed
		}
		if state.ConsecutiveCorrect >= 3 {
			return models.MasteryFamiliar
		}
		return models.MasteryLearning
	}
}
