package survey

import (
	"math/rand"

	"lexicore/internal/models"
	"lexicore/internal/vocab"
)

// selectNextBand scores every band by sample need, proximity to the
// current volume estimate's boundary band, and a penalty for
// over-sampling, then samples one of the top three proportionally to
// score.
func selectNextBand(rng *rand.Rand, session *models.SurveySession) int {
	currentVolume := estimateVolume(session)
	boundary := boundaryBand(currentVolume)

	type scored struct {
		band  int
		score float64
	}
	scores := make([]scored, 0, len(vocab.Bands))
	for _, band := range vocab.Bands {
		stats := session.BandPerf[band]

		sampleNeed := 0.2
		switch {
		case stats.Tested < 2:
			sampleNeed = 1.0
		case stats.Tested < 4:
			sampleNeed = 0.6
		}

		proximity := maxFloat(0, 1-float64(absInt(band-boundary))/4000)
		penalty := minFloat(float64(stats.Tested)/8, 0.4)

		score := maxFloat(0.01, 0.35*sampleNeed+0.45*proximity-0.20*penalty)
		if band == 1000 || band == 7000 || band == 8000 {
			score += 0.05
		}
		scores = append(scores, scored{band, score})
	}

	// Top three by score.
	top := append([]scored(nil), scores...)
	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			if top[j].score > top[i].score {
				top[i], top[j] = top[j], top[i]
			}
		}
	}
	if len(top) > 3 {
		top = top[:3]
	}

	total := 0.0
	for _, t := range top {
		total += t.score
	}
	pick := rng.Float64() * total
	cum := 0.0
	for _, t := range top {
		cum += t.score
		if pick <= cum {
			return t.band
		}
	}
	return top[0].band
}

// boundaryBand returns the smallest band such that currentVolume <= band.
func boundaryBand(currentVolume int) int {
	for _, band := range vocab.Bands {
		if currentVolume <= band {
			return band
		}
	}
	return vocab.Bands[len(vocab.Bands)-1]
}

// selectRankInBand picks a uniform random rank within band's bounds, with a
// margin narrowing the window to avoid the band's extreme edges.
func selectRankInBand(rng *rand.Rand, band int) int {
	minRank := bandMinRank(band)
	maxRank := band
	margin := minInt(50, (maxRank-minRank)/4)
	lo := minRank + margin
	hi := maxRank - margin/2
	if hi < lo {
		hi = lo
	}
	return lo + rng.Intn(hi-lo+1)
}

func bandMinRank(band int) int {
	prev := 0
	for _, b := range vocab.Bands {
		if b == band {
			if prev == 0 {
				return 51
			}
			return prev + 1
		}
		prev = b
	}
	return 51
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
