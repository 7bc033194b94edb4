// Package distractor implements the Distractor Service: given a target
// sense, it builds a six-option deck (targets, traps, fillers, and a fixed
// "I don't know" choice) shared by the survey and by MCQ verification.
package distractor

import (
	"fmt"
	"math/rand"

	"github.com/agnivade/levenshtein"

	"lexicore/internal/models"
	"lexicore/internal/vocab"
)

const (
	deckSize        = 6
	minTrapRankDist = 100
	maxTrapRankDist = 2000
	fillerRadius    = 500
	// lookAlikeMaxEditDistance further restricts Look-alike traps beyond the
	// embedding/rank gate: a confusable spelling should actually look alike.
	lookAlikeMaxEditDistance = 3

	unknownOptionID   = "unknown_option"
	unknownOptionText = "我不知道"
	noChineseGloss    = "此單字尚未有中文定義"
	fillerPlaceholder = "（其他選項）"
)

// Service builds decks from a Vocabulary Store using a configurable
// embedding-similarity threshold and a seedable PRNG — the same instance is
// shared by the Survey Engine so tests can reproduce a whole session
// deterministically.
type Service struct {
	store               *vocab.Store
	similarityThreshold float64
	rng                 *rand.Rand
}

func New(store *vocab.Store, similarityThreshold float64, rng *rand.Rand) *Service {
	return &Service{store: store, similarityThreshold: similarityThreshold, rng: rng}
}

// Deck is the six-option result of BuildDeck, paired with its UI metadata.
type Deck struct {
	Options  []models.Option
	Metadata map[string]models.OptionMetadata
}

// BuildDeck composes a deck for targetSenseID following the slot table:
// one or more targets, zero to three traps, fillers padding up to five
// non-unknown options, and a trailing unknown option.
func (s *Service) BuildDeck(targetSenseID string) (*Deck, bool) {
	target, ok := s.store.GetSense(targetSenseID)
	if !ok {
		return nil, false
	}

	used := map[string]bool{} // by gloss text, duplicate-text guard
	meta := map[string]models.OptionMetadata{}
	var options []models.Option

	addOption := func(id, text string, typ models.OptionType, correct bool, m models.OptionMetadata) bool {
		if used[text] {
			return false
		}
		used[text] = true
		options = append(options, models.Option{ID: id, Text: text, Type: typ, IsCorrect: correct})
		meta[id] = m
		return true
	}

	// --- Targets ---
	targetText := glossFor(*target)
	primary := target.IsPrimarySense()
	addOption(fmt.Sprintf("target_%s", target.ID), targetText, models.OptionTarget, true, models.OptionMetadata{
		SenseID: strPtr(target.ID), DefinitionEN: strPtr(target.DefinitionEN),
		ExampleEN: strPtr(target.ExampleEN), ExampleZH: strPtr(target.ExampleZH), IsPrimary: boolPtr(primary),
	})

	for _, siblingID := range target.OtherSenses {
		if len(options) >= 5 {
			break
		}
		sibling, ok := s.store.GetSense(siblingID)
		if !ok || sibling.DefinitionZH == "" {
			continue
		}
		addOption(fmt.Sprintf("target_%s", sibling.ID), glossFor(*sibling), models.OptionTarget, true, models.OptionMetadata{
			SenseID: strPtr(sibling.ID), DefinitionEN: strPtr(sibling.DefinitionEN),
			ExampleEN: strPtr(sibling.ExampleEN), ExampleZH: strPtr(sibling.ExampleZH),
			IsPrimary: boolPtr(sibling.IsPrimarySense()),
		})
	}

	// --- Traps (0-3) ---
	trapBudget := 3
	candidates := s.store.Confused(target.ID)
	if len(candidates) == 0 {
		for _, rel := range s.store.Related(target.ID) {
			candidates = append(candidates, models.ResolvedConfusion{
				SenseID: rel.SenseID, Word: rel.Word, Gloss: rel.Gloss, POS: rel.POS, Rank: rel.Rank,
				Reason: models.ReasonSemantic,
			})
		}
	}
	for _, cand := range candidates {
		if trapBudget == 0 || len(options) >= 5 {
			break
		}
		if !s.trapValid(*target, cand) {
			continue
		}
		if ok := addOption(fmt.Sprintf("trap_%s", cand.SenseID), cand.Gloss, models.OptionTrap, false, models.OptionMetadata{
			SenseID: strPtr(cand.SenseID), Reason: reasonPtr(cand.Reason),
		}); ok {
			trapBudget--
		}
	}

	// --- Fillers (pad to 5 non-unknown options) ---
	exclude := map[string]bool{target.Lemma(): true}
	s.fillFillers(*target, &options, used, meta, exclude)

	// --- Unknown ---
	addOption(unknownOptionID, unknownOptionText, models.OptionUnknown, false, models.OptionMetadata{})

	// Shuffle the first five, unknown always last.
	head := options[:len(options)-1]
	s.rng.Shuffle(len(head), func(i, j int) { head[i], head[j] = head[j], head[i] })
	options = append(head, options[len(options)-1])

	return &Deck{Options: options, Metadata: meta}, true
}

// trapValid implements the trap-validity gate: embedding cosine
// similarity when both vectors exist, else a rank-distance fallback.
// Look-alike candidates are further required to actually resemble the
// target's spelling.
func (s *Service) trapValid(target models.Sense, cand models.ResolvedConfusion) bool {
	if cand.Reason == models.ReasonLookAlike {
		if levenshtein.ComputeDistance(target.Word, cand.Word) > lookAlikeMaxEditDistance {
			return false
		}
	}
	trapSense, ok := s.store.GetSense(cand.SenseID)
	if ok && len(target.Embedding) > 0 && len(trapSense.Embedding) > 0 {
		cos, valid := cosineSimilarity(target.Embedding, trapSense.Embedding)
		if valid {
			return cos < s.similarityThreshold
		}
	}
	dist := absInt(target.FrequencyRank - cand.Rank)
	return dist >= minTrapRankDist && dist <= maxTrapRankDist
}

// fillFillers draws random senses within the rank window around target,
// applying relaxing semantic-gate tiers until five non-unknown options
// are filled or the pool is exhausted, finally padding
// with a fixed placeholder as a last resort.
func (s *Service) fillFillers(target models.Sense, options *[]models.Option, used map[string]bool, meta map[string]models.OptionMetadata, exclude map[string]bool) {
	tiers := []struct{ lo, hi float64 }{
		{0.2, 0.7},
		{0.05, 0.85},
		{-1, 2}, // accept any within the rank window
	}

	low := target.FrequencyRank - fillerRadius
	if low < 1 {
		low = 1
	}
	high := target.FrequencyRank + fillerRadius

	for _, tier := range tiers {
		if len(*options) >= 5 {
			return
		}
		pool := s.store.SensesByRankRange(low, high, "", exclude, 0)
		s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		for _, cand := range pool {
			if len(*options) >= 5 {
				return
			}
			if len(cand.Word) < 3 {
				continue
			}
			if tier.lo >= 0 && len(target.Embedding) > 0 && len(cand.Embedding) > 0 {
				cos, valid := cosineSimilarity(target.Embedding, cand.Embedding)
				if valid && (cos < tier.lo || cos > tier.hi) {
					continue
				}
			}
			text := glossFor(cand)
			if used[text] {
				continue
			}
			used[text] = true
			id := fmt.Sprintf("filler_%s", cand.ID)
			*options = append(*options, models.Option{ID: id, Text: text, Type: models.OptionFiller, IsCorrect: false})
			meta[id] = models.OptionMetadata{SenseID: strPtr(cand.ID), DefinitionEN: strPtr(cand.DefinitionEN)}
		}
	}

	// Last-resort placeholder padding.
	for len(*options) < 5 {
		id := fmt.Sprintf("filler_placeholder_%d", len(*options))
		text := fmt.Sprintf("%s %d", fillerPlaceholder, len(*options))
		*options = append(*options, models.Option{ID: id, Text: text, Type: models.OptionFiller, IsCorrect: false})
		meta[id] = models.OptionMetadata{}
	}
}

// glossFor implements the target-gloss fallback rules.
func glossFor(sense models.Sense) string {
	if sense.DefinitionZH != "" {
		return sense.DefinitionZH
	}
	if sense.DefinitionEN != "" {
		return sense.DefinitionEN + " (英文定義，暫無中文)"
	}
	return noChineseGloss
}

func strPtr(s string) *string                            { return &s }
func boolPtr(b bool) *bool                                { return &b }
func reasonPtr(r models.ConfusionReason) *models.ConfusionReason { return &r }
