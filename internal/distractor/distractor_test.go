package distractor

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicore/internal/models"
	"lexicore/internal/vocab"
)

func newService() *Service {
	return New(vocab.Fixture(), 0.7, rand.New(rand.NewSource(42)))
}

func TestBuildDeck(t *testing.T) {
	svc := newService()

	t.Run("unknown sense id fails", func(t *testing.T) {
		_, ok := svc.BuildDeck("nonexistent.n.01")
		assert.False(t, ok)
	})

	t.Run("deck has six options ending in unknown", func(t *testing.T) {
		deck, ok := svc.BuildDeck("quick.a.01")
		require.True(t, ok)
		assert.Len(t, deck.Options, deckSize)
		assert.Equal(t, models.OptionUnknown, deck.Options[deckSize-1].Type)
	})

	t.Run("exactly one option is correct for a single-sense target", func(t *testing.T) {
		deck, ok := svc.BuildDeck("ephemeral.a.01")
		require.True(t, ok)
		correct := 0
		for _, o := range deck.Options {
			if o.IsCorrect {
				correct++
			}
		}
		assert.Equal(t, 1, correct)
	})

	t.Run("multi-sense target surfaces sibling senses as additional correct targets", func(t *testing.T) {
		deck, ok := svc.BuildDeck("bank.n.01")
		require.True(t, ok)
		correct := 0
		for _, o := range deck.Options {
			if o.IsCorrect {
				correct++
			}
		}
		assert.Equal(t, 3, correct, "bank.n.01 plus its siblings bank.n.02 and bank.v.01")
	})

	t.Run("option text never duplicates within a deck", func(t *testing.T) {
		deck, ok := svc.BuildDeck("resilient.a.01")
		require.True(t, ok)
		seen := map[string]bool{}
		for _, o := range deck.Options {
			assert.False(t, seen[o.Text], "duplicate option text: %s", o.Text)
			seen[o.Text] = true
		}
	})

	t.Run("option type multiset is stable regardless of shuffle order", func(t *testing.T) {
		deck, ok := svc.BuildDeck("ephemeral.a.01")
		require.True(t, ok)

		var types []models.OptionType
		for _, o := range deck.Options {
			types = append(types, o.Type)
		}
		want := []models.OptionType{
			models.OptionTarget, models.OptionFiller, models.OptionFiller,
			models.OptionFiller, models.OptionFiller, models.OptionUnknown,
		}
		if diff := cmp.Diff(want, types, cmpopts.SortSlices(func(a, b models.OptionType) bool { return a < b })); diff != "" {
			t.Errorf("deck option types differ from expected multiset (-want +got):\n%s", diff)
		}
	})
}

func TestTrapValid(t *testing.T) {
	svc := newService()
	target, ok := svc.store.GetSense("quick.a.01")
	require.True(t, ok)

	t.Run("look-alike candidate beyond edit distance is rejected", func(t *testing.T) {
		cand := models.ResolvedConfusion{SenseID: "obstinate.a.01", Word: "obstinate", Rank: 7900, Reason: models.ReasonLookAlike}
		assert.False(t, svc.trapValid(*target, cand))
	})

	t.Run("rank distance within window without embeddings passes", func(t *testing.T) {
		cand := models.ResolvedConfusion{SenseID: "hasty.a.01", Word: "hasty", Rank: target.FrequencyRank + 300, Reason: models.ReasonSemantic}
		assert.True(t, svc.trapValid(*target, cand))
	})

	t.Run("rank distance too close is rejected", func(t *testing.T) {
		cand := models.ResolvedConfusion{SenseID: "hasty.a.01", Word: "hasty", Rank: target.FrequencyRank + 10, Reason: models.ReasonSemantic}
		assert.False(t, svc.trapValid(*target, cand))
	})
}

func TestGlossFor(t *testing.T) {
	t.Run("prefers Chinese definition", func(t *testing.T) {
		s := models.Sense{DefinitionZH: "快的", DefinitionEN: "fast"}
		assert.Equal(t, "快的", glossFor(s))
	})

	t.Run("falls back to English with a marker", func(t *testing.T) {
		s := models.Sense{DefinitionEN: "fast"}
		assert.Equal(t, "fast (英文定義，暫無中文)", glossFor(s))
	})

	t.Run("falls back to the no-gloss placeholder", func(t *testing.T) {
		s := models.Sense{}
		assert.Equal(t, noChineseGloss, glossFor(s))
	})
}
