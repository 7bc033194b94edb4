package vocab

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicore/internal/models"
)

func TestBandFor(t *testing.T) {
	t.Run("rank at a band boundary maps to that band", func(t *testing.T) {
		assert.Equal(t, 1000, BandFor(1000))
		assert.Equal(t, 2000, BandFor(1001))
	})

	t.Run("rank above the highest band clamps to it", func(t *testing.T) {
		assert.Equal(t, Bands[len(Bands)-1], BandFor(999999))
	})

	t.Run("rank 1 falls in the lowest band", func(t *testing.T) {
		assert.Equal(t, 1000, BandFor(1))
	})
}

func TestStoreGetSense(t *testing.T) {
	store := Fixture()

	t.Run("known id resolves", func(t *testing.T) {
		sense, ok := store.GetSense("bank.n.01")
		require.True(t, ok)
		assert.Equal(t, "bank", sense.Word)
	})

	t.Run("unknown id misses without a graph fallback", func(t *testing.T) {
		_, ok := store.GetSense("nonexistent.n.01")
		assert.False(t, ok)
	})

	t.Run("graph fallback is consulted on miss", func(t *testing.T) {
		fallback := stubGraph{
			senses: map[string]models.Sense{
				"ghost.n.01": {ID: "ghost.n.01", Word: "ghost", FrequencyRank: 100, DefinitionZH: "幽靈"},
			},
		}
		withFallback := Fixture().WithGraphFallback(fallback)
		sense, ok := withFallback.GetSense("ghost.n.01")
		require.True(t, ok)
		assert.Equal(t, "ghost", sense.Word)
	})
}

func TestSensesForLemma(t *testing.T) {
	store := Fixture()

	senses := store.SensesForLemma("bank")
	assert.Len(t, senses, 3, "bank has noun x2 and verb x1 senses in the fixture")
}

func TestRandomSensesInBand(t *testing.T) {
	store := Fixture()
	rng := rand.New(rand.NewSource(1))

	t.Run("never returns more than requested", func(t *testing.T) {
		out := store.RandomSensesInBand(rng, 1000, 5, nil, "")
		assert.LessOrEqual(t, len(out), 5)
	})

	t.Run("excludes ids in the exclude set", func(t *testing.T) {
		out := store.RandomSensesInBand(rng, 8000, 20, map[string]bool{"obstinate.a.01": true}, "")
		for _, s := range out {
			assert.NotEqual(t, "obstinate.a.01", s.ID)
		}
	})

	t.Run("filters by part of speech", func(t *testing.T) {
		out := store.RandomSensesInBand(rng, 1000, 20, nil, "a")
		for _, s := range out {
			assert.Equal(t, "a", s.POS)
		}
	})
}

func TestSensesByRankRange(t *testing.T) {
	store := Fixture()

	out := store.SensesByRankRange(100, 1000, "", nil, 0)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].FrequencyRank, out[i].FrequencyRank, "results must be rank-ascending")
	}
	for _, s := range out {
		assert.GreaterOrEqual(t, s.FrequencyRank, 100)
		assert.LessOrEqual(t, s.FrequencyRank, 1000)
	}
}

func TestConfusedRelatedOpposite(t *testing.T) {
	store := Fixture()

	t.Run("confused resolves to full records", func(t *testing.T) {
		confused := store.Confused("quick.a.01")
		require.Len(t, confused, 2)
		ids := []string{confused[0].SenseID, confused[1].SenseID}
		assert.Contains(t, ids, "brisk.a.01")
		assert.Contains(t, ids, "hasty.a.01")
	})

	t.Run("related resolves to full records", func(t *testing.T) {
		related := store.Related("fleeting.a.01")
		require.Len(t, related, 1)
		assert.Equal(t, "ephemeral.a.01", related[0].SenseID)
	})

	t.Run("opposite of a sense with no opposite edges is empty", func(t *testing.T) {
		assert.Empty(t, store.Opposite("quick.a.01"))
	})

	t.Run("unknown sense resolves to nothing", func(t *testing.T) {
		assert.Nil(t, store.Confused("nonexistent.n.01"))
	})
}

type stubGraph struct {
	senses map[string]models.Sense
}

func (g stubGraph) GetSense(senseID string) (*models.Sense, bool, error) {
	if s, ok := g.senses[senseID]; ok {
		return &s, true, nil
	}
	return nil, false, nil
}
