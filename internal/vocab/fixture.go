package vocab

import "lexicore/internal/models"

// Fixture builds a small in-memory vocabulary Store spanning several
// frequency bands, for local development and tests when no real snapshot
// file is configured. It is a hand-written, idempotent set of reference
// rows, but the unit of seeding here is an in-memory Store rather than
// database rows, since the Vocabulary Store has no table of its own — it
// is a read-only view loaded once per process.
func Fixture() *Store {
	def := func(id, word, pos string, rank int, en, zh string) models.Sense {
		return models.Sense{
			ID:            id,
			Word:          word,
			POS:           pos,
			FrequencyRank: rank,
			DefinitionEN:  en,
			DefinitionZH:  zh,
			ExampleEN:     word + " is used in a sentence.",
			ExampleZH:     word + " 用於句子中。",
			Network:       models.Network{Hop1Count: 0, TotalXP: 0},
			Tier:          1,
		}
	}

	senses := map[string]models.Sense{
		"the.r.01":    def("the.r.01", "the", "r", 1, "definite article", "定冠詞"),
		"bank.n.01":   def("bank.n.01", "bank", "n", 120, "a financial institution", "銀行"),
		"bank.n.02":   def("bank.n.02", "bank", "n", 850, "the land alongside a river", "河岸"),
		"bank.v.01":   def("bank.v.01", "bank", "v", 1400, "to rely on", "依賴"),
		"brisk.a.01":  def("brisk.a.01", "brisk", "a", 3200, "quick and energetic", "輕快的"),
		"quick.a.01":  def("quick.a.01", "quick", "a", 450, "fast", "快的"),
		"hasty.a.01":  def("hasty.a.01", "hasty", "a", 4800, "done with excessive speed", "匆忙的"),
		"ephemeral.a.01": def("ephemeral.a.01", "ephemeral", "a", 7600, "lasting for a very short time", "短暫的"),
		"fleeting.a.01":  def("fleeting.a.01", "fleeting", "a", 6900, "passing swiftly", "轉瞬即逝的"),
		"resilient.a.01": def("resilient.a.01", "resilient", "a", 5400, "able to recover quickly", "有復原力的"),
		"obstinate.a.01": def("obstinate.a.01", "obstinate", "a", 7900, "stubbornly refusing to change", "頑固的"),
	}

	bank1 := senses["bank.n.01"]
	bank1.Connections.Related = []string{"bank.n.02"}
	bank1.OtherSenses = []string{"bank.n.02", "bank.v.01"}
	bank1.Connections.Confused = []models.ConfusedWith{
		{SenseID: "bank.n.02", Reason: models.ReasonSemantic},
	}
	senses["bank.n.01"] = bank1

	bank2 := senses["bank.n.02"]
	bank2.OtherSenses = []string{"bank.n.01", "bank.v.01"}
	senses["bank.n.02"] = bank2

	bankv := senses["bank.v.01"]
	bankv.OtherSenses = []string{"bank.n.01", "bank.n.02"}
	senses["bank.v.01"] = bankv

	quick := senses["quick.a.01"]
	quick.Connections.Confused = []models.ConfusedWith{
		{SenseID: "brisk.a.01", Reason: models.ReasonSemantic},
		{SenseID: "hasty.a.01", Reason: models.ReasonLookAlike},
	}
	senses["quick.a.01"] = quick

	fleeting := senses["fleeting.a.01"]
	fleeting.Connections.Related = []string{"ephemeral.a.01"}
	senses["fleeting.a.01"] = fleeting

	return NewFromSenses(senses)
}
