package economy

// SparksRewards is the Sparks reward table: the flat amount granted per
// tracked action.
var SparksRewards = map[string]int64{
	"view_word":        1,
	"start_mcq":        2,
	"mcq_wrong":        1,
	"mcq_correct":      5,
	"mcq_fast_correct": 8,
	"review_start":     2,
	"review_pass":      3,
	"word_hollow":      5,
	"word_solid":       10,
	"daily_login":      10,
	"streak_7":         50,
	"streak_30":        200,
}

// EssenceRewards is the Essence reward table, granted only on correct
// answers.
var EssenceRewards = map[string]int64{
	"mcq_correct":      1,
	"mcq_fast_correct": 2,
	"review_pass":      1,
}

// MCQResult is the input to ProcessMCQResult.
type MCQResult struct {
	IsCorrect       bool
	IsFast          bool
	WordBecameSolid bool
	SenseID         string
}

// sparksSourceFor picks the Sparks source key for an MCQ outcome, preferring
// the fast-correct bonus over the plain-correct reward.
func sparksSourceFor(r MCQResult) string {
	switch {
	case r.IsCorrect && r.IsFast:
		return "mcq_fast_correct"
	case r.IsCorrect:
		return "mcq_correct"
	default:
		return "mcq_wrong"
	}
}
