// Package models holds the wire and persistence DTOs shared across the
// core's components.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONB is a custom type for PostgreSQL JSONB fields — domain-agnostic
// plumbing shared by every table that stores semi-structured state.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal(value.([]byte), j)
	}
	return json.Unmarshal(bytes, j)
}

// ---------------------------------------------------------------------------
// Vocabulary entities
// ---------------------------------------------------------------------------

// ConfusionReason is why two headwords are flagged as confusable.
type ConfusionReason string

const (
	ReasonLookAlike ConfusionReason = "Look-alike"
	ReasonSoundAlike ConfusionReason = "Sound-alike"
	ReasonSemantic   ConfusionReason = "Semantic"
)

// ConfusedWith is a directed edge from a sense's headword to another
// headword, with the reason it was flagged confusable.
type ConfusedWith struct {
	SenseID string          `json:"sense_id"`
	Reason  ConfusionReason `json:"reason"`
}

// Connections groups a sense's related/opposite/confused relationships.
type Connections struct {
	Related  []string       `json:"related"`
	Opposite []string       `json:"opposite"`
	Confused []ConfusedWith `json:"confused"`
}

// Network is the denormalized per-hop neighbor summary attached to every
// sense.
type Network struct {
	Hop1Count int     `json:"hop_1_count"`
	TotalXP   float64 `json:"total_xp"`
}

// Sense is a single meaning of a headword, identified by lemma.pos.nn.
type Sense struct {
	ID                    string      `json:"id"`
	Word                  string      `json:"word"`
	POS                   string      `json:"pos"`
	FrequencyRank         int         `json:"frequency_rank"`
	CEFR                  *string     `json:"cefr,omitempty"`
	MoELevel              *string     `json:"moe_level,omitempty"`
	UsageRatio            *float64    `json:"usage_ratio,omitempty"`
	DefinitionEN          string      `json:"definition_en"`
	DefinitionZH          string      `json:"definition_zh"`
	DefinitionZHExplained *string     `json:"definition_zh_explanation,omitempty"`
	ExampleEN             string      `json:"example_en"`
	ExampleZH             string      `json:"example_zh"`
	ExampleZHExplained    *string     `json:"example_zh_explanation,omitempty"`
	Embedding             []float64   `json:"embedding,omitempty"`
	Connections           Connections `json:"connections"`
	OtherSenses           []string    `json:"other_senses"`
	Network               Network     `json:"network"`
	Tier                  int         `json:"tier"`
}

// Lemma returns the headword component of the dotted sense id.
func (s Sense) Lemma() string {
	return lemmaOf(s.ID)
}

func lemmaOf(senseID string) string {
	// sense ids are "lemma.pos.nn"; the lemma may itself contain no dots
	// (multi-word headwords use underscores upstream), so splitting on the
	// last two dot-separated segments is sufficient and matches how the
	// vocabulary store rebuilds its lemma index.
	lastDot := -1
	dots := 0
	for i := len(senseID) - 1; i >= 0; i-- {
		if senseID[i] == '.' {
			dots++
			if dots == 2 {
				lastDot = i
				break
			}
		}
	}
	if lastDot == -1 {
		return senseID
	}
	return senseID[:lastDot]
}

// IsPrimarySense reports whether this sense is the first sense of its
// headword (sense_id ends in ".01").
func (s Sense) IsPrimarySense() bool {
	return len(s.ID) >= 3 && s.ID[len(s.ID)-3:] == ".01"
}

// ResolvedConfusion is a confused_with edge resolved to the full record the
// Distractor Service needs.
type ResolvedConfusion struct {
	SenseID string          `json:"sense_id"`
	Word    string          `json:"word"`
	Gloss   string          `json:"gloss"`
	POS     string          `json:"pos"`
	Rank    int             `json:"rank"`
	Reason  ConfusionReason `json:"reason"`
}

// ResolvedRelation is the shape `related`/`opposite` resolve to.
type ResolvedRelation struct {
	SenseID string `json:"sense_id"`
	Word    string `json:"word"`
	Gloss   string `json:"gloss"`
	POS     string `json:"pos"`
	Rank    int    `json:"rank"`
}

// ---------------------------------------------------------------------------
// Survey session
// ---------------------------------------------------------------------------

type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionComplete SessionStatus = "complete"
)

// OptionType is the role an option plays, encoded at the wire boundary as an
// id prefix, so grading never needs a database round trip.
type OptionType string

const (
	OptionTarget  OptionType = "target"
	OptionTrap    OptionType = "trap"
	OptionFiller  OptionType = "filler"
	OptionUnknown OptionType = "unknown"
)

// Option is one of the six choices in a Question.
type Option struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Type      OptionType `json:"type"`
	IsCorrect bool       `json:"is_correct"`
}

// OptionMetadata is returned alongside a deck for UI display without
// altering the option payload.
type OptionMetadata struct {
	SenseID      *string          `json:"sense_id,omitempty"`
	DefinitionEN *string          `json:"definition_en,omitempty"`
	ExampleEN    *string          `json:"example_en,omitempty"`
	ExampleZH    *string          `json:"example_zh,omitempty"`
	IsPrimary    *bool            `json:"is_primary_sense,omitempty"`
	Reason       *ConfusionReason `json:"reason,omitempty"`
}

// Question is one adaptive-survey item.
type Question struct {
	QuestionID       uuid.UUID              `json:"question_id"`
	Word             string                 `json:"word"`
	Rank             int                    `json:"rank"`
	Options          []Option               `json:"options"`
	TimeLimitSeconds int                    `json:"time_limit_seconds"`
	Metadata         map[string]OptionMetadata `json:"option_metadata,omitempty"`
}

// HistoryEntry records one answered question.
type HistoryEntry struct {
	Rank              int       `json:"rank"`
	Band              int       `json:"band"`
	Correct           bool      `json:"correct"`
	TimeTakenSeconds  float64   `json:"time_taken_seconds"`
	Word              string    `json:"word"`
	QuestionID        uuid.UUID `json:"question_id"`
	QuestionNumber    int       `json:"question_number"`
	SelectedOptionIDs []string  `json:"selected_option_ids"`
	CorrectOptionIDs  []string  `json:"correct_option_ids"`
	AllOptions        []Option  `json:"all_options"`
}

// BandStats is the (tested, correct) counter pair for one frequency band.
type BandStats struct {
	Tested  int `json:"tested"`
	Correct int `json:"correct"`
}

// SurveySession is the adaptive-survey state machine's persisted state.
type SurveySession struct {
	SessionID      uuid.UUID         `json:"session_id"`
	Status         SessionStatus     `json:"status"`
	CurrentRank    int               `json:"current_rank"`
	LowBound       int               `json:"low_bound"`
	HighBound      int               `json:"high_bound"`
	History        []HistoryEntry    `json:"history"`
	BandPerf       map[int]BandStats `json:"band_performance"`
	Confidence     float64           `json:"confidence"`
	EstimatedVocab int               `json:"estimated_vocab"`
	QuestionCount  int               `json:"question_count"`
	RecentLemmas   []string          `json:"recent_lemmas"`
}

// PriorAnswer is the client's submission for the previous question.
type PriorAnswer struct {
	QuestionID        uuid.UUID `json:"question_id"`
	SelectedOptionIDs []string  `json:"selected_option_ids"`
	TimeTaken         float64   `json:"time_taken"`
}

// TriMetricReport is the survey's final output.
type TriMetricReport struct {
	Volume      int            `json:"volume"`
	Reach       int            `json:"reach"`
	Density     float64        `json:"density"`
	Methodology string         `json:"methodology"`
	History     []HistoryEntry `json:"history"`
}

// ---------------------------------------------------------------------------
// Spaced-repetition card
// ---------------------------------------------------------------------------

type AlgorithmType string

const (
	AlgorithmSM2Plus AlgorithmType = "sm2_plus"
	AlgorithmFSRS    AlgorithmType = "fsrs"
)

type MasteryLevel string

const (
	MasteryLearning  MasteryLevel = "learning"
	MasteryFamiliar  MasteryLevel = "familiar"
	MasteryKnown     MasteryLevel = "known"
	MasteryMastered  MasteryLevel = "mastered"
	MasteryPermanent MasteryLevel = "permanent"
	MasteryLeech     MasteryLevel = "leech"
)

// Rating is the user's self-assessed recall quality for a review.
type Rating int

const (
	RatingAgain   Rating = 0
	RatingHard    Rating = 1
	RatingGood    Rating = 2
	RatingEasy    Rating = 3
	RatingPerfect Rating = 4
)

// FSRSState is the opaque blob serialized onto CardState for FSRS cards.
type FSRSState struct {
	Stability     float64   `json:"stability"`
	Difficulty    float64   `json:"difficulty"`
	Reps          int       `json:"reps"`
	Lapses        int       `json:"lapses"`
	ElapsedDays   float64   `json:"elapsed_days"`
	ScheduledDays float64   `json:"scheduled_days"`
	State         int       `json:"state"`
	Due           time.Time `json:"due"`
	LastReview    time.Time `json:"last_review"`
}

// CardState is a user's schedule for one learning point.
type CardState struct {
	UserID             uuid.UUID     `json:"user_id"`
	LearningProgressID uuid.UUID     `json:"learning_progress_id"`
	LearningPointID    string        `json:"learning_point_id"`
	AlgorithmType      AlgorithmType `json:"algorithm_type"`

	CurrentIntervalDays int        `json:"current_interval_days"`
	ScheduledDate       time.Time  `json:"scheduled_date"`
	LastReviewDate      *time.Time `json:"last_review_date,omitempty"`

	TotalReviews      int          `json:"total_reviews"`
	TotalCorrect      int          `json:"total_correct"`
	MasteryLevel      MasteryLevel `json:"mastery_level"`
	IsLeech           bool         `json:"is_leech"`
	AvgResponseTimeMs float64      `json:"avg_response_time_ms"`
	ConsecutiveCorrect int         `json:"consecutive_correct"`

	// SM-2+
	EaseFactor float64 `json:"ease_factor,omitempty"`

	// FSRS
	Stability            float64    `json:"stability,omitempty"`
	Difficulty           float64    `json:"difficulty,omitempty"`
	RetentionProbability float64    `json:"retention_probability,omitempty"`
	FSRSState            *FSRSState `json:"fsrs_state,omitempty"`
}

// ReviewEvent is the input to a scheduling algorithm's ProcessReview.
type ReviewEvent struct {
	CardStateBefore CardState
	Rating          Rating
	ResponseTimeMs  *int64
	ReviewDate       time.Time
}

// ReviewResult is a scheduling algorithm's output.
type ReviewResult struct {
	CardStateAfter     CardState     `json:"card_state_after"`
	NextReviewDate     time.Time     `json:"next_review_date"`
	NextIntervalDays   int           `json:"next_interval_days"`
	WasCorrect         bool          `json:"was_correct"`
	RetentionPredicted float64       `json:"retention_predicted"`
	MasteryChanged     bool          `json:"mastery_changed"`
	NewMasteryLevel    *MasteryLevel `json:"new_mastery_level,omitempty"`
	BecameLeech        bool          `json:"became_leech"`
	AlgorithmType      AlgorithmType `json:"algorithm_type"`
	DebugInfo          map[string]interface{} `json:"debug_info,omitempty"`
}

// ---------------------------------------------------------------------------
// Economy
// ---------------------------------------------------------------------------

type CurrencyType string

const (
	CurrencySparks  CurrencyType = "sparks"
	CurrencyEssence CurrencyType = "essence"
	CurrencyEnergy  CurrencyType = "energy"
	CurrencyBlocks  CurrencyType = "blocks"
)

// UserXP is a user's full currency/level snapshot.
type UserXP struct {
	UserID            uuid.UUID `json:"user_id"`
	Sparks            int64     `json:"sparks"`
	Essence           int64     `json:"essence"`
	Energy            int64     `json:"energy"`
	Blocks            int64     `json:"blocks"`
	TotalXP           int64     `json:"total_xp"`
	CurrentLevel      int       `json:"current_level"`
	XPToNextLevel     int64     `json:"xp_to_next_level"`
	XPInCurrentLevel  int64     `json:"xp_in_current_level"`
}

// CurrencyTransaction is one append-only ledger row.
type CurrencyTransaction struct {
	ID            int64        `json:"id"`
	UserID        uuid.UUID    `json:"user_id"`
	CurrencyType  CurrencyType `json:"currency_type"`
	Amount        int64        `json:"amount"`
	BalanceAfter  int64        `json:"balance_after"`
	Source        string       `json:"source"`
	SourceID      *uuid.UUID   `json:"source_id,omitempty"`
	Description   *string      `json:"description,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Achievement is an append-only event row emitted alongside an economy
// grant that crosses a milestone (currently just level-ups). Downstream
// leaderboard/notification delivery is out of scope; this is only the
// emission side.
type Achievement struct {
	ID              int64      `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	AchievementType string     `json:"achievement_type"`
	Level           *int       `json:"level,omitempty"`
	SourceID        *uuid.UUID `json:"source_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// AssignmentReason is why a user was placed on a given algorithm.
type AssignmentReason string

const (
	ReasonRandom    AssignmentReason = "random"
	ReasonManual    AssignmentReason = "manual"
	ReasonMigration AssignmentReason = "migration"
	ReasonOptIn     AssignmentReason = "opt_in"
)

// AlgorithmAssignment is a user's scheduling-algorithm A/B assignment.
type AlgorithmAssignment struct {
	UserID           uuid.UUID        `json:"user_id"`
	Algorithm        AlgorithmType    `json:"algorithm"`
	AssignmentReason AssignmentReason `json:"assignment_reason"`
	CanMigrateToFSRS bool             `json:"can_migrate_to_fsrs"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
