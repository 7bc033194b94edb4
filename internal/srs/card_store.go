package srs

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"lexicore/internal/apperr"
	"lexicore/internal/database"
	"lexicore/internal/models"
)

// CardStore persists CardState rows in verification_schedule, serializing
// per-card reads/writes under a row lock.
type CardStore struct {
	db *database.DB
}

func NewCardStore(db *database.DB) *CardStore {
	return &CardStore{db: db}
}

// WithCardLock runs fn inside a transaction holding an advisory lock keyed
// on the (user_id, learning_progress_id) pair plus FOR UPDATE on the card's
// row, if one exists, serializing concurrent reviews for that pair even
// before the card has been initialized.
func (c *CardStore) WithCardLock(ctx context.Context, userID, progressID uuid.UUID, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "begin card transaction", err)
	}
	defer tx.Rollback()

	lockKey := int64(binary.BigEndian.Uint64(userID[:8]) ^ binary.BigEndian.Uint64(progressID[:8]))
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
		return apperr.Wrap(apperr.Internal, "lock card", err)
	}

	if _, err := tx.ExecContext(ctx, `
		SELECT id FROM verification_schedule
		WHERE user_id = $1 AND learning_progress_id = $2
		FOR UPDATE
	`, userID, progressID); err != nil && err != sql.ErrNoRows {
		return apperr.Wrap(apperr.Internal, "lock card row", err)
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "commit card transaction", err)
	}
	return nil
}

func (c *CardStore) LoadTx(ctx context.Context, tx *sql.Tx, userID, progressID uuid.UUID) (models.CardState, error) {
	var state models.CardState
	var algorithmType, masteryLevel string
	var lastReview sql.NullTime
	var easeFactor, stability, difficulty, retention, avgRT sql.NullFloat64
	var fsrsBlob []byte

	err := tx.QueryRowContext(ctx, `
		SELECT learning_point_id, algorithm_type, current_interval, scheduled_date, last_review_date,
		       ease_factor, consecutive_correct, stability, difficulty, retention_probability, fsrs_state,
		       mastery_level, is_leech, total_reviews, total_correct, avg_response_time_ms
		FROM verification_schedule
		WHERE user_id = $1 AND learning_progress_id = $2
	`, userID, progressID).Scan(
		&state.LearningPointID, &algorithmType, &state.CurrentIntervalDays, &state.ScheduledDate, &lastReview,
		&easeFactor, &state.ConsecutiveCorrect, &stability, &difficulty, &retention, &fsrsBlob,
		&masteryLevel, &state.IsLeech, &state.TotalReviews, &state.TotalCorrect, &avgRT,
	)
	if err == sql.ErrNoRows {
		return models.CardState{}, apperr.New(apperr.NotFound, "no card for user/learning point")
	}
	if err != nil {
		return models.CardState{}, apperr.Wrap(apperr.Internal, "load card state", err)
	}

	state.UserID = userID
	state.LearningProgressID = progressID
	state.AlgorithmType = models.AlgorithmType(algorithmType)
	state.MasteryLevel = models.MasteryLevel(masteryLevel)
	if lastReview.Valid {
		t := lastReview.Time
		state.LastReviewDate = &t
	}
	state.EaseFactor = easeFactor.Float64
	state.Stability = stability.Float64
	state.Difficulty = difficulty.Float64
	state.RetentionProbability = retention.Float64
	state.AvgResponseTimeMs = avgRT.Float64
	if len(fsrsBlob) > 0 {
		var fs models.FSRSState
		if err := json.Unmarshal(fsrsBlob, &fs); err == nil {
			state.FSRSState = &fs
		}
	}
	return state, nil
}

func (c *CardStore) SaveTx(ctx context.Context, tx *sql.Tx, state models.CardState) error {
	var fsrsBlob []byte
	if state.FSRSState != nil {
		blob, err := json.Marshal(state.FSRSState)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "encode fsrs_state", err)
		}
		fsrsBlob = blob
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO verification_schedule (
			user_id, learning_progress_id, learning_point_id, algorithm_type,
			current_interval, scheduled_date, last_review_date,
			ease_factor, consecutive_correct, stability, difficulty, retention_probability, fsrs_state,
			mastery_level, is_leech, total_reviews, total_correct, avg_response_time_ms, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,NOW())
		ON CONFLICT (user_id, learning_progress_id) DO UPDATE SET
			algorithm_type = EXCLUDED.algorithm_type,
			current_interval = EXCLUDED.current_interval,
			scheduled_date = EXCLUDED.scheduled_date,
			last_review_date = EXCLUDED.last_review_date,
			ease_factor = EXCLUDED.ease_factor,
			consecutive_correct = EXCLUDED.consecutive_correct,
			stability = EXCLUDED.stability,
			difficulty = EXCLUDED.difficulty,
			retention_probability = EXCLUDED.retention_probability,
			fsrs_state = EXCLUDED.fsrs_state,
			mastery_level = EXCLUDED.mastery_level,
			is_leech = EXCLUDED.is_leech,
			total_reviews = EXCLUDED.total_reviews,
			total_correct = EXCLUDED.total_correct,
			avg_response_time_ms = EXCLUDED.avg_response_time_ms,
			updated_at = NOW()
	`,
		state.UserID, state.LearningProgressID, state.LearningPointID, string(state.AlgorithmType),
		state.CurrentIntervalDays, state.ScheduledDate, state.LastReviewDate,
		state.EaseFactor, state.ConsecutiveCorrect, state.Stability, state.Difficulty, state.RetentionProbability, fsrsBlob,
		string(state.MasteryLevel), state.IsLeech, state.TotalReviews, state.TotalCorrect, state.AvgResponseTimeMs,
	)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "save card state", err)
	}
	return nil
}

// ClaimSubmissionTx inserts a placeholder review_submissions row for
// (userID, progressID, nonce), relying on the unique constraint to detect a
// repeat of the same logical submission. claimed is true when this call
// won the insert and the caller should process the review; when false, a
// prior call already recorded a result, which is returned as cached for the
// caller to return verbatim without touching the card again. Safe without
// its own row lock because WithCardLock already serializes every call for
// this (user, progress) pair.
func (c *CardStore) ClaimSubmissionTx(ctx context.Context, tx *sql.Tx, userID, progressID uuid.UUID, nonce string, rating models.Rating, reviewDate time.Time) (claimed bool, cached *models.ReviewResult, err error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO review_submissions (user_id, learning_progress_id, nonce, rating, review_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, learning_progress_id, nonce) DO NOTHING
	`, userID, progressID, nonce, int(rating), reviewDate); err != nil {
		return false, nil, apperr.Wrap(apperr.Internal, "claim review submission", err)
	}

	var resultBlob []byte
	err = tx.QueryRowContext(ctx, `
		SELECT result FROM review_submissions
		WHERE user_id = $1 AND learning_progress_id = $2 AND nonce = $3
	`, userID, progressID, nonce).Scan(&resultBlob)
	if err != nil {
		return false, nil, apperr.Wrap(apperr.Internal, "load review submission", err)
	}
	if resultBlob == nil {
		return true, nil, nil
	}

	var r models.ReviewResult
	if err := json.Unmarshal(resultBlob, &r); err != nil {
		return false, nil, apperr.Wrap(apperr.Internal, "decode cached review result", err)
	}
	return false, &r, nil
}

// RecordSubmissionResultTx persists the outcome of a freshly processed
// review against the row ClaimSubmissionTx inserted, so a retry with the
// same nonce can return it without reprocessing.
func (c *CardStore) RecordSubmissionResultTx(ctx context.Context, tx *sql.Tx, userID, progressID uuid.UUID, nonce string, result models.ReviewResult) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "encode review result", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE review_submissions SET result = $1
		WHERE user_id = $2 AND learning_progress_id = $3 AND nonce = $4
	`, blob, userID, progressID, nonce)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "record review result", err)
	}
	return nil
}

// RecordFSRSReview appends a row to fsrs_review_history, used by the
// assignment service's migration-eligibility count.
func (c *CardStore) RecordFSRSReview(ctx context.Context, tx *sql.Tx, userID, progressID uuid.UUID, rating models.Rating) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO fsrs_review_history (user_id, learning_progress_id, review_date, rating)
		VALUES ($1, $2, NOW(), $3)
	`, userID, progressID, int(rating))
	if err != nil {
		return apperr.Wrap(apperr.Internal, "record fsrs review history", err)
	}
	return nil
}
