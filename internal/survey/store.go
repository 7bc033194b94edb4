package survey

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"lexicore/internal/apperr"
	"lexicore/internal/database"
	"lexicore/internal/models"
)

// SessionStore persists SurveySession state between steps. A session is
// conceptually single-threaded from the client's perspective;
// implementations must reject a concurrent step against the same session.
type SessionStore interface {
	Load(ctx context.Context, sessionID uuid.UUID) (*models.SurveySession, error)
	Save(ctx context.Context, session *models.SurveySession) error
	// WithLock runs fn while holding an exclusive per-session lock, so two
	// concurrent steps against the same session never interleave.
	WithLock(ctx context.Context, sessionID uuid.UUID, fn func(ctx context.Context) error) error
}

// PostgresSessionStore stores session state as a JSONB blob in
// survey_sessions. Per-session serialization is enforced with
// pg_advisory_xact_lock, a session-scoped analog of row-level FOR UPDATE
// locking for a row that may not exist yet on the first step.
type PostgresSessionStore struct {
	db *database.DB
}

func NewPostgresSessionStore(db *database.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

func (s *PostgresSessionStore) Load(ctx context.Context, sessionID uuid.UUID) (*models.SurveySession, error) {
	var blob []byte
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT state, status FROM survey_sessions WHERE session_id = $1
	`, sessionID).Scan(&blob, &status)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "survey session not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "load survey session", err)
	}
	var session models.SurveySession
	if err := json.Unmarshal(blob, &session); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "decode survey session state", err)
	}
	return &session, nil
}

func (s *PostgresSessionStore) Save(ctx context.Context, session *models.SurveySession) error {
	blob, err := json.Marshal(session)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "encode survey session state", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO survey_sessions (session_id, state, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE
		SET state = EXCLUDED.state, status = EXCLUDED.status, updated_at = NOW()
	`, session.SessionID, blob, string(session.Status))
	if err != nil {
		return apperr.Wrap(apperr.Internal, "save survey session", err)
	}
	return nil
}

// WithLock takes a transaction-scoped advisory lock keyed on the session
// UUID's first 8 bytes. A second step arriving while the first is still
// in-flight blocks on the lock and should be rejected by the caller as
// Conflict rather than waiting indefinitely — callers pass a context with
// a short deadline.
func (s *PostgresSessionStore) WithLock(ctx context.Context, sessionID uuid.UUID, fn func(ctx context.Context) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "begin survey session transaction", err)
	}
	defer tx.Rollback()

	lockKey := int64(binary.BigEndian.Uint64(sessionID[:8]))
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
		return apperr.Wrap(apperr.Conflict, fmt.Sprintf("survey session %s busy", sessionID), err)
	}

	if err := fn(ctx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "commit survey session transaction", err)
	}
	return nil
}
