// Package assignment implements the per-user algorithm A/B assignment
// and migration service.
package assignment

import (
	"context"
	"database/sql"
	"math/rand"
	"strconv"

	"github.com/google/uuid"

	"lexicore/internal/apperr"
	"lexicore/internal/database"
	"lexicore/internal/models"
)

// Config carries the assignment service's tunables.
type Config struct {
	FSRSProbability        float64
	MinReviewsForMigration int
}

func DefaultConfig() Config {
	return Config{FSRSProbability: 0.5, MinReviewsForMigration: 100}
}

// Service manages user_algorithm_assignment rows.
type Service struct {
	db  *database.DB
	cfg Config
	rng *rand.Rand
}

func New(db *database.DB, cfg Config, rng *rand.Rand) *Service {
	return &Service{db: db, cfg: cfg, rng: rng}
}

// GetOrAssign returns the current assignment, creating one on first
// request that picks FSRS with probability cfg.FSRSProbability. The insert uses ON CONFLICT DO
// NOTHING so a concurrent insert for the same user never overwrites an
// existing row.
func (s *Service) GetOrAssign(ctx context.Context, userID uuid.UUID) (models.AlgorithmAssignment, error) {
	existing, err := s.get(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if apperr.KindOf(err) != apperr.NotFound {
		return models.AlgorithmAssignment{}, err
	}

	algorithm := models.AlgorithmSM2Plus
	if s.rng.Float64() < s.cfg.FSRSProbability {
		algorithm = models.AlgorithmFSRS
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_algorithm_assignment (user_id, algorithm, assignment_reason, can_migrate_to_fsrs)
		VALUES ($1, $2, $3, FALSE)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, string(algorithm), string(models.ReasonRandom))
	if err != nil {
		return models.AlgorithmAssignment{}, apperr.Wrap(apperr.Internal, "insert algorithm assignment", err)
	}

	// Re-read: a concurrent insert may have won the race.
	return s.get(ctx, userID)
}

func (s *Service) get(ctx context.Context, userID uuid.UUID) (models.AlgorithmAssignment, error) {
	var a models.AlgorithmAssignment
	var algorithm, reason string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, algorithm, assignment_reason, can_migrate_to_fsrs, updated_at
		FROM user_algorithm_assignment WHERE user_id = $1
	`, userID).Scan(&a.UserID, &algorithm, &reason, &a.CanMigrateToFSRS, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.AlgorithmAssignment{}, apperr.New(apperr.NotFound, "no algorithm assignment for user")
	}
	if err != nil {
		return models.AlgorithmAssignment{}, apperr.Wrap(apperr.Internal, "load algorithm assignment", err)
	}
	a.Algorithm = models.AlgorithmType(algorithm)
	a.AssignmentReason = models.AssignmentReason(reason)
	return a, nil
}

// CanMigrateToFSRS reports true iff the user has recorded at least
// MinReviewsForMigration rows in fsrs_review_history.
func (s *Service) CanMigrateToFSRS(ctx context.Context, userID uuid.UUID) (bool, int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM fsrs_review_history WHERE user_id = $1
	`, userID).Scan(&count)
	if err != nil {
		return false, 0, apperr.Wrap(apperr.Internal, "count review history", err)
	}
	canMigrate := count >= s.cfg.MinReviewsForMigration
	if canMigrate {
		if _, err := s.db.ExecContext(ctx, `
			UPDATE user_algorithm_assignment SET can_migrate_to_fsrs = TRUE WHERE user_id = $1
		`, userID); err != nil {
			return false, 0, apperr.Wrap(apperr.Internal, "update migration eligibility flag", err)
		}
	}
	return canMigrate, count, nil
}

// MigrateToFSRS flips a user's assignment to FSRS. force bypasses the
// review-count eligibility check; force is not itself authorized here —
// callers must apply an administrative guard before setting it, since
// this service has no notion of caller identity or role.
func (s *Service) MigrateToFSRS(ctx context.Context, userID uuid.UUID, force bool) error {
	if !force {
		eligible, count, err := s.CanMigrateToFSRS(ctx, userID)
		if err != nil {
			return err
		}
		if !eligible {
			return apperr.New(apperr.Validation, "user not eligible for fsrs migration: "+strconv.Itoa(count)+" reviews recorded")
		}
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE user_algorithm_assignment
		SET algorithm = $1, assignment_reason = $2, updated_at = NOW()
		WHERE user_id = $3
	`, string(models.AlgorithmFSRS), string(models.ReasonMigration), userID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "migrate algorithm assignment", err)
	}
	return nil
}

// Stats is the aggregate output of GetAssignmentStats.
type Stats struct {
	SM2PlusUsers      int
	FSRSUsers         int
	EligibleToMigrate int
}

// GetAssignmentStats aggregates algorithm distribution and migration
// eligibility across all users.
func (s *Service) GetAssignmentStats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE algorithm = $1),
			COUNT(*) FILTER (WHERE algorithm = $2),
			COUNT(*) FILTER (WHERE can_migrate_to_fsrs AND algorithm = $1)
		FROM user_algorithm_assignment
	`, string(models.AlgorithmSM2Plus), string(models.AlgorithmFSRS)).
		Scan(&stats.SM2PlusUsers, &stats.FSRSUsers, &stats.EligibleToMigrate)
	if err != nil {
		return Stats{}, apperr.Wrap(apperr.Internal, "aggregate assignment stats", err)
	}
	return stats, nil
}
