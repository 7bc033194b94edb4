package economy

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"lexicore/internal/apperr"
	"lexicore/internal/database"
	"lexicore/internal/models"
)

// Service is the Economy Transducer. Every grant runs inside a single
// transaction holding FOR UPDATE on the user's user_xp row, serializing
// XP updates per user.
type Service struct {
	db          *database.DB
	levelEnergy LevelEnergy
}

func New(db *database.DB, levelEnergy LevelEnergy) *Service {
	return &Service{db: db, levelEnergy: levelEnergy}
}

// GrantResult bundles every ledger effect one caller-visible operation
// produced, so a single MCQ result or review outcome can report Sparks,
// Essence, Energy, and Block movements together.
type GrantResult struct {
	UserXP            models.UserXP
	Transactions      []models.CurrencyTransaction
	LeveledUp         bool
	LevelsCrossed     []int
	EnergyGranted     int
}

func (s *Service) getOrCreateXPTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (models.UserXP, error) {
	var xp models.UserXP
	err := tx.QueryRowContext(ctx, `
		SELECT user_id, sparks, essence, energy, blocks, total_xp, current_level, xp_to_next_level, xp_in_current_level
		FROM user_xp WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&xp.UserID, &xp.Sparks, &xp.Essence, &xp.Energy, &xp.Blocks, &xp.TotalXP, &xp.CurrentLevel, &xp.XPToNextLevel, &xp.XPInCurrentLevel)
	if err == sql.ErrNoRows {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_xp (user_id, sparks, essence, energy, blocks, total_xp, current_level, xp_to_next_level, xp_in_current_level)
			VALUES ($1, 0, 0, 0, 0, 0, 1, $2, 0)
		`, userID, levelCost(1))
		if err != nil {
			return models.UserXP{}, apperr.Wrap(apperr.Internal, "create initial user_xp row", err)
		}
		return models.UserXP{UserID: userID, CurrentLevel: 1, XPToNextLevel: levelCost(1)}, nil
	}
	if err != nil {
		return models.UserXP{}, apperr.Wrap(apperr.Internal, "load user_xp", err)
	}
	return xp, nil
}

func (s *Service) saveXPTx(ctx context.Context, tx *sql.Tx, xp models.UserXP) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE user_xp
		SET sparks = $1, essence = $2, energy = $3, blocks = $4, total_xp = $5,
		    current_level = $6, xp_to_next_level = $7, xp_in_current_level = $8, updated_at = NOW()
		WHERE user_id = $9
	`, xp.Sparks, xp.Essence, xp.Energy, xp.Blocks, xp.TotalXP, xp.CurrentLevel, xp.XPToNextLevel, xp.XPInCurrentLevel, xp.UserID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "update user_xp", err)
	}
	return nil
}

// recordLevelUpTx appends an achievements row for one level crossing, the
// same milestone event a lesson-completion XP award would emit, adapted
// here to a currency grant instead.
func (s *Service) recordLevelUpTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, level int, sourceID *uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO achievements (user_id, achievement_type, level, source_id)
		VALUES ($1, 'level_up', $2, $3)
	`, userID, level, sourceID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "record level-up achievement", err)
	}
	return nil
}

// appendTxTx inserts one append-only ledger row and returns it with
// balance_after populated, maintaining the ledger's running-sum invariant.
func (s *Service) appendTxTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, currency models.CurrencyType, amount, balanceAfter int64, source string, sourceID *uuid.UUID) (models.CurrencyTransaction, error) {
	var t models.CurrencyTransaction
	err := tx.QueryRowContext(ctx, `
		INSERT INTO currency_transactions (user_id, currency_type, amount, balance_after, source, source_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, currency_type, amount, balance_after, source, source_id, created_at
	`, userID, string(currency), amount, balanceAfter, source, sourceID).
		Scan(&t.ID, &t.UserID, &currency, &t.Amount, &t.BalanceAfter, &t.Source, &t.SourceID, &t.CreatedAt)
	if err != nil {
		return models.CurrencyTransaction{}, apperr.Wrap(apperr.Internal, "append currency transaction", err)
	}
	t.CurrencyType = currency
	return t, nil
}

// GetProgress returns a user's current currency/level snapshot without
// taking the grant path's row lock. A user with no rows yet (never
// granted anything) reports the level-1/zero-balance starting state
// rather than an error, so an unseen user never 404s.
func (s *Service) GetProgress(ctx context.Context, userID uuid.UUID) (models.UserXP, error) {
	var xp models.UserXP
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, sparks, essence, energy, blocks, total_xp, current_level, xp_to_next_level, xp_in_current_level
		FROM user_xp WHERE user_id = $1
	`, userID).Scan(&xp.UserID, &xp.Sparks, &xp.Essence, &xp.Energy, &xp.Blocks, &xp.TotalXP, &xp.CurrentLevel, &xp.XPToNextLevel, &xp.XPInCurrentLevel)
	if err == sql.ErrNoRows {
		return models.UserXP{UserID: userID, CurrentLevel: 1, XPToNextLevel: levelCost(1)}, nil
	}
	if err != nil {
		return models.UserXP{}, apperr.Wrap(apperr.Internal, "load user_xp", err)
	}
	return xp, nil
}

// GrantSparks appends a transaction and, if it crosses one or more
// levels, grants Energy for each crossing atomically in the same
// transaction.
func (s *Service) GrantSparks(ctx context.Context, userID uuid.UUID, source string, amount int64, sourceID *uuid.UUID) (GrantResult, error) {
	if amount <= 0 {
		return GrantResult{}, apperr.New(apperr.Validation, "sparks grant amount must be positive")
	}

	var result GrantResult
	err := withUserLock(ctx, s.db, func(tx *sql.Tx) error {
		xp, err := s.getOrCreateXPTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		fromLevel := xp.CurrentLevel
		xp.Sparks += amount
		xp.TotalXP += amount

		newLevel, xpInLevel, xpToNext := LevelFor(xp.TotalXP)
		xp.CurrentLevel = newLevel
		xp.XPInCurrentLevel = xpInLevel
		xp.XPToNextLevel = xpToNext

		sparksTx, err := s.appendTxTx(ctx, tx, userID, models.CurrencySparks, amount, xp.Sparks, source, sourceID)
		if err != nil {
			return err
		}
		result.Transactions = append(result.Transactions, sparksTx)

		if newLevel > fromLevel {
			_, perLevel := s.levelEnergy.energyForCrossing(fromLevel, newLevel)
			for lvl := fromLevel + 1; lvl <= newLevel; lvl++ {
				grant := int64(perLevel[lvl])
				xp.Energy += grant
				energyTx, err := s.appendTxTx(ctx, tx, userID, models.CurrencyEnergy, grant, xp.Energy, "level_up", sourceID)
				if err != nil {
					return err
				}
				result.Transactions = append(result.Transactions, energyTx)
				result.LevelsCrossed = append(result.LevelsCrossed, lvl)
				result.EnergyGranted += int(grant)
				if err := s.recordLevelUpTx(ctx, tx, userID, lvl, sourceID); err != nil {
					return err
				}
			}
			result.LeveledUp = true
		}

		if err := s.saveXPTx(ctx, tx, xp); err != nil {
			return err
		}
		result.UserXP = xp
		return nil
	})
	return result, err
}

// GrantEssence grants Essence, which is awarded only on
// correct answers, and never triggers a level crossing on its own.
func (s *Service) GrantEssence(ctx context.Context, userID uuid.UUID, source string, amount int64, sourceID *uuid.UUID) (GrantResult, error) {
	if amount <= 0 {
		return GrantResult{}, apperr.New(apperr.Validation, "essence grant amount must be positive")
	}
	var result GrantResult
	err := withUserLock(ctx, s.db, func(tx *sql.Tx) error {
		xp, err := s.getOrCreateXPTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		xp.Essence += amount
		essenceTx, err := s.appendTxTx(ctx, tx, userID, models.CurrencyEssence, amount, xp.Essence, source, sourceID)
		if err != nil {
			return err
		}
		result.Transactions = append(result.Transactions, essenceTx)
		if err := s.saveXPTx(ctx, tx, xp); err != nil {
			return err
		}
		result.UserXP = xp
		return nil
	})
	return result, err
}

// GrantBlock records one Block for a sense that reached mastered, together
// with a 10-Sparks word_solid bonus and any level-up Energy, in one
// transaction. It keeps no record of which senses already earned a Block,
// so a repeated call for the same sense grants another one.
func (s *Service) GrantBlock(ctx context.Context, userID uuid.UUID, senseID *uuid.UUID) (GrantResult, error) {
	var result GrantResult
	err := withUserLock(ctx, s.db, func(tx *sql.Tx) error {
		xp, err := s.getOrCreateXPTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		fromLevel := xp.CurrentLevel
		xp.Blocks++
		blockTx, err := s.appendTxTx(ctx, tx, userID, models.CurrencyBlocks, 1, xp.Blocks, "word_solid", senseID)
		if err != nil {
			return err
		}
		result.Transactions = append(result.Transactions, blockTx)

		bonus := SparksRewards["word_solid"]
		xp.Sparks += bonus
		xp.TotalXP += bonus
		newLevel, xpInLevel, xpToNext := LevelFor(xp.TotalXP)
		xp.CurrentLevel = newLevel
		xp.XPInCurrentLevel = xpInLevel
		xp.XPToNextLevel = xpToNext

		sparksTx, err := s.appendTxTx(ctx, tx, userID, models.CurrencySparks, bonus, xp.Sparks, "word_solid", senseID)
		if err != nil {
			return err
		}
		result.Transactions = append(result.Transactions, sparksTx)

		if newLevel > fromLevel {
			_, perLevel := s.levelEnergy.energyForCrossing(fromLevel, newLevel)
			for lvl := fromLevel + 1; lvl <= newLevel; lvl++ {
				grant := int64(perLevel[lvl])
				xp.Energy += grant
				energyTx, err := s.appendTxTx(ctx, tx, userID, models.CurrencyEnergy, grant, xp.Energy, "level_up", senseID)
				if err != nil {
					return err
				}
				result.Transactions = append(result.Transactions, energyTx)
				result.LevelsCrossed = append(result.LevelsCrossed, lvl)
				result.EnergyGranted += int(grant)
				if err := s.recordLevelUpTx(ctx, tx, userID, lvl, senseID); err != nil {
					return err
				}
			}
			result.LeveledUp = true
		}

		if err := s.saveXPTx(ctx, tx, xp); err != nil {
			return err
		}
		result.UserXP = xp
		return nil
	})
	return result, err
}

// ProcessMCQResult emits the correct Sparks
// grant, then Essence if correct, then a Block if mastery crossed,
// combining all three into one response.
func (s *Service) ProcessMCQResult(ctx context.Context, userID uuid.UUID, mcq MCQResult) (GrantResult, error) {
	senseUUID, err := uuid.Parse(mcq.SenseID)
	var senseIDPtr *uuid.UUID
	if err == nil {
		senseIDPtr = &senseUUID
	}

	source := sparksSourceFor(mcq)
	amount := SparksRewards[source]
	combined, err := s.GrantSparks(ctx, userID, source, amount, senseIDPtr)
	if err != nil {
		return GrantResult{}, err
	}

	if mcq.IsCorrect {
		essenceSource := "mcq_correct"
		if mcq.IsFast {
			essenceSource = "mcq_fast_correct"
		}
		if essenceAmount, ok := EssenceRewards[essenceSource]; ok && essenceAmount > 0 {
			essenceResult, err := s.GrantEssence(ctx, userID, essenceSource, essenceAmount, senseIDPtr)
			if err != nil {
				return GrantResult{}, err
			}
			combined = mergeGrants(combined, essenceResult)
		}
	}

	if mcq.WordBecameSolid {
		blockResult, err := s.GrantBlock(ctx, userID, senseIDPtr)
		if err != nil {
			return GrantResult{}, err
		}
		combined = mergeGrants(combined, blockResult)
	}

	return combined, nil
}

func mergeGrants(a, b GrantResult) GrantResult {
	a.UserXP = b.UserXP
	a.Transactions = append(a.Transactions, b.Transactions...)
	a.LeveledUp = a.LeveledUp || b.LeveledUp
	a.LevelsCrossed = append(a.LevelsCrossed, b.LevelsCrossed...)
	a.EnergyGranted += b.EnergyGranted
	return a
}

// withUserLock begins a transaction for the duration of fn. The row lock
// itself is taken by getOrCreateXPTx's FOR UPDATE select once inside fn;
// this wrapper only owns the transaction lifecycle.
func withUserLock(ctx context.Context, db *database.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "begin economy transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "commit economy transaction", err)
	}
	return nil
}
