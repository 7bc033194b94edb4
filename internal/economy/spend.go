package economy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lexicore/internal/apperr"
)

// SpendRequest names the optional amounts to deduct in one spend operation.
type SpendRequest struct {
	Energy  int64
	Essence int64
	Blocks  int64
	Source  string
}

// Spend atomically verifies sufficient balances for every requested
// currency and deducts them, or fails with InsufficientFunds naming the
// first currency that falls short — checked in the order Energy, Essence,
// Blocks, matching the order SpendRequest lists them.
func (s *Service) Spend(ctx context.Context, userID uuid.UUID, req SpendRequest) (balances map[string]int64, err error) {
	err = withUserLock(ctx, s.db, func(tx *sql.Tx) error {
		xp, err := s.getOrCreateXPTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		if req.Energy > 0 && xp.Energy < req.Energy {
			return apperr.New(apperr.InsufficientFunds, fmt.Sprintf("insufficient energy: have %d, need %d", xp.Energy, req.Energy))
		}
		if req.Essence > 0 && xp.Essence < req.Essence {
			return apperr.New(apperr.InsufficientFunds, fmt.Sprintf("insufficient essence: have %d, need %d", xp.Essence, req.Essence))
		}
		if req.Blocks > 0 && xp.Blocks < req.Blocks {
			return apperr.New(apperr.InsufficientFunds, fmt.Sprintf("insufficient blocks: have %d, need %d", xp.Blocks, req.Blocks))
		}

		source := req.Source
		if source == "" {
			source = "spend"
		}

		if req.Energy > 0 {
			xp.Energy -= req.Energy
			if _, err := s.appendTxTx(ctx, tx, userID, "energy", -req.Energy, xp.Energy, source, nil); err != nil {
				return err
			}
		}
		if req.Essence > 0 {
			xp.Essence -= req.Essence
			if _, err := s.appendTxTx(ctx, tx, userID, "essence", -req.Essence, xp.Essence, source, nil); err != nil {
				return err
			}
		}
		if req.Blocks > 0 {
			xp.Blocks -= req.Blocks
			if _, err := s.appendTxTx(ctx, tx, userID, "blocks", -req.Blocks, xp.Blocks, source, nil); err != nil {
				return err
			}
		}

		if err := s.saveXPTx(ctx, tx, xp); err != nil {
			return err
		}

		balances = map[string]int64{"energy": xp.Energy, "essence": xp.Essence, "blocks": xp.Blocks}
		return nil
	})
	return balances, err
}
