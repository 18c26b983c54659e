package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// LoadLedger reads everything needed to settle a group inside one
// transaction, so balances never mix expenses from different writes.
func (s *SQLiteStore) LoadLedger(ctx context.Context, groupID int64) (*storage.Ledger, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ledger := &storage.Ledger{}
	var ownerID int64
	ledger.Group, ownerID, err = getGroupByID(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}

	ledger.Owner, err = getUserByID(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}

	ledger.Group.Members, err = listMembers(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}

	ledger.Expenses, err = listExpenses(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}

	ledger.Payments, err = listOpenPayments(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ledger, nil
}

func getGroupByID(ctx context.Context, q querier, groupID int64) (*models.Group, int64, error) {
	g := &models.Group{}
	var active int
	err := q.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE id = ?`,
		groupID,
	).Scan(&g.ID, &g.OwnerUserID, &g.Name, &g.Description, &active, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("group %d: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get group: %w", err)
	}
	g.IsActive = active == 1
	return g, g.OwnerUserID, nil
}
