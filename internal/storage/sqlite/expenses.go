package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const expenseColumns = `id, group_id, description, amount, payer_member_id, expense_date, created_at`

// CreateExpense persists an expense with its shares.
// An empty description is generated from the participants' names.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if expense.Description == "" {
		expense.Description, err = describeShares(ctx, tx, expense)
		if err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (group_id, description, amount, payer_member_id, expense_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		expense.GroupID, expense.Description, expense.Amount.String(),
		expense.PayerMemberID, expense.Date.Unix(), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	expense.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read expense id: %w", err)
	}

	if err := insertShares(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense of the group with its shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, groupID, expenseID int64) (*models.Expense, error) {
	e := &models.Expense{}
	var date int64
	err := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND group_id = ?`,
		expenseID, groupID,
	).Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PayerMemberID, &date, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	e.Date = time.Unix(date, 0).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, member_id, amount FROM expense_shares WHERE expense_id = ? ORDER BY position`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sh models.ExpenseShare
		if err := rows.Scan(&sh.ExpenseID, &sh.MemberID, &sh.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		e.Shares = append(e.Shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return e, nil
}

// ListExpenses retrieves a group's expenses, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, groupID int64) ([]*models.Expense, error) {
	return listExpenses(ctx, s.db, groupID)
}

// UpdateExpense replaces an expense and all of its shares.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if expense.Description == "" {
		expense.Description, err = describeShares(ctx, tx, expense)
		if err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, payer_member_id = ?, expense_date = ?
		 WHERE id = ? AND group_id = ?`,
		expense.Description, expense.Amount.String(), expense.PayerMemberID, expense.Date.Unix(),
		expense.ID, expense.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := checkAffected(res, "expense", expense.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_shares WHERE expense_id = ?`, expense.ID); err != nil {
		return fmt.Errorf("failed to clear shares: %w", err)
	}
	if err := insertShares(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteExpense removes an expense; its shares cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, groupID, expenseID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND group_id = ?`,
		expenseID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return checkAffected(res, "expense", expenseID)
}

func insertShares(ctx context.Context, q querier, expense *models.Expense) error {
	for i := range expense.Shares {
		sh := &expense.Shares[i]
		sh.ExpenseID = expense.ID
		_, err := q.ExecContext(ctx,
			`INSERT INTO expense_shares (expense_id, member_id, position, amount) VALUES (?, ?, ?, ?)`,
			sh.ExpenseID, sh.MemberID, i, sh.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}
	return nil
}

func listExpenses(ctx context.Context, q querier, groupID int64) ([]*models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = ? ORDER BY expense_date DESC, id DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[int64]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		var date int64
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PayerMemberID, &date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Date = time.Unix(date, 0).UTC()
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	shareRows, err := q.QueryContext(ctx,
		`SELECT s.expense_id, s.member_id, s.amount FROM expense_shares s
		 JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ? ORDER BY s.expense_id, s.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var sh models.ExpenseShare
		if err := shareRows.Scan(&sh.ExpenseID, &sh.MemberID, &sh.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		if e, ok := byID[sh.ExpenseID]; ok {
			e.Shares = append(e.Shares, sh)
		}
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return expenses, nil
}

// describeShares builds a description from the display names of the
// expense's participants.
func describeShares(ctx context.Context, q querier, expense *models.Expense) (string, error) {
	names := make([]string, 0, len(expense.Shares))
	for _, sh := range expense.Shares {
		var name string
		err := q.QueryRowContext(ctx,
			`SELECT display_name FROM group_members WHERE id = ? AND group_id = ?`,
			sh.MemberID, expense.GroupID,
		).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to get member name: %w", err)
		}
		names = append(names, name)
	}
	return generateDescription(names, expense.Date), nil
}

// generateDescription creates an auto-generated description from participant names.
func generateDescription(names []string, date time.Time) string {
	if len(names) == 0 {
		return fmt.Sprintf("Expense - %s", date.Format("Jan 2, 2006"))
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
