package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const paymentColumns = `id, group_id, from_member_id, to_member_id, amount, status,
	preference_id, gateway_payment_id, created_at, updated_at`

// CreatePayment records a new payment attempt.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	if payment.UpdatedAt == 0 {
		payment.UpdatedAt = payment.CreatedAt
	}
	if payment.Status == "" {
		payment.Status = models.PaymentPending
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (group_id, from_member_id, to_member_id, amount, status,
		 preference_id, gateway_payment_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.GroupID, payment.FromMemberID, payment.ToMemberID, payment.Amount.String(),
		string(payment.Status), payment.PreferenceID, payment.GatewayPaymentID,
		payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	payment.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read payment id: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment by ID.
func (s *SQLiteStore) GetPayment(ctx context.Context, paymentID int64) (*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	defer rows.Close()

	payments, err := scanPayments(rows)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, fmt.Errorf("payment %d: %w", paymentID, storage.ErrNotFound)
	}
	return payments[0], nil
}

// ListPayments retrieves all payments of a group, newest first.
func (s *SQLiteStore) ListPayments(ctx context.Context, groupID int64) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE group_id = ? ORDER BY created_at DESC, id DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	return scanPayments(rows)
}

// SetPaymentPreference stores the gateway checkout preference.
func (s *SQLiteStore) SetPaymentPreference(ctx context.Context, paymentID int64, preferenceID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payments SET preference_id = ?, updated_at = ? WHERE id = ?`,
		preferenceID, time.Now().Unix(), paymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to set payment preference: %w", err)
	}
	return checkAffected(res, "payment", paymentID)
}

// UpdatePaymentStatus records a status reported by the gateway.
// An empty gatewayPaymentID keeps the stored one.
func (s *SQLiteStore) UpdatePaymentStatus(ctx context.Context, paymentID int64, gatewayPaymentID string, status models.PaymentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid payment status %q", status)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE payments
		 SET status = ?,
		     gateway_payment_id = CASE WHEN ? = '' THEN gateway_payment_id ELSE ? END,
		     updated_at = ?
		 WHERE id = ?`,
		string(status), gatewayPaymentID, gatewayPaymentID, time.Now().Unix(), paymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return checkAffected(res, "payment", paymentID)
}

// DeletePayment removes a payment record.
func (s *SQLiteStore) DeletePayment(ctx context.Context, paymentID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return checkAffected(res, "payment", paymentID)
}

func listOpenPayments(ctx context.Context, q querier, groupID int64) ([]*models.Payment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE group_id = ? AND status IN ('pending', 'approved') ORDER BY id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list open payments: %w", err)
	}
	defer rows.Close()

	return scanPayments(rows)
}

func scanPayments(rows *sql.Rows) ([]*models.Payment, error) {
	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		var status string
		err := rows.Scan(&p.ID, &p.GroupID, &p.FromMemberID, &p.ToMemberID, &p.Amount, &status,
			&p.PreferenceID, &p.GatewayPaymentID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Status = models.PaymentStatus(status)
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}
