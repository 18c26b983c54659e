package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// DebtTransfer is a Transfer enriched for presentation: display names, the
// creditor's payment target and the state of any matching payment.
type DebtTransfer struct {
	FromMemberID    int64
	FromDisplayName string
	ToMemberID      int64
	ToDisplayName   string
	Amount          decimal.Decimal

	ToAlias      string
	ToAccountRef string

	// PaidAmount is the approved payment's amount; nil unless approved.
	PaidAmount *decimal.Decimal
	// PaymentStatus is empty when no payment matched.
	PaymentStatus models.PaymentStatus
	PaymentID     int64
}

// ReconcilePayments annotates each transfer with the matching payment attempt.
//
// Only pending and approved payments count. A payment matches a transfer when
// both the payer and the receiver are the same members. An approved match
// wins and ends the scan; a pending match is kept only while nothing else has
// matched.
//
// Matching ignores amounts: a payment recorded before new expenses changed
// the transfer still marks it as paid.
//
// The transfer amounts are never changed; the input slice is not modified.
func ReconcilePayments(transfers []DebtTransfer, payments []models.Payment) []DebtTransfer {
	out := make([]DebtTransfer, len(transfers))
	copy(out, transfers)

	for i := range out {
		t := &out[i]
		for _, p := range payments {
			if p.FromMemberID != t.FromMemberID || p.ToMemberID != t.ToMemberID {
				continue
			}
			if p.Status == models.PaymentApproved {
				paid := p.Amount
				t.PaidAmount = &paid
				t.PaymentStatus = models.PaymentApproved
				t.PaymentID = p.ID
				break
			}
			if p.Status == models.PaymentPending && t.PaymentStatus == "" {
				t.PaymentStatus = models.PaymentPending
				t.PaymentID = p.ID
			}
		}
	}

	return out
}
