package models

import "github.com/shopspring/decimal"

// PaymentStatus is the lifecycle state of a payment attempt.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentApproved, PaymentRejected, PaymentCancelled:
		return true
	}
	return false
}

// Payment represents a payment attempt between group members, recorded
// through the external payment gateway.
type Payment struct {
	// ID is the local identifier for the payment.
	ID int64

	// GroupID is the group this payment belongs to.
	GroupID int64

	// FromMemberID is the member who pays (debtor settling up).
	FromMemberID int64

	// ToMemberID is the member who receives payment (creditor).
	ToMemberID int64

	// Amount is the payment amount requested at creation time.
	Amount decimal.Decimal

	Status PaymentStatus

	// PreferenceID is the gateway checkout preference, empty until created.
	PreferenceID string

	// GatewayPaymentID is the gateway's payment id, set by webhook or polling.
	GatewayPaymentID string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last status change.
	UpdatedAt int64
}
