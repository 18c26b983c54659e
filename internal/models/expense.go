package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an amount paid by one member and shared among participants.
//
// Invariant: the participant share amounts sum exactly to Amount.
type Expense struct {
	ID      int64
	GroupID int64

	Description string

	// Amount is the total paid. Always positive.
	Amount decimal.Decimal

	// PayerMemberID is the member who paid.
	PayerMemberID int64

	// Date is when the expense happened.
	Date time.Time

	// Shares are the per-participant portions in allocation order.
	// The first participant absorbs the rounding remainder.
	Shares []ExpenseShare

	CreatedAt int64
}

// ExpenseShare is one participant's persisted portion of an expense.
type ExpenseShare struct {
	ExpenseID int64
	MemberID  int64
	Amount    decimal.Decimal
}

// ParticipantIDs returns the member ids of the shares in order.
func (e *Expense) ParticipantIDs() []int64 {
	ids := make([]int64, len(e.Shares))
	for i, s := range e.Shares {
		ids[i] = s.MemberID
	}
	return ids
}
