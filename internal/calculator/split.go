package calculator

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits of the currency's minor unit.
const MoneyPlaces = 2

// Share is one participant's portion of an expense.
type Share struct {
	MemberID int64
	Amount   decimal.Decimal
}

// AllocateShares splits amount across participants into exact, cent-accurate shares.
//
// Algorithm:
//   - base = amount / n, truncated to cents
//   - remainder = amount - base × n
//   - the first participant in the given order gets base + remainder, everyone else gets base
//
// The shares always sum exactly to amount. Participant order is the caller's;
// it is not sorted here.
func AllocateShares(amount decimal.Decimal, participants []int64) ([]Share, error) {
	if len(participants) == 0 {
		return nil, &ValidationError{Field: "participants", Reason: "must have at least one participant"}
	}
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if !amount.Equal(amount.Truncate(MoneyPlaces)) {
		return nil, &ValidationError{Field: "amount", Reason: "must not have more than 2 decimal places"}
	}

	n := decimal.NewFromInt(int64(len(participants)))
	base, _ := amount.QuoRem(n, MoneyPlaces)
	remainder := amount.Sub(base.Mul(n))

	shares := make([]Share, len(participants))
	for i, memberID := range participants {
		shares[i] = Share{MemberID: memberID, Amount: base}
	}
	shares[0].Amount = base.Add(remainder)

	return shares, nil
}
