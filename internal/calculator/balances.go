package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// ExpenseForBalance represents an expense with the minimal information needed
// for balance calculations.
type ExpenseForBalance struct {
	ID      int64
	Amount  decimal.Decimal
	PayerID int64
	Shares  []Share
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberID    int64
	DisplayName string
	TotalPaid   decimal.Decimal // Total amount paid across all expenses
	TotalShare  decimal.Decimal // Sum of this member's shares
	NetBalance  decimal.Decimal // Positive = owed money, Negative = owes money
	Contact     *models.Contact
}

// AggregateBalances computes one balance per member from a group's full
// expense history.
//
// Algorithm:
//   - Every member starts at zero paid and zero share
//   - For each expense: payer's paid += amount, each participant's share += their share
//   - net_balance = total_paid - total_share
//
// Sums are exact; nothing is rounded here. Balances come back in member order.
// A group without expenses yields an empty list.
func AggregateBalances(members []models.Member, expenses []ExpenseForBalance) ([]MemberBalance, error) {
	if len(expenses) == 0 {
		return []MemberBalance{}, nil
	}

	index := make(map[int64]int, len(members))
	balances := make([]MemberBalance, len(members))
	for i, m := range members {
		index[m.ID] = i
		balances[i] = MemberBalance{
			MemberID:    m.ID,
			DisplayName: m.DisplayName,
			TotalPaid:   decimal.Zero,
			TotalShare:  decimal.Zero,
			Contact:     m.Contact,
		}
	}

	for _, e := range expenses {
		payer, ok := index[e.PayerID]
		if !ok {
			return nil, &ReferentialIntegrityError{ExpenseID: e.ID, MemberID: e.PayerID, Role: "payer"}
		}
		balances[payer].TotalPaid = balances[payer].TotalPaid.Add(e.Amount)

		for _, s := range e.Shares {
			p, ok := index[s.MemberID]
			if !ok {
				return nil, &ReferentialIntegrityError{ExpenseID: e.ID, MemberID: s.MemberID, Role: "participant"}
			}
			balances[p].TotalShare = balances[p].TotalShare.Add(s.Amount)
		}
	}

	for i := range balances {
		balances[i].NetBalance = balances[i].TotalPaid.Sub(balances[i].TotalShare)
	}

	return balances, nil
}
