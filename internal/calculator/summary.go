package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// GroupLedger is a consistent snapshot of everything the engine needs for
// one group.
type GroupLedger struct {
	GroupID   int64
	GroupName string
	Members   []models.Member

	// OwnerTarget is the owner's payment target, used when the owner member
	// is owed money.
	OwnerTarget models.PaymentTarget

	Expenses []ExpenseForBalance
	Payments []models.Payment
}

// GroupBalanceSummary is the full settlement picture for a group.
// All amounts are rounded to cents.
type GroupBalanceSummary struct {
	GroupID         int64
	GroupName       string
	TotalExpenses   decimal.Decimal
	Balances        []MemberBalance
	SimplifiedDebts []DebtTransfer
}

// BuildGroupSummary aggregates balances, simplifies them into transfers and
// overlays recorded payments.
func BuildGroupSummary(ledger GroupLedger) (*GroupBalanceSummary, error) {
	balances, err := AggregateBalances(ledger.Members, ledger.Expenses)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate balances: %w", err)
	}

	for i := range balances {
		balances[i].TotalPaid = balances[i].TotalPaid.RoundBank(MoneyPlaces)
		balances[i].TotalShare = balances[i].TotalShare.RoundBank(MoneyPlaces)
		balances[i].NetBalance = balances[i].NetBalance.RoundBank(MoneyPlaces)
	}

	members := make(map[int64]models.Member, len(ledger.Members))
	for _, m := range ledger.Members {
		members[m.ID] = m
	}

	transfers := SimplifyDebts(balances)
	debts := make([]DebtTransfer, len(transfers))
	for i, t := range transfers {
		from, to := members[t.FromMemberID], members[t.ToMemberID]
		target := destination(to, ledger.OwnerTarget)
		debts[i] = DebtTransfer{
			FromMemberID:    t.FromMemberID,
			FromDisplayName: from.DisplayName,
			ToMemberID:      t.ToMemberID,
			ToDisplayName:   to.DisplayName,
			Amount:          t.Amount,
			ToAlias:         target.Alias,
			ToAccountRef:    target.AccountRef,
		}
	}

	total := decimal.Zero
	for _, e := range ledger.Expenses {
		total = total.Add(e.Amount)
	}

	return &GroupBalanceSummary{
		GroupID:         ledger.GroupID,
		GroupName:       ledger.GroupName,
		TotalExpenses:   total.RoundBank(MoneyPlaces),
		Balances:        balances,
		SimplifiedDebts: ReconcilePayments(debts, ledger.Payments),
	}, nil
}

// destination picks where a creditor wants to be paid.
func destination(m models.Member, ownerTarget models.PaymentTarget) models.PaymentTarget {
	if m.Contact != nil {
		return m.Contact.Target
	}
	if m.IsGroupOwner {
		return ownerTarget
	}
	return models.PaymentTarget{}
}
