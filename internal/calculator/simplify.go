package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// settleEpsilon is the smallest balance worth a transfer. Anything below a
// cent is rounding noise; a balance of exactly one cent still settles.
var settleEpsilon = decimal.New(1, -MoneyPlaces)

// Transfer represents a suggested payment from one member to another.
type Transfer struct {
	FromMemberID int64 // Member who owes
	ToMemberID   int64 // Member who is owed
	Amount       decimal.Decimal
}

type position struct {
	memberID int64
	amount   decimal.Decimal
}

// SimplifyDebts reduces net balances to a small set of transfers that zero
// every balance.
//
// Greedy algorithm: repeatedly match the largest remaining creditor with the
// largest remaining debtor and settle the smaller of the two amounts. This
// produces at most creditors+debtors-1 transfers but is not guaranteed to be
// the global minimum.
//
// Equal amounts are ordered by ascending member id so the output is stable.
func SimplifyDebts(balances []MemberBalance) []Transfer {
	var creditors, debtors []position
	for _, b := range balances {
		net := b.NetBalance.RoundBank(MoneyPlaces)
		if net.GreaterThanOrEqual(settleEpsilon) {
			creditors = append(creditors, position{memberID: b.MemberID, amount: net})
		} else if net.LessThanOrEqual(settleEpsilon.Neg()) {
			debtors = append(debtors, position{memberID: b.MemberID, amount: net.Neg()})
		}
	}

	sortPositions(creditors)
	sortPositions(debtors)

	transfers := []Transfer{}
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		settle := decimal.Min(creditors[i].amount, debtors[j].amount)

		transfers = append(transfers, Transfer{
			FromMemberID: debtors[j].memberID,
			ToMemberID:   creditors[i].memberID,
			Amount:       settle.RoundBank(MoneyPlaces),
		})

		creditors[i].amount = creditors[i].amount.Sub(settle)
		debtors[j].amount = debtors[j].amount.Sub(settle)

		if creditors[i].amount.LessThan(settleEpsilon) {
			i++
		}
		if debtors[j].amount.LessThan(settleEpsilon) {
			j++
		}
	}

	return transfers
}

// sortPositions orders by amount descending, then member id ascending.
func sortPositions(ps []position) {
	sort.Slice(ps, func(a, b int) bool {
		if c := ps[a].amount.Cmp(ps[b].amount); c != 0 {
			return c > 0
		}
		return ps[a].memberID < ps[b].memberID
	})
}
