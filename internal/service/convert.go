package service

import (
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	out := &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
	if !u.Target.IsZero() {
		out.PaymentTarget = &api.PaymentTarget{Alias: u.Target.Alias, AccountRef: u.Target.AccountRef}
	}
	return out
}

func toAPIContact(c *models.Contact) *api.Contact {
	if c == nil {
		return nil
	}
	return &api.Contact{
		ID:         c.ID,
		Name:       c.Name,
		Alias:      c.Target.Alias,
		AccountRef: c.Target.AccountRef,
		CreatedAt:  c.CreatedAt,
	}
}

func toAPIMember(m models.Member) api.Member {
	return api.Member{
		ID:           m.ID,
		DisplayName:  m.DisplayName,
		IsGroupOwner: m.IsGroupOwner,
		Contact:      toAPIContact(m.Contact),
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	members := make([]api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = toAPIMember(m)
	}
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		IsActive:    g.IsActive,
		Members:     members,
		CreatedAt:   g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	shares := make([]api.ExpenseShare, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = api.ExpenseShare{MemberID: s.MemberID, Amount: formatMoney(s.Amount)}
	}
	return &api.Expense{
		ID:            e.ID,
		GroupID:       e.GroupID,
		Description:   e.Description,
		Amount:        formatMoney(e.Amount),
		PayerMemberID: e.PayerMemberID,
		Date:          e.Date.Format(dateLayout),
		Shares:        shares,
		CreatedAt:     e.CreatedAt,
	}
}

func toAPIPayment(p *models.Payment) *api.Payment {
	return &api.Payment{
		ID:               p.ID,
		GroupID:          p.GroupID,
		FromMemberID:     p.FromMemberID,
		ToMemberID:       p.ToMemberID,
		Amount:           formatMoney(p.Amount),
		Status:           string(p.Status),
		PreferenceID:     p.PreferenceID,
		GatewayPaymentID: p.GatewayPaymentID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toAPISummary(s *calculator.GroupBalanceSummary) *api.GroupBalanceSummary {
	balances := make([]api.MemberBalance, len(s.Balances))
	for i, b := range s.Balances {
		balances[i] = api.MemberBalance{
			MemberID:    b.MemberID,
			DisplayName: b.DisplayName,
			TotalPaid:   formatMoney(b.TotalPaid),
			TotalShare:  formatMoney(b.TotalShare),
			NetBalance:  formatMoney(b.NetBalance),
			Contact:     toAPIContact(b.Contact),
		}
	}

	debts := make([]api.DebtTransfer, len(s.SimplifiedDebts))
	for i, d := range s.SimplifiedDebts {
		debts[i] = api.DebtTransfer{
			FromMemberID:    d.FromMemberID,
			FromDisplayName: d.FromDisplayName,
			ToMemberID:      d.ToMemberID,
			ToDisplayName:   d.ToDisplayName,
			Amount:          formatMoney(d.Amount),
			ToAlias:         d.ToAlias,
			ToAccountRef:    d.ToAccountRef,
			PaymentStatus:   string(d.PaymentStatus),
			PaymentID:       d.PaymentID,
		}
		if d.PaidAmount != nil {
			paid := formatMoney(*d.PaidAmount)
			debts[i].PaidAmount = &paid
		}
	}

	return &api.GroupBalanceSummary{
		GroupID:         s.GroupID,
		GroupName:       s.GroupName,
		TotalExpenses:   formatMoney(s.TotalExpenses),
		Balances:        balances,
		SimplifiedDebts: debts,
	}
}
