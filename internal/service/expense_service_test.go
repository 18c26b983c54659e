package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/pkg/api"
)

func TestExpenseService_CreateExpense(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createTrip(t)
	alice, bob, charlie := group.Members[0].ID, group.Members[1].ID, group.Members[2].ID

	resp, err := env.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:              group.ID,
		Description:          "Dinner",
		Amount:               "10",
		PayerMemberID:        bob,
		ParticipantMemberIDs: []int64{charlie, alice, bob},
		Date:                 "2024-03-15",
	}))
	require.NoError(t, err)

	e := resp.Msg.Expense
	assert.Equal(t, "Dinner", e.Description)
	assert.Equal(t, "10.00", e.Amount)
	assert.Equal(t, "2024-03-15", e.Date)
	require.Len(t, e.Shares, 3)
	// The first participant absorbs the remainder cent.
	assert.Equal(t, api.ExpenseShare{MemberID: charlie, Amount: "3.34"}, e.Shares[0])
	assert.Equal(t, api.ExpenseShare{MemberID: alice, Amount: "3.33"}, e.Shares[1])
	assert.Equal(t, api.ExpenseShare{MemberID: bob, Amount: "3.33"}, e.Shares[2])
}

func TestExpenseService_GeneratedDescription(t *testing.T) {
	env := setupTestServer(t)
	group := env.createTrip(t)
	alice, bob := group.Members[0].ID, group.Members[1].ID

	e := env.addExpense(t, group.ID, "20", alice, alice, bob)
	assert.Equal(t, "Split with Alice, Bob", e.Description)
}

func TestExpenseService_Validation(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createTrip(t)
	alice, bob := group.Members[0].ID, group.Members[1].ID

	tests := []struct {
		name         string
		amount       string
		payer        int64
		participants []int64
		date         string
	}{
		{"zero amount", "0", alice, []int64{alice}, ""},
		{"negative amount", "-5", alice, []int64{alice}, ""},
		{"three decimals", "10.005", alice, []int64{alice}, ""},
		{"not a number", "ten", alice, []int64{alice}, ""},
		{"payer outside group", "10", 9999, []int64{alice}, ""},
		{"no participants", "10", alice, nil, ""},
		{"participant outside group", "10", alice, []int64{alice, 9999}, ""},
		{"duplicate participant", "10", alice, []int64{bob, bob}, ""},
		{"bad date", "10", alice, []int64{alice}, "15/03/2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
				GroupID:              group.ID,
				Amount:               tt.amount,
				PayerMemberID:        tt.payer,
				ParticipantMemberIDs: tt.participants,
				Date:                 tt.date,
			}))
			requireCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestExpenseService_UpdateListDelete(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createTrip(t)
	alice, bob, charlie := group.Members[0].ID, group.Members[1].ID, group.Members[2].ID

	first := env.addExpense(t, group.ID, "30", alice, alice, bob, charlie)
	second := env.addExpense(t, group.ID, "12.50", bob, alice, bob)

	updated, err := env.expenses.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
		GroupID:              group.ID,
		ExpenseID:            first.ID,
		Description:          "Groceries",
		Amount:               "45.01",
		PayerMemberID:        charlie,
		ParticipantMemberIDs: []int64{bob, charlie},
		Date:                 "2024-01-02",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Msg.Expense.Description)
	assert.Equal(t, "45.01", updated.Msg.Expense.Amount)
	assert.Equal(t, charlie, updated.Msg.Expense.PayerMemberID)
	assert.Equal(t, []api.ExpenseShare{
		{MemberID: bob, Amount: "22.51"},
		{MemberID: charlie, Amount: "22.50"},
	}, updated.Msg.Expense.Shares)

	list, err := env.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Expenses, 2)
	// Newest expense date first.
	assert.Equal(t, second.ID, list.Msg.Expenses[0].ID)
	assert.Equal(t, first.ID, list.Msg.Expenses[1].ID)

	_, err = env.expenses.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{
		GroupID:   group.ID,
		ExpenseID: second.ID,
	}))
	require.NoError(t, err)

	_, err = env.expenses.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{
		GroupID:   group.ID,
		ExpenseID: second.ID,
	}))
	requireCode(t, err, connect.CodeNotFound)

	list, err = env.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Expenses, 1)
}

func TestExpenseService_UpdateUnknownExpense(t *testing.T) {
	env := setupTestServer(t)
	group := env.createTrip(t)
	alice := group.Members[0].ID

	_, err := env.expenses.UpdateExpense(context.Background(), connect.NewRequest(&api.UpdateExpenseRequest{
		GroupID:              group.ID,
		ExpenseID:            4242,
		Amount:               "1",
		PayerMemberID:        alice,
		ParticipantMemberIDs: []int64{alice},
	}))
	requireCode(t, err, connect.CodeNotFound)
}
