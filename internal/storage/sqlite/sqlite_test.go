package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

// seedGroup creates a user, two contacts and a group with three members.
func seedGroup(t *testing.T, store *SQLiteStore) (*models.User, *models.Group) {
	t.Helper()
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	user.Target = models.PaymentTarget{Alias: "alice.alias", AccountRef: "0000001"}
	require.NoError(t, store.CreateUser(ctx, user))

	bob := &models.Contact{OwnerID: user.ID, Name: "Bob", Target: models.PaymentTarget{Alias: "bob.alias"}}
	require.NoError(t, store.CreateContact(ctx, bob))
	charlie := &models.Contact{OwnerID: user.ID, Name: "Charlie"}
	require.NoError(t, store.CreateContact(ctx, charlie))

	group := &models.Group{
		OwnerUserID: user.ID,
		Name:        "Trip",
		IsActive:    true,
		Members: []models.Member{
			{DisplayName: "Alice", IsGroupOwner: true},
			{DisplayName: "Bob", Contact: bob},
			{DisplayName: "Charlie", Contact: charlie},
		},
	}
	require.NoError(t, store.CreateGroup(ctx, group))
	return user, group
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("a@example.com", "A", "hash")
	require.NoError(t, store.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)
	assert.NotZero(t, user.CreatedAt)

	t.Run("duplicate email", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("a@example.com", "Other", "hash"))
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("lookup by email and id", func(t *testing.T) {
		byEmail, err := store.GetUserByEmail(ctx, "a@example.com")
		require.NoError(t, err)
		byID, err := store.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, byEmail, byID)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := store.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetUserByID(ctx, 999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("update target", func(t *testing.T) {
		target := models.PaymentTarget{Alias: "a.alias", AccountRef: "123"}
		require.NoError(t, store.UpdateUserTarget(ctx, user.ID, target))
		got, err := store.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, target, got.Target)
	})
}

func TestSQLiteStore_ContactsAndGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user, group := seedGroup(t, store)

	t.Run("contacts are listed by name", func(t *testing.T) {
		contacts, err := store.ListContacts(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, contacts, 2)
		assert.Equal(t, "Bob", contacts[0].Name)
		assert.Equal(t, "Charlie", contacts[1].Name)
	})

	t.Run("contacts are scoped to their owner", func(t *testing.T) {
		_, err := store.GetContact(ctx, user.ID+1, group.Members[1].Contact.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("group members load owner first with contacts", func(t *testing.T) {
		got, err := store.GetGroup(ctx, user.ID, group.ID)
		require.NoError(t, err)
		require.Len(t, got.Members, 3)
		assert.True(t, got.Members[0].IsGroupOwner)
		assert.Nil(t, got.Members[0].Contact)
		require.NotNil(t, got.Members[1].Contact)
		assert.Equal(t, "bob.alias", got.Members[1].Contact.Target.Alias)
	})

	t.Run("another user's group is not found", func(t *testing.T) {
		_, err := store.GetGroup(ctx, user.ID+1, group.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("contact cannot join a group twice", func(t *testing.T) {
		dup := &models.Member{GroupID: group.ID, DisplayName: "Bob", Contact: group.Members[1].Contact}
		assert.ErrorIs(t, store.AddMember(ctx, dup), storage.ErrAlreadyExists)
	})

	t.Run("active memberships", func(t *testing.T) {
		contactID := group.Members[1].Contact.ID
		n, err := store.CountActiveMemberships(ctx, contactID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		require.NoError(t, store.SetGroupActive(ctx, user.ID, group.ID, false))
		n, err = store.CountActiveMemberships(ctx, contactID)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		require.NoError(t, store.SetGroupActive(ctx, user.ID, group.ID, true))
	})

	t.Run("list groups puts archived last", func(t *testing.T) {
		archived := &models.Group{OwnerUserID: user.ID, Name: "Old", Members: []models.Member{{DisplayName: "Alice", IsGroupOwner: true}}}
		require.NoError(t, store.CreateGroup(ctx, archived))

		groups, err := store.ListGroups(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, group.ID, groups[0].ID)
		assert.False(t, groups[1].IsActive)
		assert.Len(t, groups[1].Members, 1)
	})
}

func TestSQLiteStore_Expenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, group := seedGroup(t, store)
	alice, bob, charlie := group.Members[0].ID, group.Members[1].ID, group.Members[2].ID

	expense := &models.Expense{
		GroupID:       group.ID,
		Amount:        decimal.RequireFromString("100"),
		PayerMemberID: alice,
		Date:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Shares: []models.ExpenseShare{
			{MemberID: charlie, Amount: decimal.RequireFromString("33.34")},
			{MemberID: alice, Amount: decimal.RequireFromString("33.33")},
			{MemberID: bob, Amount: decimal.RequireFromString("33.33")},
		},
	}
	require.NoError(t, store.CreateExpense(ctx, expense))
	assert.Equal(t, "Split with Charlie, Alice, Bob", expense.Description)

	t.Run("shares keep allocation order", func(t *testing.T) {
		got, err := store.GetExpense(ctx, group.ID, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{charlie, alice, bob}, got.ParticipantIDs())
		assert.True(t, got.Shares[0].Amount.Equal(decimal.RequireFromString("33.34")))
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(100)))
		assert.True(t, expense.Date.Equal(got.Date))
	})

	t.Run("member with shares has participations", func(t *testing.T) {
		n, err := store.CountParticipations(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("update replaces shares", func(t *testing.T) {
		expense.Description = "Dinner"
		expense.Amount = decimal.RequireFromString("10")
		expense.Shares = []models.ExpenseShare{
			{MemberID: bob, Amount: decimal.RequireFromString("10")},
		}
		require.NoError(t, store.UpdateExpense(ctx, expense))

		list, err := store.ListExpenses(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Dinner", list[0].Description)
		assert.Equal(t, []int64{bob}, list[0].ParticipantIDs())

		n, err := store.CountParticipations(ctx, charlie)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteExpense(ctx, group.ID, expense.ID))
		_, err := store.GetExpense(ctx, group.ID, expense.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteExpense(ctx, group.ID, expense.ID), storage.ErrNotFound)
	})
}

func TestSQLiteStore_PaymentsAndLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user, group := seedGroup(t, store)
	alice, bob := group.Members[0].ID, group.Members[1].ID

	require.NoError(t, store.CreateExpense(ctx, &models.Expense{
		GroupID:       group.ID,
		Description:   "Taxi",
		Amount:        decimal.RequireFromString("20"),
		PayerMemberID: alice,
		Shares: []models.ExpenseShare{
			{MemberID: alice, Amount: decimal.RequireFromString("10")},
			{MemberID: bob, Amount: decimal.RequireFromString("10")},
		},
	}))

	pending := &models.Payment{GroupID: group.ID, FromMemberID: bob, ToMemberID: alice, Amount: decimal.RequireFromString("10")}
	require.NoError(t, store.CreatePayment(ctx, pending))
	assert.Equal(t, models.PaymentPending, pending.Status)

	rejected := &models.Payment{GroupID: group.ID, FromMemberID: bob, ToMemberID: alice, Amount: decimal.RequireFromString("10")}
	require.NoError(t, store.CreatePayment(ctx, rejected))
	require.NoError(t, store.UpdatePaymentStatus(ctx, rejected.ID, "mp-1", models.PaymentRejected))

	t.Run("preference and status updates", func(t *testing.T) {
		require.NoError(t, store.SetPaymentPreference(ctx, pending.ID, "pref-1"))
		require.NoError(t, store.UpdatePaymentStatus(ctx, pending.ID, "", models.PaymentPending))
		got, err := store.GetPayment(ctx, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, "pref-1", got.PreferenceID)
		assert.Empty(t, got.GatewayPaymentID)

		assert.Error(t, store.UpdatePaymentStatus(ctx, pending.ID, "", models.PaymentStatus("refunded")))
	})

	t.Run("list returns all statuses", func(t *testing.T) {
		payments, err := store.ListPayments(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, payments, 2)
	})

	t.Run("ledger holds open payments only", func(t *testing.T) {
		ledger, err := store.LoadLedger(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, ledger.Owner.ID)
		assert.Equal(t, "alice.alias", ledger.Owner.Target.Alias)
		assert.Len(t, ledger.Group.Members, 3)
		assert.Len(t, ledger.Expenses, 1)
		require.Len(t, ledger.Payments, 1)
		assert.Equal(t, pending.ID, ledger.Payments[0].ID)
	})

	t.Run("ledger of unknown group", func(t *testing.T) {
		_, err := store.LoadLedger(ctx, 999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete payment", func(t *testing.T) {
		require.NoError(t, store.DeletePayment(ctx, pending.ID))
		_, err := store.GetPayment(ctx, pending.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestGenerateDescription(t *testing.T) {
	date := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		names []string
		want  string
	}{
		{nil, "Expense - Jan 2, 2025"},
		{[]string{"Alice"}, "Split with Alice"},
		{[]string{"Alice", "Bob", "Charlie"}, "Split with Alice, Bob, Charlie"},
		{[]string{"Alice", "Bob", "Charlie", "Dan", "Eve"}, "Split with Alice, Bob and 3 others"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, generateDescription(tt.names, date))
	}
}
