package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/models"
)

func TestReconcilePayments(t *testing.T) {
	transfers := func() []DebtTransfer {
		return []DebtTransfer{
			{FromMemberID: 2, ToMemberID: 1, Amount: dec("33.33")},
			{FromMemberID: 3, ToMemberID: 1, Amount: dec("33.33")},
		}
	}

	t.Run("approved payment marks transfer paid", func(t *testing.T) {
		got := ReconcilePayments(transfers(), []models.Payment{
			{ID: 10, FromMemberID: 2, ToMemberID: 1, Amount: dec("33.33"), Status: models.PaymentApproved},
		})

		require.Len(t, got, 2)
		assert.Equal(t, models.PaymentApproved, got[0].PaymentStatus)
		require.NotNil(t, got[0].PaidAmount)
		assert.Equal(t, "33.33", got[0].PaidAmount.StringFixed(2))
		assert.Equal(t, int64(10), got[0].PaymentID)

		assert.Empty(t, got[1].PaymentStatus)
		assert.Nil(t, got[1].PaidAmount)
		assert.Zero(t, got[1].PaymentID)
	})

	t.Run("approved wins over an earlier pending", func(t *testing.T) {
		got := ReconcilePayments(transfers(), []models.Payment{
			{ID: 11, FromMemberID: 2, ToMemberID: 1, Amount: dec("5.00"), Status: models.PaymentPending},
			{ID: 12, FromMemberID: 2, ToMemberID: 1, Amount: dec("33.33"), Status: models.PaymentApproved},
		})
		assert.Equal(t, models.PaymentApproved, got[0].PaymentStatus)
		assert.Equal(t, int64(12), got[0].PaymentID)
	})

	t.Run("first approved stops the scan", func(t *testing.T) {
		got := ReconcilePayments(transfers(), []models.Payment{
			{ID: 13, FromMemberID: 2, ToMemberID: 1, Amount: dec("10.00"), Status: models.PaymentApproved},
			{ID: 14, FromMemberID: 2, ToMemberID: 1, Amount: dec("20.00"), Status: models.PaymentApproved},
		})
		assert.Equal(t, int64(13), got[0].PaymentID)
		assert.Equal(t, "10.00", got[0].PaidAmount.StringFixed(2))
	})

	t.Run("first pending is kept", func(t *testing.T) {
		got := ReconcilePayments(transfers(), []models.Payment{
			{ID: 15, FromMemberID: 3, ToMemberID: 1, Amount: dec("33.33"), Status: models.PaymentPending},
			{ID: 16, FromMemberID: 3, ToMemberID: 1, Amount: dec("33.33"), Status: models.PaymentPending},
		})
		assert.Equal(t, models.PaymentPending, got[1].PaymentStatus)
		assert.Equal(t, int64(15), got[1].PaymentID)
		assert.Nil(t, got[1].PaidAmount)
	})

	t.Run("rejected and cancelled are ignored", func(t *testing.T) {
		got := ReconcilePayments(transfers(), []models.Payment{
			{ID: 17, FromMemberID: 2, ToMemberID: 1, Amount: dec("33.33"), Status: models.PaymentRejected},
			{ID: 18, FromMemberID: 2, ToMemberID: 1, Amount: dec("33.33"), Status: models.PaymentCancelled},
		})
		assert.Empty(t, got[0].PaymentStatus)
	})

	t.Run("direction matters", func(t *testing.T) {
		got := ReconcilePayments(transfers(), []models.Payment{
			{ID: 19, FromMemberID: 1, ToMemberID: 2, Amount: dec("33.33"), Status: models.PaymentApproved},
		})
		assert.Empty(t, got[0].PaymentStatus)
	})

	t.Run("stale amount still matches on member pair", func(t *testing.T) {
		got := ReconcilePayments(transfers(), []models.Payment{
			{ID: 20, FromMemberID: 2, ToMemberID: 1, Amount: dec("12.00"), Status: models.PaymentApproved},
		})
		assert.Equal(t, models.PaymentApproved, got[0].PaymentStatus)
		assert.Equal(t, "33.33", got[0].Amount.StringFixed(2), "transfer amount must not change")
		assert.Equal(t, "12.00", got[0].PaidAmount.StringFixed(2))
	})

	t.Run("input is not modified", func(t *testing.T) {
		in := transfers()
		_ = ReconcilePayments(in, []models.Payment{
			{ID: 21, FromMemberID: 2, ToMemberID: 1, Amount: dec("33.33"), Status: models.PaymentApproved},
		})
		assert.Empty(t, in[0].PaymentStatus)
		assert.Nil(t, in[0].PaidAmount)
	})
}
