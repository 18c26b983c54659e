package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/payments"
	"github.com/mmynk/settleup/pkg/api"
)

// createPayment opens a checkout for Bob paying Alice.
func (e *testEnv) createPayment(t *testing.T, group *api.Group, amount string) *api.Payment {
	t.Helper()
	bob, alice := group.Members[1].ID, group.Members[0].ID

	e.gateway.EXPECT().
		CreatePreference(gomock.Any(), gomock.Any()).
		Return(&payments.Preference{ID: "pref-1", InitPoint: "https://checkout.example.com/pref-1"}, nil)

	resp, err := e.payments.CreatePaymentPreference(context.Background(), connect.NewRequest(&api.CreatePaymentPreferenceRequest{
		GroupID:      group.ID,
		FromMemberID: bob,
		ToMemberID:   alice,
		Amount:       amount,
	}))
	require.NoError(t, err)
	return resp.Msg.Payment
}

func TestPaymentService_CreatePaymentPreference(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createTrip(t)
	alice, bob := group.Members[0].ID, group.Members[1].ID

	var got payments.PreferenceRequest
	env.gateway.EXPECT().
		CreatePreference(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req payments.PreferenceRequest) (*payments.Preference, error) {
			got = req
			return &payments.Preference{ID: "pref-1", InitPoint: "https://checkout.example.com/pref-1"}, nil
		})

	resp, err := env.payments.CreatePaymentPreference(ctx, connect.NewRequest(&api.CreatePaymentPreferenceRequest{
		GroupID:      group.ID,
		FromMemberID: bob,
		ToMemberID:   alice,
		Amount:       "33.33",
	}))
	require.NoError(t, err)

	p := resp.Msg.Payment
	assert.Equal(t, "https://checkout.example.com/pref-1", resp.Msg.CheckoutURL)
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, "pref-1", p.PreferenceID)
	assert.Equal(t, "33.33", p.Amount)

	assert.Equal(t, "Debt payment - Trip", got.Title)
	assert.Equal(t, "Bob pays Alice", got.Description)
	assert.True(t, decimal.RequireFromString("33.33").Equal(got.Amount))
	assert.Equal(t, "ARS", got.Currency)
	assert.Equal(t, "https://api.example.com/payments/webhook", got.NotificationURL)
	assert.Equal(t, fmt.Sprintf("payment_%d", p.ID), got.ExternalReference)
	assert.NotEmpty(t, got.IdempotencyKey)

	balances, err := env.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Empty(t, balances.Msg.Summary.SimplifiedDebts)
}

func TestPaymentService_CreatePaymentPreferenceErrors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createTrip(t)
	alice, bob := group.Members[0].ID, group.Members[1].ID

	_, err := env.payments.CreatePaymentPreference(ctx, connect.NewRequest(&api.CreatePaymentPreferenceRequest{
		GroupID:      group.ID,
		FromMemberID: bob,
		ToMemberID:   bob,
		Amount:       "10",
	}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.payments.CreatePaymentPreference(ctx, connect.NewRequest(&api.CreatePaymentPreferenceRequest{
		GroupID:      group.ID,
		FromMemberID: bob,
		ToMemberID:   alice,
		Amount:       "0",
	}))
	requireCode(t, err, connect.CodeInvalidArgument)

	env.gateway.EXPECT().
		CreatePreference(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("status 503: %w", payments.ErrGatewayUnavailable))

	_, err = env.payments.CreatePaymentPreference(ctx, connect.NewRequest(&api.CreatePaymentPreferenceRequest{
		GroupID:      group.ID,
		FromMemberID: bob,
		ToMemberID:   alice,
		Amount:       "10",
	}))
	requireCode(t, err, connect.CodeUnavailable)

	// The failed attempt leaves nothing behind.
	list, err := env.payments.ListGroupPayments(ctx, connect.NewRequest(&api.ListGroupPaymentsRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Payments)
}

func TestPaymentService_GetPaymentStatusPolls(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createTrip(t)
	alice, bob, charlie := group.Members[0].ID, group.Members[1].ID, group.Members[2].ID
	env.addExpense(t, group.ID, "90", alice, alice, bob, charlie)

	payment := env.createPayment(t, group, "30")

	balances, err := env.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	debt := balances.Msg.Summary.SimplifiedDebts[0]
	assert.Equal(t, bob, debt.FromMemberID)
	assert.Equal(t, "pending", debt.PaymentStatus)
	assert.Equal(t, payment.ID, debt.PaymentID)
	assert.Nil(t, debt.PaidAmount)

	env.gateway.EXPECT().
		SearchPayments(gomock.Any(), payments.ExternalReference(payment.ID)).
		Return([]payments.GatewayPayment{
			{ID: "mp-9", Status: "approved", ExternalReference: payments.ExternalReference(payment.ID)},
			{ID: "mp-8", Status: "rejected", ExternalReference: payments.ExternalReference(payment.ID)},
		}, nil)

	status, err := env.payments.GetPaymentStatus(ctx, connect.NewRequest(&api.GetPaymentStatusRequest{PaymentID: payment.ID}))
	require.NoError(t, err)
	assert.Equal(t, "approved", status.Msg.Payment.Status)
	assert.Equal(t, "mp-9", status.Msg.Payment.GatewayPaymentID)

	published := env.publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, payment.ID, published[0].PaymentID)
	assert.Equal(t, "approved", published[0].Status)
	assert.Equal(t, "30.00", published[0].Amount)

	// Settled payments are not polled again.
	status, err = env.payments.GetPaymentStatus(ctx, connect.NewRequest(&api.GetPaymentStatusRequest{PaymentID: payment.ID}))
	require.NoError(t, err)
	assert.Equal(t, "approved", status.Msg.Payment.Status)

	balances, err = env.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	debt = balances.Msg.Summary.SimplifiedDebts[0]
	assert.Equal(t, "approved", debt.PaymentStatus)
	require.NotNil(t, debt.PaidAmount)
	assert.Equal(t, "30.00", *debt.PaidAmount)
	// Transfers are still derived from expenses only.
	assert.Equal(t, "30.00", debt.Amount)
}

func TestPaymentService_GetPaymentStatusGatewayDown(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createTrip(t)
	payment := env.createPayment(t, group, "10")

	env.gateway.EXPECT().
		SearchPayments(gomock.Any(), gomock.Any()).
		Return(nil, payments.ErrGatewayUnavailable)

	status, err := env.payments.GetPaymentStatus(ctx, connect.NewRequest(&api.GetPaymentStatusRequest{PaymentID: payment.ID}))
	require.NoError(t, err)
	assert.Equal(t, "pending", status.Msg.Payment.Status)
	assert.Empty(t, env.publisher.published())
}

func TestPaymentService_PaymentsArePrivate(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createTrip(t)
	payment := env.createPayment(t, group, "10")

	env.signIn(t, "mallory@example.com", "Mallory")

	_, err := env.payments.GetPaymentStatus(ctx, connect.NewRequest(&api.GetPaymentStatusRequest{PaymentID: payment.ID}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = env.payments.ListGroupPayments(ctx, connect.NewRequest(&api.ListGroupPaymentsRequest{GroupID: group.ID}))
	requireCode(t, err, connect.CodeNotFound)
}

func postWebhook(t *testing.T, env *testEnv, body string, sign func(h http.Header)) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, env.server.URL+WebhookPath, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if sign != nil {
		sign(req.Header)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out.Status
}

func signedBy(secret, dataID string) func(h http.Header) {
	return func(h http.Header) {
		const ts, requestID = "1704067200", "req-1"
		h.Set("X-Request-Id", requestID)
		h.Set("X-Signature", fmt.Sprintf("ts=%s,v1=%s", ts, payments.Sign(secret, dataID, requestID, ts)))
	}
}

func TestPaymentService_Webhook(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createTrip(t)
	payment := env.createPayment(t, group, "10")

	env.gateway.EXPECT().
		GetPayment(gomock.Any(), "123").
		Return(&payments.GatewayPayment{
			ID:                "123",
			Status:            "charged_back",
			ExternalReference: payments.ExternalReference(payment.ID),
		}, nil)

	code, status := postWebhook(t, env, `{"type":"payment","data":{"id":123}}`, signedBy(testWebhookSecret, "123"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", status)

	list, err := env.payments.ListGroupPayments(ctx, connect.NewRequest(&api.ListGroupPaymentsRequest{GroupID: group.ID}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Payments, 1)
	assert.Equal(t, "cancelled", list.Msg.Payments[0].Status)
	assert.Equal(t, "123", list.Msg.Payments[0].GatewayPaymentID)

	published := env.publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, "cancelled", published[0].Status)
}

func TestPaymentService_WebhookRejectsAndIgnores(t *testing.T) {
	env := setupTestServer(t)

	t.Run("non-payment notification", func(t *testing.T) {
		code, status := postWebhook(t, env, `{"type":"merchant_order","data":{"id":"1"}}`, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", status)
	})

	t.Run("missing id", func(t *testing.T) {
		code, status := postWebhook(t, env, `{"type":"payment"}`, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", status)
	})

	t.Run("unsigned", func(t *testing.T) {
		code, _ := postWebhook(t, env, `{"type":"payment","data":{"id":"55"}}`, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		code, _ := postWebhook(t, env, `{"type":"payment","data":{"id":"55"}}`, signedBy("other", "55"))
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("gateway error", func(t *testing.T) {
		env.gateway.EXPECT().GetPayment(gomock.Any(), "55").Return(nil, payments.ErrGatewayUnavailable)
		code, status := postWebhook(t, env, `{"type":"payment","data":{"id":"55"}}`, signedBy(testWebhookSecret, "55"))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "error", status)
	})

	t.Run("foreign reference", func(t *testing.T) {
		env.gateway.EXPECT().GetPayment(gomock.Any(), "56").Return(&payments.GatewayPayment{
			ID:                "56",
			Status:            "approved",
			ExternalReference: "order-77",
		}, nil)
		code, status := postWebhook(t, env, `{"type":"payment","data":{"id":"56"}}`, signedBy(testWebhookSecret, "56"))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", status)
	})

	t.Run("unknown payment", func(t *testing.T) {
		env.gateway.EXPECT().GetPayment(gomock.Any(), "57").Return(&payments.GatewayPayment{
			ID:                "57",
			Status:            "approved",
			ExternalReference: payments.ExternalReference(4242),
		}, nil)
		code, status := postWebhook(t, env, `{"type":"payment","data":{"id":"57"}}`, signedBy(testWebhookSecret, "57"))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", status)
	})

	assert.Empty(t, env.publisher.published())
}
