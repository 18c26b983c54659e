package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/payments"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// WebhookPath is where the gateway posts payment notifications.
const WebhookPath = "/payments/webhook"

// Webhook outcomes recorded in metrics.
const (
	webhookIgnored      = "ignored"
	webhookUnauthorized = "unauthorized"
	webhookGatewayError = "gateway_error"
	webhookUnmatched    = "unmatched"
	webhookUpdated      = "updated"
	webhookFailed       = "failed"
)

var errSamePayer = errors.New("from and to members must differ")

// PaymentConfig holds the settings the payment flow needs.
type PaymentConfig struct {
	// BackendURL is the public base URL the gateway notifies.
	BackendURL string
	Currency   string
	Verifier   *payments.SignatureVerifier
}

// PaymentService implements the Connect PaymentService and the gateway
// webhook.
type PaymentService struct {
	store     storage.Store
	gateway   payments.Gateway
	publisher events.Publisher
	cfg       PaymentConfig
	metrics   *metrics.Metrics
}

var _ apiconnect.PaymentServiceHandler = (*PaymentService)(nil)

// NewPaymentService creates a PaymentService. A nil publisher discards
// events; m may be nil.
func NewPaymentService(store storage.Store, gateway payments.Gateway, publisher events.Publisher, cfg PaymentConfig, m *metrics.Metrics) *PaymentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if cfg.Verifier == nil {
		cfg.Verifier = payments.NewSignatureVerifier("", true)
	}
	return &PaymentService{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		cfg:       cfg,
		metrics:   m,
	}
}

// CreatePaymentPreference records a pending payment for one transfer and
// opens a checkout for it at the gateway.
func (s *PaymentService) CreatePaymentPreference(ctx context.Context, req *connect.Request[api.CreatePaymentPreferenceRequest]) (*connect.Response[api.CreatePaymentPreferenceResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreatePaymentPreference request received",
		"group_id", req.Msg.GroupID,
		"from_member_id", req.Msg.FromMemberID,
		"to_member_id", req.Msg.ToMemberID,
		"amount", req.Msg.Amount,
	)

	group, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, false)
	if err != nil {
		return nil, err
	}

	from, ok := findMember(group, req.Msg.FromMemberID)
	if !ok {
		return nil, invalidArgument("member %d is not in group %d", req.Msg.FromMemberID, group.ID)
	}
	to, ok := findMember(group, req.Msg.ToMemberID)
	if !ok {
		return nil, invalidArgument("member %d is not in group %d", req.Msg.ToMemberID, group.ID)
	}
	if from.ID == to.ID {
		return nil, connect.NewError(connect.CodeInvalidArgument, errSamePayer)
	}
	amount, err := parseAmount("amount", req.Msg.Amount)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		GroupID:      group.ID,
		FromMemberID: from.ID,
		ToMemberID:   to.ID,
		Amount:       amount,
		Status:       models.PaymentPending,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.Error("CreatePaymentPreference failed - storage error", "error", err)
		return nil, storeError(err)
	}

	pref, err := s.gateway.CreatePreference(ctx, payments.PreferenceRequest{
		Title:             "Debt payment - " + group.Name,
		Description:       fmt.Sprintf("%s pays %s", from.DisplayName, to.DisplayName),
		Amount:            amount,
		Currency:          s.cfg.Currency,
		NotificationURL:   strings.TrimRight(s.cfg.BackendURL, "/") + WebhookPath,
		ExternalReference: payments.ExternalReference(payment.ID),
		IdempotencyKey:    uuid.NewString(),
	})
	if err != nil {
		slog.Error("CreatePaymentPreference failed - gateway error", "payment_id", payment.ID, "error", err)
		if delErr := s.store.DeletePayment(ctx, payment.ID); delErr != nil {
			slog.Error("Failed to discard payment", "payment_id", payment.ID, "error", delErr)
		}
		return nil, gatewayError(err)
	}

	if err := s.store.SetPaymentPreference(ctx, payment.ID, pref.ID); err != nil {
		slog.Error("CreatePaymentPreference failed - storage error", "error", err)
		return nil, storeError(err)
	}
	payment.PreferenceID = pref.ID

	slog.Info("Payment preference created", "payment_id", payment.ID, "preference_id", pref.ID)
	return connect.NewResponse(&api.CreatePaymentPreferenceResponse{
		Payment:     toAPIPayment(payment),
		CheckoutURL: pref.InitPoint,
	}), nil
}

func gatewayError(err error) error {
	switch {
	case errors.Is(err, payments.ErrGatewayUnavailable):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, payments.ErrNotConfigured):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// ListGroupPayments returns every payment of a group, newest first.
func (s *PaymentService) ListGroupPayments(ctx context.Context, req *connect.Request[api.ListGroupPaymentsRequest]) (*connect.Response[api.ListGroupPaymentsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroupPayments request received", "group_id", req.Msg.GroupID)

	if _, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, false); err != nil {
		return nil, err
	}

	list, err := s.store.ListPayments(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListGroupPayments failed", "error", err)
		return nil, storeError(err)
	}

	out := make([]api.Payment, len(list))
	for i, p := range list {
		out[i] = *toAPIPayment(p)
	}

	slog.Info("ListGroupPayments successful", "group_id", req.Msg.GroupID, "count", len(out))
	return connect.NewResponse(&api.ListGroupPaymentsResponse{Payments: out}), nil
}

// GetPaymentStatus returns a payment. While it is pending with an open
// checkout, the gateway is polled first; polling failures are not surfaced.
func (s *PaymentService) GetPaymentStatus(ctx context.Context, req *connect.Request[api.GetPaymentStatusRequest]) (*connect.Response[api.GetPaymentStatusResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetPaymentStatus request received", "payment_id", req.Msg.PaymentID)

	payment, err := s.store.GetPayment(ctx, req.Msg.PaymentID)
	if err != nil {
		return nil, storeError(err)
	}
	// Payments of other users' groups are reported as missing.
	if _, err := s.store.GetGroup(ctx, userID, payment.GroupID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("payment %d: %w", payment.ID, storage.ErrNotFound))
		}
		return nil, storeError(err)
	}

	if payment.Status == models.PaymentPending && payment.PreferenceID != "" {
		results, err := s.gateway.SearchPayments(ctx, payments.ExternalReference(payment.ID))
		switch {
		case err != nil:
			slog.Warn("Payment status poll failed", "payment_id", payment.ID, "error", err)
		case len(results) > 0:
			if updated, err := s.applyGatewayStatus(ctx, payment, results[0]); err != nil {
				slog.Warn("Payment status update failed", "payment_id", payment.ID, "error", err)
			} else {
				payment = updated
			}
		}
	}

	slog.Info("GetPaymentStatus successful", "payment_id", payment.ID, "status", payment.Status)
	return connect.NewResponse(&api.GetPaymentStatusResponse{Payment: toAPIPayment(payment)}), nil
}

// applyGatewayStatus stores the gateway's view of a payment and announces it.
func (s *PaymentService) applyGatewayStatus(ctx context.Context, payment *models.Payment, gp payments.GatewayPayment) (*models.Payment, error) {
	status := payments.MapStatus(gp.Status)
	if err := s.store.UpdatePaymentStatus(ctx, payment.ID, gp.ID, status); err != nil {
		return nil, err
	}
	updated, err := s.store.GetPayment(ctx, payment.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("Payment status updated",
		"payment_id", updated.ID,
		"gateway_payment_id", updated.GatewayPaymentID,
		"gateway_status", gp.Status,
		"status", updated.Status,
	)
	s.publish(ctx, updated)
	return updated, nil
}

// publish announces a payment update. Failures are logged only.
func (s *PaymentService) publish(ctx context.Context, p *models.Payment) {
	err := s.publisher.PublishPaymentUpdated(ctx, events.PaymentUpdated{
		Type:             events.PaymentUpdatedType,
		PaymentID:        p.ID,
		GroupID:          p.GroupID,
		FromMemberID:     p.FromMemberID,
		ToMemberID:       p.ToMemberID,
		Amount:           formatMoney(p.Amount),
		Status:           string(p.Status),
		GatewayPaymentID: p.GatewayPaymentID,
		Timestamp:        time.Now().UTC(),
	})
	s.metrics.ObserveEvent(err)
	if err != nil {
		slog.Error("Failed to publish payment event", "payment_id", p.ID, "error", err)
	}
}

// notification is the body the gateway posts to the webhook.
type notification struct {
	Type string `json:"type"`
	Data struct {
		// ID arrives as a string or a number.
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

func (n *notification) dataID() string {
	raw := bytes.TrimSpace(n.Data.ID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}
	return ""
}

// WebhookHandler returns the HTTP handler for gateway notifications.
//
// The gateway retries anything that is not a 2xx, so notifications that
// cannot be matched to a local payment are still acknowledged.
func (s *PaymentService) WebhookHandler() http.Handler {
	return http.HandlerFunc(s.handleWebhook)
}

func (s *PaymentService) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	var n notification
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&n); err != nil {
		slog.Debug("Webhook body not decodable", "error", err)
	}
	if n.Type == "" {
		n.Type = r.URL.Query().Get("type")
	}
	dataID := n.dataID()
	if dataID == "" {
		dataID = r.URL.Query().Get("data.id")
	}

	if n.Type != "payment" || dataID == "" {
		s.webhookDone(w, http.StatusOK, "ok", webhookIgnored)
		return
	}

	if !s.cfg.Verifier.Verify(r.Header.Get("X-Signature"), r.Header.Get("X-Request-Id"), dataID) {
		slog.Warn("Webhook signature rejected", "data_id", dataID)
		s.webhookDone(w, http.StatusUnauthorized, "invalid signature", webhookUnauthorized)
		return
	}

	gp, err := s.gateway.GetPayment(ctx, dataID)
	if err != nil {
		slog.Error("Webhook failed - could not fetch gateway payment", "data_id", dataID, "error", err)
		s.webhookDone(w, http.StatusOK, "error", webhookGatewayError)
		return
	}

	paymentID, ok := payments.ParseExternalReference(gp.ExternalReference)
	if !ok {
		slog.Info("Webhook for foreign payment", "data_id", dataID, "external_reference", gp.ExternalReference)
		s.webhookDone(w, http.StatusOK, "ok", webhookUnmatched)
		return
	}

	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Info("Webhook for unknown payment", "payment_id", paymentID)
			s.webhookDone(w, http.StatusOK, "ok", webhookUnmatched)
			return
		}
		slog.Error("Webhook failed - storage error", "payment_id", paymentID, "error", err)
		s.webhookDone(w, http.StatusInternalServerError, "error", webhookFailed)
		return
	}

	if gp.ID == "" {
		gp.ID = dataID
	}
	if _, err := s.applyGatewayStatus(ctx, payment, *gp); err != nil {
		slog.Error("Webhook failed - storage error", "payment_id", paymentID, "error", err)
		s.webhookDone(w, http.StatusInternalServerError, "error", webhookFailed)
		return
	}

	s.webhookDone(w, http.StatusOK, "ok", webhookUpdated)
}

func (s *PaymentService) webhookDone(w http.ResponseWriter, code int, status, outcome string) {
	s.metrics.ObserveWebhook(outcome)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
