// Package payments defines the boundary to the external payment gateway.
//
// The engine never moves money; this package only creates checkout
// preferences and reads back what the gateway reports.
package payments

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks -source=gateway.go Gateway

var (
	// ErrNotConfigured is returned when no gateway credentials are set.
	ErrNotConfigured = errors.New("payment gateway is not configured")
	// ErrGatewayUnavailable wraps transport failures and 5xx responses.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected wraps 4xx responses.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")
)

const externalReferencePrefix = "payment_"

// PreferenceRequest describes a checkout for one transfer.
type PreferenceRequest struct {
	Title             string
	Description       string
	Amount            decimal.Decimal
	Currency          string
	NotificationURL   string
	ExternalReference string
	IdempotencyKey    string
}

// Preference is a created checkout.
type Preference struct {
	ID        string
	InitPoint string
}

// GatewayPayment is the gateway's view of a payment.
type GatewayPayment struct {
	ID                string
	Status            string
	ExternalReference string
}

// Gateway is the external payment provider.
type Gateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
	// SearchPayments returns payments carrying the external reference,
	// newest first.
	SearchPayments(ctx context.Context, externalReference string) ([]GatewayPayment, error)
}

// ExternalReference links a gateway payment back to a local payment id.
func ExternalReference(paymentID int64) string {
	return externalReferencePrefix + strconv.FormatInt(paymentID, 10)
}

// ParseExternalReference extracts the local payment id.
func ParseExternalReference(ref string) (int64, bool) {
	rest, ok := strings.CutPrefix(ref, externalReferencePrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// MapStatus folds the gateway's status vocabulary onto ours.
func MapStatus(gatewayStatus string) models.PaymentStatus {
	switch strings.ToLower(gatewayStatus) {
	case "approved":
		return models.PaymentApproved
	case "rejected":
		return models.PaymentRejected
	case "cancelled", "refunded", "charged_back":
		return models.PaymentCancelled
	default:
		return models.PaymentPending
	}
}
