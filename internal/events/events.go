// Package events publishes domain events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// PaymentUpdatedType is the routing type of PaymentUpdated messages.
const PaymentUpdatedType = "payment.updated"

// PaymentUpdated is emitted whenever a payment's status is refreshed from the
// gateway.
type PaymentUpdated struct {
	Type             string    `json:"type"`
	PaymentID        int64     `json:"payment_id"`
	GroupID          int64     `json:"group_id"`
	FromMemberID     int64     `json:"from_member_id"`
	ToMemberID       int64     `json:"to_member_id"`
	Amount           string    `json:"amount"`
	Status           string    `json:"status"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes.
func (m *PaymentUpdated) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentUpdatedFromJSON decodes a message.
func PaymentUpdatedFromJSON(data []byte) (*PaymentUpdated, error) {
	var msg PaymentUpdated
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Publisher sends domain events.
type Publisher interface {
	PublishPaymentUpdated(ctx context.Context, event PaymentUpdated) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishPaymentUpdated(context.Context, PaymentUpdated) error { return nil }
func (Nop) Close() error                                                { return nil }
