// Package mercadopago implements payments.Gateway against the Mercado Pago
// REST API.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/payments"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.mercadopago.com"

var _ payments.Gateway = (*Client)(nil)

// Client talks to the Mercado Pago API with an access token.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.httpClient = c }
}

// New creates a client. An empty baseURL uses DefaultBaseURL.
func New(baseURL, accessToken string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type preferenceItem struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Quantity    int         `json:"quantity"`
	UnitPrice   json.Number `json:"unit_price"`
	CurrencyID  string      `json:"currency_id"`
}

type preferenceBody struct {
	Items             []preferenceItem `json:"items"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	ExternalReference string           `json:"external_reference"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// paymentResponse mirrors the fields we read from /v1/payments.
// The id is numeric in the API.
type paymentResponse struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	ExternalReference string      `json:"external_reference"`
}

type searchResponse struct {
	Results []paymentResponse `json:"results"`
}

// CreatePreference creates a checkout preference for one item.
func (c *Client) CreatePreference(ctx context.Context, req payments.PreferenceRequest) (*payments.Preference, error) {
	body := preferenceBody{
		Items: []preferenceItem{{
			Title:       req.Title,
			Description: req.Description,
			Quantity:    1,
			UnitPrice:   json.Number(req.Amount.StringFixed(2)),
			CurrencyID:  req.Currency,
		}},
		NotificationURL:   req.NotificationURL,
		ExternalReference: req.ExternalReference,
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	var resp preferenceResponse
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", body, idempotencyKey, &resp); err != nil {
		return nil, fmt.Errorf("failed to create preference: %w", err)
	}

	slog.Debug("Mercado Pago preference created",
		"preference_id", resp.ID,
		"external_reference", req.ExternalReference,
	)
	return &payments.Preference{ID: resp.ID, InitPoint: resp.InitPoint}, nil
}

// GetPayment fetches one payment by gateway id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*payments.GatewayPayment, error) {
	var resp paymentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, "", &resp); err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	p := toGatewayPayment(resp)
	return &p, nil
}

// SearchPayments lists payments for an external reference, newest first.
func (c *Client) SearchPayments(ctx context.Context, externalReference string) ([]payments.GatewayPayment, error) {
	q := url.Values{}
	q.Set("external_reference", externalReference)
	q.Set("sort", "date_created")
	q.Set("criteria", "desc")

	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/search?"+q.Encode(), nil, "", &resp); err != nil {
		return nil, fmt.Errorf("failed to search payments: %w", err)
	}

	out := make([]payments.GatewayPayment, len(resp.Results))
	for i, r := range resp.Results {
		out[i] = toGatewayPayment(r)
	}
	return out, nil
}

func toGatewayPayment(r paymentResponse) payments.GatewayPayment {
	return payments.GatewayPayment{
		ID:                r.ID.String(),
		Status:            r.Status,
		ExternalReference: r.ExternalReference,
	}
}

func (c *Client) do(ctx context.Context, method, path string, in any, idempotencyKey string, out any) error {
	if c.accessToken == "" {
		return payments.ErrNotConfigured
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", payments.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", payments.ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", payments.ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d: %s", payments.ErrGatewayRejected, resp.StatusCode, truncate(data, 200))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
