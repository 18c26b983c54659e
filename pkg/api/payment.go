package api

type CreatePaymentPreferenceRequest struct {
	GroupID      int64  `json:"group_id"`
	FromMemberID int64  `json:"from_member_id"`
	ToMemberID   int64  `json:"to_member_id"`
	Amount       string `json:"amount"`
}

type CreatePaymentPreferenceResponse struct {
	Payment     *Payment `json:"payment"`
	CheckoutURL string   `json:"checkout_url"`
}

type ListGroupPaymentsRequest struct {
	GroupID int64 `json:"group_id"`
}

type ListGroupPaymentsResponse struct {
	Payments []Payment `json:"payments"`
}

type GetPaymentStatusRequest struct {
	PaymentID int64 `json:"payment_id"`
}

type GetPaymentStatusResponse struct {
	Payment *Payment `json:"payment"`
}
