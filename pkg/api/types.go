package api

// User is a registered account.
type User struct {
	ID            int64          `json:"id"`
	Email         string         `json:"email"`
	DisplayName   string         `json:"display_name"`
	PaymentTarget *PaymentTarget `json:"payment_target,omitempty"`
	CreatedAt     int64          `json:"created_at"`
}

// PaymentTarget is where someone receives transfers.
type PaymentTarget struct {
	Alias      string `json:"alias,omitempty"`
	AccountRef string `json:"account_ref,omitempty"`
}

type Contact struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Alias      string `json:"alias,omitempty"`
	AccountRef string `json:"account_ref,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

type Member struct {
	ID           int64    `json:"id"`
	DisplayName  string   `json:"display_name"`
	IsGroupOwner bool     `json:"is_group_owner"`
	Contact      *Contact `json:"contact,omitempty"`
}

type Group struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	IsActive    bool     `json:"is_active"`
	Members     []Member `json:"members"`
	CreatedAt   int64    `json:"created_at"`
}

type ExpenseShare struct {
	MemberID int64  `json:"member_id"`
	Amount   string `json:"amount"`
}

type Expense struct {
	ID            int64          `json:"id"`
	GroupID       int64          `json:"group_id"`
	Description   string         `json:"description"`
	Amount        string         `json:"amount"`
	PayerMemberID int64          `json:"payer_member_id"`
	Date          string         `json:"date"`
	Shares        []ExpenseShare `json:"shares"`
	CreatedAt     int64          `json:"created_at"`
}

type Payment struct {
	ID               int64  `json:"id"`
	GroupID          int64  `json:"group_id"`
	FromMemberID     int64  `json:"from_member_id"`
	ToMemberID       int64  `json:"to_member_id"`
	Amount           string `json:"amount"`
	Status           string `json:"status"`
	PreferenceID     string `json:"preference_id,omitempty"`
	GatewayPaymentID string `json:"gateway_payment_id,omitempty"`
	CreatedAt        int64  `json:"created_at"`
	UpdatedAt        int64  `json:"updated_at"`
}

// MemberBalance is one member's totals across a group's expenses.
// A positive net balance means the group owes the member.
type MemberBalance struct {
	MemberID    int64    `json:"member_id"`
	DisplayName string   `json:"display_name"`
	TotalPaid   string   `json:"total_paid"`
	TotalShare  string   `json:"total_share"`
	NetBalance  string   `json:"net_balance"`
	Contact     *Contact `json:"contact,omitempty"`
}

// DebtTransfer is one suggested transfer with the state of any payment made
// against it.
type DebtTransfer struct {
	FromMemberID    int64  `json:"from_member_id"`
	FromDisplayName string `json:"from_display_name"`
	ToMemberID      int64  `json:"to_member_id"`
	ToDisplayName   string `json:"to_display_name"`
	Amount          string `json:"amount"`
	ToAlias         string `json:"to_alias,omitempty"`
	ToAccountRef    string `json:"to_account_ref,omitempty"`

	PaidAmount    *string `json:"paid_amount,omitempty"`
	PaymentStatus string  `json:"payment_status,omitempty"`
	PaymentID     int64   `json:"payment_id,omitempty"`
}

type GroupBalanceSummary struct {
	GroupID         int64           `json:"group_id"`
	GroupName       string          `json:"group_name"`
	TotalExpenses   string          `json:"total_expenses"`
	Balances        []MemberBalance `json:"balances"`
	SimplifiedDebts []DebtTransfer  `json:"simplified_debts"`
}
