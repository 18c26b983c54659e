package api

// CreateExpenseRequest records a new expense. Amount is a decimal string
// with at most two fractional digits; Date defaults to today.
type CreateExpenseRequest struct {
	GroupID              int64   `json:"group_id"`
	Description          string  `json:"description,omitempty"`
	Amount               string  `json:"amount"`
	PayerMemberID        int64   `json:"payer_member_id"`
	ParticipantMemberIDs []int64 `json:"participant_member_ids"`
	Date                 string  `json:"date,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID int64 `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type UpdateExpenseRequest struct {
	GroupID              int64   `json:"group_id"`
	ExpenseID            int64   `json:"expense_id"`
	Description          string  `json:"description,omitempty"`
	Amount               string  `json:"amount"`
	PayerMemberID        int64   `json:"payer_member_id"`
	ParticipantMemberIDs []int64 `json:"participant_member_ids"`
	Date                 string  `json:"date,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	GroupID   int64 `json:"group_id"`
	ExpenseID int64 `json:"expense_id"`
}

type DeleteExpenseResponse struct{}
