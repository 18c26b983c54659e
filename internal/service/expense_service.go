package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	store storage.Store
}

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// NewExpenseService creates a new ExpenseService with the given storage backend
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// expenseInput is the validated form shared by create and update.
type expenseInput struct {
	description  string
	amount       decimal.Decimal
	payerID      int64
	date         time.Time
	participants []int64
}

func validateExpense(group *models.Group, description, amount string, payerID int64, participants []int64, date string) (*expenseInput, error) {
	in := &expenseInput{description: strings.TrimSpace(description), payerID: payerID}

	var err error
	if in.amount, err = parseAmount("amount", amount); err != nil {
		return nil, err
	}
	if in.date, err = parseDate(date); err != nil {
		return nil, err
	}

	if _, ok := findMember(group, payerID); !ok {
		return nil, invalidArgument("payer %d is not a member of group %d", payerID, group.ID)
	}
	if len(participants) == 0 {
		return nil, invalidArgument("at least one participant is required")
	}
	seen := make(map[int64]bool, len(participants))
	for _, id := range participants {
		if seen[id] {
			return nil, invalidArgument("duplicate participant %d", id)
		}
		seen[id] = true
		if _, ok := findMember(group, id); !ok {
			return nil, invalidArgument("participant %d is not a member of group %d", id, group.ID)
		}
	}
	in.participants = participants

	return in, nil
}

// shares allocates the amount across participants in request order, so the
// first participant absorbs any remainder cents.
func (in *expenseInput) shares() ([]models.ExpenseShare, error) {
	alloc, err := calculator.AllocateShares(in.amount, in.participants)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	out := make([]models.ExpenseShare, len(alloc))
	for i, s := range alloc {
		out[i] = models.ExpenseShare{MemberID: s.MemberID, Amount: s.Amount}
	}
	return out, nil
}

// CreateExpense records an expense split equally among its participants.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"participants_count", len(req.Msg.ParticipantMemberIDs),
	)

	group, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, true)
	if err != nil {
		return nil, err
	}

	in, err := validateExpense(group, req.Msg.Description, req.Msg.Amount, req.Msg.PayerMemberID, req.Msg.ParticipantMemberIDs, req.Msg.Date)
	if err != nil {
		slog.Error("CreateExpense failed - validation error", "error", err)
		return nil, err
	}
	shares, err := in.shares()
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:       group.ID,
		Description:   in.description,
		Amount:        in.amount,
		PayerMemberID: in.payerID,
		Date:          in.date,
		Shares:        shares,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed - storage error", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses returns a group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	if _, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, false); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "error", err)
		return nil, storeError(err)
	}

	out := make([]api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = *toAPIExpense(e)
	}

	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// UpdateExpense replaces an expense and recomputes its shares.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateExpense request received",
		"group_id", req.Msg.GroupID,
		"expense_id", req.Msg.ExpenseID,
	)

	group, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, true)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetExpense(ctx, group.ID, req.Msg.ExpenseID)
	if err != nil {
		return nil, storeError(err)
	}

	in, err := validateExpense(group, req.Msg.Description, req.Msg.Amount, req.Msg.PayerMemberID, req.Msg.ParticipantMemberIDs, req.Msg.Date)
	if err != nil {
		slog.Error("UpdateExpense failed - validation error", "error", err)
		return nil, err
	}
	shares, err := in.shares()
	if err != nil {
		return nil, err
	}

	existing.Description = in.description
	existing.Amount = in.amount
	existing.PayerMemberID = in.payerID
	existing.Date = in.date
	existing.Shares = shares

	if err := s.store.UpdateExpense(ctx, existing); err != nil {
		slog.Error("UpdateExpense failed - storage error", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense updated", "expense_id", existing.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(existing)}), nil
}

// DeleteExpense removes an expense and its shares.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received",
		"group_id", req.Msg.GroupID,
		"expense_id", req.Msg.ExpenseID,
	)

	if _, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, true); err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, req.Msg.GroupID, req.Msg.ExpenseID); err != nil {
		slog.Error("DeleteExpense failed", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}
