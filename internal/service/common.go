package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const dateLayout = "2006-01-02"

var errGroupArchived = errors.New("group is archived")

// currentUser returns the authenticated user id set by RequireAuth.
func currentUser(ctx context.Context) (int64, error) {
	userID := middleware.GetUserID(ctx)
	if userID == 0 {
		return 0, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// storeError maps storage errors to Connect codes.
func storeError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// ownedGroup loads one of the caller's groups. Mutations pass
// requireActive so archived groups stay read-only.
func ownedGroup(ctx context.Context, store storage.Store, ownerID, groupID int64, requireActive bool) (*models.Group, error) {
	if groupID <= 0 {
		return nil, invalidArgument("group_id required")
	}
	group, err := store.GetGroup(ctx, ownerID, groupID)
	if err != nil {
		return nil, storeError(err)
	}
	if requireActive && !group.IsActive {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errGroupArchived)
	}
	return group, nil
}

// findMember returns the group member with the given id.
func findMember(group *models.Group, memberID int64) (models.Member, bool) {
	for _, m := range group.Members {
		if m.ID == memberID {
			return m, true
		}
	}
	return models.Member{}, false
}

// parseAmount parses a positive money amount with at most two decimals.
func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, invalidArgument("invalid %s %q", field, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, invalidArgument("%s must be greater than zero", field)
	}
	if !d.Equal(d.Truncate(calculator.MoneyPlaces)) {
		return decimal.Zero, invalidArgument("%s must not have more than 2 decimal places", field)
	}
	return d, nil
}

// parseDate parses a YYYY-MM-DD date; empty means today (UTC).
func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, invalidArgument("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(calculator.MoneyPlaces)
}
