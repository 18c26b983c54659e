package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var (
	errOwnerMember     = errors.New("the group owner cannot be removed")
	errMemberHasShares = errors.New("member has expenses and cannot be removed")
)

// GroupService implements the Connect GroupService
type GroupService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService with the given storage backend.
// m may be nil.
func NewGroupService(store storage.Store, m *metrics.Metrics) *GroupService {
	return &GroupService{store: store, metrics: m}
}

// CreateGroup creates a group whose first member is the caller, followed by
// one member per contact.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"contacts_count", len(req.Msg.ContactIDs),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name required")
	}

	owner, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, storeError(err)
	}

	group := &models.Group{
		OwnerUserID: userID,
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		IsActive:    true,
		Members: []models.Member{
			{DisplayName: owner.DisplayName, IsGroupOwner: true},
		},
	}

	seen := make(map[int64]bool, len(req.Msg.ContactIDs))
	for _, contactID := range req.Msg.ContactIDs {
		if seen[contactID] {
			return nil, invalidArgument("duplicate contact %d", contactID)
		}
		seen[contactID] = true

		contact, err := s.store.GetContact(ctx, userID, contactID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, invalidArgument("unknown contact %d", contactID)
			}
			return nil, storeError(err)
		}
		group.Members = append(group.Members, models.Member{
			DisplayName: contact.Name,
			Contact:     contact,
		})
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Group created", "group_id", group.ID, "members_count", len(group.Members))
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, false)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, err
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves the caller's groups, active first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received")

	groups, err := s.store.ListGroups(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, storeError(err)
	}

	out := make([]api.Group, len(groups))
	for i, g := range groups {
		out[i] = *toAPIGroup(g)
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup renames a group or changes its description.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateGroup request received",
		"group_id", req.Msg.GroupID,
		"name", req.Msg.Name,
	)

	group, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, true)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name required")
	}
	group.Name = name
	group.Description = strings.TrimSpace(req.Msg.Description)

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Group updated", "group_id", group.ID)
	return connect.NewResponse(&api.UpdateGroupResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup archives a group. Its history is kept.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if _, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, false); err != nil {
		return nil, err
	}

	if err := s.store.SetGroupActive(ctx, userID, req.Msg.GroupID, false); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// ToggleGroupActive archives an active group or restores an archived one.
func (s *GroupService) ToggleGroupActive(ctx context.Context, req *connect.Request[api.ToggleGroupActiveRequest]) (*connect.Response[api.ToggleGroupActiveResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ToggleGroupActive request received", "group_id", req.Msg.GroupID)

	group, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, false)
	if err != nil {
		return nil, err
	}

	group.IsActive = !group.IsActive
	if err := s.store.SetGroupActive(ctx, userID, group.ID, group.IsActive); err != nil {
		slog.Error("ToggleGroupActive failed", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Group status changed", "group_id", group.ID, "is_active", group.IsActive)
	return connect.NewResponse(&api.ToggleGroupActiveResponse{Group: toAPIGroup(group)}), nil
}

// AddMember adds one of the caller's contacts to a group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "contact_id", req.Msg.ContactID)

	if _, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, true); err != nil {
		return nil, err
	}

	contact, err := s.store.GetContact(ctx, userID, req.Msg.ContactID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, invalidArgument("unknown contact %d", req.Msg.ContactID)
		}
		return nil, storeError(err)
	}

	member, err := s.addMember(ctx, req.Msg.GroupID, contact)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AddMemberResponse{Member: member}), nil
}

// QuickAddMember creates a contact and adds it to the group.
func (s *GroupService) QuickAddMember(ctx context.Context, req *connect.Request[api.QuickAddMemberRequest]) (*connect.Response[api.QuickAddMemberResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("QuickAddMember request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	if _, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, true); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name required")
	}

	contact := &models.Contact{
		OwnerID: userID,
		Name:    name,
		Target: models.PaymentTarget{
			Alias:      strings.TrimSpace(req.Msg.Alias),
			AccountRef: strings.TrimSpace(req.Msg.AccountRef),
		},
	}
	if err := s.store.CreateContact(ctx, contact); err != nil {
		slog.Error("QuickAddMember failed", "error", err)
		return nil, storeError(err)
	}

	member, err := s.addMember(ctx, req.Msg.GroupID, contact)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.QuickAddMemberResponse{Member: member}), nil
}

func (s *GroupService) addMember(ctx context.Context, groupID int64, contact *models.Contact) (*api.Member, error) {
	member := &models.Member{
		GroupID:     groupID,
		DisplayName: contact.Name,
		Contact:     contact,
	}
	if err := s.store.AddMember(ctx, member); err != nil {
		slog.Error("AddMember failed", "group_id", groupID, "contact_id", contact.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Member added", "group_id", groupID, "member_id", member.ID)
	out := toAPIMember(*member)
	return &out, nil
}

// RemoveMember removes a member that has no expense history. The owner
// member is permanent.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)

	group, err := ownedGroup(ctx, s.store, userID, req.Msg.GroupID, true)
	if err != nil {
		return nil, err
	}

	member, ok := findMember(group, req.Msg.MemberID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("member %d: %w", req.Msg.MemberID, storage.ErrNotFound))
	}
	if member.IsGroupOwner {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errOwnerMember)
	}

	n, err := s.store.CountParticipations(ctx, member.ID)
	if err != nil {
		slog.Error("RemoveMember failed", "error", err)
		return nil, storeError(err)
	}
	if n > 0 {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errMemberHasShares)
	}

	if err := s.store.RemoveMember(ctx, group.ID, member.ID); err != nil {
		slog.Error("RemoveMember failed", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Member removed", "group_id", group.ID, "member_id", member.ID)
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// GetGroupBalances computes each member's balance, the simplified transfers
// that settle them and the state of payments made against those transfers.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	if _, err := ownedGroup(ctx, s.store, userID, groupID, false); err != nil {
		slog.Error("GetGroupBalances failed - group not found", "group_id", groupID, "error", err)
		return nil, err
	}

	ledger, err := s.store.LoadLedger(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupBalances failed - could not load ledger", "group_id", groupID, "error", err)
		return nil, storeError(err)
	}

	summary, err := calculator.BuildGroupSummary(engineLedger(ledger))
	if err != nil {
		slog.Error("GetGroupBalances failed - calculation error", "group_id", groupID, "error", err)
		if errors.Is(err, calculator.ErrValidation) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.ObserveSummary(len(summary.SimplifiedDebts))

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"expenses_count", len(ledger.Expenses),
		"members_count", len(summary.Balances),
		"debts_count", len(summary.SimplifiedDebts),
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{Summary: toAPISummary(summary)}), nil
}

// engineLedger converts a stored ledger to the calculator's input.
func engineLedger(l *storage.Ledger) calculator.GroupLedger {
	expenses := make([]calculator.ExpenseForBalance, len(l.Expenses))
	for i, e := range l.Expenses {
		shares := make([]calculator.Share, len(e.Shares))
		for j, sh := range e.Shares {
			shares[j] = calculator.Share{MemberID: sh.MemberID, Amount: sh.Amount}
		}
		expenses[i] = calculator.ExpenseForBalance{
			ID:      e.ID,
			Amount:  e.Amount,
			PayerID: e.PayerMemberID,
			Shares:  shares,
		}
	}

	payments := make([]models.Payment, len(l.Payments))
	for i, p := range l.Payments {
		payments[i] = *p
	}

	out := calculator.GroupLedger{
		GroupID:   l.Group.ID,
		GroupName: l.Group.Name,
		Members:   l.Group.Members,
		Expenses:  expenses,
		Payments:  payments,
	}
	if l.Owner != nil {
		out.OwnerTarget = l.Owner.Target
	}
	return out
}
