package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "settleup.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure       = "/settleup.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure          = "/settleup.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure        = "/settleup.v1.GroupService/ListGroups"
	GroupServiceUpdateGroupProcedure       = "/settleup.v1.GroupService/UpdateGroup"
	GroupServiceDeleteGroupProcedure       = "/settleup.v1.GroupService/DeleteGroup"
	GroupServiceToggleGroupActiveProcedure = "/settleup.v1.GroupService/ToggleGroupActive"
	GroupServiceAddMemberProcedure         = "/settleup.v1.GroupService/AddMember"
	GroupServiceQuickAddMemberProcedure    = "/settleup.v1.GroupService/QuickAddMember"
	GroupServiceRemoveMemberProcedure      = "/settleup.v1.GroupService/RemoveMember"
	GroupServiceGetGroupBalancesProcedure  = "/settleup.v1.GroupService/GetGroupBalances"
)

// GroupServiceHandler manages groups, their members and balance summaries.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	ToggleGroupActive(context.Context, *connect.Request[api.ToggleGroupActiveRequest]) (*connect.Response[api.ToggleGroupActiveResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	QuickAddMember(context.Context, *connect.Request[api.QuickAddMemberRequest]) (*connect.Response[api.QuickAddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for every GroupService procedure.
// It returns the path prefix to mount it on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, GroupServiceCreateGroupProcedure, svc.CreateGroup, opts)
	handle(mux, GroupServiceGetGroupProcedure, svc.GetGroup, opts)
	handle(mux, GroupServiceListGroupsProcedure, svc.ListGroups, opts)
	handle(mux, GroupServiceUpdateGroupProcedure, svc.UpdateGroup, opts)
	handle(mux, GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts)
	handle(mux, GroupServiceToggleGroupActiveProcedure, svc.ToggleGroupActive, opts)
	handle(mux, GroupServiceAddMemberProcedure, svc.AddMember, opts)
	handle(mux, GroupServiceQuickAddMemberProcedure, svc.QuickAddMember, opts)
	handle(mux, GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts)
	handle(mux, GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts)
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient is a client for the GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	ToggleGroupActive(context.Context, *connect.Request[api.ToggleGroupActiveRequest]) (*connect.Response[api.ToggleGroupActiveResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	QuickAddMember(context.Context, *connect.Request[api.QuickAddMemberRequest]) (*connect.Response[api.QuickAddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

// NewGroupServiceClient constructs a client for the GroupService at baseURL
// (for example, http://localhost:8080).
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	return &groupServiceClient{
		createGroup:       newClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, opts),
		getGroup:          newClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL, GroupServiceGetGroupProcedure, opts),
		listGroups:        newClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL, GroupServiceListGroupsProcedure, opts),
		updateGroup:       newClient[api.UpdateGroupRequest, api.UpdateGroupResponse](httpClient, baseURL, GroupServiceUpdateGroupProcedure, opts),
		deleteGroup:       newClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL, GroupServiceDeleteGroupProcedure, opts),
		toggleGroupActive: newClient[api.ToggleGroupActiveRequest, api.ToggleGroupActiveResponse](httpClient, baseURL, GroupServiceToggleGroupActiveProcedure, opts),
		addMember:         newClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL, GroupServiceAddMemberProcedure, opts),
		quickAddMember:    newClient[api.QuickAddMemberRequest, api.QuickAddMemberResponse](httpClient, baseURL, GroupServiceQuickAddMemberProcedure, opts),
		removeMember:      newClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL, GroupServiceRemoveMemberProcedure, opts),
		getGroupBalances:  newClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL, GroupServiceGetGroupBalancesProcedure, opts),
	}
}

type groupServiceClient struct {
	createGroup       *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup          *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups        *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	updateGroup       *connect.Client[api.UpdateGroupRequest, api.UpdateGroupResponse]
	deleteGroup       *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
	toggleGroupActive *connect.Client[api.ToggleGroupActiveRequest, api.ToggleGroupActiveResponse]
	addMember         *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	quickAddMember    *connect.Client[api.QuickAddMemberRequest, api.QuickAddMemberResponse]
	removeMember      *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
	getGroupBalances  *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	return c.updateGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ToggleGroupActive(ctx context.Context, req *connect.Request[api.ToggleGroupActiveRequest]) (*connect.Response[api.ToggleGroupActiveResponse], error) {
	return c.toggleGroupActive.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) QuickAddMember(ctx context.Context, req *connect.Request[api.QuickAddMemberRequest]) (*connect.Response[api.QuickAddMemberResponse], error) {
	return c.quickAddMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}
