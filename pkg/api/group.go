package api

type CreateGroupRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ContactIDs  []int64 `json:"contact_ids,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID int64 `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type UpdateGroupRequest struct {
	GroupID     int64  `json:"group_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type UpdateGroupResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID int64 `json:"group_id"`
}

type DeleteGroupResponse struct{}

type ToggleGroupActiveRequest struct {
	GroupID int64 `json:"group_id"`
}

type ToggleGroupActiveResponse struct {
	Group *Group `json:"group"`
}

type AddMemberRequest struct {
	GroupID   int64 `json:"group_id"`
	ContactID int64 `json:"contact_id"`
}

type AddMemberResponse struct {
	Member *Member `json:"member"`
}

// QuickAddMemberRequest creates a contact and adds it to the group in one call.
type QuickAddMemberRequest struct {
	GroupID    int64  `json:"group_id"`
	Name       string `json:"name"`
	Alias      string `json:"alias,omitempty"`
	AccountRef string `json:"account_ref,omitempty"`
}

type QuickAddMemberResponse struct {
	Member *Member `json:"member"`
}

type RemoveMemberRequest struct {
	GroupID  int64 `json:"group_id"`
	MemberID int64 `json:"member_id"`
}

type RemoveMemberResponse struct{}

type GetGroupBalancesRequest struct {
	GroupID int64 `json:"group_id"`
}

type GetGroupBalancesResponse struct {
	Summary *GroupBalanceSummary `json:"summary"`
}
