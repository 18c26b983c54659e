package models

// Group represents a shared-expense group.
// A group is owned by exactly one user and is visible only to that user.
type Group struct {
	// ID is the unique identifier for the group.
	ID int64

	// OwnerUserID is the user who created the group.
	OwnerUserID int64

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Description is optional free text.
	Description string

	// IsActive is false once the group is archived. Archived groups are
	// read-only.
	IsActive bool

	// Members is the list of group members, owner first.
	// Populated by reads that load the full group.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is a participant in a group.
type Member struct {
	ID      int64
	GroupID int64

	// DisplayName is copied from the user or contact when the member is created.
	DisplayName string

	// IsGroupOwner marks the member that represents the group's owner.
	IsGroupOwner bool

	// Contact is the linked contact; nil for the owner member.
	Contact *Contact
}

// ContactID returns the linked contact id, or 0 for the owner member.
func (m Member) ContactID() int64 {
	if m.Contact == nil {
		return 0
	}
	return m.Contact.ID
}
