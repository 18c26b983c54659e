package models

// Contact is a person in a user's address book.
// Contacts become group members; their payment target is the destination
// of transfers owed to them.
type Contact struct {
	ID int64

	// OwnerID is the user who created the contact.
	OwnerID int64

	Name   string
	Target PaymentTarget

	CreatedAt int64
}
