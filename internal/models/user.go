package models

import "time"

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user.
	ID int64

	// Email is the user's email address (unique).
	// Used for login.
	Email string

	// DisplayName is the name shown to other group members.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Target is where other members send money when this user is owed.
	// Used as the transfer destination for the owner member of the user's groups.
	Target PaymentTarget

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a user with timestamps set to now.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// PaymentTarget identifies a bank account that can receive a transfer.
type PaymentTarget struct {
	// Alias is the human-friendly account alias.
	Alias string

	// AccountRef is the account number or CVU.
	AccountRef string
}

// IsZero reports whether no payment information is set.
func (t PaymentTarget) IsZero() bool {
	return t.Alias == "" && t.AccountRef == ""
}
