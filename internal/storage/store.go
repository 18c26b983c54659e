// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is not visible
	// to the caller.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique constraint would be violated.
	ErrAlreadyExists = errors.New("already exists")
)

// Ledger is a consistent snapshot of one group's settlement inputs.
type Ledger struct {
	Group    *models.Group // includes Members, owner first
	Owner    *models.User
	Expenses []*models.Expense // includes Shares in allocation order
	Payments []*models.Payment // pending and approved only
}

// Store defines the interface for storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Group-scoped reads take the owner's user id so that a caller can never
// observe another user's groups.
type Store interface {
	// CreateUser persists a new user. Returns ErrAlreadyExists for a taken email.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUserTarget(ctx context.Context, userID int64, target models.PaymentTarget) error

	CreateContact(ctx context.Context, contact *models.Contact) error
	GetContact(ctx context.Context, ownerID, contactID int64) (*models.Contact, error)
	// ListContacts returns the owner's contacts ordered by name.
	ListContacts(ctx context.Context, ownerID int64) ([]*models.Contact, error)
	UpdateContact(ctx context.Context, contact *models.Contact) error
	DeleteContact(ctx context.Context, ownerID, contactID int64) error
	// CountActiveMemberships counts memberships of the contact in active groups.
	CountActiveMemberships(ctx context.Context, contactID int64) (int, error)

	// CreateGroup persists a group and its initial members in one transaction.
	// IDs of the group and of every member are populated.
	CreateGroup(ctx context.Context, group *models.Group) error
	// GetGroup retrieves a group with its members.
	GetGroup(ctx context.Context, ownerID, groupID int64) (*models.Group, error)
	// ListGroups returns the owner's groups, active first, newest first.
	ListGroups(ctx context.Context, ownerID int64) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	SetGroupActive(ctx context.Context, ownerID, groupID int64, active bool) error

	// AddMember persists a member. Returns ErrAlreadyExists when the contact
	// is already in the group.
	AddMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, groupID, memberID int64) (*models.Member, error)
	RemoveMember(ctx context.Context, groupID, memberID int64) error
	// CountParticipations counts expense shares held by the member.
	CountParticipations(ctx context.Context, memberID int64) (int, error)

	// CreateExpense persists an expense with its shares in one transaction.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, groupID, expenseID int64) (*models.Expense, error)
	// ListExpenses returns a group's expenses, newest first.
	ListExpenses(ctx context.Context, groupID int64) ([]*models.Expense, error)
	// UpdateExpense replaces an expense and all of its shares.
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, groupID, expenseID int64) error

	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, paymentID int64) (*models.Payment, error)
	// ListPayments returns all of a group's payments, newest first.
	ListPayments(ctx context.Context, groupID int64) ([]*models.Payment, error)
	SetPaymentPreference(ctx context.Context, paymentID int64, preferenceID string) error
	UpdatePaymentStatus(ctx context.Context, paymentID int64, gatewayPaymentID string, status models.PaymentStatus) error
	DeletePayment(ctx context.Context, paymentID int64) error

	// LoadLedger reads a group's members, expenses, shares and open payments
	// from a single read transaction.
	LoadLedger(ctx context.Context, groupID int64) (*Ledger, error)

	// Close releases any resources held by the store.
	Close() error
}
