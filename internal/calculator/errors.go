package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed allocator input. Callers surface it as a
	// client error.
	ErrValidation = errors.New("validation failed")

	// ErrReferentialIntegrity marks an expense or share that references a
	// member outside the group. It indicates corrupt input, not a user mistake.
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)

// ValidationError describes which input was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrValidation, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ReferentialIntegrityError reports an expense pointing at an unknown member.
type ReferentialIntegrityError struct {
	ExpenseID int64
	MemberID  int64
	// Role is "payer" or "participant".
	Role string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%v: expense %d references unknown %s member %d",
		ErrReferentialIntegrity, e.ExpenseID, e.Role, e.MemberID)
}

// Is lets errors.Is(err, ErrReferentialIntegrity) match.
func (e *ReferentialIntegrityError) Is(target error) bool {
	return target == ErrReferentialIntegrity
}
