package auth

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Authenticator verifies who a caller is.
// PasswordAuthenticator is the only implementation today; the interface keeps
// the service layer independent of the credential scheme.
type Authenticator interface {
	// Register creates a new account. The credential format depends on the
	// implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user when the credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential before anything is stored.
	ValidateCredential(credential string) error
}
