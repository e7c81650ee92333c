// Package auth authenticates users and issues session tokens.
//
// An authenticated user ID is the identity the ledger acts for: requests and
// acceptances are always made by the member whose ID matches the caller.
package auth

import (
	"context"

	"github.com/mmynk/creditledger/internal/models"
)

// Authenticator defines the interface for authentication implementations.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
