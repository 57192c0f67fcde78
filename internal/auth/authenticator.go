package auth

import (
	"context"

	"github.com/mmynk/onecard/internal/models"
)

// Registration is the data collected by the sign-up form.
type Registration struct {
	Email       string
	DisplayName string
	Password    string
	Role        models.Role
	Phone       string
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, OTP, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, reg Registration) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
