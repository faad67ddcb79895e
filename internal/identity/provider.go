// Package identity wraps the external identity provider that owns accounts
// and credentials.
package identity

import (
	"context"
	"errors"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidFormat      = errors.New("invalid credential format")
	ErrUnavailable        = errors.New("identity provider unavailable")
)

// Provider creates and authenticates accounts.
type Provider interface {
	// SignUp creates an account and returns its principal id
	SignUp(ctx context.Context, email, password, displayName string) (string, error)
	// SignIn verifies the password and returns the principal id
	SignIn(ctx context.Context, email, password string) (string, error)
	// Revoke invalidates the account's outstanding provider sessions
	Revoke(ctx context.Context, uid string) error
	// Delete removes an account, used to roll back a failed registration
	Delete(ctx context.Context, uid string) error
}
