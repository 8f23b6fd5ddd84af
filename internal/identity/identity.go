// Package identity is the identity provider: account credentials, sessions,
// and the verification / password-reset email flows.
package identity

import (
	"context"
	"errors"
)

var (
	ErrNoSession          = errors.New("no active session")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrPasswordTooLong    = errors.New("password is too long")
)

// Identity is an authenticated account as the provider sees it. Profile data
// beyond display fields lives in the users document, not here.
type Identity struct {
	UID      string
	Email    string
	Name     string
	Avatar   *string
	Verified bool
}

// Provider is the identity provider consumed by the session resolver and the
// auth handlers. Sessions are opaque tokens issued by Authenticate.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (*Identity, error)
	Authenticate(ctx context.Context, email, password string) (*Identity, string, error)
	CurrentSession(ctx context.Context, token string) (*Identity, error)
	EndSession(ctx context.Context, token string) error
	SendVerification(ctx context.Context, ident *Identity) error
	VerifyEmail(ctx context.Context, token string) error
	SendPasswordReset(ctx context.Context, email string) error
	CompletePasswordReset(ctx context.Context, token, newPassword string) error
	UpdateDisplayFields(ctx context.Context, uid, name string, avatar *string) error
}
