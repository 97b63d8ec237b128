package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrAppNotFound  = errors.New("app not found")
)

// Identity is the authenticated dashboard user behind a bearer token.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// TokenVerifier turns a bearer token into an identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
	Type() AuthType
}

// AccessProvider decides which apps a user may read.
type AccessProvider interface {
	ValidateAppAccess(ctx context.Context, userID, appID string) (bool, error)
}
