package auth

import (
	"context"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
)

// ClerkVerifier validates Clerk session tokens against the instance JWKS.
type ClerkVerifier struct {
	secretKey string
}

func NewClerkVerifier(secretKey string) *ClerkVerifier {
	clerk.SetKey(secretKey)

	return &ClerkVerifier{secretKey: secretKey}
}

func (v *ClerkVerifier) Type() AuthType {
	return AuthTypeClerk
}

func (v *ClerkVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{
		Token: token,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &Identity{UserID: claims.Subject}, nil
}
