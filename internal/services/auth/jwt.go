package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier validates HS256 tokens signed with a shared secret. This is
// how Supabase auth signs its access tokens.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

type jwtClaims struct {
	Email        string         `json:"email,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

func NewJWTVerifier(secret, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

func (v *JWTVerifier) Type() AuthType {
	return AuthTypeJWT
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var claims jwtClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	identity := &Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
	}
	if name, ok := claims.UserMetadata["name"].(string); ok {
		identity.Name = name
	}
	return identity, nil
}

// SignJWT issues a token the JWTVerifier accepts. Used by tests and local tooling.
func SignJWT(secret string, claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
