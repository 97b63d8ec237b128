package builder

import "github.com/Egham-7/llmonitor-api/internal/models"

// WithClerkAuth verifies session tokens with Clerk. A non-empty
// webhookSecret also mounts the Clerk user sync webhook.
func (b *Builder) WithClerkAuth(secretKey, webhookSecret string) *Builder {
	b.cfg.Auth = &models.AuthConfig{
		Provider: models.AuthProviderClerk,
		ClerkConfig: &models.ClerkAuthConfig{
			SecretKey:     secretKey,
			WebhookSecret: webhookSecret,
		},
	}
	return b
}

// WithJWTAuth verifies HS256 tokens signed with secret. An empty issuer
// skips the issuer check.
func (b *Builder) WithJWTAuth(secret, issuer string) *Builder {
	b.cfg.Auth = &models.AuthConfig{
		Provider: models.AuthProviderJWT,
		JWTConfig: &models.JWTAuthConfig{
			Secret: secret,
			Issuer: issuer,
		},
	}
	return b
}
