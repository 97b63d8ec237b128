package middleware

import (
	"strings"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

type AuthMiddleware struct {
	verifier auth.TokenVerifier
	config   *AuthMiddlewareConfig
}

type AuthMiddlewareConfig struct {
	Enabled     bool
	HeaderNames []string
	SkipPaths   []string
}

func DefaultAuthMiddlewareConfig() *AuthMiddlewareConfig {
	return &AuthMiddlewareConfig{
		Enabled:     true,
		HeaderNames: []string{"Authorization"},
		SkipPaths: []string{
			"/health",
			"/webhooks",
			"/metrics",
		},
	}
}

func NewAuthMiddleware(verifier auth.TokenVerifier, config *AuthMiddlewareConfig) *AuthMiddleware {
	if config == nil {
		config = DefaultAuthMiddlewareConfig()
	}
	if len(config.HeaderNames) == 0 {
		config.HeaderNames = []string{"Authorization"}
	}
	return &AuthMiddleware{
		verifier: verifier,
		config:   config,
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity in the request locals.
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.config.Enabled {
			return c.Next()
		}

		if m.shouldSkipPath(c.Path()) {
			return c.Next()
		}

		token := m.extractToken(c)
		if token == "" {
			return writeError(c, models.NewAuthenticationError("Authentication required", nil))
		}

		identity, err := m.verifier.Verify(c.UserContext(), token)
		if err != nil {
			fiberlog.Debugf("[%s] Token rejected: %v", requestID(c), err)
			return writeError(c, models.NewAuthenticationError("Invalid or expired token", err))
		}

		auth.SetAuthContext(c, &auth.AuthContext{
			Type:     m.verifier.Type(),
			Identity: identity,
		})

		return c.Next()
	}
}

func (m *AuthMiddleware) extractToken(c *fiber.Ctx) string {
	for _, headerName := range m.config.HeaderNames {
		if header := c.Get(headerName); header != "" {
			if after, ok := strings.CutPrefix(header, "Bearer "); ok {
				return strings.TrimSpace(after)
			}
			return strings.TrimSpace(header)
		}
	}

	return ""
}

func (m *AuthMiddleware) shouldSkipPath(path string) bool {
	for _, skipPath := range m.config.SkipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

func writeError(c *fiber.Ctx, err *models.AppError) error {
	return c.Status(err.GetStatusCode()).JSON(fiber.Map{
		"error": err.Message,
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
