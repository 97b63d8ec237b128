package auth

import (
	"github.com/gofiber/fiber/v2"
)

type AuthType string

const (
	AuthTypeClerk AuthType = "clerk"
	AuthTypeJWT   AuthType = "jwt"
)

const authContextKey = "auth_context"

type AuthContext struct {
	Type     AuthType
	Identity *Identity
}

func (a *AuthContext) GetUserID() (string, bool) {
	if a == nil || a.Identity == nil {
		return "", false
	}
	return a.Identity.UserID, a.Identity.UserID != ""
}

func SetAuthContext(c *fiber.Ctx, authCtx *AuthContext) {
	c.Locals(authContextKey, authCtx)
}

func GetAuthContext(c *fiber.Ctx) *AuthContext {
	authCtx, ok := c.Locals(authContextKey).(*AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}

func GetUserID(c *fiber.Ctx) (string, bool) {
	return GetAuthContext(c).GetUserID()
}

func GetIdentity(c *fiber.Ctx) (*Identity, bool) {
	authCtx := GetAuthContext(c)
	if authCtx == nil || authCtx.Identity == nil {
		return nil, false
	}
	return authCtx.Identity, true
}

func GetAuthType(c *fiber.Ctx) string {
	authCtx := GetAuthContext(c)
	if authCtx == nil {
		return ""
	}
	return string(authCtx.Type)
}
