package middleware

import (
	"errors"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// RequireAppAccess guards routes carrying an :appId parameter. It must run
// after RequireAuth.
func RequireAppAccess(provider auth.AccessProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		appID := c.Params("appId")
		if appID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "app id is required",
			})
		}

		userID, ok := auth.GetUserID(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		allowed, err := provider.ValidateAppAccess(c.UserContext(), userID, appID)
		if err != nil {
			if errors.Is(err, auth.ErrAppNotFound) {
				return writeError(c, models.NewNotFoundError("App", err))
			}
			fiberlog.Errorf("[%s] Failed to validate access to app %s: %v", requestID(c), appID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to validate app access",
			})
		}
		if !allowed {
			return writeError(c, models.NewAuthorizationError("You don't have access to this app"))
		}

		return c.Next()
	}
}
