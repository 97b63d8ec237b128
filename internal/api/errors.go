package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func appErrorResponse(c *fiber.Ctx, err *models.AppError) error {
	return errorResponse(c, err.GetStatusCode(), err.Message)
}

func badRequest(c *fiber.Ctx, message string) error {
	return appErrorResponse(c, models.NewValidationError(message, nil))
}

// internalError logs err and answers with message. Requests that ran out
// of time get a 504 instead.
func internalError(c *fiber.Ctx, message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		fiberlog.Warnf("[%s] %s: %v", requestID(c), message, err)
		return appErrorResponse(c, models.SanitizeError(models.NewTimeoutError(c.Path(), err)))
	}

	fiberlog.Errorf("[%s] %s: %v", requestID(c), message, err)
	sanitized := models.SanitizeError(models.NewInternalError(message, err))
	return errorResponse(c, sanitized.GetStatusCode(), message)
}

func requireUser(c *fiber.Ctx) (string, error) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return "", errorResponse(c, fiber.StatusUnauthorized, "authentication required")
	}
	return userID, nil
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}

// queryInt reads a positive integer query parameter, falling back to def
// when it is absent.
func queryInt(c *fiber.Ctx, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryInt64Ptr reads an optional integer query parameter.
func queryInt64Ptr(c *fiber.Ctx, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
