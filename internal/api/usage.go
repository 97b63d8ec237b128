package api

import (
	"errors"

	"github.com/Egham-7/llmonitor-api/internal/services/usage"

	"github.com/gofiber/fiber/v2"
)

const defaultUsageDays = 30

type UsageHandler struct {
	usage *usage.Service
}

func NewUsageHandler(usageService *usage.Service) *UsageHandler {
	return &UsageHandler{
		usage: usageService,
	}
}

// RegisterAppRoutes mounts the routes scoped under /apps/:appId.
func (h *UsageHandler) RegisterAppRoutes(router fiber.Router) {
	router.Get("/usage", h.RunsUsage)
	router.Get("/usage/daily", h.RunsUsageByDay)
	router.Get("/usage/users", h.RunsUsageByUser)
}

func (h *UsageHandler) RunsUsage(c *fiber.Ctx) error {
	days, userID, err := usageParams(c)
	if err != nil {
		return err
	}

	rows, err := h.usage.RunsUsage(c.UserContext(), c.Params("appId"), days, userID)
	if err != nil {
		return h.usageError(c, err)
	}
	return c.JSON(rows)
}

func (h *UsageHandler) RunsUsageByDay(c *fiber.Ctx) error {
	days, userID, err := usageParams(c)
	if err != nil {
		return err
	}

	rows, err := h.usage.RunsUsageByDay(c.UserContext(), c.Params("appId"), days, userID)
	if err != nil {
		return h.usageError(c, err)
	}
	return c.JSON(rows)
}

func (h *UsageHandler) RunsUsageByUser(c *fiber.Ctx) error {
	days, ok := queryInt(c, "days", defaultUsageDays)
	if !ok {
		return badRequest(c, "days must be an integer")
	}

	rows, err := h.usage.RunsUsageByUser(c.UserContext(), c.Params("appId"), days)
	if err != nil {
		return h.usageError(c, err)
	}
	return c.JSON(rows)
}

func (h *UsageHandler) usageError(c *fiber.Ctx, err error) error {
	if errors.Is(err, usage.ErrInvalidDays) {
		return badRequest(c, err.Error())
	}
	return internalError(c, "Failed to load usage", err)
}

// usageParams returns a non-nil error only after writing the response.
func usageParams(c *fiber.Ctx) (int, *int64, error) {
	days, ok := queryInt(c, "days", defaultUsageDays)
	if !ok {
		return 0, nil, badRequest(c, "days must be an integer")
	}
	userID, ok := queryInt64Ptr(c, "user_id")
	if !ok {
		return 0, nil, badRequest(c, "user_id must be an integer")
	}
	return days, userID, nil
}
