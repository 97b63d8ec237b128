package api

import (
	"errors"
	"strconv"

	"github.com/Egham-7/llmonitor-api/internal/services/appusers"
	"github.com/Egham-7/llmonitor-api/internal/services/auth"

	"github.com/gofiber/fiber/v2"
)

type AppUsersHandler struct {
	users  *appusers.Service
	access auth.AccessProvider
}

func NewAppUsersHandler(usersService *appusers.Service, access auth.AccessProvider) *AppUsersHandler {
	return &AppUsersHandler{
		users:  usersService,
		access: access,
	}
}

// RegisterAppRoutes mounts the routes scoped under /apps/:appId.
func (h *AppUsersHandler) RegisterAppRoutes(router fiber.Router) {
	router.Get("/users", h.ListAppUsers)
}

func (h *AppUsersHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/app-users/:id", h.GetAppUser)
}

func (h *AppUsersHandler) ListAppUsers(c *fiber.Ctx) error {
	usageRange, ok := queryInt(c, "usage_range", appusers.DefaultUsageRange)
	if !ok {
		return badRequest(c, "usage_range must be an integer")
	}

	users, err := h.users.ListWithUsage(c.UserContext(), c.Params("appId"), usageRange)
	if err != nil {
		return internalError(c, "Failed to list app users", err)
	}
	return c.JSON(users)
}

func (h *AppUsersHandler) GetAppUser(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid app user id")
	}

	user, err := h.users.GetAppUser(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, appusers.ErrAppUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "App user not found")
		}
		return internalError(c, "Failed to get app user", err)
	}

	allowed, err := h.access.ValidateAppAccess(c.UserContext(), userID, user.App)
	if err != nil && !errors.Is(err, auth.ErrAppNotFound) {
		return internalError(c, "Failed to validate app access", err)
	}
	if !allowed {
		return errorResponse(c, fiber.StatusNotFound, "App user not found")
	}

	return c.JSON(user)
}
