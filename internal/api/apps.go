package api

import (
	"errors"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/apps"

	"github.com/gofiber/fiber/v2"
)

// HeaderAppID carries the dashboard's selected app.
const HeaderAppID = "X-App-ID"

type AppsHandler struct {
	apps *apps.Service
}

func NewAppsHandler(appsService *apps.Service) *AppsHandler {
	return &AppsHandler{
		apps: appsService,
	}
}

// RegisterRoutes mounts the app routes. /apps/current is registered before
// /apps/:appId so it is not taken for an id.
func (h *AppsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/apps", h.ListApps)
	router.Post("/apps", h.CreateApp)
	router.Get("/apps/current", h.CurrentApp)
	router.Get("/apps/:appId", h.GetApp)
}

func (h *AppsHandler) ListApps(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	list, err := h.apps.ListApps(c.UserContext(), userID)
	if err != nil {
		return internalError(c, "Failed to list apps", err)
	}

	return c.JSON(fiber.Map{
		"apps":  list,
		"total": len(list),
	})
}

func (h *AppsHandler) CreateApp(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.AppCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	app, err := h.apps.CreateApp(c.UserContext(), userID, &req)
	if err != nil {
		if errors.Is(err, apps.ErrInvalidAppName) {
			return badRequest(c, err.Error())
		}
		return internalError(c, "Failed to create app", err)
	}

	return c.Status(fiber.StatusCreated).JSON(app)
}

func (h *AppsHandler) CurrentApp(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	requested := c.Get(HeaderAppID)
	if requested == "" {
		requested = c.Query("app_id")
	}

	app, err := h.apps.CurrentApp(c.UserContext(), userID, requested)
	if err != nil {
		if errors.Is(err, apps.ErrNoApps) {
			return errorResponse(c, fiber.StatusNotFound, "No apps yet")
		}
		return internalError(c, "Failed to resolve current app", err)
	}

	return c.JSON(app)
}

func (h *AppsHandler) GetApp(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	app, err := h.apps.GetApp(c.UserContext(), userID, c.Params("appId"))
	if err != nil {
		if errors.Is(err, apps.ErrAppNotFound) {
			return appErrorResponse(c, models.NewNotFoundError("App", err))
		}
		if errors.Is(err, apps.ErrUnauthorized) {
			return appErrorResponse(c, models.NewAuthorizationError("You don't have access to this app"))
		}
		return internalError(c, "Failed to get app", err)
	}

	return c.JSON(app)
}
