package api

import (
	"errors"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/auth"
	"github.com/Egham-7/llmonitor-api/internal/services/runs"

	"github.com/gofiber/fiber/v2"
)

// runFilterParams are the query parameters forwarded as run filters.
var runFilterParams = []string{"status", "name", "user_id", "parent_run_id"}

type RunsHandler struct {
	runs   *runs.Service
	access auth.AccessProvider
}

func NewRunsHandler(runsService *runs.Service, access auth.AccessProvider) *RunsHandler {
	return &RunsHandler{
		runs:   runsService,
		access: access,
	}
}

// RegisterAppRoutes mounts the routes scoped under /apps/:appId.
func (h *RunsHandler) RegisterAppRoutes(router fiber.Router) {
	router.Get("/agents", h.ListAgents)
	router.Get("/runs", h.ListRuns)
}

func (h *RunsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/runs/:id", h.GetRun)
}

func (h *RunsHandler) ListRuns(c *fiber.Ctx) error {
	runType := models.RunType(c.Query("type"))
	if runType == "" {
		return badRequest(c, "type is required")
	}

	match := map[string]string{}
	for _, param := range runFilterParams {
		if v := c.Query(param); v != "" {
			match[param] = v
		}
	}

	list, err := h.runs.ListRuns(c.UserContext(), c.Params("appId"), runType, match)
	if err != nil {
		if errors.Is(err, runs.ErrInvalidFilter) || errors.Is(err, runs.ErrInvalidRunType) {
			return badRequest(c, err.Error())
		}
		return internalError(c, "Failed to list runs", err)
	}

	return c.JSON(list)
}

func (h *RunsHandler) ListAgents(c *fiber.Ctx) error {
	agents, err := h.runs.ListAgents(c.UserContext(), c.Params("appId"))
	if err != nil {
		return internalError(c, "Failed to list agents", err)
	}
	return c.JSON(agents)
}

// GetRun answers 404 for runs of apps the caller does not own so run ids
// cannot be guessed.
func (h *RunsHandler) GetRun(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	run, err := h.runs.GetRun(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, runs.ErrRunNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Run not found")
		}
		return internalError(c, "Failed to get run", err)
	}

	allowed, err := h.access.ValidateAppAccess(c.UserContext(), userID, run.App)
	if err != nil && !errors.Is(err, auth.ErrAppNotFound) {
		return internalError(c, "Failed to validate app access", err)
	}
	if !allowed {
		return errorResponse(c, fiber.StatusNotFound, "Run not found")
	}

	return c.JSON(run)
}
