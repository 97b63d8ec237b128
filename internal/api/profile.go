package api

import (
	"errors"

	"github.com/Egham-7/llmonitor-api/internal/services/profiles"

	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profiles *profiles.Service
}

func NewProfileHandler(profilesService *profiles.Service) *ProfileHandler {
	return &ProfileHandler{
		profiles: profilesService,
	}
}

func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/profile", h.GetProfile)
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	profile, err := h.profiles.GetProfile(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, profiles.ErrProfileNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Profile not found")
		}
		return internalError(c, "Failed to get profile", err)
	}

	return c.JSON(profile)
}
