package api

import (
	"errors"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/feedback"

	"github.com/gofiber/fiber/v2"
)

type FeedbackHandler struct {
	feedback *feedback.Service
}

func NewFeedbackHandler(feedbackService *feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: feedbackService,
	}
}

func (h *FeedbackHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/user/feedback", h.Submit)
}

func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	fb, err := h.feedback.Submit(c.UserContext(), userID, requestID(c), &req)
	if err != nil {
		if errors.Is(err, feedback.ErrMessageTooShort) {
			return badRequest(c, "Tell us a bit more")
		}
		if errors.Is(err, feedback.ErrMessageTooLong) ||
			errors.Is(err, feedback.ErrPageTooLong) {
			return badRequest(c, err.Error())
		}
		return internalError(c, "Failed to send feedback", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      fb.ID,
		"message": "Feedback sent",
	})
}
