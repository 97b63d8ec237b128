package api

import (
	"errors"

	"github.com/Egham-7/llmonitor-api/internal/services/auth"
	"github.com/Egham-7/llmonitor-api/internal/services/billing"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

type BillingHandler struct {
	billing *billing.Service
}

func NewBillingHandler(billingService *billing.Service) *BillingHandler {
	return &BillingHandler{
		billing: billingService,
	}
}

// CreateCheckout starts a pro plan checkout for the caller.
func (h *BillingHandler) CreateCheckout(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	email := ""
	if identity, ok := auth.GetIdentity(c); ok {
		email = identity.Email
	}

	session, err := h.billing.CreateUpgradeSession(c.UserContext(), userID, email)
	if err != nil {
		if errors.Is(err, billing.ErrNotConfigured) {
			return errorResponse(c, fiber.StatusServiceUnavailable, "Billing is not available")
		}
		return internalError(c, "Failed to create checkout session", err)
	}

	return c.JSON(session)
}

// HandleWebhook processes Stripe webhook events
func (h *BillingHandler) HandleWebhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return badRequest(c, "Missing Stripe-Signature header")
	}

	if err := h.billing.HandleWebhook(c.UserContext(), c.Body(), signature); err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid webhook signature")
		}
		fiberlog.Errorf("[%s] Failed to process stripe webhook: %v", requestID(c), err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to process webhook")
	}

	return c.JSON(fiber.Map{
		"received": true,
	})
}
