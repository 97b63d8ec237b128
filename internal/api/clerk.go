package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/profiles"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	svix "github.com/svix/svix-webhooks/go"
)

// ClerkWebhookHandler keeps profile rows in step with the identity provider.
type ClerkWebhookHandler struct {
	webhook  *svix.Webhook
	profiles *profiles.Service
}

func NewClerkWebhookHandler(webhookSecret string, profilesService *profiles.Service) (*ClerkWebhookHandler, error) {
	wh, err := svix.NewWebhook(webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize webhook verifier: %w", err)
	}

	return &ClerkWebhookHandler{
		webhook:  wh,
		profiles: profilesService,
	}, nil
}

type ClerkWebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type clerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type ClerkUserData struct {
	ID                    string              `json:"id"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	Username              string              `json:"username"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []clerkEmailAddress `json:"email_addresses"`
}

func (u *ClerkUserData) primaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (u *ClerkUserData) displayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

func (h *ClerkWebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	headers := http.Header{}
	c.Request().Header.VisitAll(func(key, value []byte) {
		headers.Add(string(key), string(value))
	})

	if err := h.webhook.Verify(payload, headers); err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Invalid webhook signature")
	}

	var event ClerkWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return badRequest(c, "Invalid JSON payload")
	}

	var err error
	switch event.Type {
	case "user.created", "user.updated":
		err = h.handleUserUpserted(c, event.Data)
	case "user.deleted":
		err = h.handleUserDeleted(c, event.Data)
	default:
		fiberlog.Debugf("[%s] Ignoring clerk event %s", requestID(c), event.Type)
	}
	if err != nil {
		fiberlog.Errorf("[%s] Failed to process %s event: %v", requestID(c), event.Type, err)
		return errorResponse(c, fiber.StatusInternalServerError, fmt.Sprintf("Failed to process %s event", event.Type))
	}

	return c.JSON(fiber.Map{
		"received": true,
	})
}

func (h *ClerkWebhookHandler) handleUserUpserted(c *fiber.Ctx, data json.RawMessage) error {
	var user ClerkUserData
	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	return h.profiles.UpsertProfile(c.UserContext(), &models.Profile{
		ID:    user.ID,
		Email: user.primaryEmail(),
		Name:  user.displayName(),
	})
}

func (h *ClerkWebhookHandler) handleUserDeleted(c *fiber.Ctx, data json.RawMessage) error {
	var user ClerkUserData
	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}
	if user.ID == "" {
		return fmt.Errorf("deleted user has no id")
	}

	return h.profiles.DeleteProfile(c.UserContext(), user.ID)
}
