package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Egham-7/llmonitor-api/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
)

var (
	ErrInvalidSignature = errors.New("failed to verify webhook signature")
	ErrMissingUser      = errors.New("checkout session has no user")
	ErrNotConfigured    = errors.New("billing is not configured")
)

// PlanUpdater persists a user's plan tier.
type PlanUpdater interface {
	SetPlan(ctx context.Context, userID string, plan models.Plan, stripeCustomer string) error
}

type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type Service struct {
	cfg           models.StripeConfig
	plans         PlanUpdater
	createSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewService(cfg models.StripeConfig, plans PlanUpdater) *Service {
	stripe.Key = cfg.SecretKey

	return &Service{
		cfg:           cfg,
		plans:         plans,
		createSession: session.New,
	}
}

// CreateUpgradeSession starts a subscription checkout for the pro plan.
func (s *Service) CreateUpgradeSession(ctx context.Context, userID, email string) (*CheckoutSession, error) {
	if s.cfg.SecretKey == "" || s.cfg.ProPriceID == "" {
		return nil, ErrNotConfigured
	}

	metadata := map[string]string{"user_id": userID}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.ProPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(userID),
		Metadata:          metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx

	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	sess, err := s.createSession(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSession{
		SessionID:   sess.ID,
		CheckoutURL: sess.URL,
	}, nil
}

// HandleWebhook applies plan changes from verified Stripe events.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	default:
		fiberlog.Debugf("Ignoring stripe event %s", event.Type)
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	userID := sess.Metadata["user_id"]
	if userID == "" {
		userID = sess.ClientReferenceID
	}
	if userID == "" {
		return ErrMissingUser
	}

	if err := s.plans.SetPlan(ctx, userID, models.PlanPro, customerID(sess.Customer)); err != nil {
		return fmt.Errorf("failed to upgrade plan: %w", err)
	}

	fiberlog.Infof("Upgraded user %s to %s", userID, models.PlanPro)
	return nil
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	userID := sub.Metadata["user_id"]
	if err := s.plans.SetPlan(ctx, userID, models.PlanFree, customerID(sub.Customer)); err != nil {
		return fmt.Errorf("failed to downgrade plan: %w", err)
	}

	fiberlog.Infof("Downgraded customer %s to %s", customerID(sub.Customer), models.PlanFree)
	return nil
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}
