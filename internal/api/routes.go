package api

import (
	"github.com/Egham-7/llmonitor-api/internal/observability"
	"github.com/Egham-7/llmonitor-api/internal/services/auth"
	"github.com/Egham-7/llmonitor-api/internal/services/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Routes collects the handlers served by the API. Billing and Clerk are
// optional and only mounted when set.
type Routes struct {
	Health   *HealthHandler
	Profile  *ProfileHandler
	Apps     *AppsHandler
	Runs     *RunsHandler
	Usage    *UsageHandler
	AppUsers *AppUsersHandler
	Feedback *FeedbackHandler
	Billing  *BillingHandler
	Clerk    *ClerkWebhookHandler
	Metrics  *observability.Metrics
	Access   auth.AccessProvider
}

// Register mounts every route on app. requireAuth guards /v1 and /api.
func (r *Routes) Register(app *fiber.App, requireAuth fiber.Handler) {
	app.Get("/health", r.Health.HealthCheck)
	if r.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.Metrics.Handler()))
	}

	webhooks := app.Group("/webhooks")
	if r.Billing != nil {
		webhooks.Post("/stripe", r.Billing.HandleWebhook)
	}
	if r.Clerk != nil {
		webhooks.Post("/clerk", r.Clerk.HandleWebhook)
	}

	v1 := app.Group("/v1", requireAuth)
	r.Profile.RegisterRoutes(v1)
	r.Apps.RegisterRoutes(v1)
	r.Runs.RegisterRoutes(v1)
	r.AppUsers.RegisterRoutes(v1)
	if r.Billing != nil {
		v1.Post("/billing/checkout", r.Billing.CreateCheckout)
	}

	scoped := v1.Group("/apps/:appId", middleware.RequireAppAccess(r.Access))
	r.Runs.RegisterAppRoutes(scoped)
	r.Usage.RegisterAppRoutes(scoped)
	r.AppUsers.RegisterAppRoutes(scoped)

	legacy := app.Group("/api", requireAuth)
	r.Feedback.RegisterRoutes(legacy)
}
