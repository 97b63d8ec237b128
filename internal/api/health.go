package api

import (
	"context"
	"time"

	"github.com/Egham-7/llmonitor-api/internal/services/database"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db          *database.DB
	redisClient *redis.Client
}

// NewHealthHandler creates a new health check handler. Either dependency
// may be nil.
func NewHealthHandler(db *database.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
	}
}

// HealthCheck returns the health status of the service and its dependencies
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	dbStatus := h.checkDatabase()
	redisStatus := h.checkRedis()

	overallStatus := statusHealthy
	statusCode := fiber.StatusOK

	if dbStatus == statusUnhealthy || redisStatus == statusUnhealthy {
		overallStatus = "degraded"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}

func (h *HealthHandler) checkDatabase() string {
	if h.db == nil {
		return statusDisabled
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return statusUnhealthy
	}
	return statusHealthy
}

func (h *HealthHandler) checkRedis() string {
	if h.redisClient == nil {
		return statusDisabled
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		return statusUnhealthy
	}
	return statusHealthy
}
