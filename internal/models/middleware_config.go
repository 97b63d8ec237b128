package models

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RateLimitConfig caps requests per key over a sliding window. A nil
// KeyFunc limits by client IP.
type RateLimitConfig struct {
	Max        int
	Expiration time.Duration
	KeyFunc    func(*fiber.Ctx) string
}

// DefaultRateLimit allows 1000 requests per minute per client.
func DefaultRateLimit() *RateLimitConfig {
	return &RateLimitConfig{Max: 1000, Expiration: time.Minute}
}

// Describe renders the limit for rate-limit error messages.
func (c *RateLimitConfig) Describe() string {
	return fmt.Sprintf("%d requests per %v", c.Max, c.Expiration)
}

// TimeoutConfig replaces the per-request deadline with a fixed one.
type TimeoutConfig struct {
	Timeout time.Duration
}
