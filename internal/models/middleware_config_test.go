package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRateLimit(t *testing.T) {
	cfg := DefaultRateLimit()

	assert.Equal(t, 1000, cfg.Max)
	assert.Equal(t, time.Minute, cfg.Expiration)
	assert.Nil(t, cfg.KeyFunc)
	assert.Equal(t, "1000 requests per 1m0s", cfg.Describe())
	assert.Equal(t, "rate limit exceeded: 1000 requests per 1m0s", NewRateLimitError(cfg.Describe()).Message)
}
