package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersTrackLabels(t *testing.T) {
	m := NewMetrics()

	m.CacheHit("soft")
	m.CacheHit("soft")
	m.CacheMiss("hard")
	m.FeedbackSubmitted("accepted")
	m.NotificationSent("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("soft", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hard", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.feedback.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("failed")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheHit("soft")
		m.CacheMiss("soft")
		m.FeedbackSubmitted("accepted")
		m.NotificationSent("sent")
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := NewMetrics()

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/ping", "200")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "llmonitor_http_requests_total")
}
