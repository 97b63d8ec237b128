package feedback

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookRecorder struct {
	mu     sync.Mutex
	bodies []webhookPayload
	status int
}

func (r *webhookRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	data, _ := io.ReadAll(req.Body)
	var payload webhookPayload
	_ = json.Unmarshal(data, &payload)

	r.mu.Lock()
	r.bodies = append(r.bodies, payload)
	status := r.status
	r.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func (r *webhookRecorder) received() []webhookPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]webhookPayload(nil), r.bodies...)
}

func assertNotifications(t *testing.T, metrics *observability.Metrics, result string) {
	t.Helper()
	expected := `
# HELP llmonitor_feedback_notifications_total Feedback webhook deliveries by outcome.
# TYPE llmonitor_feedback_notifications_total counter
llmonitor_feedback_notifications_total{result="` + result + `"} 1
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "llmonitor_feedback_notifications_total"))
}

func testConfig(url string) *models.FeedbackConfig {
	return &models.FeedbackConfig{
		WebhookURL: url,
		Workers:    2,
		BufferSize: 10,
		Timeout:    2 * time.Second,
	}
}

func TestNewNotifierDisabledWithoutURL(t *testing.T) {
	assert.Nil(t, NewNotifier(nil, nil))
	assert.Nil(t, NewNotifier(&models.FeedbackConfig{}, nil))

	// A nil notifier is safe to use.
	var n *Notifier
	n.Notify(models.Feedback{}, "req")
	n.Stop()
}

func TestNotifierDelivers(t *testing.T) {
	recorder := &webhookRecorder{}
	server := httptest.NewServer(recorder)
	defer server.Close()

	metrics := observability.NewMetrics()
	n := NewNotifier(testConfig(server.URL), metrics)
	require.NotNil(t, n)

	n.Notify(models.Feedback{UserID: "user_1", Message: "Love the dashboard", CurrentPage: "/analytics"}, "req-1")
	n.Stop()

	bodies := recorder.received()
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0].Text, "user_1")
	assert.Contains(t, bodies[0].Text, "/analytics")
	assert.Contains(t, bodies[0].Text, "Love the dashboard")
	assertNotifications(t, metrics, "success")
}

func TestNotifierRecordsFailures(t *testing.T) {
	recorder := &webhookRecorder{status: http.StatusInternalServerError}
	server := httptest.NewServer(recorder)
	defer server.Close()

	metrics := observability.NewMetrics()
	n := NewNotifier(testConfig(server.URL), metrics)

	n.Notify(models.Feedback{UserID: "user_1", Message: "Something broke"}, "req-2")
	n.Stop()

	// No retry after a failed delivery.
	assert.Len(t, recorder.received(), 1)
	assertNotifications(t, metrics, "error")
}

func TestNotifierDropsAfterStop(t *testing.T) {
	recorder := &webhookRecorder{}
	server := httptest.NewServer(recorder)
	defer server.Close()

	metrics := observability.NewMetrics()
	n := NewNotifier(testConfig(server.URL), metrics)
	n.Stop()
	n.Stop()

	n.Notify(models.Feedback{UserID: "user_1", Message: "Too late for this"}, "req-3")

	assert.Empty(t, recorder.received())
	assertNotifications(t, metrics, "dropped")
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t,
		"New feedback from user_1 (unknown page):\nhello there",
		formatMessage(models.Feedback{UserID: "user_1", Message: "hello there"}))
}
