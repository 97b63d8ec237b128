package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/observability"
	"github.com/Egham-7/llmonitor-api/internal/services/apps"
	"github.com/Egham-7/llmonitor-api/internal/services/appusers"
	"github.com/Egham-7/llmonitor-api/internal/services/auth"
	"github.com/Egham-7/llmonitor-api/internal/services/database"
	"github.com/Egham-7/llmonitor-api/internal/services/feedback"
	"github.com/Egham-7/llmonitor-api/internal/services/middleware"
	"github.com/Egham-7/llmonitor-api/internal/services/profiles"
	"github.com/Egham-7/llmonitor-api/internal/services/runs"
	"github.com/Egham-7/llmonitor-api/internal/services/usage"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"
)

const (
	testJWTSecret   = "test-secret"
	testClerkSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"
)

type testServer struct {
	app *fiber.App
	db  *database.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	metrics := observability.NewMetrics()
	access := auth.NewOwnerAccessProvider(db.DB)
	profilesSvc := profiles.NewService(db.DB, nil)
	usageSvc := usage.NewService(db.DB, nil)

	clerk, err := NewClerkWebhookHandler(testClerkSecret, profilesSvc)
	require.NoError(t, err)

	routes := &Routes{
		Health:   NewHealthHandler(db, nil),
		Profile:  NewProfileHandler(profilesSvc),
		Apps:     NewAppsHandler(apps.NewService(db.DB, nil)),
		Runs:     NewRunsHandler(runs.NewService(db.DB, nil), access),
		Usage:    NewUsageHandler(usageSvc),
		AppUsers: NewAppUsersHandler(appusers.NewService(db.DB, nil, usageSvc), access),
		Feedback: NewFeedbackHandler(feedback.NewService(db.DB, nil, metrics)),
		Clerk:    clerk,
		Metrics:  metrics,
		Access:   access,
	}

	verifier := auth.NewJWTVerifier(testJWTSecret, "", "")
	authMiddleware := middleware.NewAuthMiddleware(verifier, nil)

	app := fiber.New()
	routes.Register(app, authMiddleware.RequireAuth())

	return &testServer{app: app, db: db}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	signed, err := auth.SignJWT(testJWTSecret, jwt.MapClaims{
		"sub":   userID,
		"email": userID + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (s *testServer) seedApp(t *testing.T, id, owner string) {
	t.Helper()
	require.NoError(t, s.db.Create(&models.App{ID: id, Name: id, Owner: owner}).Error)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	resp := decode[map[string]any](t, body)
	assert.Equal(t, "healthy", resp["status"])
	checks := resp["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "disabled", checks["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestV1RequiresAuth(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/api/user/feedback", "", models.FeedbackRequest{Message: "Nice work there"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGetProfile(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/v1/profile", "user_1", nil)
	assert.Equal(t, http.StatusNotFound, status)

	require.NoError(t, s.db.Create(&models.Profile{ID: "user_1", Email: "a@example.com", Name: "Ada", Plan: models.PlanFree}).Error)

	status, body := s.do(t, http.MethodGet, "/v1/profile", "user_1", nil)
	require.Equal(t, http.StatusOK, status)

	profile := decode[models.ProfileResponse](t, body)
	assert.Equal(t, "Ada", profile.Name)
	assert.True(t, profile.CanUpgrade)
	assert.Equal(t, profiles.UserColor("user_1"), profile.Color)
}

func TestAppsLifecycle(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/v1/apps/current", "user_1", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/v1/apps", "user_1", models.AppCreateRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := s.do(t, http.MethodPost, "/v1/apps", "user_1", models.AppCreateRequest{Name: "Chatbot"})
	require.Equal(t, http.StatusCreated, status)
	first := decode[models.App](t, body)
	assert.Equal(t, "Chatbot", first.Name)
	assert.Equal(t, "user_1", first.Owner)

	status, body = s.do(t, http.MethodPost, "/v1/apps", "user_1", models.AppCreateRequest{Name: "Agent"})
	require.Equal(t, http.StatusCreated, status)
	second := decode[models.App](t, body)

	status, body = s.do(t, http.MethodGet, "/v1/apps", "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[struct {
		Apps  []models.App `json:"apps"`
		Total int          `json:"total"`
	}](t, body)
	assert.Equal(t, 2, list.Total)

	req := httptest.NewRequest(http.MethodGet, "/v1/apps/current", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "user_1"))
	req.Header.Set(HeaderAppID, second.ID)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	current := decode[models.App](t, mustRead(t, resp))
	assert.Equal(t, second.ID, current.ID)

	status, body = s.do(t, http.MethodGet, "/v1/apps/current?app_id=gone", "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, first.ID, decode[models.App](t, body).ID)

	status, _ = s.do(t, http.MethodGet, "/v1/apps/"+first.ID, "user_2", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodGet, "/v1/apps/missing", "user_1", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func mustRead(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return data
}

func TestRunsEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.seedApp(t, "app-1", "user_1")

	now := time.Now().UTC()
	user := int64(7)
	require.NoError(t, s.db.Create(&[]models.Run{
		{ID: "r1", CreatedAt: now.Add(-2 * time.Hour), App: "app-1", Type: models.RunTypeLLM, Status: models.RunStatusSuccess, Name: "gpt-4", UserID: &user},
		{ID: "r2", CreatedAt: now.Add(-time.Hour), App: "app-1", Type: models.RunTypeLLM, Status: models.RunStatusError, Name: "gpt-4"},
		{ID: "r3", CreatedAt: now, App: "app-1", Type: models.RunTypeAgent, Status: models.RunStatusSuccess, Name: "planner"},
	}).Error)
	require.NoError(t, s.db.Create(&models.Agent{App: "app-1", Name: "planner"}).Error)

	status, _ := s.do(t, http.MethodGet, "/v1/apps/app-1/runs", "user_1", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := s.do(t, http.MethodGet, "/v1/apps/app-1/runs?type=llm", "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Run](t, body), 2)

	status, body = s.do(t, http.MethodGet, "/v1/apps/app-1/runs?type=llm&status=error", "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]models.Run](t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "r2", list[0].ID)

	status, body = s.do(t, http.MethodGet, "/v1/apps/app-1/runs?type=llm&user_id=7", "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Run](t, body), 1)

	status, body = s.do(t, http.MethodGet, "/v1/apps/app-1/agents", "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Agent](t, body), 1)

	status, _ = s.do(t, http.MethodGet, "/v1/apps/app-1/runs?type=llm", "user_2", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodGet, "/v1/apps/nope/runs?type=llm", "user_1", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(t, http.MethodGet, "/v1/runs/r3", "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "planner", decode[models.Run](t, body).Name)

	status, _ = s.do(t, http.MethodGet, "/v1/runs/r3", "user_2", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUsageEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.seedApp(t, "app-1", "user_1")

	now := time.Now().UTC()
	prompt, completion := int64(1000), int64(500)
	alice := models.AppUser{App: "app-1", ExternalID: "alice"}
	bob := models.AppUser{App: "app-1", ExternalID: "bob"}
	require.NoError(t, s.db.Create(&alice).Error)
	require.NoError(t, s.db.Create(&bob).Error)
	require.NoError(t, s.db.Create(&[]models.Run{
		{ID: "r1", CreatedAt: now.Add(-time.Hour), App: "app-1", Type: models.RunTypeLLM, Status: models.RunStatusSuccess, Name: "gpt-4", UserID: &alice.ID, PromptTokens: &prompt, CompletionTokens: &completion},
		{ID: "r2", CreatedAt: now.Add(-time.Hour), App: "app-1", Type: models.RunTypeLLM, Status: models.RunStatusError, Name: "gpt-4", UserID: &alice.ID},
	}).Error)

	status, _ := s.do(t, http.MethodGet, "/v1/apps/app-1/usage?days=0", "user_1", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/v1/apps/app-1/usage?days=abc", "user_1", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := s.do(t, http.MethodGet, "/v1/apps/app-1/usage", "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	rows := decode[[]models.RunUsage](t, body)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Success)
	assert.Equal(t, int64(1), rows[0].Errors)
	assert.InDelta(t, usage.CalculateRunCost("gpt-4", 1000, 500), rows[0].Cost, 1e-9)

	status, body = s.do(t, http.MethodGet, "/v1/apps/app-1/usage/daily?days=7", "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	daily := decode[[]models.DailyRunUsage](t, body)
	require.Len(t, daily, 1)
	assert.Equal(t, now.Add(-time.Hour).Format("2006-01-02"), daily[0].Date)

	status, body = s.do(t, http.MethodGet, "/v1/apps/app-1/usage/users", "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	summaries := decode[[]models.UserUsageSummary](t, body)
	require.Len(t, summaries, 1)
	assert.Equal(t, alice.ID, summaries[0].UserID)
	assert.Equal(t, int64(2), summaries[0].AgentRuns)

	status, body = s.do(t, http.MethodGet, "/v1/apps/app-1/users", "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	users := decode[[]models.AppUserWithUsage](t, body)
	require.Len(t, users, 2)
	for _, u := range users {
		if u.ID == alice.ID {
			require.NotNil(t, u.AgentRuns)
			assert.Equal(t, int64(2), *u.AgentRuns)
		} else {
			assert.Nil(t, u.AgentRuns)
		}
	}

	status, _ = s.do(t, http.MethodGet, "/v1/app-users/abc", "user_1", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodGet, "/v1/app-users/"+strconv.FormatInt(alice.ID, 10), "user_1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", decode[models.AppUser](t, body).ExternalID)

	status, _ = s.do(t, http.MethodGet, "/v1/app-users/"+strconv.FormatInt(alice.ID, 10), "user_2", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSubmitFeedback(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/user/feedback", "user_1", models.FeedbackRequest{Message: " ok "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Tell us a bit more", decode[map[string]string](t, body)["error"])

	status, body = s.do(t, http.MethodPost, "/api/user/feedback", "user_1", models.FeedbackRequest{
		Message:     "The daily chart is really useful",
		CurrentPage: "/analytics",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Feedback sent", decode[map[string]any](t, body)["message"])

	var stored models.Feedback
	require.NoError(t, s.db.First(&stored).Error)
	assert.Equal(t, "user_1", stored.UserID)
}

func TestClerkWebhook(t *testing.T) {
	s := newTestServer(t)
	wh, err := svix.NewWebhook(testClerkSecret)
	require.NoError(t, err)

	send := func(payload []byte, signed bool) int {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		ts := time.Now()
		req.Header.Set("svix-id", "msg_1")
		req.Header.Set("svix-timestamp", strconv.FormatInt(ts.Unix(), 10))
		signature := "v1,invalid"
		if signed {
			signature, err = wh.Sign("msg_1", ts, payload)
			require.NoError(t, err)
		}
		req.Header.Set("svix-signature", signature)

		resp, err := s.app.Test(req, -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	created := []byte(`{"type":"user.created","data":{"id":"user_9","first_name":"Grace","last_name":"Hopper",` +
		`"primary_email_address_id":"e2","email_addresses":[{"id":"e1","email_address":"old@example.com"},{"id":"e2","email_address":"grace@example.com"}]}}`)

	assert.Equal(t, http.StatusUnauthorized, send(created, false))
	assert.Equal(t, http.StatusOK, send(created, true))

	var profile models.Profile
	require.NoError(t, s.db.First(&profile, "id = ?", "user_9").Error)
	assert.Equal(t, "Grace Hopper", profile.Name)
	assert.Equal(t, "grace@example.com", profile.Email)
	assert.Equal(t, models.PlanFree, profile.Plan)

	deleted := []byte(`{"type":"user.deleted","data":{"id":"user_9"}}`)
	assert.Equal(t, http.StatusOK, send(deleted, true))

	var count int64
	require.NoError(t, s.db.Model(&models.Profile{}).Where("id = ?", "user_9").Count(&count).Error)
	assert.Zero(t, count)
}

func TestStripeRoutesAbsentWithoutBilling(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/webhooks/stripe", "", map[string]string{})
	assert.Equal(t, http.StatusNotFound, status)
}
