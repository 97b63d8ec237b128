package usage

import (
	"context"
	"testing"
	"time"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2023, 8, 10, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *database.DB) {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(db.DB, nil)
	svc.now = func() time.Time { return testNow }
	return svc, db
}

func run(app, name string, status models.RunStatus, user *int64, prompt, completion int64, age time.Duration) models.Run {
	return models.Run{
		ID:               uuid.NewString(),
		CreatedAt:        testNow.Add(-age),
		App:              app,
		Type:             models.RunTypeLLM,
		Status:           status,
		Name:             name,
		UserID:           user,
		PromptTokens:     &prompt,
		CompletionTokens: &completion,
	}
}

func seed(t *testing.T, db *database.DB) {
	t.Helper()
	day := 24 * time.Hour
	runs := []models.Run{
		run("a1", "gpt-4", models.RunStatusSuccess, uid(1), 1000, 500, 3*day),
		run("a1", "gpt-4", models.RunStatusError, uid(2), 1000, 0, 2*day),
		run("a1", "gpt-3.5-turbo", models.RunStatusSuccess, uid(1), 2000, 1000, 2*day-time.Hour),
		run("a1", "gpt-4", models.RunStatusSuccess, nil, 500, 500, time.Hour),
		run("a1", "gpt-4", models.RunStatusSuccess, uid(1), 100, 100, 40*day),
		run("a2", "gpt-4", models.RunStatusSuccess, uid(1), 100, 100, time.Hour),
	}
	require.NoError(t, db.Create(&runs).Error)

	// A started run with no token counts yet.
	pending := models.Run{
		ID: uuid.NewString(), CreatedAt: testNow.Add(-time.Minute), App: "a1",
		Type: models.RunTypeLLM, Status: models.RunStatusStarted, Name: "gpt-4",
	}
	require.NoError(t, db.Create(&pending).Error)
}

func TestRunsUsage(t *testing.T) {
	svc, db := newService(t)
	seed(t, db)

	usage, err := svc.RunsUsage(context.Background(), "a1", 30, nil)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	gpt4 := usage[0]
	assert.Equal(t, "gpt-4", gpt4.Name)
	assert.Equal(t, int64(2500), gpt4.PromptTokens)
	assert.Equal(t, int64(1000), gpt4.CompletionTokens)
	assert.Equal(t, int64(2), gpt4.Success)
	assert.Equal(t, int64(1), gpt4.Errors)
	assert.Nil(t, gpt4.UserID)
	assert.InDelta(t, CalculateRunCost("gpt-4", 2500, 1000), gpt4.Cost, 1e-9)

	assert.Equal(t, "gpt-3.5-turbo", usage[1].Name)
}

func TestRunsUsageForUser(t *testing.T) {
	svc, db := newService(t)
	seed(t, db)

	usage, err := svc.RunsUsage(context.Background(), "a1", 30, uid(1))
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, int64(1), usage[0].Success)
	assert.Equal(t, int64(1000), usage[0].PromptTokens)
}

func TestRunsUsageWindow(t *testing.T) {
	svc, db := newService(t)
	seed(t, db)

	usage, err := svc.RunsUsage(context.Background(), "a1", 1, nil)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, int64(1), usage[0].Success)

	usage, err = svc.RunsUsage(context.Background(), "a1", 1000, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), usage[0].Success)
}

func TestRunsUsageRejectsBadDays(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.RunsUsage(context.Background(), "a1", 0, nil)
	require.ErrorIs(t, err, ErrInvalidDays)
	_, err = svc.RunsUsageByDay(context.Background(), "a1", -1, nil)
	require.ErrorIs(t, err, ErrInvalidDays)
	_, err = svc.RunsUsageByUser(context.Background(), "a1", 0)
	require.ErrorIs(t, err, ErrInvalidDays)
}

func TestRunsUsageByDay(t *testing.T) {
	svc, db := newService(t)
	seed(t, db)

	daily, err := svc.RunsUsageByDay(context.Background(), "a1", 30, nil)
	require.NoError(t, err)

	dates := []string{}
	for _, d := range daily {
		dates = append(dates, d.Date+"/"+d.Name)
	}
	assert.Equal(t, []string{
		"2023-08-07/gpt-4",
		"2023-08-08/gpt-4",
		"2023-08-08/gpt-3.5-turbo",
		"2023-08-10/gpt-4",
	}, dates)

	last := daily[len(daily)-1]
	assert.Equal(t, int64(1), last.Success)
	assert.Equal(t, int64(500), last.PromptTokens)
	assert.InDelta(t, CalculateRunCost("gpt-4", 500, 500), last.Cost, 1e-9)
}

func TestRunsUsageByUser(t *testing.T) {
	svc, db := newService(t)
	seed(t, db)

	summaries, err := svc.RunsUsageByUser(context.Background(), "a1", 30)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, int64(1), summaries[0].UserID)
	assert.Equal(t, int64(2), summaries[0].AgentRuns)
	assert.InDelta(t,
		CalculateRunCost("gpt-4", 1000, 500)+CalculateRunCost("gpt-3.5-turbo", 2000, 1000),
		summaries[0].Cost, 1e-9)

	assert.Equal(t, int64(2), summaries[1].UserID)
	assert.Equal(t, int64(1), summaries[1].AgentRuns)
}

func TestRunsUsageEmptyApp(t *testing.T) {
	svc, _ := newService(t)

	usage, err := svc.RunsUsage(context.Background(), "none", 30, nil)
	require.NoError(t, err)
	assert.NotNil(t, usage)
	assert.Empty(t, usage)

	summaries, err := svc.RunsUsageByUser(context.Background(), "none", 30)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
