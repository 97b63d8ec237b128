package appusers

import (
	"context"
	"errors"
	"testing"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsage struct {
	summaries []models.UserUsageSummary
	err       error
	gotDays   int
}

func (s *stubUsage) RunsUsageByUser(_ context.Context, _ string, days int) ([]models.UserUsageSummary, error) {
	s.gotDays = days
	return s.summaries, s.err
}

func newService(t *testing.T, usage UsageSource) (*Service, *database.DB) {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewService(db.DB, nil, usage), db
}

func TestMergeUsage(t *testing.T) {
	users := []models.AppUser{{ID: 1, ExternalID: "alice"}, {ID: 2, ExternalID: "bob"}}
	summaries := []models.UserUsageSummary{{UserID: 2, AgentRuns: 4, Cost: 0.5}, {UserID: 9, AgentRuns: 1}}

	merged := MergeUsage(users, summaries)

	require.Len(t, merged, 2)
	assert.Nil(t, merged[0].AgentRuns)
	assert.Nil(t, merged[0].Cost)
	require.NotNil(t, merged[1].AgentRuns)
	assert.Equal(t, int64(4), *merged[1].AgentRuns)
	assert.InDelta(t, 0.5, *merged[1].Cost, 1e-9)
	assert.Equal(t, "bob", merged[1].ExternalID)
}

func TestMergeUsageEmpty(t *testing.T) {
	assert.Empty(t, MergeUsage(nil, nil))
}

func TestListWithUsage(t *testing.T) {
	usage := &stubUsage{summaries: []models.UserUsageSummary{{UserID: 1, AgentRuns: 3, Cost: 1.25}}}
	svc, db := newService(t, usage)

	users := []models.AppUser{
		{App: "a1", ExternalID: "alice"},
		{App: "a1", ExternalID: "bob"},
		{App: "a2", ExternalID: "carol"},
	}
	require.NoError(t, db.Create(&users).Error)

	got, err := svc.ListWithUsage(context.Background(), "a1", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultUsageRange, usage.gotDays)
	require.Len(t, got, 2)

	byName := map[string]models.AppUserWithUsage{}
	for _, u := range got {
		byName[u.ExternalID] = u
	}
	require.NotNil(t, byName["alice"].AgentRuns)
	assert.Equal(t, int64(3), *byName["alice"].AgentRuns)
	assert.Nil(t, byName["bob"].AgentRuns)

	_, err = svc.ListWithUsage(context.Background(), "a1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, usage.gotDays)
}

func TestListWithUsageError(t *testing.T) {
	boom := errors.New("boom")
	svc, _ := newService(t, &stubUsage{err: boom})

	_, err := svc.ListWithUsage(context.Background(), "a1", 30)
	require.ErrorIs(t, err, boom)
}

func TestGetAppUser(t *testing.T) {
	svc, db := newService(t, &stubUsage{})
	user := models.AppUser{App: "a1", ExternalID: "alice", Props: models.JSONMap{"plan": "pro"}}
	require.NoError(t, db.Create(&user).Error)

	got, err := svc.GetAppUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.ExternalID)
	assert.Equal(t, "pro", got.Props["plan"])

	_, err = svc.GetAppUser(context.Background(), user.ID+100)
	require.ErrorIs(t, err, ErrAppUserNotFound)
}
