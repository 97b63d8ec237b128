package appusers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/cache"

	"gorm.io/gorm"
)

const (
	usersLimit        = 500
	DefaultUsageRange = 30
)

var ErrAppUserNotFound = errors.New("app user not found")

// UsageSource provides per-user usage summaries for an app.
type UsageSource interface {
	RunsUsageByUser(ctx context.Context, appID string, days int) ([]models.UserUsageSummary, error)
}

type Service struct {
	db    *gorm.DB
	cache *cache.QueryCache
	usage UsageSource
}

func NewService(db *gorm.DB, queryCache *cache.QueryCache, usage UsageSource) *Service {
	return &Service{
		db:    db,
		cache: queryCache,
		usage: usage,
	}
}

// ListWithUsage returns the app's users with their usage over the last
// usageRange days merged in.
func (s *Service) ListWithUsage(ctx context.Context, appID string, usageRange int) ([]models.AppUserWithUsage, error) {
	if usageRange <= 0 {
		usageRange = DefaultUsageRange
	}

	users, err := cache.Cached(ctx, s.cache, cache.Key("app-users", appID), cache.Soft, func(ctx context.Context) ([]models.AppUser, error) {
		users := []models.AppUser{}
		err := s.db.WithContext(ctx).
			Where("app = ?", appID).
			Limit(usersLimit).
			Find(&users).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list app users: %w", err)
		}
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	summaries, err := s.usage.RunsUsageByUser(ctx, appID, usageRange)
	if err != nil {
		return nil, fmt.Errorf("failed to load users usage: %w", err)
	}

	return MergeUsage(users, summaries), nil
}

// MergeUsage attaches each user's summary by id. Users without a summary
// are returned without usage fields.
func MergeUsage(users []models.AppUser, summaries []models.UserUsageSummary) []models.AppUserWithUsage {
	byUser := make(map[int64]models.UserUsageSummary, len(summaries))
	for _, s := range summaries {
		byUser[s.UserID] = s
	}

	merged := make([]models.AppUserWithUsage, len(users))
	for i, user := range users {
		merged[i] = models.AppUserWithUsage{AppUser: user}
		if s, ok := byUser[user.ID]; ok {
			runs, cost := s.AgentRuns, s.Cost
			merged[i].AgentRuns = &runs
			merged[i].Cost = &cost
		}
	}
	return merged
}

func (s *Service) GetAppUser(ctx context.Context, id int64) (*models.AppUser, error) {
	return cache.Cached(ctx, s.cache, cache.Key("app-user", id), cache.Hard, func(ctx context.Context) (*models.AppUser, error) {
		var user models.AppUser
		err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppUserNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get app user: %w", err)
		}
		return &user, nil
	})
}
