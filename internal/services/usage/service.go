package usage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/cache"

	"gorm.io/gorm"
)

const (
	maxDays    = 365
	dateLayout = "2006-01-02"
)

var ErrInvalidDays = errors.New("days must be a positive number")

// runRow is the slice of a run the usage queries read.
type runRow struct {
	Name             string
	Type             models.RunType
	Status           models.RunStatus
	UserID           *int64
	PromptTokens     *int64
	CompletionTokens *int64
	CreatedAt        time.Time
}

type groupKey struct {
	date   string
	name   string
	typ    models.RunType
	userID int64
	hasUID bool
}

type Service struct {
	db    *gorm.DB
	cache *cache.QueryCache
	now   func() time.Time
}

func NewService(db *gorm.DB, queryCache *cache.QueryCache) *Service {
	return &Service{
		db:    db,
		cache: queryCache,
		now:   time.Now,
	}
}

// RunsUsage aggregates the app's runs of the last days by name and type.
func (s *Service) RunsUsage(ctx context.Context, appID string, days int, userID *int64) ([]models.RunUsage, error) {
	days, err := clampDays(days)
	if err != nil {
		return nil, err
	}

	key := cache.Key("usage", appID, days, userID)
	return cache.Cached(ctx, s.cache, key, cache.Soft, func(ctx context.Context) ([]models.RunUsage, error) {
		rows, err := s.loadRuns(ctx, appID, days, userID, false)
		if err != nil {
			return nil, err
		}
		usage := make([]models.RunUsage, 0)
		for _, g := range groupRuns(rows, false, false) {
			usage = append(usage, g.RunUsage)
		}
		return ExtendWithCosts(usage), nil
	})
}

// RunsUsageByDay is RunsUsage bucketed per UTC day, oldest day first.
func (s *Service) RunsUsageByDay(ctx context.Context, appID string, days int, userID *int64) ([]models.DailyRunUsage, error) {
	days, err := clampDays(days)
	if err != nil {
		return nil, err
	}

	key := cache.Key("usage-daily", appID, days, userID)
	return cache.Cached(ctx, s.cache, key, cache.Hard, func(ctx context.Context) ([]models.DailyRunUsage, error) {
		rows, err := s.loadRuns(ctx, appID, days, userID, false)
		if err != nil {
			return nil, err
		}
		daily := groupRuns(rows, true, false)
		sort.SliceStable(daily, func(i, j int) bool {
			return daily[i].Date < daily[j].Date
		})
		return extendDailyWithCosts(daily), nil
	})
}

// RunsUsageByUser summarizes run counts and cost per app user.
func (s *Service) RunsUsageByUser(ctx context.Context, appID string, days int) ([]models.UserUsageSummary, error) {
	days, err := clampDays(days)
	if err != nil {
		return nil, err
	}

	key := cache.Key("usage-users", appID, days)
	return cache.Cached(ctx, s.cache, key, cache.Hard, func(ctx context.Context) ([]models.UserUsageSummary, error) {
		rows, err := s.loadRuns(ctx, appID, days, nil, true)
		if err != nil {
			return nil, err
		}
		usage := make([]models.RunUsage, 0)
		for _, g := range groupRuns(rows, false, true) {
			usage = append(usage, g.RunUsage)
		}
		return ReduceUsersUsage(ExtendWithCosts(usage)), nil
	})
}

func (s *Service) loadRuns(ctx context.Context, appID string, days int, userID *int64, withUser bool) ([]runRow, error) {
	since := s.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	query := s.db.WithContext(ctx).
		Model(&models.Run{}).
		Select("name, type, status, user_id, prompt_tokens, completion_tokens, created_at").
		Where("app = ? AND created_at >= ?", appID, since)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if withUser {
		query = query.Where("user_id IS NOT NULL")
	}

	var rows []runRow
	if err := query.Order("created_at ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load runs usage: %w", err)
	}
	return rows, nil
}

// groupRuns sums rows sharing a name and type, optionally split per day
// and per user. Groups keep the order of their first row.
func groupRuns(rows []runRow, byDate, byUser bool) []models.DailyRunUsage {
	groups := make([]models.DailyRunUsage, 0)
	index := make(map[groupKey]int)

	for _, row := range rows {
		key := groupKey{name: row.Name, typ: row.Type}
		if byDate {
			key.date = row.CreatedAt.UTC().Format(dateLayout)
		}
		if byUser && row.UserID != nil {
			key.userID, key.hasUID = *row.UserID, true
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			g := models.DailyRunUsage{
				Date:     key.date,
				RunUsage: models.RunUsage{Name: row.Name, Type: row.Type},
			}
			if key.hasUID {
				uid := key.userID
				g.UserID = &uid
			}
			groups = append(groups, g)
		}

		g := &groups[i]
		g.PromptTokens += valueOrZero(row.PromptTokens)
		g.CompletionTokens += valueOrZero(row.CompletionTokens)
		switch row.Status {
		case models.RunStatusSuccess:
			g.Success++
		case models.RunStatusError:
			g.Errors++
		}
	}

	return groups
}

func clampDays(days int) (int, error) {
	if days <= 0 {
		return 0, ErrInvalidDays
	}
	return min(days, maxDays), nil
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
