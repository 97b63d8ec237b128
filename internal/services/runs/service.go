package runs

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/cache"

	"gorm.io/gorm"
)

const (
	runsLimit   = 200
	agentsLimit = 100
)

var (
	ErrRunNotFound    = errors.New("run not found")
	ErrInvalidFilter  = errors.New("invalid run filter")
	ErrInvalidRunType = errors.New("run type must be lowercase letters or underscores")
)

var runTypePattern = regexp.MustCompile(`^[a-z_]+$`)

// filterColumns are the run columns a caller may match on.
var filterColumns = map[string]string{
	"status":        "status",
	"name":          "name",
	"user_id":       "user_id",
	"parent_run_id": "parent_run_id",
}

type Service struct {
	db    *gorm.DB
	cache *cache.QueryCache
}

func NewService(db *gorm.DB, queryCache *cache.QueryCache) *Service {
	return &Service{
		db:    db,
		cache: queryCache,
	}
}

// ListRuns returns up to 200 runs of one type, oldest first, optionally
// narrowed by equality filters.
func (s *Service) ListRuns(ctx context.Context, appID string, runType models.RunType, match map[string]string) ([]models.Run, error) {
	if !runTypePattern.MatchString(string(runType)) {
		return nil, ErrInvalidRunType
	}

	conditions := make(map[string]any, len(match))
	for key, value := range match {
		column, ok := filterColumns[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFilter, key)
		}
		if column == "user_id" {
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: user_id must be an integer", ErrInvalidFilter)
			}
			conditions[column] = id
			continue
		}
		conditions[column] = value
	}

	keyParts := []any{"runs", appID, runType}
	for _, column := range slices.Sorted(maps.Keys(conditions)) {
		keyParts = append(keyParts, column+"="+fmt.Sprint(conditions[column]))
	}

	return cache.Cached(ctx, s.cache, cache.Key(keyParts...), cache.Soft, func(ctx context.Context) ([]models.Run, error) {
		runs := []models.Run{}
		query := s.db.WithContext(ctx).
			Where("app = ? AND type = ?", appID, runType)
		if len(conditions) > 0 {
			query = query.Where(conditions)
		}
		err := query.
			Order("created_at ASC").
			Limit(runsLimit).
			Find(&runs).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		return runs, nil
	})
}

func (s *Service) GetRun(ctx context.Context, runID string) (*models.Run, error) {
	return cache.Cached(ctx, s.cache, cache.Key("run", runID), cache.Soft, func(ctx context.Context) (*models.Run, error) {
		var run models.Run
		err := s.db.WithContext(ctx).Where("id = ?", runID).First(&run).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get run: %w", err)
		}
		return &run, nil
	})
}

func (s *Service) ListAgents(ctx context.Context, appID string) ([]models.Agent, error) {
	return cache.Cached(ctx, s.cache, cache.Key("agents", appID), cache.Soft, func(ctx context.Context) ([]models.Agent, error) {
		agents := []models.Agent{}
		err := s.db.WithContext(ctx).
			Where("app = ?", appID).
			Limit(agentsLimit).
			Find(&agents).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list agents: %w", err)
		}
		return agents, nil
	})
}
