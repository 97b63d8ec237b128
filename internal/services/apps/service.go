package apps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxAppNameLength = 255

var (
	ErrAppNotFound    = errors.New("app not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrInvalidAppName = errors.New("app name must be between 1 and 255 characters")
	ErrNoApps         = errors.New("user has no apps")
)

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

func appsKey(ownerID string) string {
	return cache.Key("apps", ownerID)
}

// ListApps returns the owner's apps, oldest first.
func (s *Service) ListApps(ctx context.Context, ownerID string) ([]models.App, error) {
	return cache.Cached(ctx, s.cache, appsKey(ownerID), cache.Soft, func(ctx context.Context) ([]models.App, error) {
		apps := []models.App{}
		err := s.db.WithContext(ctx).
			Select("id", "name", "owner", "created_at").
			Where("owner = ?", ownerID).
			Order("created_at ASC").
			Find(&apps).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list apps: %w", err)
		}
		return apps, nil
	})
}

func (s *Service) CreateApp(ctx context.Context, ownerID string, req *models.AppCreateRequest) (*models.App, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len([]rune(name)) > maxAppNameLength {
		return nil, ErrInvalidAppName
	}

	app := &models.App{
		ID:    uuid.NewString(),
		Name:  name,
		Owner: ownerID,
	}
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}

	s.cache.Invalidate(ctx, appsKey(ownerID))
	return app, nil
}

func (s *Service) GetApp(ctx context.Context, ownerID, appID string) (*models.App, error) {
	var app models.App
	err := s.db.WithContext(ctx).Where("id = ?", appID).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app: %w", err)
	}
	if app.Owner != ownerID {
		return nil, ErrUnauthorized
	}
	return &app, nil
}

// CurrentApp resolves the app the dashboard should show for requestedID.
func (s *Service) CurrentApp(ctx context.Context, ownerID, requestedID string) (*models.App, error) {
	apps, err := s.ListApps(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	app, ok := SelectCurrentApp(apps, requestedID)
	if !ok {
		return nil, ErrNoApps
	}
	return app, nil
}

// SelectCurrentApp returns the app matching requestedID, or the first app
// when requestedID is empty or no longer among apps.
func SelectCurrentApp(apps []models.App, requestedID string) (*models.App, bool) {
	if len(apps) == 0 {
		return nil, false
	}
	if requestedID != "" {
		for i := range apps {
			if apps[i].ID == requestedID {
				return &apps[i], true
			}
		}
	}
	return &apps[0], true
}
