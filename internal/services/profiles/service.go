package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/services/cache"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidPlan     = errors.New("invalid plan specified")
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

func profileKey(userID string) string {
	return cache.Key("profile", userID)
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	return cache.Cached(ctx, s.cache, profileKey(userID), cache.Hard, func(ctx context.Context) (*models.ProfileResponse, error) {
		var profile models.Profile
		err := s.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
		return profile.ToResponse(UserColor(profile.ID)), nil
	})
}

// UpsertProfile creates the profile on first sight and refreshes email and
// name afterwards. Plan and billing fields are never touched here.
func (s *Service) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if profile.Plan == "" {
		profile.Plan = models.PlanFree
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	s.cache.Invalidate(ctx, profileKey(profile.ID))
	return nil
}

func (s *Service) DeleteProfile(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	s.cache.Invalidate(ctx, profileKey(userID))
	return nil
}

// SetPlan changes a user's plan. An empty userID resolves the profile by
// stripeCustomer, which is how subscription events identify the user.
func (s *Service) SetPlan(ctx context.Context, userID string, plan models.Plan, stripeCustomer string) error {
	if !plan.IsValid() {
		return ErrInvalidPlan
	}

	query := s.db.WithContext(ctx).Model(&models.Profile{})
	switch {
	case userID != "":
		query = query.Where("id = ?", userID)
	case stripeCustomer != "":
		query = query.Where("stripe_customer = ?", stripeCustomer)
	default:
		return ErrProfileNotFound
	}

	updates := map[string]any{"plan": plan}
	if stripeCustomer != "" {
		updates["stripe_customer"] = stripeCustomer
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}

	if userID == "" {
		var profile models.Profile
		if err := s.db.WithContext(ctx).Select("id").Where("stripe_customer = ?", stripeCustomer).First(&profile).Error; err == nil {
			userID = profile.ID
		}
	}
	if userID != "" {
		s.cache.Invalidate(ctx, profileKey(userID))
	}
	return nil
}
