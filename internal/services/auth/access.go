package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"gorm.io/gorm"
)

// OwnerAccessProvider grants access to the owner of an app.
type OwnerAccessProvider struct {
	db *gorm.DB
}

func NewOwnerAccessProvider(db *gorm.DB) *OwnerAccessProvider {
	return &OwnerAccessProvider{db: db}
}

// ValidateAppAccess returns ErrAppNotFound when the app does not exist, so
// callers can tell a missing app from a forbidden one.
func (p *OwnerAccessProvider) ValidateAppAccess(ctx context.Context, userID, appID string) (bool, error) {
	var app models.App
	err := p.db.WithContext(ctx).
		Select("id", "owner").
		Where("id = ?", appID).
		First(&app).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrAppNotFound
	}
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}

	return app.Owner == userID, nil
}
