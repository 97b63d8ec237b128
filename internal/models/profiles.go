package models

import "time"

type Plan string

const (
	PlanFree      Plan = "free"
	PlanPro       Plan = "pro"
	PlanUnlimited Plan = "unlimited"
)

func (p Plan) IsValid() bool {
	switch p {
	case PlanFree, PlanPro, PlanUnlimited:
		return true
	}
	return false
}

// Profile mirrors the identity provider's user, plus billing state.
type Profile struct {
	ID             string    `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Email          string    `gorm:"index;type:varchar(255)" json:"email"`
	Name           string    `gorm:"type:varchar(255)" json:"name"`
	Plan           Plan      `gorm:"not null;default:'free';type:varchar(50)" json:"plan"`
	StripeCustomer string    `gorm:"index;type:varchar(255)" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profile"
}

type ProfileResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Plan       Plan      `json:"plan"`
	Color      string    `json:"color"`
	CanUpgrade bool      `json:"can_upgrade"`
	CreatedAt  time.Time `json:"created_at"`
}

func (p *Profile) ToResponse(color string) *ProfileResponse {
	return &ProfileResponse{
		ID:         p.ID,
		Email:      p.Email,
		Name:       p.Name,
		Plan:       p.Plan,
		Color:      color,
		CanUpgrade: p.Plan == PlanFree,
		CreatedAt:  p.CreatedAt,
	}
}
