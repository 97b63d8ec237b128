package models

import "time"

// AppUser is an end user of a monitored app, identified by the app itself.
type AppUser struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	App        string     `gorm:"not null;index;type:varchar(36)" json:"app"`
	ExternalID string     `gorm:"index;type:varchar(255)" json:"external_id"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
	Props      JSONMap    `json:"props,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (AppUser) TableName() string {
	return "app_user"
}

// AppUserWithUsage is an app user with its usage summary merged in.
// Usage fields are absent when the user had no runs in the range.
type AppUserWithUsage struct {
	AppUser
	AgentRuns *int64   `json:"agent_runs,omitempty"`
	Cost      *float64 `json:"cost,omitempty"`
}
