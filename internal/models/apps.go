package models

import "time"

// App is a tenant the dashboard scopes runs, users and usage to.
type App struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"not null;type:varchar(255)" json:"name"`
	Owner     string    `gorm:"not null;index;type:varchar(255)" json:"owner"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (App) TableName() string {
	return "app"
}

type AppCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type Agent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	App       string    `gorm:"not null;index;type:varchar(36)" json:"app"`
	Name      string    `gorm:"not null;type:varchar(255)" json:"name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Agent) TableName() string {
	return "agents"
}
