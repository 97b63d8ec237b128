package models

import "time"

type Feedback struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string    `gorm:"not null;index;type:varchar(255)" json:"user_id"`
	Message     string    `gorm:"not null;type:text" json:"message"`
	CurrentPage string    `gorm:"type:varchar(2048)" json:"current_page"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Feedback) TableName() string {
	return "feedback"
}

type FeedbackRequest struct {
	Message     string `json:"message"`
	CurrentPage string `json:"currentPage"`
}
