package feedback

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/observability"

	"gorm.io/gorm"
)

const (
	minMessageLength = 5
	maxMessageLength = 5000
	maxPageLength    = 2048
)

var (
	ErrMessageTooShort = fmt.Errorf("message must be longer than %d characters", minMessageLength)
	ErrMessageTooLong  = fmt.Errorf("message must be at most %d characters", maxMessageLength)
	ErrPageTooLong     = fmt.Errorf("currentPage must be at most %d characters", maxPageLength)
)

type Service struct {
	db       *gorm.DB
	notifier *Notifier
	metrics  *observability.Metrics
}

func NewService(db *gorm.DB, notifier *Notifier, metrics *observability.Metrics) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
		metrics:  metrics,
	}
}

// ValidateFeedback checks a submission before it is stored. Lengths are
// counted in UTF-16 code units, the unit the dashboard form counts in.
func ValidateFeedback(req *models.FeedbackRequest) error {
	message := strings.TrimSpace(req.Message)
	if textLength(message) <= minMessageLength {
		return ErrMessageTooShort
	}
	if textLength(message) > maxMessageLength {
		return ErrMessageTooLong
	}
	if textLength(req.CurrentPage) > maxPageLength {
		return ErrPageTooLong
	}
	return nil
}

func textLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// Submit stores the feedback and queues its notification.
func (s *Service) Submit(ctx context.Context, userID, requestID string, req *models.FeedbackRequest) (*models.Feedback, error) {
	if err := ValidateFeedback(req); err != nil {
		s.metrics.FeedbackSubmitted("invalid")
		return nil, err
	}

	fb := models.Feedback{
		UserID:      userID,
		Message:     strings.TrimSpace(req.Message),
		CurrentPage: req.CurrentPage,
	}
	if err := s.db.WithContext(ctx).Create(&fb).Error; err != nil {
		s.metrics.FeedbackSubmitted("error")
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}

	s.metrics.FeedbackSubmitted("success")
	s.notifier.Notify(fb, requestID)

	return &fb, nil
}
