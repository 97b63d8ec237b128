package builder

import (
	"time"

	"github.com/Egham-7/llmonitor-api/internal/models"
)

const (
	defaultFeedbackWorkers = 2
	defaultFeedbackBuffer  = 100
	defaultFeedbackTimeout = 5 * time.Second
)

// WithFeedbackWebhook forwards submitted feedback to a chat webhook.
func (b *Builder) WithFeedbackWebhook(url string) *Builder {
	b.cfg.Feedback = &models.FeedbackConfig{
		WebhookURL: url,
		Workers:    defaultFeedbackWorkers,
		BufferSize: defaultFeedbackBuffer,
		Timeout:    defaultFeedbackTimeout,
	}
	return b
}
