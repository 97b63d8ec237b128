package models

import "time"

// FeedbackConfig controls the notifier that forwards feedback to a chat webhook.
type FeedbackConfig struct {
	WebhookURL string        `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`
	Workers    int           `json:"workers,omitempty" yaml:"workers,omitempty"`
	BufferSize int           `json:"buffer_size,omitempty" yaml:"buffer_size,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}
