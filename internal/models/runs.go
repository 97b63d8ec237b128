package models

import "time"

type RunType string

const (
	RunTypeLLM   RunType = "llm"
	RunTypeAgent RunType = "agent"
	RunTypeTool  RunType = "tool"
	RunTypeChain RunType = "chain"
)

type RunStatus string

const (
	RunStatusStarted RunStatus = "started"
	RunStatusSuccess RunStatus = "success"
	RunStatusError   RunStatus = "error"
)

// Run is one recorded execution: an LLM call, an agent step, a tool call.
type Run struct {
	ID               string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt        time.Time  `gorm:"not null;index" json:"created_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	App              string     `gorm:"not null;index;type:varchar(36)" json:"app"`
	Type             RunType    `gorm:"not null;index;type:varchar(50)" json:"type"`
	Status           RunStatus  `gorm:"not null;type:varchar(50)" json:"status"`
	Name             string     `gorm:"type:varchar(255)" json:"name"`
	UserID           *int64     `gorm:"index" json:"user,omitempty"`
	ParentRunID      *string    `gorm:"index;type:varchar(36)" json:"parent_run,omitempty"`
	PromptTokens     *int64     `json:"prompt_tokens,omitempty"`
	CompletionTokens *int64     `json:"completion_tokens,omitempty"`
	Tags             StringList `json:"tags,omitempty"`
	Input            RawJSON    `json:"input,omitempty"`
	Output           RawJSON    `json:"output,omitempty"`
	Error            RawJSON    `json:"error,omitempty"`
}

func (Run) TableName() string {
	return "run"
}

// Duration is nil while the run has not ended.
func (r *Run) Duration() *time.Duration {
	if r.EndedAt == nil {
		return nil
	}
	d := r.EndedAt.Sub(r.CreatedAt)
	return &d
}
