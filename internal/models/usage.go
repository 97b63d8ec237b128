package models

// RunUsage is one aggregated usage row: runs sharing a name and type
// (and, for per-user queries, a user) within the requested window.
type RunUsage struct {
	Name             string  `json:"name"`
	Type             RunType `json:"type"`
	UserID           *int64  `json:"user_id,omitempty"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	Success          int64   `json:"success"`
	Errors           int64   `json:"errors"`
	Cost             float64 `json:"cost"`
}

// DailyRunUsage is a RunUsage bucketed by UTC day (YYYY-MM-DD).
type DailyRunUsage struct {
	Date string `json:"date"`
	RunUsage
}

type UserUsageSummary struct {
	UserID    int64   `json:"user_id"`
	AgentRuns int64   `json:"agent_runs"`
	Cost      float64 `json:"cost"`
}
