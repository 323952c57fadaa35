package models

import "time"

type SourceType string

const (
	SourceManual SourceType = "manual"
	SourceImport SourceType = "import"
)

// MetaIsNarrator marks the system-owned agent that authors narrative posts.
const MetaIsNarrator = "isNarrator"

type Agent struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Role                 string         `json:"role"`
	Description          string         `json:"description"`
	Content              string         `json:"content,omitempty"`
	Tools                []string       `json:"tools"`
	SourceType           SourceType     `json:"source_type"`
	SourceURL            *string        `json:"source_url,omitempty"`
	AvatarURL            *string        `json:"avatar_url,omitempty"`
	Velocity             float64        `json:"velocity"`
	Efficiency           float64        `json:"efficiency"`
	BaseCost             float64        `json:"base_cost"`
	CurrentCost          float64        `json:"current_cost"`
	TotalHires           int            `json:"total_hires"`
	TotalIssuesCompleted int            `json:"total_issues_completed"`
	TotalPRsCompleted    int            `json:"total_prs_completed"`
	AvgCompletionTime    float64        `json:"avg_completion_time"`
	IsActive             bool           `json:"is_active"`
	Metadata             map[string]any `json:"metadata,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// TotalTasks is the number of successful issue and PR completions.
func (a Agent) TotalTasks() int {
	return a.TotalIssuesCompleted + a.TotalPRsCompleted
}
