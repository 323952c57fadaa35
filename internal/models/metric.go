package models

import "time"

type MetricType string

const (
	MetricIssue MetricType = "issue"
	MetricPR    MetricType = "pr"
	MetricTask  MetricType = "task"
)

func (t MetricType) Valid() bool {
	switch t {
	case MetricIssue, MetricPR, MetricTask:
		return true
	default:
		return false
	}
}

type Metric struct {
	ID             string         `json:"id"`
	AgentID        string         `json:"agent_id"`
	MetricType     MetricType     `json:"metric_type"`
	CompletionTime float64        `json:"completion_time"`
	Difficulty     int            `json:"difficulty"`
	Success        bool           `json:"success"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	RecordedAt     time.Time      `json:"recorded_at"`
}

// MetricAggregate is the consistent read-side view of an agent's successful
// metrics used to refresh its counters.
type MetricAggregate struct {
	IssuesCompleted   int
	PRsCompleted      int
	AvgCompletionTime float64
}

type MetricTypeBreakdown struct {
	Issues float64 `json:"issue"`
	PRs    float64 `json:"pr"`
	Tasks  float64 `json:"task"`
}

type MetricSummary struct {
	AgentID            string              `json:"agent_id"`
	Days               int                 `json:"days"`
	TotalMetrics       int                 `json:"total_metrics"`
	ByType             MetricTypeBreakdown `json:"by_type"`
	AvgCompletionTimes MetricTypeBreakdown `json:"avg_completion_times"`
	SuccessRates       MetricTypeBreakdown `json:"success_rates"`
	RecentMetrics      []Metric            `json:"recent_metrics"`
}

type MetricTrendPoint struct {
	Date              string  `json:"date"`
	Count             int     `json:"count"`
	AvgCompletionTime float64 `json:"avg_completion_time"`
	SuccessRate       float64 `json:"success_rate"`
}
