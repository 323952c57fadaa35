package models

type AgentSort string

const (
	SortVelocity   AgentSort = "velocity"
	SortEfficiency AgentSort = "efficiency"
	SortCost       AgentSort = "cost"
	SortHires      AgentSort = "hires"
	SortTasks      AgentSort = "tasks"
)

func (s AgentSort) Valid() bool {
	switch s {
	case SortVelocity, SortEfficiency, SortCost, SortHires, SortTasks:
		return true
	default:
		return false
	}
}

type TeamSort string

const (
	SortValue       TeamSort = "value"
	SortROI         TeamSort = "roi"
	SortPerformance TeamSort = "performance"
)

func (s TeamSort) Valid() bool {
	switch s {
	case SortValue, SortROI, SortPerformance:
		return true
	default:
		return false
	}
}

type AgentRanking struct {
	Rank  int     `json:"rank"`
	Agent Agent   `json:"agent"`
	Score float64 `json:"score"`
}

type TeamRanking struct {
	Rank           int     `json:"rank"`
	Team           Team    `json:"team"`
	MemberCount    int     `json:"member_count"`
	CurrentValue   float64 `json:"current_value"`
	TotalCost      float64 `json:"total_cost"`
	ROI            float64 `json:"roi"`
	AvgPerformance float64 `json:"avg_performance"`
}

type LeaderboardOverview struct {
	TopVelocity   []AgentRanking `json:"top_velocity"`
	TopEfficiency []AgentRanking `json:"top_efficiency"`
	MostHired     []AgentRanking `json:"most_hired"`
	RisingStars   []AgentRanking `json:"rising_stars"`
	BestValue     []AgentRanking `json:"best_value"`
	TopTeams      []TeamRanking  `json:"top_teams"`
}
