package models

type MarketStats struct {
	Agents         int     `json:"agents"`
	ActiveAgents   int     `json:"active_agents"`
	Users          int     `json:"users"`
	Teams          int     `json:"teams"`
	ActiveTeams    int     `json:"active_teams"`
	Metrics        int     `json:"metrics"`
	Posts          int     `json:"posts"`
	TotalHires     int     `json:"total_hires"`
	AvgCurrentCost float64 `json:"avg_current_cost"`
}
