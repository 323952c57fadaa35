package models

import "time"

type Team struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	TotalCost   float64   `json:"total_cost"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TeamMember struct {
	ID         string    `json:"id"`
	TeamID     string    `json:"team_id"`
	AgentID    string    `json:"agent_id"`
	Position   string    `json:"position"`
	CostAtHire float64   `json:"cost_at_hire"`
	JoinedAt   time.Time `json:"joined_at"`
	Agent      *Agent    `json:"agent,omitempty"`
}

type TeamWithMembers struct {
	Team
	Members []TeamMember `json:"members"`
}

type TeamStats struct {
	TeamID        string  `json:"team_id"`
	TotalMembers  int     `json:"total_members"`
	AvgVelocity   float64 `json:"avg_velocity"`
	AvgEfficiency float64 `json:"avg_efficiency"`
	TotalCost     float64 `json:"total_cost"`
	CurrentValue  float64 `json:"current_value"`
	ROI           float64 `json:"roi"`
}
