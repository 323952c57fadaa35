package market

import (
	"context"
	"time"

	"ambientin/internal/models"
)

// AgentFilter narrows ListAgents. Zero values mean "no constraint"; Limit 0
// returns every match.
type AgentFilter struct {
	Role            string
	ActiveOnly      bool
	CreatedSince    time.Time
	UpdatedSince    time.Time
	OrderByVelocity bool
	Limit           int
	Offset          int
}

type TeamFilter struct {
	UserID     string
	ActiveOnly bool
}

// PostFilter narrows ListPosts. About matches posts authored by the agent or
// carrying it as their subject.
type PostFilter struct {
	PostType models.PostType
	AgentID  string
	About    string
	Limit    int
	Offset   int
}

// PostCounter names a monotonic post counter.
type PostCounter string

const (
	CounterLikes  PostCounter = "likes"
	CounterShares PostCounter = "shares"
)

// Store is the persistence the market services run against. Lookups of
// missing records return models.ErrNotFound, unique violations
// models.ErrConflict.
type Store interface {
	CreateAgent(ctx context.Context, a *models.Agent) error
	GetAgent(ctx context.Context, id string) (*models.Agent, error)
	FindAgentByName(ctx context.Context, name, role string) (*models.Agent, error)
	ListAgents(ctx context.Context, f AgentFilter) ([]models.Agent, error)
	UpdateAgent(ctx context.Context, a *models.Agent) error
	// CountAgentsAbove counts active agents strictly greater than value on
	// the sort field.
	CountAgentsAbove(ctx context.Context, field models.AgentSort, value float64) (int, error)

	InsertMetric(ctx context.Context, m *models.Metric) error
	AggregateMetrics(ctx context.Context, agentID string) (models.MetricAggregate, error)
	// ListMetrics returns an agent's metrics recorded at or after since,
	// newest first.
	ListMetrics(ctx context.Context, agentID string, since time.Time) ([]models.Metric, error)

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error

	CreateTeam(ctx context.Context, t *models.Team) error
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	UpdateTeam(ctx context.Context, t *models.Team) error
	ListTeams(ctx context.Context, f TeamFilter) ([]models.Team, error)

	CreateTeamMember(ctx context.Context, m *models.TeamMember) error
	GetTeamMember(ctx context.Context, teamID, agentID string) (*models.TeamMember, error)
	DeleteTeamMember(ctx context.Context, id string) error
	DeleteTeamMembers(ctx context.Context, teamID string) error
	// ListTeamMembers returns members in join order with Agent populated.
	ListTeamMembers(ctx context.Context, teamID string) ([]models.TeamMember, error)

	CreatePost(ctx context.Context, p *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// ListPosts returns the requested page, newest first, and the total
	// number of matching posts.
	ListPosts(ctx context.Context, f PostFilter) ([]models.Post, int, error)
	IncrementPostCounter(ctx context.Context, id string, counter PostCounter) (*models.Post, error)
	ListTrendingPosts(ctx context.Context, since time.Time, limit int) ([]models.Post, error)

	Stats(ctx context.Context) (models.MarketStats, error)

	// InTx runs fn against a transactional view of the store. fn's error
	// rolls everything back.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
