package market

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ambientin/internal/models"
	"ambientin/internal/scoring"
)

const (
	defaultBoardLimit    = 20
	defaultSectionLimit  = 10
	maxBoardLimit        = 100
	defaultActiveWindow  = 7
	defaultRecommendSize = 5
)

func agentScore(a models.Agent, sortBy models.AgentSort) float64 {
	switch sortBy {
	case models.SortEfficiency:
		return a.Efficiency
	case models.SortCost:
		return a.CurrentCost
	case models.SortHires:
		return float64(a.TotalHires)
	case models.SortTasks:
		return float64(a.TotalTasks())
	default:
		return a.Velocity
	}
}

// rankAgents sorts agents descending by score, keeping the store order for
// ties, and numbers the first limit of them from 1.
func rankAgents(agents []models.Agent, score func(models.Agent) float64, limit int) []models.AgentRanking {
	slices.SortStableFunc(agents, func(a, b models.Agent) int {
		return cmp.Compare(score(b), score(a))
	})
	agents = agents[:min(len(agents), limit)]
	out := make([]models.AgentRanking, len(agents))
	for i, a := range agents {
		out[i] = models.AgentRanking{Rank: i + 1, Agent: a, Score: scoring.Round2(score(a))}
	}
	return out
}

func parseAgentSort(sortBy models.AgentSort) (models.AgentSort, error) {
	if sortBy == "" {
		return models.SortVelocity, nil
	}
	if !sortBy.Valid() {
		return "", fmt.Errorf("sort %q: %w", sortBy, models.ErrInvalidInput)
	}
	return sortBy, nil
}

// AgentLeaderboard ranks active agents by a field. With a role filter the
// ranks are positions within the filtered board.
func (s *Service) AgentLeaderboard(ctx context.Context, sortBy models.AgentSort, role string, limit int) ([]models.AgentRanking, error) {
	sortBy, err := parseAgentSort(sortBy)
	if err != nil {
		return nil, err
	}
	agents, err := s.store.ListAgents(ctx, AgentFilter{Role: strings.TrimSpace(role), ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	score := func(a models.Agent) float64 { return agentScore(a, sortBy) }
	return rankAgents(agents, score, clampLimit(limit, defaultBoardLimit, maxBoardLimit)), nil
}

// RoleLeaderboard ranks a role's active agents by velocity.
func (s *Service) RoleLeaderboard(ctx context.Context, role string, limit int) ([]models.AgentRanking, error) {
	if strings.TrimSpace(role) == "" {
		return nil, fmt.Errorf("role is required: %w", models.ErrInvalidInput)
	}
	return s.AgentLeaderboard(ctx, models.SortVelocity, role, limit)
}

func (s *Service) MostHired(ctx context.Context, limit int) ([]models.AgentRanking, error) {
	return s.AgentLeaderboard(ctx, models.SortHires, "", clampLimit(limit, defaultSectionLimit, maxBoardLimit))
}

// RisingStars ranks agents created inside the rising star window by
// velocity, then efficiency.
func (s *Service) RisingStars(ctx context.Context, limit int) ([]models.AgentRanking, error) {
	agents, err := s.store.ListAgents(ctx, AgentFilter{
		ActiveOnly:   true,
		CreatedSince: s.now().Add(-s.cfg.RisingStarWindow),
	})
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	sortByPerformance(agents)
	agents = agents[:min(len(agents), clampLimit(limit, defaultSectionLimit, maxBoardLimit))]
	out := make([]models.AgentRanking, len(agents))
	for i, a := range agents {
		out[i] = models.AgentRanking{Rank: i + 1, Agent: a, Score: a.Velocity}
	}
	return out, nil
}

// BestValue ranks agents by (velocity + efficiency) per unit of cost. Agents
// without a positive cost are left out.
func (s *Service) BestValue(ctx context.Context, limit int) ([]models.AgentRanking, error) {
	agents, err := s.store.ListAgents(ctx, AgentFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	agents = slices.DeleteFunc(agents, func(a models.Agent) bool { return a.CurrentCost <= 0 })
	value := func(a models.Agent) float64 { return (a.Velocity + a.Efficiency) / a.CurrentCost }
	return rankAgents(agents, value, clampLimit(limit, defaultSectionLimit, maxBoardLimit)), nil
}

// MostActive ranks agents touched within the last days by completed tasks.
func (s *Service) MostActive(ctx context.Context, days, limit int) ([]models.AgentRanking, error) {
	days = windowDays(days, defaultActiveWindow)
	agents, err := s.store.ListAgents(ctx, AgentFilter{
		ActiveOnly:   true,
		UpdatedSince: s.now().Add(-time.Duration(days) * 24 * time.Hour),
	})
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	score := func(a models.Agent) float64 { return float64(a.TotalTasks()) }
	return rankAgents(agents, score, clampLimit(limit, defaultSectionLimit, maxBoardLimit)), nil
}

// AgentRank is one plus the number of active agents strictly ahead on the
// field, so ties share a rank.
func (s *Service) AgentRank(ctx context.Context, agentID string, sortBy models.AgentSort) (int, error) {
	sortBy, err := parseAgentSort(sortBy)
	if err != nil {
		return 0, err
	}
	a, err := activeAgent(ctx, s.store, agentID)
	if err != nil {
		return 0, err
	}
	ahead, err := s.store.CountAgentsAbove(ctx, sortBy, agentScore(*a, sortBy))
	if err != nil {
		return 0, fmt.Errorf("count agents: %w", err)
	}
	return ahead + 1, nil
}

// teamValuation is the market view of a team computed from its members.
type teamValuation struct {
	members        int
	currentValue   float64
	avgVelocity    float64
	avgEfficiency  float64
	avgPerformance float64
	roi            float64
}

func valueTeam(t models.Team, members []models.TeamMember) teamValuation {
	var v teamValuation
	var velocity, efficiency float64
	for _, m := range members {
		if m.Agent == nil {
			continue
		}
		v.members++
		v.currentValue += m.Agent.CurrentCost
		velocity += m.Agent.Velocity
		efficiency += m.Agent.Efficiency
	}
	if v.members == 0 {
		return teamValuation{}
	}
	n := float64(v.members)
	v.currentValue = scoring.Round2(v.currentValue)
	v.avgVelocity = scoring.Round2(velocity / n)
	v.avgEfficiency = scoring.Round2(efficiency / n)
	v.avgPerformance = scoring.Round2((velocity + efficiency) / (2 * n))
	if t.TotalCost > 0 {
		v.roi = scoring.Round2((v.currentValue - t.TotalCost) / t.TotalCost * 100)
	}
	return v
}

// TeamLeaderboard ranks active teams by value, ROI or average performance.
// Teams without members score zero everywhere.
func (s *Service) TeamLeaderboard(ctx context.Context, sortBy models.TeamSort, limit int) ([]models.TeamRanking, error) {
	if sortBy == "" {
		sortBy = models.SortValue
	}
	if !sortBy.Valid() {
		return nil, fmt.Errorf("sort %q: %w", sortBy, models.ErrInvalidInput)
	}
	teams, err := s.store.ListTeams(ctx, TeamFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	rankings := make([]models.TeamRanking, 0, len(teams))
	for _, t := range teams {
		members, err := s.store.ListTeamMembers(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("list members of %s: %w", t.ID, err)
		}
		v := valueTeam(t, members)
		rankings = append(rankings, models.TeamRanking{
			Team:           t,
			MemberCount:    v.members,
			CurrentValue:   v.currentValue,
			TotalCost:      t.TotalCost,
			ROI:            v.roi,
			AvgPerformance: v.avgPerformance,
		})
	}

	key := func(r models.TeamRanking) float64 {
		switch sortBy {
		case models.SortROI:
			return r.ROI
		case models.SortPerformance:
			return r.AvgPerformance
		default:
			return r.CurrentValue
		}
	}
	slices.SortStableFunc(rankings, func(a, b models.TeamRanking) int {
		return cmp.Compare(key(b), key(a))
	})
	rankings = rankings[:min(len(rankings), clampLimit(limit, defaultBoardLimit, maxBoardLimit))]
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings, nil
}

// Overview bundles the headline boards. Sections are built concurrently and
// the result is cached until the TTL passes or a market write lands.
func (s *Service) Overview(ctx context.Context) (*models.LeaderboardOverview, error) {
	if s.overview != nil {
		if cached, ok := s.overview.Get(overviewKey); ok {
			return &cached, nil
		}
	}

	gen := s.cacheGeneration()
	var out models.LeaderboardOverview
	g, gctx := errgroup.WithContext(ctx)
	board := func(dst *[]models.AgentRanking, sortBy models.AgentSort) func() error {
		return func() error {
			r, err := s.AgentLeaderboard(gctx, sortBy, "", defaultSectionLimit)
			*dst = r
			return err
		}
	}
	g.Go(board(&out.TopVelocity, models.SortVelocity))
	g.Go(board(&out.TopEfficiency, models.SortEfficiency))
	g.Go(board(&out.MostHired, models.SortHires))
	g.Go(func() (err error) {
		out.RisingStars, err = s.RisingStars(gctx, defaultSectionLimit)
		return err
	})
	g.Go(func() (err error) {
		out.BestValue, err = s.BestValue(gctx, defaultSectionLimit)
		return err
	})
	g.Go(func() (err error) {
		out.TopTeams, err = s.TeamLeaderboard(gctx, models.SortValue, defaultSectionLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build overview: %w", err)
	}

	s.storeOverview(gen, out)
	return &out, nil
}

// sortByPerformance orders agents by velocity, then efficiency, both
// descending.
func sortByPerformance(agents []models.Agent) {
	slices.SortStableFunc(agents, func(a, b models.Agent) int {
		if c := cmp.Compare(b.Velocity, a.Velocity); c != 0 {
			return c
		}
		return cmp.Compare(b.Efficiency, a.Efficiency)
	})
}
