package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ambientin/internal/models"
	"ambientin/internal/scoring"
)

const DefaultPosition = "member"

func (s *Service) CreateTeam(ctx context.Context, userID, name string, description *string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("team name is required: %w", models.ErrInvalidInput)
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	now := s.now()
	t := &models.Team{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTeam(ctx, t); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	s.invalidate()
	s.logger.Info("team created", "team_id", t.ID, "user_id", userID)
	return t, nil
}

// GetTeam returns an active team with its members. Deleted teams are
// NotFound.
func (s *Service) GetTeam(ctx context.Context, teamID string) (*models.TeamWithMembers, error) {
	t, err := activeTeam(ctx, s.store, teamID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListTeamMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return &models.TeamWithMembers{Team: *t, Members: members}, nil
}

// UserTeams lists a user's active teams, newest first.
func (s *Service) UserTeams(ctx context.Context, userID string) ([]models.Team, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	return s.store.ListTeams(ctx, TeamFilter{UserID: userID, ActiveOnly: true})
}

// AddMember hires an agent onto a team. The owner pays the agent's current
// cost, which is recorded on the membership and added to the team's total;
// the agent's hire count grows and its price is bumped by demand alone.
// Nothing changes unless every step succeeds.
func (s *Service) AddMember(ctx context.Context, teamID, agentID, position string) (*models.TeamMember, error) {
	position = strings.TrimSpace(position)
	if position == "" {
		position = DefaultPosition
	}
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("team %s: %w", teamID, err)
	}

	unlock := s.locks.Lock(teamKey(teamID), userKey(team.UserID), agentKey(agentID))
	defer unlock()

	var member *models.TeamMember
	err = s.store.InTx(ctx, func(tx Store) error {
		t, err := activeTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		a, err := activeAgent(ctx, tx, agentID)
		if err != nil {
			return err
		}
		u, err := tx.GetUser(ctx, t.UserID)
		if err != nil {
			return fmt.Errorf("team owner %s: %w", t.UserID, err)
		}
		switch _, err := tx.GetTeamMember(ctx, teamID, agentID); {
		case err == nil:
			return fmt.Errorf("agent %s already on team %s: %w", agentID, teamID, models.ErrConflict)
		case !errors.Is(err, models.ErrNotFound):
			return fmt.Errorf("lookup membership: %w", err)
		}

		cost := a.CurrentCost
		if u.Credits < cost {
			return fmt.Errorf("hire costs %.2f, user has %.2f: %w", cost, u.Credits, models.ErrInsufficientFunds)
		}
		now := s.now()

		u.Credits = scoring.Round2(u.Credits - cost)
		u.UpdatedAt = now
		if err := tx.UpdateUser(ctx, u); err != nil {
			return fmt.Errorf("debit user: %w", err)
		}

		a.TotalHires++
		a.CurrentCost = s.params.HireCost(*a)
		a.UpdatedAt = now
		if err := tx.UpdateAgent(ctx, a); err != nil {
			return fmt.Errorf("update agent: %w", err)
		}

		t.TotalCost = scoring.Round2(t.TotalCost + cost)
		t.UpdatedAt = now
		if err := tx.UpdateTeam(ctx, t); err != nil {
			return fmt.Errorf("update team: %w", err)
		}

		member = &models.TeamMember{
			ID:         uuid.NewString(),
			TeamID:     teamID,
			AgentID:    agentID,
			Position:   position,
			CostAtHire: cost,
			JoinedAt:   now,
		}
		if err := tx.CreateTeamMember(ctx, member); err != nil {
			return fmt.Errorf("create member: %w", err)
		}
		member.Agent = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	s.logger.Info("agent hired", "team_id", teamID, "agent_id", agentID, "cost", member.CostAtHire, "new_cost", member.Agent.CurrentCost)
	return member, nil
}

// RemoveMember releases an agent from a team. The hire count and the team
// total are rolled back; the owner is not refunded and the agent's price is
// left where the hire put it.
func (s *Service) RemoveMember(ctx context.Context, teamID, agentID string) error {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("team %s: %w", teamID, err)
	}

	unlock := s.locks.Lock(teamKey(teamID), userKey(team.UserID), agentKey(agentID))
	defer unlock()

	err = s.store.InTx(ctx, func(tx Store) error {
		m, err := tx.GetTeamMember(ctx, teamID, agentID)
		if err != nil {
			return fmt.Errorf("membership of %s on %s: %w", agentID, teamID, err)
		}
		now := s.now()

		a, err := tx.GetAgent(ctx, agentID)
		if err != nil {
			return fmt.Errorf("agent %s: %w", agentID, err)
		}
		a.TotalHires = max(0, a.TotalHires-1)
		a.UpdatedAt = now
		if err := tx.UpdateAgent(ctx, a); err != nil {
			return fmt.Errorf("update agent: %w", err)
		}

		t, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return fmt.Errorf("team %s: %w", teamID, err)
		}
		t.TotalCost = max(0, scoring.Round2(t.TotalCost-m.CostAtHire))
		t.UpdatedAt = now
		if err := tx.UpdateTeam(ctx, t); err != nil {
			return fmt.Errorf("update team: %w", err)
		}

		if err := tx.DeleteTeamMember(ctx, m.ID); err != nil {
			return fmt.Errorf("delete member: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate()
	s.logger.Info("agent released", "team_id", teamID, "agent_id", agentID)
	return nil
}

// TeamStats reports a team's averages, value and ROI. A team without
// members reports zeros; a deleted team is NotFound.
func (s *Service) TeamStats(ctx context.Context, teamID string) (*models.TeamStats, error) {
	t, err := activeTeam(ctx, s.store, teamID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListTeamMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	v := valueTeam(*t, members)
	return &models.TeamStats{
		TeamID:        t.ID,
		TotalMembers:  v.members,
		AvgVelocity:   v.avgVelocity,
		AvgEfficiency: v.avgEfficiency,
		TotalCost:     t.TotalCost,
		CurrentValue:  v.currentValue,
		ROI:           v.roi,
	}, nil
}

// RecommendedAgents suggests top performers whose role the team does not
// cover yet. Only the best 3*limit agents are considered, so a team that
// already covers their roles gets fewer than limit suggestions.
func (s *Service) RecommendedAgents(ctx context.Context, teamID string, limit int) ([]models.Agent, error) {
	limit = clampLimit(limit, defaultRecommendSize, maxBoardLimit)
	if _, err := activeTeam(ctx, s.store, teamID); err != nil {
		return nil, err
	}
	members, err := s.store.ListTeamMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	covered := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m.Agent != nil {
			covered[m.Agent.Role] = struct{}{}
		}
	}

	candidates, err := s.store.ListAgents(ctx, AgentFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	sortByPerformance(candidates)
	candidates = candidates[:min(len(candidates), 3*limit)]

	out := make([]models.Agent, 0, limit)
	for _, a := range candidates {
		if _, ok := covered[a.Role]; ok {
			continue
		}
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// DeleteTeam drops every membership and deactivates the team. Members are
// not refunded.
func (s *Service) DeleteTeam(ctx context.Context, teamID string) error {
	unlock := s.locks.Lock(teamKey(teamID))
	defer unlock()

	err := s.store.InTx(ctx, func(tx Store) error {
		t, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return fmt.Errorf("team %s: %w", teamID, err)
		}
		if err := tx.DeleteTeamMembers(ctx, teamID); err != nil {
			return fmt.Errorf("delete members: %w", err)
		}
		t.IsActive = false
		t.UpdatedAt = s.now()
		return tx.UpdateTeam(ctx, t)
	})
	if err != nil {
		return err
	}
	s.invalidate()
	s.logger.Info("team deleted", "team_id", teamID)
	return nil
}

func activeTeam(ctx context.Context, st Store, id string) (*models.Team, error) {
	t, err := st.GetTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("team %s: %w", id, err)
	}
	if !t.IsActive {
		return nil, fmt.Errorf("team %s is inactive: %w", id, models.ErrNotFound)
	}
	return t, nil
}
