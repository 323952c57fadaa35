package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ambientin/internal/agentdef"
	"ambientin/internal/models"
	"ambientin/internal/scoring"
)

const (
	defaultAgentPage = 50
	maxAgentPage     = 200
)

// AgentInput describes a new catalogue entry. A nil BaseCost takes the
// configured default.
type AgentInput struct {
	Name        string
	Role        string
	Description string
	Content     string
	Tools       []string
	AvatarURL   *string
	BaseCost    *float64
	SourceType  models.SourceType
	SourceURL   *string
	Metadata    map[string]any
}

func (s *Service) CreateAgent(ctx context.Context, in AgentInput) (*models.Agent, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	if in.Name == "" || in.Role == "" {
		return nil, fmt.Errorf("name and role are required: %w", models.ErrInvalidInput)
	}
	baseCost := s.cfg.DefaultBaseCost
	if in.BaseCost != nil {
		if *in.BaseCost < 0 {
			return nil, fmt.Errorf("base cost must not be negative: %w", models.ErrInvalidInput)
		}
		baseCost = *in.BaseCost
	}
	switch in.SourceType {
	case "":
		in.SourceType = models.SourceManual
	case models.SourceManual, models.SourceImport:
	default:
		return nil, fmt.Errorf("unknown source type %q: %w", in.SourceType, models.ErrInvalidInput)
	}
	if in.Tools == nil {
		in.Tools = []string{}
	}
	if in.Metadata == nil {
		in.Metadata = map[string]any{}
	}

	now := s.now()
	a := &models.Agent{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Role:        in.Role,
		Description: in.Description,
		Content:     in.Content,
		Tools:       in.Tools,
		SourceType:  in.SourceType,
		SourceURL:   in.SourceURL,
		AvatarURL:   in.AvatarURL,
		BaseCost:    scoring.Round2(baseCost),
		IsActive:    true,
		Metadata:    in.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.params.Recompute(a, now)
	if err := s.store.CreateAgent(ctx, a); err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	s.invalidate()
	s.logger.Info("agent created", "agent_id", a.ID, "name", a.Name, "role", a.Role, "cost", a.CurrentCost)
	return a, nil
}

func (s *Service) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	a, err := s.store.GetAgent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get agent %s: %w", id, err)
	}
	return a, nil
}

// ListAgents pages through active agents, fastest first.
func (s *Service) ListAgents(ctx context.Context, role string, limit, offset int) ([]models.Agent, error) {
	if offset < 0 {
		offset = 0
	}
	return s.store.ListAgents(ctx, AgentFilter{
		Role:            strings.TrimSpace(role),
		ActiveOnly:      true,
		OrderByVelocity: true,
		Limit:           clampLimit(limit, defaultAgentPage, maxAgentPage),
		Offset:          offset,
	})
}

// DeactivateAgent soft-deletes an agent. Existing memberships stay.
func (s *Service) DeactivateAgent(ctx context.Context, id string) (*models.Agent, error) {
	unlock := s.locks.Lock(agentKey(id))
	defer unlock()

	a, err := s.store.GetAgent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get agent %s: %w", id, err)
	}
	if !a.IsActive {
		return a, nil
	}
	a.IsActive = false
	a.UpdatedAt = s.now()
	if err := s.store.UpdateAgent(ctx, a); err != nil {
		return nil, fmt.Errorf("deactivate agent %s: %w", id, err)
	}
	s.invalidate()
	s.logger.Info("agent deactivated", "agent_id", id)
	return a, nil
}

// ImportAgents creates catalogue entries from parsed definitions. A
// definition whose (name, role) already exists is skipped.
func (s *Service) ImportAgents(ctx context.Context, defs []agentdef.Definition) ([]models.Agent, error) {
	created := make([]models.Agent, 0, len(defs))
	for _, def := range defs {
		_, err := s.store.FindAgentByName(ctx, def.Name, def.Role)
		switch {
		case err == nil:
			s.logger.Debug("agent already imported", "name", def.Name, "role", def.Role)
			continue
		case !errors.Is(err, models.ErrNotFound):
			return created, fmt.Errorf("lookup %q: %w", def.Name, err)
		}

		in := AgentInput{
			Name:        def.Name,
			Role:        def.Role,
			Description: def.Description,
			Content:     def.Content,
			Tools:       def.Tools,
			SourceType:  models.SourceImport,
			Metadata:    def.Metadata,
		}
		if def.BaseCost > 0 {
			cost := def.BaseCost
			in.BaseCost = &cost
		}
		if def.AvatarURL != "" {
			in.AvatarURL = &def.AvatarURL
		}
		if def.SourceURL != "" {
			in.SourceURL = &def.SourceURL
		}
		a, err := s.CreateAgent(ctx, in)
		if err != nil {
			return created, fmt.Errorf("import %q: %w", def.Name, err)
		}
		created = append(created, *a)
	}
	return created, nil
}
