package db

import (
	"context"
	"errors"
	"fmt"

	"ambientin/internal/market"
	"ambientin/internal/models"
)

type agentSeed struct {
	name        string
	role        string
	description string
	content     string
	tools       []string
	baseCost    float64
}

var sampleAgentSeeds = []agentSeed{
	{
		name:        "Stella (Staff Engineer)",
		role:        "Staff Engineer",
		description: "High-leverage technical leadership focused on architectural vision and system health.",
		content:     "Stella is a Staff Engineer focused on technical vision, architectural decisions, and mentorship.",
		tools:       []string{"Read", "Write", "Edit", "Bash", "Glob", "Grep"},
		baseCost:    250,
	},
	{
		name:        "Ryan (UX Researcher)",
		role:        "UX Researcher",
		description: "User research and insights to drive product decisions.",
		content:     "Ryan specializes in user research, analytics, and generating insights.",
		tools:       []string{"Read", "Write", "WebFetch", "WebSearch"},
		baseCost:    180,
	},
	{
		name:        "Parker (Product Manager)",
		role:        "Product Manager",
		description: "Product strategy and roadmap planning.",
		content:     "Parker drives product vision and coordinates between teams.",
		tools:       []string{"Read", "Write", "WebSearch"},
		baseCost:    200,
	},
	{
		name:        "Terry (Technical Writer)",
		role:        "Technical Writer",
		description: "Documentation that keeps users and engineers on the same page.",
		content:     "Terry turns designs and code into clear guides, references and release notes.",
		tools:       []string{"Read", "Write", "Edit"},
		baseCost:    120,
	},
}

const (
	demoUsername = "demo"
	demoEmail    = "demo@ambientin.dev"
)

// SeedResult reports what Seed created; rows that already existed are not
// counted.
type SeedResult struct {
	User   *models.User
	Agents []models.Agent
}

// Seed adds the demo user and the sample agents. Running it twice is a no-op.
func Seed(ctx context.Context, store *Store, svc *market.Service) (SeedResult, error) {
	var res SeedResult

	user, err := svc.GetUserByUsername(ctx, demoUsername)
	switch {
	case err == nil:
		res.User = user
	case errors.Is(err, models.ErrNotFound):
		bio := "Testing out the fantasy engineering team concept!"
		user, err = svc.CreateUser(ctx, market.UserInput{
			Username:    demoUsername,
			Email:       demoEmail,
			DisplayName: "Demo User",
			Bio:         &bio,
		})
		if err != nil {
			return res, fmt.Errorf("seed demo user: %w", err)
		}
		res.User = user
	default:
		return res, fmt.Errorf("lookup demo user: %w", err)
	}

	for _, seed := range sampleAgentSeeds {
		_, err := store.FindAgentByName(ctx, seed.name, seed.role)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrNotFound) {
			return res, fmt.Errorf("lookup agent %q: %w", seed.name, err)
		}
		cost := seed.baseCost
		a, err := svc.CreateAgent(ctx, market.AgentInput{
			Name:        seed.name,
			Role:        seed.role,
			Description: seed.description,
			Content:     seed.content,
			Tools:       seed.tools,
			BaseCost:    &cost,
			SourceType:  models.SourceManual,
		})
		if err != nil {
			return res, fmt.Errorf("seed agent %q: %w", seed.name, err)
		}
		res.Agents = append(res.Agents, *a)
	}
	return res, nil
}
