package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"ambientin/internal/market"
	"ambientin/internal/models"
)

type mcpLeaderboardArgs struct {
	Sort  *string `json:"sort,omitempty"`
	Role  *string `json:"role,omitempty"`
	Limit *int    `json:"limit,omitempty"`
}

type mcpAgentArgs struct {
	AgentID string  `json:"agent_id"`
	Sort    *string `json:"sort,omitempty"`
}

type mcpRecordMetricArgs struct {
	AgentID        string  `json:"agent_id"`
	MetricType     string  `json:"metric_type"`
	CompletionTime float64 `json:"completion_time"`
	Difficulty     *int    `json:"difficulty,omitempty"`
	Success        *bool   `json:"success,omitempty"`
}

type mcpTeamArgs struct {
	TeamID string `json:"team_id"`
}

type mcpOverviewArgs struct {
	Section *string `json:"section,omitempty"`
}

// NewMCPServer registers the marketplace tools. The same server backs the
// streamable HTTP endpoint and the stdio transport.
func NewMCPServer(svc *market.Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ambientin-server",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ambientin_leaderboard",
		Description: "Rank active agents by velocity, efficiency, cost, hires or tasks",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpLeaderboardArgs) (*mcp.CallToolResult, any, error) {
		limit := 0
		if args.Limit != nil {
			limit = *args.Limit
		}
		rankings, err := svc.AgentLeaderboard(ctx, models.AgentSort(optString(args.Sort)), optString(args.Role), limit)
		if err != nil {
			return nil, nil, err
		}
		return jsonToolResult(map[string]any{"rankings": rankings, "total": len(rankings)})
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ambientin_get_agent",
		Description: "Read an agent's profile, scores and current price",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpAgentArgs) (*mcp.CallToolResult, any, error) {
		id := strings.TrimSpace(args.AgentID)
		if id == "" {
			return nil, nil, errors.New("agent_id is required")
		}
		agent, err := svc.GetAgent(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return jsonToolResult(agent)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ambientin_agent_rank",
		Description: "Report an agent's position on a leaderboard",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpAgentArgs) (*mcp.CallToolResult, any, error) {
		id := strings.TrimSpace(args.AgentID)
		if id == "" {
			return nil, nil, errors.New("agent_id is required")
		}
		sortBy := models.AgentSort(optString(args.Sort))
		if sortBy == "" {
			sortBy = models.SortVelocity
		}
		rank, err := svc.AgentRank(ctx, id, sortBy)
		if err != nil {
			return nil, nil, err
		}
		return jsonToolResult(map[string]any{"agent_id": id, "sort": sortBy, "rank": rank})
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ambientin_record_metric",
		Description: "Record a completed issue, pr or task for an agent",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpRecordMetricArgs) (*mcp.CallToolResult, any, error) {
		in := market.MetricInput{
			AgentID:        strings.TrimSpace(args.AgentID),
			MetricType:     models.MetricType(strings.TrimSpace(args.MetricType)),
			CompletionTime: args.CompletionTime,
			Success:        args.Success,
		}
		if args.Difficulty != nil {
			in.Difficulty = *args.Difficulty
		}
		metric, err := svc.RecordMetric(ctx, in)
		if err != nil {
			return nil, nil, err
		}
		agent, err := svc.GetAgent(ctx, metric.AgentID)
		if err != nil {
			return nil, nil, err
		}
		return jsonToolResult(map[string]any{"metric": metric, "agent": agent})
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ambientin_team_stats",
		Description: "Summarise a team's size, performance, value and ROI",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpTeamArgs) (*mcp.CallToolResult, any, error) {
		id := strings.TrimSpace(args.TeamID)
		if id == "" {
			return nil, nil, errors.New("team_id is required")
		}
		stats, err := svc.TeamStats(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return jsonToolResult(stats)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ambientin_overview",
		Description: "Leaderboard overview; section narrows it to one board",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpOverviewArgs) (*mcp.CallToolResult, any, error) {
		overview, err := svc.Overview(ctx)
		if err != nil {
			return nil, nil, err
		}
		section := optString(args.Section)
		if section == "" {
			return jsonToolResult(overview)
		}
		part, err := overviewSection(overview, section)
		if err != nil {
			return nil, nil, err
		}
		return jsonToolResult(map[string]any{section: part})
	})

	return server
}

func mcpHandler(svc *market.Service, version string) http.Handler {
	server := NewMCPServer(svc, version)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func overviewSection(o *models.LeaderboardOverview, section string) (any, error) {
	switch section {
	case "top_velocity":
		return o.TopVelocity, nil
	case "top_efficiency":
		return o.TopEfficiency, nil
	case "most_hired":
		return o.MostHired, nil
	case "rising_stars":
		return o.RisingStars, nil
	case "best_value":
		return o.BestValue, nil
	case "top_teams":
		return o.TopTeams, nil
	}
	return nil, fmt.Errorf("unknown overview section %q", section)
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func jsonToolResult(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}
