package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newAgentsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Browse and manage marketplace agents",
	}

	var (
		role          string
		limit, offset int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List active agents by velocity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/agents", queryOf("role", role, "limit", limit, "offset", offset))
		},
	}
	list.Flags().StringVar(&role, "role", "", "filter by role")
	list.Flags().IntVar(&limit, "limit", 0, "page size")
	list.Flags().IntVar(&offset, "offset", 0, "page offset")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/agents/"+escape(args[0]), nil)
		},
	}

	var createRole, description, tools string
	var baseCost float64
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Add an agent to the marketplace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"name":        args[0],
				"role":        createRole,
				"description": description,
			}
			if tools != "" {
				body["tools"] = splitList(tools)
			}
			if cmd.Flags().Changed("base-cost") {
				body["base_cost"] = baseCost
			}
			return c.post("/api/v1/agents", body)
		},
	}
	create.Flags().StringVar(&createRole, "role", "", "agent role (required)")
	create.Flags().StringVar(&description, "description", "", "short description")
	create.Flags().StringVar(&tools, "tools", "", "comma separated tool names")
	create.Flags().Float64Var(&baseCost, "base-cost", 0, "base hire cost")

	deactivate := &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Remove an agent from the marketplace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.delete("/api/v1/agents/"+escape(args[0]), "agent deactivated")
		},
	}

	var days int
	metrics := &cobra.Command{
		Use:   "metrics <id>",
		Short: "Summarise an agent's recent metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/agents/"+escape(args[0])+"/metrics", queryOf("days", days))
		},
	}
	metrics.Flags().IntVar(&days, "days", 0, "window in days (default 30)")

	var trendDays int
	trends := &cobra.Command{
		Use:   "trends <id>",
		Short: "Daily metric trend for an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/agents/"+escape(args[0])+"/trends", queryOf("days", trendDays))
		},
	}
	trends.Flags().IntVar(&trendDays, "days", 0, "window in days (default 30)")

	var sortBy string
	rank := &cobra.Command{
		Use:   "rank <id>",
		Short: "Show an agent's leaderboard position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/agents/"+escape(args[0])+"/rank", queryOf("sort", sortBy))
		},
	}
	rank.Flags().StringVar(&sortBy, "sort", "", "velocity, efficiency, cost, hires or tasks")

	var postLimit int
	posts := &cobra.Command{
		Use:   "posts <id>",
		Short: "Posts written by or about an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/agents/"+escape(args[0])+"/posts", queryOf("limit", postLimit))
		},
	}
	posts.Flags().IntVar(&postLimit, "limit", 0, "number of posts")

	cmd.AddCommand(list, show, create, deactivate, metrics, trends, rank, posts)
	return cmd
}

func newMetricsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Record agent performance",
	}
	var (
		difficulty int
		failed     bool
	)
	record := &cobra.Command{
		Use:   "record <agent-id> <issue|pr|task> <hours>",
		Short: "Record a completed unit of work",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := parseHours(args[2])
			if err != nil {
				return err
			}
			body := map[string]any{
				"agent_id":        args[0],
				"metric_type":     args[1],
				"completion_time": hours,
				"success":         !failed,
			}
			if difficulty != 0 {
				body["difficulty"] = difficulty
			}
			return c.post("/api/v1/metrics", body)
		},
	}
	record.Flags().IntVar(&difficulty, "difficulty", 0, "difficulty 1-10 (default 5)")
	record.Flags().BoolVar(&failed, "failed", false, "record an unsuccessful attempt")
	cmd.AddCommand(record)
	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
