package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var derivedBoards = map[string]string{
	"most-hired":   "/api/v1/leaderboard/most-hired",
	"rising-stars": "/api/v1/leaderboard/rising-stars",
	"best-value":   "/api/v1/leaderboard/best-value",
	"overview":     "/api/v1/leaderboard/overview",
}

func newLeaderboardCmd(c *cli) *cobra.Command {
	var (
		sortBy, role string
		limit, days  int
		teams        bool
	)
	cmd := &cobra.Command{
		Use:   "leaderboard [most-hired|rising-stars|best-value|most-active|overview]",
		Short: "Show agent or team rankings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				board := args[0]
				if board == "most-active" {
					return c.get("/api/v1/leaderboard/most-active", queryOf("days", days, "limit", limit))
				}
				path, ok := derivedBoards[board]
				if !ok {
					return fmt.Errorf("unknown board %q", board)
				}
				return c.get(path, queryOf("limit", limit))
			}
			if teams {
				return c.get("/api/v1/leaderboard/teams", queryOf("sort", sortBy, "limit", limit))
			}
			if role != "" {
				return c.get("/api/v1/leaderboard/roles/"+escape(role), queryOf("limit", limit))
			}
			return c.get("/api/v1/leaderboard/agents", queryOf("sort", sortBy, "limit", limit))
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", "agents: velocity, efficiency, cost, hires, tasks; teams: value, roi, performance")
	cmd.Flags().StringVar(&role, "role", "", "rank within a role")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of entries")
	cmd.Flags().IntVar(&days, "days", 0, "window for most-active (default 7)")
	cmd.Flags().BoolVar(&teams, "teams", false, "rank teams instead of agents")
	return cmd
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Marketplace totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/stats", nil)
		},
	}
}
