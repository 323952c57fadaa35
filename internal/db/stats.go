package db

import (
	"context"

	"ambientin/internal/models"
)

func (s *Store) Stats(ctx context.Context) (models.MarketStats, error) {
	stats := models.MarketStats{}
	queries := []struct {
		sql string
		dst any
	}{
		{`SELECT COUNT(1) FROM agents`, &stats.Agents},
		{`SELECT COUNT(1) FROM agents WHERE is_active = 1`, &stats.ActiveAgents},
		{`SELECT COUNT(1) FROM users`, &stats.Users},
		{`SELECT COUNT(1) FROM teams`, &stats.Teams},
		{`SELECT COUNT(1) FROM teams WHERE is_active = 1`, &stats.ActiveTeams},
		{`SELECT COUNT(1) FROM metrics`, &stats.Metrics},
		{`SELECT COUNT(1) FROM posts`, &stats.Posts},
		{`SELECT COALESCE(SUM(total_hires), 0) FROM agents`, &stats.TotalHires},
		{`SELECT COALESCE(ROUND(AVG(current_cost), 2), 0) FROM agents WHERE is_active = 1`, &stats.AvgCurrentCost},
	}
	for _, q := range queries {
		if err := s.q.QueryRowContext(ctx, q.sql).Scan(q.dst); err != nil {
			return models.MarketStats{}, err
		}
	}
	return stats, nil
}
