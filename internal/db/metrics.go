package db

import (
	"context"
	"fmt"
	"time"

	"ambientin/internal/models"
)

func (s *Store) InsertMetric(ctx context.Context, m *models.Metric) error {
	meta, err := encodeJSON(nonNilMeta(m.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = s.q.ExecContext(ctx, `
INSERT INTO metrics (id, agent_id, metric_type, completion_time, difficulty, success, metadata, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.AgentID, string(m.MetricType), m.CompletionTime, m.Difficulty, boolInt(m.Success), meta, formatTime(m.RecordedAt),
	)
	return translate(err)
}

// AggregateMetrics counts successful issues and PRs and averages the
// completion time of every successful metric in a single statement, so the
// three figures come from the same snapshot.
func (s *Store) AggregateMetrics(ctx context.Context, agentID string) (models.MetricAggregate, error) {
	var agg models.MetricAggregate
	err := s.q.QueryRowContext(ctx, `
SELECT
    COALESCE(SUM(CASE WHEN metric_type = 'issue' THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN metric_type = 'pr' THEN 1 ELSE 0 END), 0),
    COALESCE(AVG(completion_time), 0)
FROM metrics
WHERE agent_id = ? AND success = 1`, agentID,
	).Scan(&agg.IssuesCompleted, &agg.PRsCompleted, &agg.AvgCompletionTime)
	if err != nil {
		return models.MetricAggregate{}, err
	}
	return agg, nil
}

func (s *Store) ListMetrics(ctx context.Context, agentID string, since time.Time) ([]models.Metric, error) {
	rows, err := s.q.QueryContext(ctx, `
SELECT id, agent_id, metric_type, completion_time, difficulty, success, metadata, recorded_at
FROM metrics
WHERE agent_id = ? AND recorded_at >= ?
ORDER BY recorded_at DESC, id DESC`, agentID, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metrics := make([]models.Metric, 0)
	for rows.Next() {
		var (
			m          models.Metric
			metricType string
			success    int
			meta       string
			recordedAt string
		)
		if err := rows.Scan(&m.ID, &m.AgentID, &metricType, &m.CompletionTime, &m.Difficulty, &success, &meta, &recordedAt); err != nil {
			return nil, err
		}
		m.MetricType = models.MetricType(metricType)
		m.Success = success == 1
		if m.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		if m.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at of %s: %w", m.ID, err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
