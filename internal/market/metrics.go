package market

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"ambientin/internal/models"
	"ambientin/internal/narrative"
	"ambientin/internal/scoring"
)

const (
	DefaultDifficulty = 5
	defaultMetricDays = 30
	recentMetrics     = 10
)

// MetricInput is one completion event. Difficulty 0 means the default and a
// nil Success means true.
type MetricInput struct {
	AgentID        string
	MetricType     models.MetricType
	CompletionTime float64
	Difficulty     int
	Success        *bool
	Metadata       map[string]any
}

func (in MetricInput) validate() error {
	if strings.TrimSpace(in.AgentID) == "" {
		return fmt.Errorf("agent id is required: %w", models.ErrInvalidInput)
	}
	if !in.MetricType.Valid() {
		return fmt.Errorf("metric type %q: %w", in.MetricType, models.ErrInvalidInput)
	}
	if !(in.CompletionTime > 0) {
		return fmt.Errorf("completion time must be positive: %w", models.ErrInvalidInput)
	}
	if in.Difficulty != 0 && (in.Difficulty < 1 || in.Difficulty > 10) {
		return fmt.Errorf("difficulty %d outside 1-10: %w", in.Difficulty, models.ErrInvalidInput)
	}
	return nil
}

// RecordMetric appends a completion event and refreshes the agent's counters
// and scores from all of its successful metrics. The metric is stored before
// the agent is resolved; an unknown or inactive agent yields ErrNotFound with
// the metric kept. Narrative posts are emitted after the update commits and
// their failures are only logged.
func (s *Service) RecordMetric(ctx context.Context, in MetricInput) (*models.Metric, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	m := &models.Metric{
		ID:             uuid.NewString(),
		AgentID:        in.AgentID,
		MetricType:     in.MetricType,
		CompletionTime: in.CompletionTime,
		Difficulty:     in.Difficulty,
		Success:        in.Success == nil || *in.Success,
		Metadata:       in.Metadata,
		RecordedAt:     s.now(),
	}
	if m.Difficulty == 0 {
		m.Difficulty = DefaultDifficulty
	}
	if m.Metadata == nil {
		m.Metadata = map[string]any{}
	}
	if err := s.store.InsertMetric(ctx, m); err != nil {
		return nil, fmt.Errorf("insert metric: %w", err)
	}

	before, after, err := s.refreshAgent(ctx, in.AgentID)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	s.logger.Debug("metric recorded",
		"agent_id", m.AgentID, "type", m.MetricType, "success", m.Success,
		"velocity", after.Velocity, "efficiency", after.Efficiency, "cost", after.CurrentCost)

	s.narrate(ctx, before, after)
	return m, nil
}

// refreshAgent recomputes an agent's aggregates under its lock in one
// transaction.
func (s *Service) refreshAgent(ctx context.Context, agentID string) (narrative.Snapshot, models.Agent, error) {
	unlock := s.locks.Lock(agentKey(agentID))
	defer unlock()

	var (
		before narrative.Snapshot
		after  models.Agent
	)
	err := s.store.InTx(ctx, func(tx Store) error {
		a, err := activeAgent(ctx, tx, agentID)
		if err != nil {
			return err
		}
		before = narrative.SnapshotOf(*a)

		agg, err := tx.AggregateMetrics(ctx, agentID)
		if err != nil {
			return fmt.Errorf("aggregate metrics: %w", err)
		}
		now := s.now()
		a.TotalIssuesCompleted = agg.IssuesCompleted
		a.TotalPRsCompleted = agg.PRsCompleted
		a.AvgCompletionTime = agg.AvgCompletionTime
		s.params.Recompute(a, now)
		a.UpdatedAt = now
		if err := tx.UpdateAgent(ctx, a); err != nil {
			return fmt.Errorf("update agent: %w", err)
		}
		after = *a
		return nil
	})
	return before, after, err
}

func (s *Service) narrate(ctx context.Context, before narrative.Snapshot, after models.Agent) {
	if s.observer == nil {
		return
	}
	posts, err := s.observer.Observe(ctx, before, after)
	if err != nil {
		s.logger.Warn("narrative update failed", "agent_id", after.ID, "err", err)
	}
	for _, p := range posts {
		s.logger.Info("narrative post", "post_id", p.ID, "type", p.PostType, "subject", after.ID)
	}
}

// AgentMetrics summarises an agent's metrics over the last days.
func (s *Service) AgentMetrics(ctx context.Context, agentID string, days int) (*models.MetricSummary, error) {
	metrics, days, err := s.metricsSince(ctx, agentID, days)
	if err != nil {
		return nil, err
	}

	var count, success, timeSum [3]float64
	for _, m := range metrics {
		i := typeIndex(m.MetricType)
		count[i]++
		if m.Success {
			success[i]++
		}
		timeSum[i] += m.CompletionTime
	}
	avg := func(i int) float64 {
		if count[i] == 0 {
			return 0
		}
		return scoring.Round2(timeSum[i] / count[i])
	}
	rate := func(i int) float64 {
		if count[i] == 0 {
			return 100
		}
		return scoring.Round2(success[i] / count[i] * 100)
	}

	recent := metrics[:min(len(metrics), recentMetrics)]
	return &models.MetricSummary{
		AgentID:            agentID,
		Days:               days,
		TotalMetrics:       len(metrics),
		ByType:             models.MetricTypeBreakdown{Issues: count[0], PRs: count[1], Tasks: count[2]},
		AvgCompletionTimes: models.MetricTypeBreakdown{Issues: avg(0), PRs: avg(1), Tasks: avg(2)},
		SuccessRates:       models.MetricTypeBreakdown{Issues: rate(0), PRs: rate(1), Tasks: rate(2)},
		RecentMetrics:      slices.Clone(recent),
	}, nil
}

// MetricTrends buckets an agent's metrics by UTC day, oldest first.
func (s *Service) MetricTrends(ctx context.Context, agentID string, days int) ([]models.MetricTrendPoint, error) {
	metrics, _, err := s.metricsSince(ctx, agentID, days)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		count, success int
		timeSum        float64
	}
	buckets := make(map[string]*bucket)
	for _, m := range metrics {
		day := m.RecordedAt.UTC().Format(time.DateOnly)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.count++
		b.timeSum += m.CompletionTime
		if m.Success {
			b.success++
		}
	}

	points := make([]models.MetricTrendPoint, 0, len(buckets))
	for day, b := range buckets {
		points = append(points, models.MetricTrendPoint{
			Date:              day,
			Count:             b.count,
			AvgCompletionTime: scoring.Round2(b.timeSum / float64(b.count)),
			SuccessRate:       scoring.Round2(float64(b.success) / float64(b.count) * 100),
		})
	}
	slices.SortFunc(points, func(a, b models.MetricTrendPoint) int {
		return strings.Compare(a.Date, b.Date)
	})
	return points, nil
}

func (s *Service) metricsSince(ctx context.Context, agentID string, days int) ([]models.Metric, int, error) {
	days = windowDays(days, defaultMetricDays)
	if _, err := s.store.GetAgent(ctx, agentID); err != nil {
		return nil, 0, fmt.Errorf("get agent %s: %w", agentID, err)
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	metrics, err := s.store.ListMetrics(ctx, agentID, since)
	if err != nil {
		return nil, 0, fmt.Errorf("list metrics: %w", err)
	}
	return metrics, days, nil
}

func typeIndex(t models.MetricType) int {
	switch t {
	case models.MetricIssue:
		return 0
	case models.MetricPR:
		return 1
	default:
		return 2
	}
}

func activeAgent(ctx context.Context, st Store, id string) (*models.Agent, error) {
	a, err := st.GetAgent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", id, err)
	}
	if !a.IsActive {
		return nil, fmt.Errorf("agent %s is inactive: %w", id, models.ErrNotFound)
	}
	return a, nil
}
