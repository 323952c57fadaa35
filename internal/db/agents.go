package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ambientin/internal/market"
	"ambientin/internal/models"
)

const agentColumns = `id, name, role, description, content, tools, source_type, source_url, avatar_url,
velocity, efficiency, base_cost, current_cost, total_hires, total_issues_completed,
total_prs_completed, avg_completion_time, is_active, metadata, created_at, updated_at`

func (s *Store) CreateAgent(ctx context.Context, a *models.Agent) error {
	tools, err := encodeJSON(nonNilTools(a.Tools))
	if err != nil {
		return fmt.Errorf("encode tools: %w", err)
	}
	meta, err := encodeJSON(nonNilMeta(a.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = s.q.ExecContext(ctx, `
INSERT INTO agents (`+agentColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Role, a.Description, a.Content, tools, string(a.SourceType), a.SourceURL, a.AvatarURL,
		a.Velocity, a.Efficiency, a.BaseCost, a.CurrentCost, a.TotalHires, a.TotalIssuesCompleted,
		a.TotalPRsCompleted, a.AvgCompletionTime, boolInt(a.IsActive), meta, formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	return translate(err)
}

func (s *Store) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = ?`, id)
	a, err := scanAgent(row)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

// FindAgentByName returns the oldest agent with the name and role.
func (s *Store) FindAgentByName(ctx context.Context, name, role string) (*models.Agent, error) {
	row := s.q.QueryRowContext(ctx, `
SELECT `+agentColumns+`
FROM agents
WHERE name = ? AND role = ?
ORDER BY created_at ASC, id ASC
LIMIT 1`, name, role)
	a, err := scanAgent(row)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

// FindNarrator returns the oldest inactive agent with the name and role that
// carries the narrator flag. Catalogue agents sharing the name never match.
func (s *Store) FindNarrator(ctx context.Context, name, role string) (*models.Agent, error) {
	row := s.q.QueryRowContext(ctx, `
SELECT `+agentColumns+`
FROM agents
WHERE name = ? AND role = ? AND is_active = 0
  AND json_extract(metadata, '$.`+models.MetaIsNarrator+`') = 1
ORDER BY created_at ASC, id ASC
LIMIT 1`, name, role)
	a, err := scanAgent(row)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (s *Store) ListAgents(ctx context.Context, f market.AgentFilter) ([]models.Agent, error) {
	var (
		where []string
		args  []any
	)
	if f.Role != "" {
		where = append(where, "role = ?")
		args = append(args, f.Role)
	}
	if f.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	if !f.CreatedSince.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(f.CreatedSince))
	}
	if !f.UpdatedSince.IsZero() {
		where = append(where, "updated_at >= ?")
		args = append(args, formatTime(f.UpdatedSince))
	}

	query := `SELECT ` + agentColumns + ` FROM agents`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.OrderByVelocity {
		query += ` ORDER BY velocity DESC, created_at ASC, id ASC`
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := make([]models.Agent, 0)
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *a)
	}
	return agents, rows.Err()
}

// UpdateAgent writes every mutable field. Identity and creation time are
// never rewritten.
func (s *Store) UpdateAgent(ctx context.Context, a *models.Agent) error {
	tools, err := encodeJSON(nonNilTools(a.Tools))
	if err != nil {
		return fmt.Errorf("encode tools: %w", err)
	}
	meta, err := encodeJSON(nonNilMeta(a.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return mustAffect(s.q.ExecContext(ctx, `
UPDATE agents SET
    name = ?, role = ?, description = ?, content = ?, tools = ?, source_url = ?, avatar_url = ?,
    velocity = ?, efficiency = ?, current_cost = ?, total_hires = ?, total_issues_completed = ?,
    total_prs_completed = ?, avg_completion_time = ?, is_active = ?, metadata = ?, updated_at = ?
WHERE id = ?`,
		a.Name, a.Role, a.Description, a.Content, tools, a.SourceURL, a.AvatarURL,
		a.Velocity, a.Efficiency, a.CurrentCost, a.TotalHires, a.TotalIssuesCompleted,
		a.TotalPRsCompleted, a.AvgCompletionTime, boolInt(a.IsActive), meta, formatTime(a.UpdatedAt),
		a.ID,
	))
}

var sortColumns = map[models.AgentSort]string{
	models.SortVelocity:   "velocity",
	models.SortEfficiency: "efficiency",
	models.SortCost:       "current_cost",
	models.SortHires:      "total_hires",
	models.SortTasks:      "(total_issues_completed + total_prs_completed)",
}

func (s *Store) CountAgentsAbove(ctx context.Context, field models.AgentSort, value float64) (int, error) {
	col, ok := sortColumns[field]
	if !ok {
		return 0, fmt.Errorf("sort %q: %w", field, models.ErrInvalidInput)
	}
	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM agents WHERE is_active = 1 AND `+col+` > ?`, value,
	).Scan(&count)
	return count, err
}

func scanAgent(row scanner) (*models.Agent, error) {
	var (
		a                    models.Agent
		tools, meta          string
		sourceType           string
		active               int
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&a.ID, &a.Name, &a.Role, &a.Description, &a.Content, &tools, &sourceType, &a.SourceURL, &a.AvatarURL,
		&a.Velocity, &a.Efficiency, &a.BaseCost, &a.CurrentCost, &a.TotalHires, &a.TotalIssuesCompleted,
		&a.TotalPRsCompleted, &a.AvgCompletionTime, &active, &meta, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	a.SourceType = models.SourceType(sourceType)
	a.IsActive = active == 1
	if err := json.Unmarshal([]byte(tools), &a.Tools); err != nil {
		return nil, fmt.Errorf("decode tools of %s: %w", a.ID, err)
	}
	a.Tools = nonNilTools(a.Tools)
	var err error
	if a.Metadata, err = decodeMetadata(meta); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", a.ID, err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at of %s: %w", a.ID, err)
	}
	return &a, nil
}

func nonNilTools(tools []string) []string {
	if tools == nil {
		return []string{}
	}
	return tools
}

func nonNilMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
