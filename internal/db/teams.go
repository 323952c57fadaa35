package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ambientin/internal/market"
	"ambientin/internal/models"
)

const teamColumns = `id, user_id, name, description, total_cost, is_active, created_at, updated_at`

func (s *Store) CreateTeam(ctx context.Context, t *models.Team) error {
	_, err := s.q.ExecContext(ctx, `
INSERT INTO teams (`+teamColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Name, t.Description, t.TotalCost, boolInt(t.IsActive), formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	return translate(err)
}

func (s *Store) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	t, err := scanTeam(s.q.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (s *Store) UpdateTeam(ctx context.Context, t *models.Team) error {
	return mustAffect(s.q.ExecContext(ctx, `
UPDATE teams SET name = ?, description = ?, total_cost = ?, is_active = ?, updated_at = ?
WHERE id = ?`,
		t.Name, t.Description, t.TotalCost, boolInt(t.IsActive), formatTime(t.UpdatedAt), t.ID,
	))
}

// ListTeams returns matching teams, newest first.
func (s *Store) ListTeams(ctx context.Context, f market.TeamFilter) ([]models.Team, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	query := `SELECT ` + teamColumns + ` FROM teams`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func scanTeam(row scanner) (*models.Team, error) {
	var (
		t                    models.Team
		active               int
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.TotalCost, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.IsActive = active == 1
	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", t.ID, err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at of %s: %w", t.ID, err)
	}
	return &t, nil
}

func (s *Store) CreateTeamMember(ctx context.Context, m *models.TeamMember) error {
	_, err := s.q.ExecContext(ctx, `
INSERT INTO team_members (id, team_id, agent_id, position, cost_at_hire, joined_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.TeamID, m.AgentID, m.Position, m.CostAtHire, formatTime(m.JoinedAt),
	)
	return translate(err)
}

func (s *Store) GetTeamMember(ctx context.Context, teamID, agentID string) (*models.TeamMember, error) {
	var (
		m        models.TeamMember
		joinedAt string
	)
	err := s.q.QueryRowContext(ctx, `
SELECT id, team_id, agent_id, position, cost_at_hire, joined_at
FROM team_members
WHERE team_id = ? AND agent_id = ?`, teamID, agentID,
	).Scan(&m.ID, &m.TeamID, &m.AgentID, &m.Position, &m.CostAtHire, &joinedAt)
	if err != nil {
		return nil, translate(err)
	}
	if m.JoinedAt, err = parseTime(joinedAt); err != nil {
		return nil, fmt.Errorf("parse joined_at of %s: %w", m.ID, err)
	}
	return &m, nil
}

func (s *Store) DeleteTeamMember(ctx context.Context, id string) error {
	return mustAffect(s.q.ExecContext(ctx, `DELETE FROM team_members WHERE id = ?`, id))
}

func (s *Store) DeleteTeamMembers(ctx context.Context, teamID string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = ?`, teamID)
	return err
}

// ListTeamMembers joins each membership with its agent, in join order.
func (s *Store) ListTeamMembers(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	rows, err := s.q.QueryContext(ctx, `
SELECT tm.id, tm.team_id, tm.agent_id, tm.position, tm.cost_at_hire, tm.joined_at,
       `+prefixed("a.", agentColumns)+`
FROM team_members tm
JOIN agents a ON a.id = tm.agent_id
WHERE tm.team_id = ?
ORDER BY tm.joined_at ASC, tm.id ASC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var (
			m        models.TeamMember
			joinedAt string
		)
		agent, err := scanAgent(memberRow{rows: rows, head: []any{
			&m.ID, &m.TeamID, &m.AgentID, &m.Position, &m.CostAtHire, &joinedAt,
		}})
		if err != nil {
			return nil, err
		}
		if m.JoinedAt, err = parseTime(joinedAt); err != nil {
			return nil, fmt.Errorf("parse joined_at of %s: %w", m.ID, err)
		}
		m.Agent = agent
		members = append(members, m)
	}
	return members, rows.Err()
}

// memberRow prepends membership columns to an agent scan.
type memberRow struct {
	rows *sql.Rows
	head []any
}

func (r memberRow) Scan(dest ...any) error {
	return r.rows.Scan(append(r.head, dest...)...)
}

func prefixed(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
