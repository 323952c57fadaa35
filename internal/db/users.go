package db

import (
	"context"
	"fmt"

	"ambientin/internal/models"
)

const userColumns = `id, username, email, display_name, avatar_url, bio, credits, is_active, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.q.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.DisplayName, u.AvatarURL, u.Bio, u.Credits, boolInt(u.IsActive),
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	return translate(err)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `id = ?`, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `username = ?`, username)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var (
		u                    models.User
		active               int
		createdAt, updatedAt string
	)
	err := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.AvatarURL, &u.Bio, &u.Credits, &active, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	u.IsActive = active == 1
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", u.ID, err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at of %s: %w", u.ID, err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	return mustAffect(s.q.ExecContext(ctx, `
UPDATE users SET display_name = ?, avatar_url = ?, bio = ?, credits = ?, is_active = ?, updated_at = ?
WHERE id = ?`,
		u.DisplayName, u.AvatarURL, u.Bio, u.Credits, boolInt(u.IsActive), formatTime(u.UpdatedAt), u.ID,
	))
}
