package market

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ambientin/internal/models"
)

type UserInput struct {
	Username    string
	Email       string
	DisplayName string
	Bio         *string
	AvatarURL   *string
}

// UserUpdate changes the non-nil profile fields.
type UserUpdate struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}

// CreateUser registers a user with the configured starting credits.
// Duplicate usernames or emails yield ErrConflict.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.Username == "" || in.Email == "" {
		return nil, fmt.Errorf("username and email are required: %w", models.ErrInvalidInput)
	}
	if !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("email %q: %w", in.Email, models.ErrInvalidInput)
	}
	if in.DisplayName == "" {
		in.DisplayName = in.Username
	}
	now := s.now()
	u := &models.User{
		ID:          uuid.NewString(),
		Username:    in.Username,
		Email:       in.Email,
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		AvatarURL:   in.AvatarURL,
		Credits:     s.cfg.StartingCredits,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user %s: %w", in.Username, err)
	}
	s.logger.Info("user created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return u, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", username, err)
	}
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	unlock := s.locks.Lock(userKey(id))
	defer unlock()

	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	if upd.DisplayName != nil {
		name := strings.TrimSpace(*upd.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("display name must not be empty: %w", models.ErrInvalidInput)
		}
		u.DisplayName = name
	}
	if upd.Bio != nil {
		u.Bio = upd.Bio
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = upd.AvatarURL
	}
	u.UpdatedAt = s.now()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return u, nil
}
