package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ambientin/internal/models"
)

const (
	defaultFeedPage    = 50
	maxFeedPage        = 200
	defaultAgentPosts  = 20
	defaultTrending    = 10
	trendingWindow     = 24 * time.Hour
	maxPostContentSize = 2000
)

type FeedQuery struct {
	PostType models.PostType
	AgentID  string
	Limit    int
	Offset   int
}

// Feed returns a page of posts, newest first, and the total number of
// matching posts.
func (s *Service) Feed(ctx context.Context, q FeedQuery) ([]models.Post, int, error) {
	if q.PostType != "" && !q.PostType.Valid() {
		return nil, 0, fmt.Errorf("post type %q: %w", q.PostType, models.ErrInvalidInput)
	}
	posts, total, err := s.store.ListPosts(ctx, PostFilter{
		PostType: q.PostType,
		AgentID:  q.AgentID,
		Limit:    clampLimit(q.Limit, defaultFeedPage, maxFeedPage),
		Offset:   max(0, q.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// AgentPosts returns posts written by or about an agent.
func (s *Service) AgentPosts(ctx context.Context, agentID string, limit int) ([]models.Post, error) {
	if _, err := s.store.GetAgent(ctx, agentID); err != nil {
		return nil, fmt.Errorf("agent %s: %w", agentID, err)
	}
	posts, _, err := s.store.ListPosts(ctx, PostFilter{
		About: agentID,
		Limit: clampLimit(limit, defaultAgentPosts, maxFeedPage),
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *Service) LikePost(ctx context.Context, postID string) (*models.Post, error) {
	return s.bumpPost(ctx, postID, CounterLikes)
}

func (s *Service) SharePost(ctx context.Context, postID string) (*models.Post, error) {
	return s.bumpPost(ctx, postID, CounterShares)
}

func (s *Service) bumpPost(ctx context.Context, postID string, c PostCounter) (*models.Post, error) {
	p, err := s.store.IncrementPostCounter(ctx, postID, c)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", postID, err)
	}
	return p, nil
}

// CreateUserPost publishes a status post by a user about one of the agents.
func (s *Service) CreateUserPost(ctx context.Context, userID, agentID, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("content is required: %w", models.ErrInvalidInput)
	}
	if len(content) > maxPostContentSize {
		return nil, fmt.Errorf("content longer than %d bytes: %w", maxPostContentSize, models.ErrInvalidInput)
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	if _, err := s.store.GetAgent(ctx, agentID); err != nil {
		return nil, fmt.Errorf("agent %s: %w", agentID, err)
	}
	p := &models.Post{
		ID:        uuid.NewString(),
		AgentID:   agentID,
		UserID:    &userID,
		Content:   content,
		PostType:  models.PostStatus,
		Metadata:  map[string]any{},
		CreatedAt: s.now(),
	}
	if err := s.store.CreatePost(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// TrendingPosts ranks the last day's posts by likes plus twice the shares.
func (s *Service) TrendingPosts(ctx context.Context, limit int) ([]models.Post, error) {
	posts, err := s.store.ListTrendingPosts(ctx, s.now().Add(-trendingWindow), clampLimit(limit, defaultTrending, maxFeedPage))
	if err != nil {
		return nil, fmt.Errorf("trending posts: %w", err)
	}
	return posts, nil
}
