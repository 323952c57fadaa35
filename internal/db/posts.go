package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ambientin/internal/market"
	"ambientin/internal/models"
)

const postColumns = `id, agent_id, user_id, content, post_type, likes, shares, metadata, created_at`

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	meta, err := encodeJSON(nonNilMeta(p.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = s.q.ExecContext(ctx, `
INSERT INTO posts (`+postColumns+`, subject_agent_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AgentID, p.UserID, p.Content, string(p.PostType), p.Likes, p.Shares, meta, formatTime(p.CreatedAt),
		p.SubjectAgentID(),
	)
	return translate(err)
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	p, err := scanPost(s.q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (s *Store) ListPosts(ctx context.Context, f market.PostFilter) ([]models.Post, int, error) {
	var (
		where []string
		args  []any
	)
	if f.PostType != "" {
		where = append(where, "post_type = ?")
		args = append(args, string(f.PostType))
	}
	if f.AgentID != "" {
		where = append(where, "agent_id = ?")
		args = append(args, f.AgentID)
	}
	if f.About != "" {
		where = append(where, "(agent_id = ? OR subject_agent_id = ?)")
		args = append(args, f.About, f.About)
	}
	clause := ""
	if len(where) > 0 {
		clause = ` WHERE ` + strings.Join(where, " AND ")
	}

	var total int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM posts`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + postColumns + ` FROM posts` + clause + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}
	posts, err := s.queryPosts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

var counterColumns = map[market.PostCounter]string{
	market.CounterLikes:  "likes",
	market.CounterShares: "shares",
}

// IncrementPostCounter adds one to a counter and returns the updated post.
func (s *Store) IncrementPostCounter(ctx context.Context, id string, counter market.PostCounter) (*models.Post, error) {
	col, ok := counterColumns[counter]
	if !ok {
		return nil, fmt.Errorf("counter %q: %w", counter, models.ErrInvalidInput)
	}
	var post *models.Post
	err := s.InTx(ctx, func(tx market.Store) error {
		st := tx.(*Store)
		if err := mustAffect(st.q.ExecContext(ctx, `UPDATE posts SET `+col+` = `+col+` + 1 WHERE id = ?`, id)); err != nil {
			return err
		}
		p, err := st.GetPost(ctx, id)
		if err != nil {
			return err
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListTrendingPosts ranks posts created since the cutoff by likes plus twice
// the shares.
func (s *Store) ListTrendingPosts(ctx context.Context, since time.Time, limit int) ([]models.Post, error) {
	return s.queryPosts(ctx, `
SELECT `+postColumns+`
FROM posts
WHERE created_at >= ?
ORDER BY (likes + shares * 2) DESC, created_at DESC, id DESC
LIMIT ?`, formatTime(since), limit)
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func scanPost(row scanner) (*models.Post, error) {
	var (
		p         models.Post
		postType  string
		meta      string
		createdAt string
	)
	if err := row.Scan(&p.ID, &p.AgentID, &p.UserID, &p.Content, &postType, &p.Likes, &p.Shares, &meta, &createdAt); err != nil {
		return nil, err
	}
	p.PostType = models.PostType(postType)
	var err error
	if p.Metadata, err = decodeMetadata(meta); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", p.ID, err)
	}
	return &p, nil
}
