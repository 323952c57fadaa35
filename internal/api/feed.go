package api

import (
	"context"
	"net/http"
	"strings"

	"ambientin/internal/market"
	"ambientin/internal/models"
)

type createPostRequest struct {
	UserID  string `json:"user_id"`
	AgentID string `json:"agent_id"`
	Content string `json:"content"`
}

func (s *server) feedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := queryInts(w, r, "limit", "offset")
		if !ok {
			return
		}
		q := r.URL.Query()
		posts, total, err := s.svc.Feed(r.Context(), market.FeedQuery{
			PostType: models.PostType(strings.TrimSpace(q.Get("type"))),
			AgentID:  strings.TrimSpace(q.Get("agent_id")),
			Limit:    page[0],
			Offset:   page[1],
		})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"posts":  posts,
			"total":  total,
			"offset": page[1],
		})
	}
}

func (s *server) createPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPostRequest
		if !decodeBody(w, r, &req) {
			return
		}
		post, err := s.svc.CreateUserPost(r.Context(), req.UserID, req.AgentID, req.Content)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

func (s *server) trendingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := queryInts(w, r, "limit")
		if !ok {
			return
		}
		posts, err := s.svc.TrendingPosts(r.Context(), limit[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "total": len(posts)})
	}
}

func (s *server) bumpPostHandler(bump func(ctx context.Context, postID string) (*models.Post, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := bump(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}
