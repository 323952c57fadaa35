package api

import (
	"context"
	"net/http"
	"strings"

	"ambientin/internal/models"
)

func (s *server) agentBoardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := queryInts(w, r, "limit")
		if !ok {
			return
		}
		q := r.URL.Query()
		sortBy := models.AgentSort(strings.TrimSpace(q.Get("sort")))
		role := strings.TrimSpace(q.Get("role"))
		rankings, err := s.svc.AgentLeaderboard(r.Context(), sortBy, role, limit[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rankings": rankings, "total": len(rankings)})
	}
}

func (s *server) roleBoardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := queryInts(w, r, "limit")
		if !ok {
			return
		}
		role := r.PathValue("role")
		rankings, err := s.svc.RoleLeaderboard(r.Context(), role, limit[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"role": role, "rankings": rankings, "total": len(rankings)})
	}
}

func (s *server) teamBoardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := queryInts(w, r, "limit")
		if !ok {
			return
		}
		sortBy := models.TeamSort(strings.TrimSpace(r.URL.Query().Get("sort")))
		rankings, err := s.svc.TeamLeaderboard(r.Context(), sortBy, limit[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rankings": rankings, "total": len(rankings)})
	}
}

type boardFunc func(ctx context.Context, limit int) ([]models.AgentRanking, error)

func (s *server) derivedBoardHandler(board boardFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := queryInts(w, r, "limit")
		if !ok {
			return
		}
		rankings, err := board(r.Context(), limit[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rankings": rankings, "total": len(rankings)})
	}
}

func (s *server) mostActiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := queryInts(w, r, "days", "limit")
		if !ok {
			return
		}
		rankings, err := s.svc.MostActive(r.Context(), params[0], params[1])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rankings": rankings, "total": len(rankings)})
	}
}

func (s *server) overviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := s.svc.Overview(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}
