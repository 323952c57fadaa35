package api

import (
	"net/http"
	"strings"

	"ambientin/internal/market"
	"ambientin/internal/models"
)

type createAgentRequest struct {
	Name        string         `json:"name"`
	Role        string         `json:"role"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	Tools       []string       `json:"tools"`
	AvatarURL   *string        `json:"avatar_url"`
	BaseCost    *float64       `json:"base_cost"`
	SourceURL   *string        `json:"source_url"`
	Metadata    map[string]any `json:"metadata"`
}

type recordMetricRequest struct {
	AgentID        string         `json:"agent_id"`
	MetricType     string         `json:"metric_type"`
	CompletionTime float64        `json:"completion_time"`
	Difficulty     int            `json:"difficulty"`
	Success        *bool          `json:"success"`
	Metadata       map[string]any `json:"metadata"`
}

func (s *server) listAgentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := queryInts(w, r, "limit", "offset")
		if !ok {
			return
		}
		role := strings.TrimSpace(r.URL.Query().Get("role"))
		agents, err := s.svc.ListAgents(r.Context(), role, page[0], page[1])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"agents": agents, "total": len(agents)})
	}
}

func (s *server) createAgentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAgentRequest
		if !decodeBody(w, r, &req) {
			return
		}
		agent, err := s.svc.CreateAgent(r.Context(), market.AgentInput{
			Name:        req.Name,
			Role:        req.Role,
			Description: req.Description,
			Content:     req.Content,
			Tools:       req.Tools,
			AvatarURL:   req.AvatarURL,
			BaseCost:    req.BaseCost,
			SourceType:  models.SourceManual,
			SourceURL:   req.SourceURL,
			Metadata:    req.Metadata,
		})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, agent)
	}
}

func (s *server) getAgentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, err := s.svc.GetAgent(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}

func (s *server) deactivateAgentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, err := s.svc.DeactivateAgent(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}

func (s *server) recordMetricHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordMetricRequest
		if !decodeBody(w, r, &req) {
			return
		}
		metric, err := s.svc.RecordMetric(r.Context(), market.MetricInput{
			AgentID:        req.AgentID,
			MetricType:     models.MetricType(strings.TrimSpace(req.MetricType)),
			CompletionTime: req.CompletionTime,
			Difficulty:     req.Difficulty,
			Success:        req.Success,
			Metadata:       req.Metadata,
		})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, metric)
	}
}

func (s *server) agentMetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, ok := queryInts(w, r, "days")
		if !ok {
			return
		}
		summary, err := s.svc.AgentMetrics(r.Context(), r.PathValue("id"), days[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func (s *server) agentTrendsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, ok := queryInts(w, r, "days")
		if !ok {
			return
		}
		points, err := s.svc.MetricTrends(r.Context(), r.PathValue("id"), days[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"agent_id": r.PathValue("id"), "trends": points})
	}
}

func (s *server) agentRankHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sortBy := models.AgentSort(strings.TrimSpace(r.URL.Query().Get("sort")))
		if sortBy == "" {
			sortBy = models.SortVelocity
		}
		rank, err := s.svc.AgentRank(r.Context(), r.PathValue("id"), sortBy)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"agent_id": r.PathValue("id"),
			"sort":     sortBy,
			"rank":     rank,
		})
	}
}

func (s *server) agentPostsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := queryInts(w, r, "limit")
		if !ok {
			return
		}
		posts, err := s.svc.AgentPosts(r.Context(), r.PathValue("id"), limit[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "total": len(posts)})
	}
}
