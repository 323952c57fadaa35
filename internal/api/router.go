// Package api exposes the marketplace over HTTP under /api/v1 and as MCP
// tools under /mcp.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ambientin/internal/db"
	"ambientin/internal/market"
	"ambientin/internal/models"
	"ambientin/internal/ratelimit"
)

const maxBodyBytes = 1 << 20

type Config struct {
	Version         string
	Logger          *slog.Logger
	WritesPerMinute int
	// Now defaults to time.Now; tests pin it to drive the rate limiter.
	Now func() time.Time
}

type server struct {
	svc      *market.Service
	database *sql.DB
	version  string
	logger   *slog.Logger
}

func NewRouter(svc *market.Service, database *sql.DB, cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &server{
		svc:      svc,
		database: database,
		version:  cfg.Version,
		logger:   cfg.Logger.With("component", "api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.statusHandler())

	mux.HandleFunc("GET /api/v1/agents", s.listAgentsHandler())
	mux.HandleFunc("POST /api/v1/agents", s.createAgentHandler())
	mux.HandleFunc("GET /api/v1/agents/{id}", s.getAgentHandler())
	mux.HandleFunc("DELETE /api/v1/agents/{id}", s.deactivateAgentHandler())
	mux.HandleFunc("GET /api/v1/agents/{id}/metrics", s.agentMetricsHandler())
	mux.HandleFunc("GET /api/v1/agents/{id}/trends", s.agentTrendsHandler())
	mux.HandleFunc("GET /api/v1/agents/{id}/rank", s.agentRankHandler())
	mux.HandleFunc("GET /api/v1/agents/{id}/posts", s.agentPostsHandler())
	mux.HandleFunc("POST /api/v1/metrics", s.recordMetricHandler())

	mux.HandleFunc("GET /api/v1/users", s.findUserHandler())
	mux.HandleFunc("POST /api/v1/users", s.createUserHandler())
	mux.HandleFunc("GET /api/v1/users/{id}", s.getUserHandler())
	mux.HandleFunc("PATCH /api/v1/users/{id}", s.updateUserHandler())
	mux.HandleFunc("GET /api/v1/users/{id}/teams", s.userTeamsHandler())

	mux.HandleFunc("POST /api/v1/teams", s.createTeamHandler())
	mux.HandleFunc("GET /api/v1/teams/{id}", s.getTeamHandler())
	mux.HandleFunc("DELETE /api/v1/teams/{id}", s.deleteTeamHandler())
	mux.HandleFunc("POST /api/v1/teams/{id}/members", s.addMemberHandler())
	mux.HandleFunc("DELETE /api/v1/teams/{id}/members/{agentID}", s.removeMemberHandler())
	mux.HandleFunc("GET /api/v1/teams/{id}/stats", s.teamStatsHandler())
	mux.HandleFunc("GET /api/v1/teams/{id}/recommendations", s.recommendationsHandler())

	mux.HandleFunc("GET /api/v1/leaderboard/agents", s.agentBoardHandler())
	mux.HandleFunc("GET /api/v1/leaderboard/roles/{role}", s.roleBoardHandler())
	mux.HandleFunc("GET /api/v1/leaderboard/teams", s.teamBoardHandler())
	mux.HandleFunc("GET /api/v1/leaderboard/most-hired", s.derivedBoardHandler(s.svc.MostHired))
	mux.HandleFunc("GET /api/v1/leaderboard/rising-stars", s.derivedBoardHandler(s.svc.RisingStars))
	mux.HandleFunc("GET /api/v1/leaderboard/best-value", s.derivedBoardHandler(s.svc.BestValue))
	mux.HandleFunc("GET /api/v1/leaderboard/most-active", s.mostActiveHandler())
	mux.HandleFunc("GET /api/v1/leaderboard/overview", s.overviewHandler())

	mux.HandleFunc("GET /api/v1/feed", s.feedHandler())
	mux.HandleFunc("POST /api/v1/feed", s.createPostHandler())
	mux.HandleFunc("GET /api/v1/feed/trending", s.trendingHandler())
	mux.HandleFunc("POST /api/v1/posts/{id}/like", s.bumpPostHandler(s.svc.LikePost))
	mux.HandleFunc("POST /api/v1/posts/{id}/share", s.bumpPostHandler(s.svc.SharePost))

	mux.HandleFunc("GET /api/v1/stats", s.statsHandler())

	mux.Handle("/mcp", mcpHandler(svc, cfg.Version))

	limiter := ratelimit.NewLimiter(cfg.WritesPerMinute, time.Minute, ratelimit.WithClock(cfg.Now))
	return requestLogger(s.logger, rateLimitWrites(limiter, cfg.Now, mux))
}

func (s *server) statusHandler() http.HandlerFunc {
	type statusResponse struct {
		Status        string `json:"status"`
		Version       string `json:"version"`
		SchemaVersion int    `json:"schema_version"`
		Timestamp     string `json:"timestamp"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.database.PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		version, err := db.SchemaVersion(s.database)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{
			Status:        "ok",
			Version:       s.version,
			SchemaVersion: version,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (s *server) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.svc.Stats(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// writeServiceError maps the model error taxonomy onto HTTP statuses.
// Unclassified errors are logged and reported without detail.
func (s *server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, err.Error())
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json payload")
		return false
	}
	return true
}

// queryInt reads an optional integer query parameter; absent yields 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s value", name)
	}
	return n, nil
}

// queryInts reads several integer parameters, writing a 400 on the first
// malformed one.
func queryInts(w http.ResponseWriter, r *http.Request, names ...string) ([]int, bool) {
	out := make([]int, len(names))
	for i, name := range names {
		n, err := queryInt(r, name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
