package api

import (
	"net/http"
)

type createTeamRequest struct {
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type addMemberRequest struct {
	AgentID  string `json:"agent_id"`
	Position string `json:"position"`
}

func (s *server) createTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTeamRequest
		if !decodeBody(w, r, &req) {
			return
		}
		team, err := s.svc.CreateTeam(r.Context(), req.UserID, req.Name, req.Description)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, team)
	}
}

func (s *server) getTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := s.svc.GetTeam(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}

func (s *server) deleteTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.svc.DeleteTeam(r.Context(), r.PathValue("id")); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// addMemberHandler hires an agent: 402 when the owner cannot afford it,
// 409 when the agent is already on the team.
func (s *server) addMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addMemberRequest
		if !decodeBody(w, r, &req) {
			return
		}
		member, err := s.svc.AddMember(r.Context(), r.PathValue("id"), req.AgentID, req.Position)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, member)
	}
}

func (s *server) removeMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.svc.RemoveMember(r.Context(), r.PathValue("id"), r.PathValue("agentID")); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *server) teamStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.svc.TeamStats(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *server) recommendationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := queryInts(w, r, "limit")
		if !ok {
			return
		}
		agents, err := s.svc.RecommendedAgents(r.Context(), r.PathValue("id"), limit[0])
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"agents": agents, "total": len(agents)})
	}
}
