package api

import (
	"net/http"
	"strings"

	"ambientin/internal/market"
)

type createUserRequest struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	DisplayName string  `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

type updateUserRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

func (s *server) createUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if !decodeBody(w, r, &req) {
			return
		}
		user, err := s.svc.CreateUser(r.Context(), market.UserInput{
			Username:    req.Username,
			Email:       req.Email,
			DisplayName: req.DisplayName,
			Bio:         req.Bio,
			AvatarURL:   req.AvatarURL,
		})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

// findUserHandler resolves ?username= to a single user.
func (s *server) findUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(r.URL.Query().Get("username"))
		if username == "" {
			writeError(w, http.StatusBadRequest, "username query parameter is required")
			return
		}
		user, err := s.svc.GetUserByUsername(r.Context(), username)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *server) getUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.svc.GetUser(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *server) updateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateUserRequest
		if !decodeBody(w, r, &req) {
			return
		}
		user, err := s.svc.UpdateUser(r.Context(), r.PathValue("id"), market.UserUpdate{
			DisplayName: req.DisplayName,
			Bio:         req.Bio,
			AvatarURL:   req.AvatarURL,
		})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *server) userTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := s.svc.UserTeams(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"teams": teams, "total": len(teams)})
	}
}
