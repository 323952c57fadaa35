package api

import (
	"net/http"
	"testing"

	"ambientin/internal/models"
)

func createTeamForTest(t *testing.T, baseURL, userID, name string) models.Team {
	t.Helper()
	var team models.Team
	expectJSON(t, doReq(t, baseURL, http.MethodPost, "/api/v1/teams", map[string]any{
		"user_id": userID,
		"name":    name,
	}), http.StatusCreated, &team)
	return team
}

func TestHireAndFireFlow(t *testing.T) {
	srv, _ := setupTestServer(t, Config{})
	user := createUserForTest(t, srv.URL, "owner")
	team := createTeamForTest(t, srv.URL, user.ID, "Platform")
	agent := createAgentForTest(t, srv.URL, "Stella", "Staff Engineer", 250)

	var member models.TeamMember
	expectJSON(t, doReq(t, srv.URL, http.MethodPost, "/api/v1/teams/"+team.ID+"/members", map[string]any{
		"agent_id": agent.ID,
	}), http.StatusCreated, &member)
	if member.CostAtHire != agent.CurrentCost || member.Position != "member" {
		t.Fatalf("unexpected member %+v", member)
	}

	expectJSON(t, doReq(t, srv.URL, http.MethodPost, "/api/v1/teams/"+team.ID+"/members", map[string]any{
		"agent_id": agent.ID,
	}), http.StatusConflict, nil)

	var owner models.User
	expectJSON(t, doReq(t, srv.URL, http.MethodGet, "/api/v1/users/"+user.ID, nil), http.StatusOK, &owner)
	if owner.Credits != user.Credits-agent.CurrentCost {
		t.Fatalf("credits = %v, want %v", owner.Credits, user.Credits-agent.CurrentCost)
	}

	var detail models.TeamWithMembers
	expectJSON(t, doReq(t, srv.URL, http.MethodGet, "/api/v1/teams/"+team.ID, nil), http.StatusOK, &detail)
	if len(detail.Members) != 1 || detail.Members[0].Agent == nil || detail.Members[0].Agent.ID != agent.ID {
		t.Fatalf("unexpected team detail %+v", detail)
	}
	if detail.TotalCost != agent.CurrentCost {
		t.Fatalf("team total cost = %v", detail.TotalCost)
	}

	var stats models.TeamStats
	expectJSON(t, doReq(t, srv.URL, http.MethodGet, "/api/v1/teams/"+team.ID+"/stats", nil), http.StatusOK, &stats)
	if stats.TotalMembers != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	resp := doReq(t, srv.URL, http.MethodDelete, "/api/v1/teams/"+team.ID+"/members/"+agent.ID, nil)
	expectJSON(t, resp, http.StatusNoContent, nil)
	expectJSON(t, doReq(t, srv.URL, http.MethodDelete, "/api/v1/teams/"+team.ID+"/members/"+agent.ID, nil), http.StatusNotFound, nil)

	var teams struct {
		Teams []models.Team `json:"teams"`
		Total int           `json:"total"`
	}
	expectJSON(t, doReq(t, srv.URL, http.MethodGet, "/api/v1/users/"+user.ID+"/teams", nil), http.StatusOK, &teams)
	if teams.Total != 1 || teams.Teams[0].ID != team.ID {
		t.Fatalf("unexpected user teams %+v", teams)
	}

	expectJSON(t, doReq(t, srv.URL, http.MethodDelete, "/api/v1/teams/"+team.ID, nil), http.StatusNoContent, nil)
	expectJSON(t, doReq(t, srv.URL, http.MethodGet, "/api/v1/users/"+user.ID+"/teams", nil), http.StatusOK, &teams)
	if teams.Total != 0 {
		t.Fatalf("deleted team still listed: %+v", teams)
	}
	for _, path := range []string{"", "/stats", "/recommendations"} {
		expectJSON(t, doReq(t, srv.URL, http.MethodGet, "/api/v1/teams/"+team.ID+path, nil), http.StatusNotFound, nil)
	}
}

func TestHireWithoutCreditsIsPaymentRequired(t *testing.T) {
	srv, svc := setupTestServer(t, Config{})
	user := createUserForTest(t, srv.URL, "broke")
	team := createTeamForTest(t, srv.URL, user.ID, "Skunkworks")
	expensive := createAgentForTest(t, srv.URL, "Gold", "Architect", 50000)

	expectJSON(t, doReq(t, srv.URL, http.MethodPost, "/api/v1/teams/"+team.ID+"/members", map[string]any{
		"agent_id": expensive.ID,
	}), http.StatusPaymentRequired, nil)

	after, err := svc.GetAgent(t.Context(), expensive.ID)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if after.TotalHires != 0 || after.CurrentCost != expensive.CurrentCost {
		t.Fatalf("failed hire changed agent: %+v", after)
	}
}

func TestTeamErrors(t *testing.T) {
	srv, _ := setupTestServer(t, Config{})
	user := createUserForTest(t, srv.URL, "erin")

	expectJSON(t, doReq(t, srv.URL, http.MethodPost, "/api/v1/teams", map[string]any{
		"user_id": user.ID,
		"name":    "  ",
	}), http.StatusBadRequest, nil)
	expectJSON(t, doReq(t, srv.URL, http.MethodPost, "/api/v1/teams", map[string]any{
		"user_id": "nobody",
		"name":    "Ghosts",
	}), http.StatusNotFound, nil)
	expectJSON(t, doReq(t, srv.URL, http.MethodGet, "/api/v1/teams/missing/stats", nil), http.StatusNotFound, nil)

	team := createTeamForTest(t, srv.URL, user.ID, "Core")
	expectJSON(t, doReq(t, srv.URL, http.MethodPost, "/api/v1/teams/"+team.ID+"/members", map[string]any{
		"agent_id": "missing",
	}), http.StatusNotFound, nil)
}

func TestRecommendations(t *testing.T) {
	srv, _ := setupTestServer(t, Config{})
	user := createUserForTest(t, srv.URL, "rita")
	team := createTeamForTest(t, srv.URL, user.ID, "Growth")
	engineer := createAgentForTest(t, srv.URL, "Stella", "Staff Engineer", 250)
	writer := createAgentForTest(t, srv.URL, "Terry", "Technical Writer", 120)

	expectJSON(t, doReq(t, srv.URL, http.MethodPost, "/api/v1/teams/"+team.ID+"/members", map[string]any{
		"agent_id": engineer.ID,
	}), http.StatusCreated, nil)

	var recs struct {
		Agents []models.Agent `json:"agents"`
	}
	expectJSON(t, doReq(t, srv.URL, http.MethodGet, "/api/v1/teams/"+team.ID+"/recommendations?limit=3", nil), http.StatusOK, &recs)
	if len(recs.Agents) != 1 || recs.Agents[0].ID != writer.ID {
		t.Fatalf("expected only the uncovered role, got %+v", recs.Agents)
	}
}

func TestUsersEndpoints(t *testing.T) {
	srv, _ := setupTestServer(t, Config{})
	user := createUserForTest(t, srv.URL, "frank")
	if user.Credits != 10000 || user.DisplayName != "frank" {
		t.Fatalf("unexpected user %+v", user)
	}

	expectJSON(t, doReq(t, srv.URL, http.MethodPost, "/api/v1/users", map[string]any{
		"username": "frank",
		"email":    "other@example.com",
	}), http.StatusConflict, nil)

	var found models.User
	expectJSON(t, doReq(t, srv.URL, http.MethodGet, "/api/v1/users?username=frank", nil), http.StatusOK, &found)
	if found.ID != user.ID {
		t.Fatalf("lookup by username returned %+v", found)
	}
	expectJSON(t, doReq(t, srv.URL, http.MethodGet, "/api/v1/users", nil), http.StatusBadRequest, nil)

	var updated models.User
	expectJSON(t, doReq(t, srv.URL, http.MethodPatch, "/api/v1/users/"+user.ID, map[string]any{
		"display_name": "Frank F.",
		"bio":          "builds teams",
	}), http.StatusOK, &updated)
	if updated.DisplayName != "Frank F." || updated.Bio == nil || *updated.Bio != "builds teams" {
		t.Fatalf("unexpected update %+v", updated)
	}
}
