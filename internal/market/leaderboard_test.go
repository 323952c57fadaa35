package market_test

import (
	"errors"
	"testing"
	"time"

	"ambientin/internal/market"
	"ambientin/internal/models"
)

// seedBoard creates agents with distinct velocities by recording tasks
// two days after creation.
func seedBoard(t *testing.T, f *fixture) map[string]*models.Agent {
	t.Helper()
	agents := map[string]*models.Agent{
		"ada": f.agent(t, "Ada", "Backend", 100),
		"bea": f.agent(t, "Bea", "Design", 100),
		"cal": f.agent(t, "Cal", "Backend", 100),
		"dee": f.agent(t, "Dee", "Ops", 100),
	}
	f.clock.Advance(48 * time.Hour)
	for name, tasks := range map[string]int{"ada": 2, "bea": 6, "cal": 4} {
		for i := 0; i < tasks; i++ {
			f.record(t, agents[name].ID, models.MetricIssue, 12)
		}
	}
	for k, a := range agents {
		agents[k] = f.reload(t, a.ID)
	}
	return agents
}

func TestAgentLeaderboardOrdering(t *testing.T) {
	f := newFixture(t, market.DefaultConfig())
	agents := seedBoard(t, f)

	board, err := f.svc.AgentLeaderboard(f.ctx, models.SortVelocity, "", 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	wantOrder := []string{"Bea", "Cal", "Ada", "Dee"}
	if len(board) != len(wantOrder) {
		t.Fatalf("board has %d entries", len(board))
	}
	for i, name := range wantOrder {
		if board[i].Agent.Name != name || board[i].Rank != i+1 {
			t.Fatalf("position %d = %s (rank %d), want %s", i, board[i].Agent.Name, board[i].Rank, name)
		}
	}
	if board[0].Score != agents["bea"].Velocity {
		t.Fatalf("score should be the sort field, got %v", board[0].Score)
	}

	tasks, err := f.svc.AgentLeaderboard(f.ctx, models.SortTasks, "", 1)
	if err != nil {
		t.Fatalf("tasks board: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Agent.Name != "Bea" || tasks[0].Score != 6 {
		t.Fatalf("unexpected tasks board: %+v", tasks)
	}

	if _, err := f.svc.AgentLeaderboard(f.ctx, "charisma", "", 10); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRoleFilteredBoardReranks(t *testing.T) {
	f := newFixture(t, market.DefaultConfig())
	seedBoard(t, f)

	board, err := f.svc.RoleLeaderboard(f.ctx, "Backend", 10)
	if err != nil {
		t.Fatalf("role board: %v", err)
	}
	if len(board) != 2 || board[0].Agent.Name != "Cal" || board[0].Rank != 1 || board[1].Rank != 2 {
		t.Fatalf("unexpected role board: %+v", board)
	}
	if _, err := f.svc.RoleLeaderboard(f.ctx, " ", 10); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAgentRank(t *testing.T) {
	f := newFixture(t, market.DefaultConfig())
	agents := seedBoard(t, f)

	rank, err := f.svc.AgentRank(f.ctx, agents["bea"].ID, models.SortVelocity)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if rank != 1 {
		t.Fatalf("top agent rank = %d, want 1", rank)
	}
	rank, err = f.svc.AgentRank(f.ctx, agents["dee"].ID, models.SortVelocity)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if rank != 4 {
		t.Fatalf("bottom agent rank = %d, want 4", rank)
	}

	// every agent recorded 12h tasks, so Ada, Bea and Cal tie on efficiency
	for _, name := range []string{"ada", "bea", "cal"} {
		rank, err := f.svc.AgentRank(f.ctx, agents[name].ID, models.SortEfficiency)
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		if rank != 1 {
			t.Fatalf("%s efficiency rank = %d, want shared rank 1", name, rank)
		}
	}

	if _, err := f.svc.DeactivateAgent(f.ctx, agents["dee"].ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.svc.AgentRank(f.ctx, agents["dee"].ID, models.SortVelocity); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for inactive agent, got %v", err)
	}
}

func TestDerivedBoards(t *testing.T) {
	f := newFixture(t, market.DefaultConfig())
	old := f.agent(t, "Old", "Backend", 100)
	f.clock.Advance(40 * 24 * time.Hour)
	agents := seedBoard(t, f)
	free := f.agent(t, "Free", "Intern", 0)

	stars, err := f.svc.RisingStars(f.ctx, 10)
	if err != nil {
		t.Fatalf("rising stars: %v", err)
	}
	for _, r := range stars {
		if r.Agent.ID == old.ID {
			t.Fatalf("agent older than the window listed as rising star")
		}
	}
	if len(stars) != 5 || stars[0].Agent.Name != "Bea" {
		t.Fatalf("unexpected rising stars: %+v", stars)
	}

	best, err := f.svc.BestValue(f.ctx, 10)
	if err != nil {
		t.Fatalf("best value: %v", err)
	}
	for _, r := range best {
		if r.Agent.ID == free.ID {
			t.Fatalf("zero-cost agent must be excluded from best value")
		}
	}
	if len(best) != 5 {
		t.Fatalf("best value has %d entries, want 5", len(best))
	}
	// without hires value reduces to 100 / baseCost
	if best[0].Score != 1 {
		t.Fatalf("best value leader score = %v", best[0].Score)
	}

	f.clock.Advance(10 * 24 * time.Hour)
	f.record(t, agents["dee"].ID, models.MetricPR, 1)
	active, err := f.svc.MostActive(f.ctx, 7, 10)
	if err != nil {
		t.Fatalf("most active: %v", err)
	}
	if len(active) != 1 || active[0].Agent.ID != agents["dee"].ID {
		t.Fatalf("unexpected most active: %+v", active)
	}
}

func TestTeamLeaderboardAndEmptyTeam(t *testing.T) {
	f := newFixture(t, market.DefaultConfig())
	u := f.user(t, "sam")
	ada := f.agent(t, "Ada", "Backend", 100)
	bea := f.agent(t, "Bea", "Design", 200)

	empty := f.team(t, u.ID, "Empty")
	staffed := f.team(t, u.ID, "Staffed")
	for _, a := range []*models.Agent{ada, bea} {
		if _, err := f.svc.AddMember(f.ctx, staffed.ID, a.ID, ""); err != nil {
			t.Fatalf("add member: %v", err)
		}
	}

	board, err := f.svc.TeamLeaderboard(f.ctx, models.SortValue, 10)
	if err != nil {
		t.Fatalf("team board: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(board))
	}
	top, bottom := board[0], board[1]
	if top.Team.ID != staffed.ID || top.MemberCount != 2 {
		t.Fatalf("unexpected leader: %+v", top)
	}
	// hire bumps: 100 -> 101, 200 -> 202; paid 300
	if top.CurrentValue != 303 || top.TotalCost != 300 || top.ROI != 1 || top.AvgPerformance != 50 {
		t.Fatalf("unexpected valuation: %+v", top)
	}
	if bottom.Team.ID != empty.ID || bottom.CurrentValue != 0 || bottom.ROI != 0 || bottom.AvgPerformance != 0 {
		t.Fatalf("empty team should score zero: %+v", bottom)
	}

	for _, sortBy := range []models.TeamSort{models.SortROI, models.SortPerformance} {
		if _, err := f.svc.TeamLeaderboard(f.ctx, sortBy, 0); err != nil {
			t.Fatalf("team board by %s: %v", sortBy, err)
		}
	}
	if _, err := f.svc.TeamLeaderboard(f.ctx, "vibes", 10); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestOverviewCacheInvalidatedByWrites(t *testing.T) {
	f := newFixture(t, market.DefaultConfig())
	f.agent(t, "Ada", "Backend", 100)

	first, err := f.svc.Overview(f.ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(first.TopVelocity) != 1 || len(first.RisingStars) != 1 || len(first.TopTeams) != 0 {
		t.Fatalf("unexpected overview: %+v", first)
	}

	f.agent(t, "Bea", "Design", 100)
	second, err := f.svc.Overview(f.ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(second.TopVelocity) != 2 {
		t.Fatalf("overview not refreshed after write: %d entries", len(second.TopVelocity))
	}
}
