package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"ambientin/internal/market"
	"ambientin/internal/models"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(openTestDB(t, "store.db"))
}

func testAgent(id, name, role string, velocity float64, created time.Time) *models.Agent {
	return &models.Agent{
		ID:          id,
		Name:        name,
		Role:        role,
		Tools:       []string{"Read"},
		SourceType:  models.SourceManual,
		Velocity:    velocity,
		Efficiency:  50,
		BaseCost:    100,
		CurrentCost: 100,
		IsActive:    true,
		Metadata:    map[string]any{"team": "core"},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func testUser(id, username string) *models.User {
	return &models.User{
		ID:          id,
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: username,
		Credits:     1000,
		IsActive:    true,
		CreatedAt:   t0,
		UpdatedAt:   t0,
	}
}

func TestAgentRoundTripAndNotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	avatar := "https://example.com/a.png"
	a := testAgent("a1", "Ada", "Backend", 61.5, t0)
	a.AvatarURL = &avatar
	if err := s.CreateAgent(ctx, a); err != nil {
		t.Fatalf("create agent: %v", err)
	}

	got, err := s.GetAgent(ctx, "a1")
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if got.Name != "Ada" || got.Velocity != 61.5 || !got.IsActive || got.Tools[0] != "Read" {
		t.Fatalf("unexpected agent: %+v", got)
	}
	if got.AvatarURL == nil || *got.AvatarURL != avatar || got.SourceURL != nil {
		t.Fatalf("nullable columns not preserved: %+v", got)
	}
	if got.Metadata["team"] != "core" || !got.CreatedAt.Equal(t0) {
		t.Fatalf("metadata or timestamps lost: %+v", got)
	}

	if _, err := s.GetAgent(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	missing := testAgent("missing", "X", "Y", 50, t0)
	if err := s.UpdateAgent(ctx, missing); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestListAgentsFiltersAndCountAbove(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	agents := []*models.Agent{
		testAgent("a1", "Ada", "Backend", 60, t0),
		testAgent("a2", "Bea", "Design", 80, t0.Add(time.Hour)),
		testAgent("a3", "Cal", "Backend", 70, t0.Add(2*time.Hour)),
		testAgent("a4", "Dee", "Backend", 90, t0.Add(3*time.Hour)),
	}
	agents[3].IsActive = false
	for _, a := range agents {
		if err := s.CreateAgent(ctx, a); err != nil {
			t.Fatalf("create %s: %v", a.ID, err)
		}
	}

	backend, err := s.ListAgents(ctx, market.AgentFilter{Role: "Backend", ActiveOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(backend) != 2 || backend[0].ID != "a1" || backend[1].ID != "a3" {
		t.Fatalf("unexpected backend agents: %+v", backend)
	}

	fastest, err := s.ListAgents(ctx, market.AgentFilter{ActiveOnly: true, OrderByVelocity: true, Limit: 2})
	if err != nil {
		t.Fatalf("list by velocity: %v", err)
	}
	if len(fastest) != 2 || fastest[0].ID != "a2" || fastest[1].ID != "a3" {
		t.Fatalf("unexpected velocity order: %+v", fastest)
	}

	recent, err := s.ListAgents(ctx, market.AgentFilter{CreatedSince: t0.Add(90 * time.Minute)})
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent agents including inactive, got %d", len(recent))
	}

	above, err := s.CountAgentsAbove(ctx, models.SortVelocity, 60)
	if err != nil {
		t.Fatalf("count above: %v", err)
	}
	if above != 2 {
		t.Fatalf("expected 2 active agents above 60 (inactive excluded), got %d", above)
	}
}

func TestAggregateMetricsCountsOnlySuccesses(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	inputs := []struct {
		typ     models.MetricType
		hours   float64
		success bool
	}{
		{models.MetricIssue, 2, true},
		{models.MetricIssue, 4, true},
		{models.MetricPR, 6, true},
		{models.MetricPR, 100, false},
		{models.MetricTask, 12, true},
	}
	for i, in := range inputs {
		m := &models.Metric{
			ID:             string(rune('a' + i)),
			AgentID:        "ghost",
			MetricType:     in.typ,
			CompletionTime: in.hours,
			Difficulty:     5,
			Success:        in.success,
			RecordedAt:     t0.Add(time.Duration(i) * time.Hour),
		}
		if err := s.InsertMetric(ctx, m); err != nil {
			t.Fatalf("insert metric %d: %v", i, err)
		}
	}

	agg, err := s.AggregateMetrics(ctx, "ghost")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.IssuesCompleted != 2 || agg.PRsCompleted != 1 || agg.AvgCompletionTime != 6 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}

	empty, err := s.AggregateMetrics(ctx, "nobody")
	if err != nil {
		t.Fatalf("aggregate empty: %v", err)
	}
	if empty != (models.MetricAggregate{}) {
		t.Fatalf("expected zero aggregate, got %+v", empty)
	}

	recent, err := s.ListMetrics(ctx, "ghost", t0.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("list metrics: %v", err)
	}
	if len(recent) != 2 || recent[0].MetricType != models.MetricTask || recent[1].Success {
		t.Fatalf("unexpected recent metrics: %+v", recent)
	}
}

func TestUserUniquenessMapsToConflict(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.CreateUser(ctx, testUser("u1", "sam")); err != nil {
		t.Fatalf("create user: %v", err)
	}
	dup := testUser("u2", "sam")
	dup.Email = "other@example.com"
	if err := s.CreateUser(ctx, dup); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	u, err := s.GetUserByUsername(ctx, "sam")
	if err != nil || u.ID != "u1" {
		t.Fatalf("lookup by username: %v %+v", err, u)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.CreateUser(ctx, testUser("u1", "sam")); err != nil {
		t.Fatalf("create user: %v", err)
	}

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx market.Store) error {
		u, err := tx.GetUser(ctx, "u1")
		if err != nil {
			return err
		}
		u.Credits = 1
		if err := tx.UpdateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	u, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Credits != 1000 {
		t.Fatalf("rolled back credits = %v, want 1000", u.Credits)
	}
}

func TestTeamMembersJoinAgentsAndStayUnique(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.CreateUser(ctx, testUser("u1", "sam")); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.CreateAgent(ctx, testAgent("a1", "Ada", "Backend", 60, t0)); err != nil {
		t.Fatalf("create agent: %v", err)
	}
	team := &models.Team{ID: "t1", UserID: "u1", Name: "Core", IsActive: true, CreatedAt: t0, UpdatedAt: t0}
	if err := s.CreateTeam(ctx, team); err != nil {
		t.Fatalf("create team: %v", err)
	}
	m := &models.TeamMember{ID: "m1", TeamID: "t1", AgentID: "a1", Position: "lead", CostAtHire: 100, JoinedAt: t0}
	if err := s.CreateTeamMember(ctx, m); err != nil {
		t.Fatalf("create member: %v", err)
	}
	dup := *m
	dup.ID = "m2"
	if err := s.CreateTeamMember(ctx, &dup); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate membership, got %v", err)
	}

	members, err := s.ListTeamMembers(ctx, "t1")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].Agent == nil || members[0].Agent.Name != "Ada" || members[0].Position != "lead" {
		t.Fatalf("unexpected members: %+v", members)
	}

	if err := s.DeleteTeamMember(ctx, "m1"); err != nil {
		t.Fatalf("delete member: %v", err)
	}
	if _, err := s.GetTeamMember(ctx, "t1", "a1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteTeamMember(ctx, "m1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestPostsBySubjectCountersAndTrending(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, a := range []*models.Agent{
		testAgent("a1", "Ada", "Backend", 60, t0),
		testAgent("betty", "Betty", "Marketing Specialist", 50, t0),
	} {
		if err := s.CreateAgent(ctx, a); err != nil {
			t.Fatalf("create agent: %v", err)
		}
	}
	posts := []*models.Post{
		{ID: "p1", AgentID: "a1", Content: "own", PostType: models.PostStatus, CreatedAt: t0},
		{ID: "p2", AgentID: "betty", Content: "about ada", PostType: models.PostAchievement,
			Metadata: map[string]any{models.MetaSubjectAgentID: "a1"}, CreatedAt: t0.Add(time.Minute)},
		{ID: "p3", AgentID: "betty", Content: "old news", PostType: models.PostPromotion, CreatedAt: t0.Add(-48 * time.Hour)},
	}
	for _, p := range posts {
		if err := s.CreatePost(ctx, p); err != nil {
			t.Fatalf("create post %s: %v", p.ID, err)
		}
	}

	about, total, err := s.ListPosts(ctx, market.PostFilter{About: "a1"})
	if err != nil {
		t.Fatalf("list about: %v", err)
	}
	if total != 2 || about[0].ID != "p2" || about[1].ID != "p1" {
		t.Fatalf("unexpected posts about a1: total=%d %+v", total, about)
	}

	page, total, err := s.ListPosts(ctx, market.PostFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if total != 3 || len(page) != 1 || page[0].ID != "p1" {
		t.Fatalf("unexpected page: total=%d %+v", total, page)
	}

	if _, err := s.IncrementPostCounter(ctx, "p1", market.CounterLikes); err != nil {
		t.Fatalf("like: %v", err)
	}
	p, err := s.IncrementPostCounter(ctx, "p2", market.CounterShares)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if p.Shares != 1 || p.Likes != 0 {
		t.Fatalf("unexpected counters: %+v", p)
	}
	if _, err := s.IncrementPostCounter(ctx, "nope", market.CounterLikes); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	trending, err := s.ListTrendingPosts(ctx, t0.Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("trending: %v", err)
	}
	if len(trending) != 2 || trending[0].ID != "p2" || trending[1].ID != "p1" {
		t.Fatalf("unexpected trending order: %+v", trending)
	}
}

func TestFindNarratorSkipsCatalogueAgents(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	lookalike := testAgent("a1", "Betty", "Marketing Specialist", 50, t0)
	if err := s.CreateAgent(ctx, lookalike); err != nil {
		t.Fatalf("create agent: %v", err)
	}
	if _, err := s.FindNarrator(ctx, "Betty", "Marketing Specialist"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an active catalogue agent, got %v", err)
	}

	retired := testAgent("a2", "Betty", "Marketing Specialist", 50, t0.Add(time.Minute))
	retired.IsActive = false
	if err := s.CreateAgent(ctx, retired); err != nil {
		t.Fatalf("create agent: %v", err)
	}
	if _, err := s.FindNarrator(ctx, "Betty", "Marketing Specialist"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unflagged inactive agent, got %v", err)
	}

	narrator := testAgent("a3", "Betty", "Marketing Specialist", 50, t0.Add(2*time.Minute))
	narrator.IsActive = false
	narrator.Metadata = map[string]any{models.MetaIsNarrator: true}
	if err := s.CreateAgent(ctx, narrator); err != nil {
		t.Fatalf("create agent: %v", err)
	}
	got, err := s.FindNarrator(ctx, "Betty", "Marketing Specialist")
	if err != nil {
		t.Fatalf("find narrator: %v", err)
	}
	if got.ID != "a3" {
		t.Fatalf("found %q, want a3", got.ID)
	}
}
