package market_test

import (
	"errors"
	"testing"
	"time"

	"ambientin/internal/agentdef"
	"ambientin/internal/market"
	"ambientin/internal/models"
)

func TestUserPostsLikesSharesAndTrending(t *testing.T) {
	f := newFixture(t, market.DefaultConfig())
	u := f.user(t, "sam")
	a := f.agent(t, "Ada", "Backend", 100)

	first, err := f.svc.CreateUserPost(f.ctx, u.ID, a.ID, "Ada shipped the migration")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if first.PostType != models.PostStatus || first.UserID == nil || *first.UserID != u.ID {
		t.Fatalf("unexpected post: %+v", first)
	}
	f.clock.Advance(time.Minute)
	second, err := f.svc.CreateUserPost(f.ctx, u.ID, a.ID, "and the rollback plan")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if _, err := f.svc.LikePost(f.ctx, first.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	liked, err := f.svc.LikePost(f.ctx, first.ID)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if liked.Likes != 2 {
		t.Fatalf("likes = %d", liked.Likes)
	}
	shared, err := f.svc.SharePost(f.ctx, second.ID)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	shared, err = f.svc.SharePost(f.ctx, second.ID)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if shared.Shares != 2 {
		t.Fatalf("shares = %d", shared.Shares)
	}
	if _, err := f.svc.LikePost(f.ctx, "nope"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	trending, err := f.svc.TrendingPosts(f.ctx, 0)
	if err != nil {
		t.Fatalf("trending: %v", err)
	}
	if len(trending) != 2 || trending[0].ID != second.ID {
		t.Fatalf("shares weigh double, want %s first: %+v", second.ID, trending)
	}

	f.clock.Advance(25 * time.Hour)
	trending, err = f.svc.TrendingPosts(f.ctx, 0)
	if err != nil {
		t.Fatalf("trending: %v", err)
	}
	if len(trending) != 0 {
		t.Fatalf("posts older than a day should not trend: %+v", trending)
	}

	posts, total, err := f.svc.Feed(f.ctx, market.FeedQuery{PostType: models.PostStatus, Limit: 1})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if total != 2 || len(posts) != 1 || posts[0].ID != second.ID {
		t.Fatalf("unexpected feed page: total=%d %+v", total, posts)
	}
	if _, _, err := f.svc.Feed(f.ctx, market.FeedQuery{PostType: "rumour"}); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateUserPostValidation(t *testing.T) {
	f := newFixture(t, market.DefaultConfig())
	u := f.user(t, "sam")
	a := f.agent(t, "Ada", "Backend", 100)

	if _, err := f.svc.CreateUserPost(f.ctx, u.ID, a.ID, "   "); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("empty content: %v", err)
	}
	if _, err := f.svc.CreateUserPost(f.ctx, "nobody", a.ID, "hi"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("unknown user: %v", err)
	}
	if _, err := f.svc.CreateUserPost(f.ctx, u.ID, "nobody", "hi"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("unknown agent: %v", err)
	}
}

func TestUsers(t *testing.T) {
	f := newFixture(t, market.DefaultConfig())
	u := f.user(t, "sam")
	if u.Credits != market.DefaultStartingCredits || u.DisplayName != "sam" {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := f.svc.CreateUser(f.ctx, market.UserInput{Username: "sam", Email: "other@example.com"}); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("duplicate username: %v", err)
	}
	if _, err := f.svc.CreateUser(f.ctx, market.UserInput{Username: "kim", Email: "sam@example.com"}); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("duplicate email: %v", err)
	}
	if _, err := f.svc.CreateUser(f.ctx, market.UserInput{Username: "kim", Email: "not-an-email"}); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("bad email: %v", err)
	}

	name, bio := "Sam Q", "builds teams"
	updated, err := f.svc.UpdateUser(f.ctx, u.ID, market.UserUpdate{DisplayName: &name, Bio: &bio})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	byName, err := f.svc.GetUserByUsername(f.ctx, "sam")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.DisplayName != "Sam Q" || byName.Bio == nil || *byName.Bio != bio || byName.Credits != updated.Credits {
		t.Fatalf("update not persisted: %+v", byName)
	}
	if _, err := f.svc.UpdateUser(f.ctx, "nobody", market.UserUpdate{}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAgentCatalogue(t *testing.T) {
	f := newFixture(t, market.DefaultConfig())

	if _, err := f.svc.CreateAgent(f.ctx, market.AgentInput{Name: "Ada"}); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("missing role: %v", err)
	}
	neg := -1.0
	if _, err := f.svc.CreateAgent(f.ctx, market.AgentInput{Name: "Ada", Role: "Backend", BaseCost: &neg}); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("negative cost: %v", err)
	}

	a, err := f.svc.CreateAgent(f.ctx, market.AgentInput{Name: "Ada", Role: "Backend"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.BaseCost != market.DefaultBaseCost || a.SourceType != models.SourceManual || a.Tools == nil {
		t.Fatalf("unexpected defaults: %+v", a)
	}

	defs := []agentdef.Definition{
		{Name: "Ada", Role: "Backend"},
		{Name: "Bea", Role: "Design", BaseCost: 180, Tools: []string{"Figma"}},
	}
	imported, err := f.svc.ImportAgents(f.ctx, defs)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(imported) != 1 || imported[0].Name != "Bea" || imported[0].SourceType != models.SourceImport || imported[0].CurrentCost != 180 {
		t.Fatalf("unexpected import: %+v", imported)
	}

	list, err := f.svc.ListAgents(f.ctx, "Design", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Bea" {
		t.Fatalf("unexpected list: %+v", list)
	}

	if _, err := f.svc.DeactivateAgent(f.ctx, a.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	all, err := f.svc.ListAgents(f.ctx, "", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("inactive agents must not be listed: %+v", all)
	}
	got, err := f.svc.GetAgent(f.ctx, a.ID)
	if err != nil || got.IsActive {
		t.Fatalf("deactivated agent should stay readable: %v %+v", err, got)
	}
}
