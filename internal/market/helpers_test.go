package market_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ambientin/internal/db"
	"ambientin/internal/market"
	"ambientin/internal/models"
)

var t0 = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	ctx   context.Context
	svc   *market.Service
	store *db.Store
	clock *fakeClock
}

func newFixture(t *testing.T, cfg market.Config, opts ...market.Option) *fixture {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "market.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := db.ApplyMigrations(database); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	f := &fixture{
		ctx:   context.Background(),
		store: db.NewStore(database),
		clock: &fakeClock{now: t0},
	}
	opts = append([]market.Option{market.WithClock(f.clock)}, opts...)
	f.svc = market.New(f.store, cfg, opts...)
	return f
}

func (f *fixture) agent(t *testing.T, name, role string, baseCost float64) *models.Agent {
	t.Helper()
	a, err := f.svc.CreateAgent(f.ctx, market.AgentInput{Name: name, Role: role, BaseCost: &baseCost})
	if err != nil {
		t.Fatalf("create agent %s: %v", name, err)
	}
	return a
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.svc.CreateUser(f.ctx, market.UserInput{Username: username, Email: username + "@example.com"})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (f *fixture) team(t *testing.T, userID, name string) *models.Team {
	t.Helper()
	team, err := f.svc.CreateTeam(f.ctx, userID, name, nil)
	if err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	return team
}

func (f *fixture) reload(t *testing.T, id string) *models.Agent {
	t.Helper()
	a, err := f.store.GetAgent(f.ctx, id)
	if err != nil {
		t.Fatalf("reload agent %s: %v", id, err)
	}
	return a
}

func (f *fixture) record(t *testing.T, agentID string, typ models.MetricType, hours float64) {
	t.Helper()
	if _, err := f.svc.RecordMetric(f.ctx, market.MetricInput{AgentID: agentID, MetricType: typ, CompletionTime: hours}); err != nil {
		t.Fatalf("record metric: %v", err)
	}
}

func boolPtr(b bool) *bool { return &b }

// withObserver rebuilds the fixture's service around an observer that needs
// the fixture's store.
func withObserver(t *testing.T, f *fixture, obs market.Observer) *fixture {
	t.Helper()
	f.svc = market.New(f.store, market.DefaultConfig(), market.WithClock(f.clock), market.WithObserver(obs))
	return f
}
