// Package market implements the marketplace engine: metric ingestion, the
// leaderboards, the team economy, the agent catalogue, users and the feed.
package market

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"ambientin/internal/models"
	"ambientin/internal/narrative"
	"ambientin/internal/scoring"
)

const (
	DefaultStartingCredits  = 10000.0
	DefaultBaseCost         = 100.0
	DefaultRisingStarWindow = 30 * 24 * time.Hour
	DefaultOverviewTTL      = 30 * time.Second

	overviewKey = "overview"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Observer receives an agent's state around a metrics update.
type Observer interface {
	Observe(ctx context.Context, before narrative.Snapshot, after models.Agent) ([]models.Post, error)
}

type Config struct {
	StartingCredits  float64
	DefaultBaseCost  float64
	RisingStarWindow time.Duration
	// OverviewTTL caches the leaderboard overview; zero disables the cache.
	OverviewTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		StartingCredits:  DefaultStartingCredits,
		DefaultBaseCost:  DefaultBaseCost,
		RisingStarWindow: DefaultRisingStarWindow,
		OverviewTTL:      DefaultOverviewTTL,
	}
}

type Service struct {
	store    Store
	cfg      Config
	params   scoring.Params
	clock    Clock
	observer Observer
	logger   *slog.Logger
	locks    *keyedMutex
	overview *expirable.LRU[string, models.LeaderboardOverview]
	// cacheMu orders overview stores against invalidations. generation
	// counts invalidations so an overview built across a write is not cached.
	cacheMu    sync.Mutex
	generation uint64
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithParams(p scoring.Params) Option {
	return func(s *Service) { s.params = p }
}

// WithObserver installs the narrative trigger notified after each metric.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(store Store, cfg Config, opts ...Option) *Service {
	if cfg.StartingCredits < 0 {
		cfg.StartingCredits = 0
	}
	if cfg.DefaultBaseCost <= 0 {
		cfg.DefaultBaseCost = DefaultBaseCost
	}
	if cfg.RisingStarWindow <= 0 {
		cfg.RisingStarWindow = DefaultRisingStarWindow
	}
	s := &Service{
		store:  store,
		cfg:    cfg,
		params: scoring.DefaultParams(),
		clock:  systemClock{},
		logger: slog.Default(),
		locks:  newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "market")
	if cfg.OverviewTTL > 0 {
		s.overview = expirable.NewLRU[string, models.LeaderboardOverview](1, nil, cfg.OverviewTTL)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// invalidate drops cached boards after a write that can move rankings.
func (s *Service) invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.generation++
	if s.overview != nil {
		s.overview.Purge()
	}
}

func (s *Service) cacheGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

// storeOverview caches o unless a write landed since gen was read.
func (s *Service) storeOverview(gen uint64, o models.LeaderboardOverview) bool {
	if s.overview == nil {
		return false
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation != gen {
		return false
	}
	s.overview.Add(overviewKey, o)
	return true
}

// maxWindowDays bounds day windows so the lookback stays well inside
// time.Duration's range.
const maxWindowDays = 3650

// windowDays applies the fallback to an unset window and caps long ones.
func windowDays(days, fallback int) int {
	return clampLimit(days, fallback, maxWindowDays)
}

func clampLimit(limit, fallback, ceiling int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}

// Stats reports marketplace-wide counters.
func (s *Service) Stats(ctx context.Context) (*models.MarketStats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("market stats: %w", err)
	}
	return &st, nil
}
