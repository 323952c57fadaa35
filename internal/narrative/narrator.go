// Package narrative turns agent score transitions into feed posts written by
// the marketplace narrator.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"ambientin/internal/models"
	"ambientin/internal/scoring"
)

const (
	DefaultMilestoneEvery         = 10
	DefaultPriceJumpFactor        = 1.1
	DefaultAchievementProbability = 0.3
	DefaultNarratorName           = "Betty"
	DefaultNarratorRole           = "Marketing Specialist"
)

// Rand is the randomness the narrator needs. *rand.Rand from math/rand/v2
// satisfies it; tests substitute scripted sequences.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// Store is the persistence the narrator writes through.
type Store interface {
	FindNarrator(ctx context.Context, name, role string) (*models.Agent, error)
	CreateAgent(ctx context.Context, a *models.Agent) error
	CreatePost(ctx context.Context, p *models.Post) error
}

type Config struct {
	MilestoneEvery         int
	PriceJumpFactor        float64
	AchievementProbability float64
	NarratorName           string
	NarratorRole           string
}

func DefaultConfig() Config {
	return Config{
		MilestoneEvery:         DefaultMilestoneEvery,
		PriceJumpFactor:        DefaultPriceJumpFactor,
		AchievementProbability: DefaultAchievementProbability,
		NarratorName:           DefaultNarratorName,
		NarratorRole:           DefaultNarratorRole,
	}
}

// Snapshot is the part of an agent's state observed before an update.
type Snapshot struct {
	Cost       float64
	TotalTasks int
}

func SnapshotOf(a models.Agent) Snapshot {
	return Snapshot{Cost: a.CurrentCost, TotalTasks: a.TotalTasks()}
}

// Narrator emits milestone, price-jump and achievement posts.
type Narrator struct {
	store  Store
	cfg    Config
	rnd    Rand
	now    func() time.Time
	logger *slog.Logger

	mu         sync.Mutex
	narratorID string
}

type Option func(*Narrator)

func WithRand(r Rand) Option {
	return func(n *Narrator) { n.rnd = r }
}

func WithClock(now func() time.Time) Option {
	return func(n *Narrator) { n.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(n *Narrator) { n.logger = l }
}

func New(store Store, cfg Config, opts ...Option) *Narrator {
	d := DefaultConfig()
	if cfg.MilestoneEvery <= 0 {
		cfg.MilestoneEvery = d.MilestoneEvery
	}
	if cfg.PriceJumpFactor <= 0 {
		cfg.PriceJumpFactor = d.PriceJumpFactor
	}
	if cfg.AchievementProbability < 0 {
		cfg.AchievementProbability = 0
	}
	if cfg.NarratorName == "" {
		cfg.NarratorName = d.NarratorName
	}
	if cfg.NarratorRole == "" {
		cfg.NarratorRole = d.NarratorRole
	}
	n := &Narrator{
		store:  store,
		cfg:    cfg,
		rnd:    globalRand{},
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With("component", "narrative")
	return n
}

// Observe compares an agent against its state before a metrics update and
// writes the posts the transition earns. A failing post does not stop the
// others; all failures are joined into the returned error.
func (n *Narrator) Observe(ctx context.Context, before Snapshot, after models.Agent) ([]models.Post, error) {
	total := after.TotalTasks()
	var (
		posts []models.Post
		errs  []error
	)
	emit := func(p *models.Post, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		posts = append(posts, *p)
	}

	if total > 0 && total%n.cfg.MilestoneEvery == 0 && total != before.TotalTasks {
		emit(n.postMilestone(ctx, after, total))
	}
	if before.Cost > 0 && after.CurrentCost > before.Cost*n.cfg.PriceJumpFactor {
		emit(n.postPriceJump(ctx, after, before.Cost))
	}
	if total > before.TotalTasks && n.rnd.Float64() < n.cfg.AchievementProbability {
		emit(n.postAchievement(ctx, after, total-before.TotalTasks))
	}
	return posts, errors.Join(errs...)
}

func (n *Narrator) postMilestone(ctx context.Context, a models.Agent, milestone int) (*models.Post, error) {
	content, err := n.render(FamilyMilestone, baseValues(a, map[string]string{
		KeyMilestone: strconv.Itoa(milestone),
	}))
	if err != nil {
		return nil, err
	}
	return n.write(ctx, models.PostAchievement, content, map[string]any{
		models.MetaSubjectAgentID: a.ID,
		"milestoneType":           "total_completions",
		"milestoneValue":          milestone,
	})
}

func (n *Narrator) postPriceJump(ctx context.Context, a models.Agent, oldCost float64) (*models.Post, error) {
	content, err := n.render(FamilyPriceJump, baseValues(a, map[string]string{
		KeyTotalTasks: strconv.Itoa(a.TotalTasks()),
		KeyHired:      strconv.Itoa(a.TotalHires),
	}))
	if err != nil {
		return nil, err
	}
	change := (a.CurrentCost - oldCost) / oldCost * 100
	return n.write(ctx, models.PostPromotion, content, map[string]any{
		models.MetaSubjectAgentID: a.ID,
		"oldCost":                 oldCost,
		"newCost":                 a.CurrentCost,
		"priceChange":             strconv.FormatFloat(change, 'f', 2, 64),
	})
}

func (n *Narrator) postAchievement(ctx context.Context, a models.Agent, count int) (*models.Post, error) {
	kind, label := "issues", "issues"
	if a.TotalPRsCompleted > a.TotalIssuesCompleted {
		kind, label = "prs", "PRs"
	}
	content, err := n.render(FamilyAchievement, baseValues(a, map[string]string{
		KeyCount: strconv.Itoa(count),
		KeyType:  label,
	}))
	if err != nil {
		return nil, err
	}
	return n.write(ctx, models.PostAchievement, content, map[string]any{
		models.MetaSubjectAgentID: a.ID,
		"achievementType":         kind,
		"count":                   count,
	})
}

func (n *Narrator) render(f Family, values map[string]string) (string, error) {
	return Render(f, n.rnd.IntN(len(families[f].templates)), values)
}

func baseValues(a models.Agent, extra map[string]string) map[string]string {
	values := map[string]string{
		KeyName:       a.Name,
		KeyRole:       a.Role,
		KeyVelocity:   strconv.FormatFloat(a.Velocity, 'f', 1, 64),
		KeyEfficiency: strconv.FormatFloat(a.Efficiency, 'f', 1, 64),
		KeyCost:       strconv.FormatFloat(a.CurrentCost, 'f', 2, 64),
	}
	for k, v := range extra {
		values[k] = v
	}
	return values
}

func (n *Narrator) write(ctx context.Context, postType models.PostType, content string, meta map[string]any) (*models.Post, error) {
	authorID, err := n.ensureNarrator(ctx)
	if err != nil {
		return nil, err
	}
	p := &models.Post{
		ID:        uuid.NewString(),
		AgentID:   authorID,
		Content:   content,
		PostType:  postType,
		Metadata:  meta,
		CreatedAt: n.now(),
	}
	if err := n.store.CreatePost(ctx, p); err != nil {
		return nil, fmt.Errorf("create %s post: %w", postType, err)
	}
	n.logger.Debug("narrative post created", "post_id", p.ID, "type", postType, "subject", meta[models.MetaSubjectAgentID])
	return p, nil
}

// ensureNarrator resolves the narrator's agent record, creating it on first
// use. The record is inactive so it never competes on marketplace boards,
// and only a record flagged as the narrator is adopted.
func (n *Narrator) ensureNarrator(ctx context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.narratorID != "" {
		return n.narratorID, nil
	}

	existing, err := n.store.FindNarrator(ctx, n.cfg.NarratorName, n.cfg.NarratorRole)
	switch {
	case err == nil:
		n.narratorID = existing.ID
		return n.narratorID, nil
	case !errors.Is(err, models.ErrNotFound):
		return "", fmt.Errorf("find narrator: %w", err)
	}

	now := n.now()
	a := &models.Agent{
		ID:          uuid.NewString(),
		Name:        n.cfg.NarratorName,
		Role:        n.cfg.NarratorRole,
		Description: n.cfg.NarratorName + " is the voice of the marketplace, celebrating agent achievements and sharing the latest success stories.",
		Content:     n.cfg.NarratorName + " loves to hype up successful agents and share their accomplishments.",
		Tools:       []string{"Social Media", "Analytics", "Copywriting"},
		SourceType:  models.SourceManual,
		Velocity:    scoring.DefaultNeutralScore,
		Efficiency:  scoring.DefaultNeutralScore,
		IsActive:    false,
		Metadata:    map[string]any{models.MetaIsNarrator: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := n.store.CreateAgent(ctx, a); err != nil {
		return "", fmt.Errorf("create narrator: %w", err)
	}
	n.logger.Info("narrator agent created", "agent_id", a.ID, "name", a.Name)
	n.narratorID = a.ID
	return n.narratorID, nil
}
