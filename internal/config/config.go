// Package config loads the server configuration from defaults, an optional
// YAML file and AMBIENTIN_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ambientin/internal/market"
	"ambientin/internal/narrative"
	"ambientin/internal/scoring"
)

const (
	EnvPrefix      = "AMBIENTIN"
	DefaultFile    = "ambientin"
	defaultDBPath  = "./ambientin.db"
	defaultLogMode = "text"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Log         LogConfig         `mapstructure:"log"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Narrative   NarrativeConfig   `mapstructure:"narrative"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	Users       UsersConfig       `mapstructure:"users"`
	Agents      AgentsConfig      `mapstructure:"agents"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ScoringConfig struct {
	NeutralScore            float64 `mapstructure:"neutral_score"`
	VelocityPerDailyTask    float64 `mapstructure:"velocity_per_daily_task"`
	EfficiencyBaselineHours float64 `mapstructure:"efficiency_baseline_hours"`
	EfficiencyPenalty       float64 `mapstructure:"efficiency_penalty"`
	DemandDivisor           float64 `mapstructure:"demand_divisor"`
}

type NarrativeConfig struct {
	Enabled                bool    `mapstructure:"enabled"`
	MilestoneEvery         int     `mapstructure:"milestone_every"`
	PriceJumpFactor        float64 `mapstructure:"price_jump_factor"`
	AchievementProbability float64 `mapstructure:"achievement_probability"`
	NarratorName           string  `mapstructure:"narrator_name"`
	NarratorRole           string  `mapstructure:"narrator_role"`
}

type LeaderboardConfig struct {
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	RisingStarWindow time.Duration `mapstructure:"rising_star_window"`
}

type RateLimitConfig struct {
	WritesPerMinute int `mapstructure:"writes_per_minute"`
}

type UsersConfig struct {
	StartingCredits float64 `mapstructure:"starting_credits"`
}

type AgentsConfig struct {
	DefaultBaseCost float64 `mapstructure:"default_base_cost"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", defaultDBPath)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", defaultLogMode)

	v.SetDefault("scoring.neutral_score", scoring.DefaultNeutralScore)
	v.SetDefault("scoring.velocity_per_daily_task", scoring.DefaultVelocityPerDailyTask)
	v.SetDefault("scoring.efficiency_baseline_hours", scoring.DefaultEfficiencyBaselineHours)
	v.SetDefault("scoring.efficiency_penalty", scoring.DefaultEfficiencyPenalty)
	v.SetDefault("scoring.demand_divisor", scoring.DefaultDemandDivisor)

	v.SetDefault("narrative.enabled", true)
	v.SetDefault("narrative.milestone_every", narrative.DefaultMilestoneEvery)
	v.SetDefault("narrative.price_jump_factor", narrative.DefaultPriceJumpFactor)
	v.SetDefault("narrative.achievement_probability", narrative.DefaultAchievementProbability)
	v.SetDefault("narrative.narrator_name", narrative.DefaultNarratorName)
	v.SetDefault("narrative.narrator_role", narrative.DefaultNarratorRole)

	v.SetDefault("leaderboard.cache_ttl", market.DefaultOverviewTTL)
	v.SetDefault("leaderboard.rising_star_window", market.DefaultRisingStarWindow)

	v.SetDefault("ratelimit.writes_per_minute", 120)

	v.SetDefault("users.starting_credits", market.DefaultStartingCredits)
	v.SetDefault("agents.default_base_cost", market.DefaultBaseCost)
}

// Load reads configuration. An explicit path must exist; without one,
// ./ambientin.yaml is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultFile)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	if p := c.Narrative.AchievementProbability; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("narrative.achievement_probability %v outside [0,1]", p))
	}
	if c.Users.StartingCredits < 0 {
		errs = append(errs, errors.New("users.starting_credits must not be negative"))
	}
	if c.RateLimit.WritesPerMinute < 0 {
		errs = append(errs, errors.New("ratelimit.writes_per_minute must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) ScoringParams() scoring.Params {
	return scoring.Params{
		NeutralScore:            c.Scoring.NeutralScore,
		VelocityPerDailyTask:    c.Scoring.VelocityPerDailyTask,
		EfficiencyBaselineHours: c.Scoring.EfficiencyBaselineHours,
		EfficiencyPenalty:       c.Scoring.EfficiencyPenalty,
		DemandDivisor:           c.Scoring.DemandDivisor,
	}
}

func (c *Config) NarrativeSettings() narrative.Config {
	return narrative.Config{
		MilestoneEvery:         c.Narrative.MilestoneEvery,
		PriceJumpFactor:        c.Narrative.PriceJumpFactor,
		AchievementProbability: c.Narrative.AchievementProbability,
		NarratorName:           c.Narrative.NarratorName,
		NarratorRole:           c.Narrative.NarratorRole,
	}
}

func (c *Config) MarketSettings() market.Config {
	return market.Config{
		StartingCredits:  c.Users.StartingCredits,
		DefaultBaseCost:  c.Agents.DefaultBaseCost,
		RisingStarWindow: c.Leaderboard.RisingStarWindow,
		OverviewTTL:      c.Leaderboard.CacheTTL,
	}
}
