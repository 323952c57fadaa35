package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ambientin/internal/config"
	"ambientin/internal/db"
	"ambientin/internal/logging"
	"ambientin/internal/market"
	"ambientin/internal/narrative"
)

const serverVersion = "0.1.0-dev"

type app struct {
	configPath string
	dbPath     string

	cfg    *config.Config
	logger *slog.Logger
}

// marketplace is an opened database with the service wired over it.
type marketplace struct {
	database *sql.DB
	store    *db.Store
	svc      *market.Service
}

func (m *marketplace) Close() error {
	return m.database.Close()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "ambientin-server",
		Short: "Agent marketplace server",
		Long: `ambientin-server runs the agent marketplace: metric ingestion,
leaderboards, team hiring and the narrated feed, over HTTP and MCP.

Configuration comes from defaults, ./ambientin.yaml (or --config) and
AMBIENTIN_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "path to SQLite database (overrides database.path)")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
		newImportCmd(a),
		newLeaderboardCmd(a),
		newStatsCmd(a),
		newMCPCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) open() (*marketplace, error) {
	database, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.ApplyMigrations(database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	store := db.NewStore(database)

	opts := []market.Option{
		market.WithParams(a.cfg.ScoringParams()),
		market.WithLogger(a.logger),
	}
	if a.cfg.Narrative.Enabled {
		narrator := narrative.New(store, a.cfg.NarrativeSettings(), narrative.WithLogger(a.logger))
		opts = append(opts, market.WithObserver(narrator))
	}
	return &marketplace{
		database: database,
		store:    store,
		svc:      market.New(store, a.cfg.MarketSettings(), opts...),
	}, nil
}

// toPayload turns a typed response into the generic shape the output
// package renders.
func toPayload(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
