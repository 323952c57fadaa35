package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ambientin/internal/agentdef"
	"ambientin/internal/cli/output"
	"ambientin/internal/db"
	"ambientin/internal/models"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(a.cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer database.Close()
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			version, err := db.SchemaVersion(database)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (%s)\n", version, a.cfg.Database.Path)
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo user and sample agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			mp, err := a.open()
			if err != nil {
				return err
			}
			defer mp.Close()

			res, err := db.Seed(cmd.Context(), mp.store, mp.svc)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "demo user %s (%s)\n", res.User.Username, res.User.ID)
			for _, agent := range res.Agents {
				fmt.Fprintf(out, "created agent %s (%s) %s\n", agent.Name, agent.Role, agent.ID)
			}
			if len(res.Agents) == 0 {
				fmt.Fprintln(out, "sample agents already present")
			}
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import markdown agent definitions from a file or directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				return errors.New("missing --from")
			}
			defs, err := agentdef.Load(from)
			if err != nil {
				return err
			}
			mp, err := a.open()
			if err != nil {
				return err
			}
			defer mp.Close()

			created, err := mp.svc.ImportAgents(cmd.Context(), defs)
			if err != nil {
				return err
			}
			a.logger.Info("import complete", "from", from, "definitions", len(defs), "created", len(created))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d agent definitions from %s\n", len(created), len(defs), from)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "markdown file or directory of agent definitions")
	return cmd
}

func newLeaderboardCmd(a *app) *cobra.Command {
	var (
		sortBy string
		role   string
		limit  int
		format string
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the agent leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			mp, err := a.open()
			if err != nil {
				return err
			}
			defer mp.Close()

			rankings, err := mp.svc.AgentLeaderboard(cmd.Context(), models.AgentSort(sortBy), role, limit)
			if err != nil {
				return err
			}
			payload, err := toPayload(map[string]any{"rankings": rankings, "total": len(rankings)})
			if err != nil {
				return err
			}
			return output.Fprint(cmd.OutOrStdout(), payload, format, false)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", string(models.SortVelocity), "velocity, efficiency, cost, hires or tasks")
	cmd.Flags().StringVar(&role, "role", "", "only rank agents with this role")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of agents to show")
	cmd.Flags().StringVar(&format, "format", "", "table, plain, md, json or quiet")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print marketplace totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			mp, err := a.open()
			if err != nil {
				return err
			}
			defer mp.Close()

			stats, err := mp.svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			payload, err := toPayload(stats)
			if err != nil {
				return err
			}
			return output.Fprint(cmd.OutOrStdout(), payload, format, false)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "table, plain, md, json or quiet")
	return cmd
}
