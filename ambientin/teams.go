package main

import (
	"github.com/spf13/cobra"
)

func newTeamsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Build teams by hiring agents",
	}

	var listUser string
	list := &cobra.Command{
		Use:   "list",
		Short: "List your active teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.userID(listUser)
			if err != nil {
				return err
			}
			return c.get("/api/v1/users/"+escape(id)+"/teams", nil)
		},
	}
	list.Flags().StringVar(&listUser, "user-id", "", "owner user id")

	var createUser, description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.userID(createUser)
			if err != nil {
				return err
			}
			body := map[string]any{"user_id": id, "name": args[0]}
			if description != "" {
				body["description"] = description
			}
			return c.post("/api/v1/teams", body)
		},
	}
	create.Flags().StringVar(&createUser, "user-id", "", "owner user id")
	create.Flags().StringVar(&description, "description", "", "team description")

	show := &cobra.Command{
		Use:   "show <team-id>",
		Short: "Show a team and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/teams/"+escape(args[0]), nil)
		},
	}

	var position string
	hire := &cobra.Command{
		Use:   "hire <team-id> <agent-id>",
		Short: "Hire an agent at its current price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.post("/api/v1/teams/"+escape(args[0])+"/members", map[string]any{
				"agent_id": args[1],
				"position": position,
			})
		},
	}
	hire.Flags().StringVar(&position, "position", "", "position on the team (default member)")

	fire := &cobra.Command{
		Use:   "fire <team-id> <agent-id>",
		Short: "Release an agent from a team (no refund)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.delete("/api/v1/teams/"+escape(args[0])+"/members/"+escape(args[1]), "agent released")
		},
	}

	stats := &cobra.Command{
		Use:   "stats <team-id>",
		Short: "Team value, performance and ROI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/teams/"+escape(args[0])+"/stats", nil)
		},
	}

	var recLimit int
	recommend := &cobra.Command{
		Use:   "recommend <team-id>",
		Short: "Suggest agents for roles the team lacks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/teams/"+escape(args[0])+"/recommendations", queryOf("limit", recLimit))
		},
	}
	recommend.Flags().IntVar(&recLimit, "limit", 0, "number of suggestions (default 5)")

	del := &cobra.Command{
		Use:   "delete <team-id>",
		Short: "Disband a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.delete("/api/v1/teams/"+escape(args[0]), "team deleted")
		},
	}

	cmd.AddCommand(list, create, show, hire, fire, stats, recommend, del)
	return cmd
}
