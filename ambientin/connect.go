package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"ambientin/internal/cli/client"
	"ambientin/internal/cli/config"
)

func newConnectCmd(c *cli) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "connect <url>",
		Short: "Verify a server and store it as the default connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := client.New(args[0])
			var status struct {
				Status  string `json:"status"`
				Version string `json:"version"`
			}
			if err := api.Get("/api/v1/status", nil, &status); err != nil {
				return fmt.Errorf("server check failed: %w", err)
			}

			var userID string
			if username != "" {
				var user struct {
					ID string `json:"id"`
				}
				if err := api.Get("/api/v1/users", url.Values{"username": {username}}, &user); err != nil {
					return fmt.Errorf("lookup user %q: %w", username, err)
				}
				userID = user.ID
			}

			c.cfg.SetDefault(api.BaseURL(), username, userID)
			if err := config.SaveFile(c.cfgPath, c.cfg); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "connected to %s (server %s, status %s)\n", api.BaseURL(), status.Version, status.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "act as this username for team and feed commands")
	return cmd
}
