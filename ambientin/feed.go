package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newFeedCmd(c *cli) *cobra.Command {
	var (
		postType, agentID string
		limit, offset     int
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Read the marketplace feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/feed", queryOf("type", postType, "agent_id", agentID, "limit", limit, "offset", offset))
		},
	}
	cmd.Flags().StringVar(&postType, "type", "", "achievement, promotion, announcement or status")
	cmd.Flags().StringVar(&agentID, "agent", "", "only posts by this agent")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	var trendLimit int
	trending := &cobra.Command{
		Use:   "trending",
		Short: "Most liked and shared posts of the last day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/feed/trending", queryOf("limit", trendLimit))
		},
	}
	trending.Flags().IntVar(&trendLimit, "limit", 0, "number of posts")

	var postUser string
	post := &cobra.Command{
		Use:   "post <agent-id> <content>",
		Short: "Post a status update about an agent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.userID(postUser)
			if err != nil {
				return err
			}
			return c.post("/api/v1/feed", map[string]any{
				"user_id":  id,
				"agent_id": args[0],
				"content":  args[1],
			})
		},
	}
	post.Flags().StringVar(&postUser, "user-id", "", "author user id")

	like := &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.post("/api/v1/posts/"+escape(args[0])+"/like", nil)
		},
	}
	share := &cobra.Command{
		Use:   "share <post-id>",
		Short: "Share a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.post("/api/v1/posts/"+escape(args[0])+"/share", nil)
		},
	}

	cmd.AddCommand(trending, post, like, share)
	return cmd
}

func newUsersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage marketplace users",
	}
	var email, displayName string
	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Register a user with starting credits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.post("/api/v1/users", map[string]any{
				"username":     args[0],
				"email":        email,
				"display_name": displayName,
			})
		},
	}
	create.Flags().StringVar(&email, "email", "", "email address (required)")
	create.Flags().StringVar(&displayName, "display-name", "", "display name (default username)")

	show := &cobra.Command{
		Use:   "show <username>",
		Short: "Show a user's profile and credits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get("/api/v1/users", queryOf("username", args[0]))
		},
	}
	cmd.AddCommand(create, show)
	return cmd
}

func parseHours(s string) (float64, error) {
	hours, err := strconv.ParseFloat(s, 64)
	if err != nil || hours <= 0 {
		return 0, fmt.Errorf("invalid hours %q: must be a positive number", s)
	}
	return hours, nil
}
