package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ambientin/internal/cli/client"
	"ambientin/internal/cli/config"
	"ambientin/internal/cli/output"
)

type cli struct {
	server string
	format string
	quiet  bool

	cfgPath string
	cfg     *config.Config
	out     io.Writer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "ambientin",
		Short: "Command line client for the ambientin agent marketplace",
		Long: `ambientin talks to an ambientin-server over its HTTP API.

Run "ambientin connect <url>" once; the connection is stored in the nearest
.ambientin/config.json (or the one in your home directory).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&c.server, "server", "", "server URL (overrides the stored connection)")
	pf.StringVar(&c.format, "format", "", "table, plain, md, json or quiet")
	pf.BoolVarP(&c.quiet, "quiet", "q", false, "print ids only")

	root.AddCommand(
		newConnectCmd(c),
		newAgentsCmd(c),
		newMetricsCmd(c),
		newLeaderboardCmd(c),
		newTeamsCmd(c),
		newFeedCmd(c),
		newUsersCmd(c),
		newStatsCmd(c),
	)
	return root
}

func (c *cli) load(cmd *cobra.Command) error {
	p, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFile(p)
	if err != nil {
		return err
	}
	c.cfgPath = p
	c.cfg = cfg
	c.out = cmd.OutOrStdout()
	if c.format == "" {
		c.format = cfg.Format()
	}
	return nil
}

func (c *cli) client() (*client.Client, error) {
	if c.server != "" {
		return client.New(c.server), nil
	}
	srv, ok := c.cfg.Default()
	if !ok || srv.URL == "" {
		return nil, errors.New(`not connected; run "ambientin connect <url>" or pass --server`)
	}
	return client.New(srv.URL), nil
}

// userID falls back to the user stored by connect --user.
func (c *cli) userID(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if srv, ok := c.cfg.Default(); ok && srv.UserID != "" {
		return srv.UserID, nil
	}
	return "", errors.New(`no user; pass --user-id or run "ambientin connect <url> --user <name>"`)
}

func (c *cli) print(payload map[string]any) error {
	return output.Fprint(c.out, payload, c.format, c.quiet)
}

func (c *cli) get(path string, query url.Values) error {
	api, err := c.client()
	if err != nil {
		return err
	}
	var payload map[string]any
	if err := api.Get(path, query, &payload); err != nil {
		return err
	}
	return c.print(payload)
}

func (c *cli) post(path string, body any) error {
	api, err := c.client()
	if err != nil {
		return err
	}
	var payload map[string]any
	if err := api.Post(path, body, &payload); err != nil {
		return err
	}
	return c.print(payload)
}

func (c *cli) delete(path, done string) error {
	api, err := c.client()
	if err != nil {
		return err
	}
	var payload map[string]any
	if err := api.Delete(path, &payload); err != nil {
		return err
	}
	if payload != nil {
		return c.print(payload)
	}
	fmt.Fprintln(c.out, done)
	return nil
}

// queryOf builds query parameters, skipping empty strings and zero ints.
func queryOf(pairs ...any) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		switch v := pairs[i+1].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				q.Set(key, v)
			}
		case int:
			if v != 0 {
				q.Set(key, strconv.Itoa(v))
			}
		}
	}
	return q
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
