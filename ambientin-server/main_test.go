package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func runCmd(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("AMBIENTIN_LOG_LEVEL", "error")
	return filepath.Join(dir, "ambientin.db")
}

func TestMigrateSeedImportAndReport(t *testing.T) {
	dbPath := isolate(t)
	ctx := context.Background()

	out, err := runCmd(t, ctx, "migrate", "--db", dbPath)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.HasPrefix(out, "schema at version ") {
		t.Fatalf("unexpected migrate output %q", out)
	}

	out, err = runCmd(t, ctx, "seed", "--db", dbPath)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if strings.Count(out, "created agent") != 4 {
		t.Fatalf("expected four sample agents, got %q", out)
	}
	out, err = runCmd(t, ctx, "seed", "--db", dbPath)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if !strings.Contains(out, "already present") {
		t.Fatalf("second seed should be a no-op, got %q", out)
	}

	defs := filepath.Join(t.TempDir(), "agents")
	if err := os.MkdirAll(defs, 0o755); err != nil {
		t.Fatalf("mkdir defs: %v", err)
	}
	def := "---\nname: Quinn\nrole: QA Engineer\nbase_cost: 90\n---\n# Quinn\n\nFinds the bugs before users do.\n"
	if err := os.WriteFile(filepath.Join(defs, "quinn.md"), []byte(def), 0o644); err != nil {
		t.Fatalf("write def: %v", err)
	}
	out, err = runCmd(t, ctx, "import", "--db", dbPath, "--from", defs)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.HasPrefix(out, "imported 1 of 1") {
		t.Fatalf("unexpected import output %q", out)
	}

	out, err = runCmd(t, ctx, "leaderboard", "--db", dbPath, "--sort", "cost", "--format", "json")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	var board struct {
		Rankings []struct {
			Rank  int `json:"rank"`
			Agent struct {
				Name string `json:"name"`
			} `json:"agent"`
		} `json:"rankings"`
	}
	if err := json.Unmarshal([]byte(out), &board); err != nil {
		t.Fatalf("decode leaderboard: %v (%s)", err, out)
	}
	if len(board.Rankings) != 5 || board.Rankings[0].Agent.Name != "Stella (Staff Engineer)" {
		t.Fatalf("unexpected leaderboard %+v", board)
	}

	out, err = runCmd(t, ctx, "stats", "--db", dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats struct {
		Agents int `json:"agents"`
		Users  int `json:"users"`
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v (%s)", err, out)
	}
	if stats.Agents != 5 || stats.Users != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestImportRequiresFrom(t *testing.T) {
	dbPath := isolate(t)
	if _, err := runCmd(t, context.Background(), "import", "--db", dbPath); err == nil {
		t.Fatalf("expected error without --from")
	}
}

func TestServeStopsWhenContextEnds(t *testing.T) {
	dbPath := isolate(t)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if _, err := runCmd(t, ctx, "serve", "--db", dbPath, "--port", "0"); err != nil {
		t.Fatalf("serve: %v", err)
	}
}
