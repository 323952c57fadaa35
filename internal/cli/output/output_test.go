package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func payloadFrom(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return m
}

const rankingsJSON = `{"rankings":[
	{"rank":1,"score":87.5,"agent":{"id":"a1","name":"Stella","role":"Staff Engineer","current_cost":1250.5,"total_hires":3}},
	{"rank":2,"score":60,"agent":{"id":"a2","name":"Ryan","role":"UX Researcher","current_cost":180,"total_hires":0}}
],"total":2}`

func TestTableRankings(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, payloadFrom(t, rankingsJSON), "table", false); err != nil {
		t.Fatalf("print: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "RANK") || !strings.Contains(lines[0], "COST") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	for _, want := range []string{"Stella", "87.50", "$1,250.50"} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("row %q missing %q", lines[1], want)
		}
	}
}

func TestTableTeamRankings(t *testing.T) {
	var buf bytes.Buffer
	payload := payloadFrom(t, `{"rankings":[{"rank":1,"team":{"id":"t1","name":"Alpha"},"member_count":2,"current_value":300,"total_cost":250,"roi":0.2}]}`)
	if err := Fprint(&buf, payload, "table", false); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), "TEAM") || !strings.Contains(buf.String(), "Alpha") {
		t.Fatalf("unexpected team table %q", buf.String())
	}
}

func TestQuietPrintsIDs(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, payloadFrom(t, rankingsJSON), "table", true); err != nil {
		t.Fatalf("print: %v", err)
	}
	if buf.String() != "a1\na2\n" {
		t.Fatalf("unexpected quiet output %q", buf.String())
	}

	buf.Reset()
	if err := Fprint(&buf, map[string]any{"id": "x1", "name": "n"}, "quiet", false); err != nil {
		t.Fatalf("print: %v", err)
	}
	if buf.String() != "x1\n" {
		t.Fatalf("unexpected quiet output %q", buf.String())
	}
}

func TestPostsTableUsesRelativeAge(t *testing.T) {
	created := time.Now().Add(-3 * time.Hour).UTC().Format(time.RFC3339Nano)
	payload := map[string]any{"posts": []any{map[string]any{
		"id":         "p1",
		"post_type":  "achievement",
		"likes":      float64(2),
		"shares":     float64(0),
		"created_at": created,
		"content":    strings.Repeat("x", 100),
	}}}
	var buf bytes.Buffer
	if err := Fprint(&buf, payload, "table", false); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), "3 hours ago") {
		t.Fatalf("expected humanized age in %q", buf.String())
	}
	if strings.Contains(buf.String(), strings.Repeat("x", 61)) {
		t.Fatalf("content should be truncated: %q", buf.String())
	}
}

func TestJSONAndInvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, map[string]any{"agents": 3}, "json", false); err != nil {
		t.Fatalf("print: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "{\n  \"agents\": 3\n}" {
		t.Fatalf("unexpected json %q", buf.String())
	}
	if err := Fprint(&buf, map[string]any{}, "yaml", false); err == nil {
		t.Fatalf("expected invalid format error")
	}
}
