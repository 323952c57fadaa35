// Package output renders API payloads for the CLI as tables, plain lines,
// markdown, bare ids or JSON.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

const maxContentWidth = 60

func DefaultFormat() string {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return "table"
	}
	return "json"
}

func Print(payload map[string]any, format string, quiet bool) error {
	return Fprint(os.Stdout, payload, format, quiet)
}

func Fprint(w io.Writer, payload map[string]any, format string, quiet bool) error {
	if quiet {
		format = "quiet"
	}
	format = strings.TrimSpace(strings.ToLower(format))
	if format == "" {
		format = DefaultFormat()
	}

	switch format {
	case "json":
		return printJSON(w, payload)
	case "table":
		return printTable(w, payload)
	case "plain":
		return printPlain(w, payload)
	case "md":
		return printMarkdown(w, payload)
	case "quiet":
		return printQuiet(w, payload)
	default:
		return errors.New("invalid --format value")
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printTable(w io.Writer, payload map[string]any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	switch {
	case hasKey(payload, "rankings"):
		rows := toObjectSlice(payload["rankings"])
		if len(rows) > 0 && hasKey(rows[0], "team") {
			fmt.Fprintln(tw, "RANK\tTEAM\tMEMBERS\tVALUE\tCOST\tROI")
			for _, row := range rows {
				team := toObject(row["team"])
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					str(row["rank"]), str(team["name"]), str(row["member_count"]),
					money(row["current_value"]), money(row["total_cost"]), decimal(row["roi"]))
			}
			break
		}
		fmt.Fprintln(tw, "RANK\tNAME\tROLE\tSCORE\tCOST\tHIRES")
		for _, row := range rows {
			agent := toObject(row["agent"])
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				str(row["rank"]), str(agent["name"]), str(agent["role"]),
				decimal(row["score"]), money(agent["current_cost"]), str(agent["total_hires"]))
		}
	case hasKey(payload, "agents"):
		fmt.Fprintln(tw, "ID\tNAME\tROLE\tVELOCITY\tEFFICIENCY\tCOST\tHIRES")
		for _, row := range toObjectSlice(payload["agents"]) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				str(row["id"]), str(row["name"]), str(row["role"]),
				decimal(row["velocity"]), decimal(row["efficiency"]),
				money(row["current_cost"]), str(row["total_hires"]))
		}
	case hasKey(payload, "members"):
		fmt.Fprintf(tw, "%s (%s total)\n", str(payload["name"]), money(payload["total_cost"]))
		fmt.Fprintln(tw, "AGENT\tROLE\tPOSITION\tPAID\tJOINED")
		for _, row := range toObjectSlice(payload["members"]) {
			agent := toObject(row["agent"])
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				str(agent["name"]), str(agent["role"]), str(row["position"]),
				money(row["cost_at_hire"]), age(row["joined_at"]))
		}
	case hasKey(payload, "teams"):
		fmt.Fprintln(tw, "ID\tNAME\tTOTAL_COST\tCREATED")
		for _, row := range toObjectSlice(payload["teams"]) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				str(row["id"]), str(row["name"]), money(row["total_cost"]), age(row["created_at"]))
		}
	case hasKey(payload, "posts"):
		fmt.Fprintln(tw, "ID\tTYPE\tLIKES\tSHARES\tPOSTED\tCONTENT")
		for _, row := range toObjectSlice(payload["posts"]) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				str(row["id"]), str(row["post_type"]), str(row["likes"]), str(row["shares"]),
				age(row["created_at"]), truncate(str(row["content"]), maxContentWidth))
		}
	case hasKey(payload, "trends"):
		fmt.Fprintln(tw, "DATE\tCOUNT\tAVG_HOURS\tSUCCESS")
		for _, row := range toObjectSlice(payload["trends"]) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s%%\n",
				str(row["date"]), str(row["count"]), decimal(row["avg_completion_time"]), decimal(row["success_rate"]))
		}
	default:
		return printJSON(w, payload)
	}
	return tw.Flush()
}

func printPlain(w io.Writer, payload map[string]any) error {
	switch {
	case hasKey(payload, "rankings"):
		for _, row := range toObjectSlice(payload["rankings"]) {
			subject := toObject(row["agent"])
			if team, ok := row["team"]; ok {
				subject = toObject(team)
			}
			fmt.Fprintf(w, "%s %s %s\n", str(row["rank"]), str(subject["name"]), decimal(row["score"]))
		}
	case hasKey(payload, "agents"):
		for _, row := range toObjectSlice(payload["agents"]) {
			fmt.Fprintf(w, "%s %s %s\n", str(row["id"]), str(row["name"]), money(row["current_cost"]))
		}
	case hasKey(payload, "teams"):
		for _, row := range toObjectSlice(payload["teams"]) {
			fmt.Fprintf(w, "%s %s\n", str(row["id"]), str(row["name"]))
		}
	case hasKey(payload, "posts"):
		for _, row := range toObjectSlice(payload["posts"]) {
			fmt.Fprintf(w, "%s %s\n", str(row["id"]), str(row["content"]))
		}
	case hasKey(payload, "name") && hasKey(payload, "role"):
		fmt.Fprintf(w, "%s %s %s\n", str(payload["name"]), str(payload["role"]), money(payload["current_cost"]))
	default:
		return printJSON(w, payload)
	}
	return nil
}

func printMarkdown(w io.Writer, payload map[string]any) error {
	switch {
	case hasKey(payload, "rankings"):
		for _, row := range toObjectSlice(payload["rankings"]) {
			agent := toObject(row["agent"])
			fmt.Fprintf(w, "%s. **%s** (%s) %s\n",
				str(row["rank"]), str(agent["name"]), str(agent["role"]), decimal(row["score"]))
		}
	case hasKey(payload, "agents"):
		for _, row := range toObjectSlice(payload["agents"]) {
			fmt.Fprintf(w, "- `%s` **%s** (%s) %s\n",
				str(row["id"]), str(row["name"]), str(row["role"]), money(row["current_cost"]))
		}
	case hasKey(payload, "posts"):
		for _, row := range toObjectSlice(payload["posts"]) {
			fmt.Fprintf(w, "- `%s` _%s_: %s\n", str(row["id"]), str(row["post_type"]), str(row["content"]))
		}
	default:
		return printJSON(w, payload)
	}
	return nil
}

func printQuiet(w io.Writer, payload map[string]any) error {
	for _, key := range []string{"agents", "teams", "posts"} {
		if hasKey(payload, key) {
			for _, row := range toObjectSlice(payload[key]) {
				fmt.Fprintln(w, str(row["id"]))
			}
			return nil
		}
	}
	if hasKey(payload, "rankings") {
		for _, row := range toObjectSlice(payload["rankings"]) {
			subject := toObject(row["agent"])
			if team, ok := row["team"]; ok {
				subject = toObject(team)
			}
			fmt.Fprintln(w, str(subject["id"]))
		}
		return nil
	}
	if id, ok := payload["id"]; ok {
		fmt.Fprintln(w, str(id))
		return nil
	}
	return printJSON(w, payload)
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func toObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func toObjectSlice(v any) []map[string]any {
	in, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(in))
	for _, item := range in {
		if row, ok := item.(map[string]any); ok {
			out = append(out, row)
		}
	}
	return out
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return humanize.Comma(int64(t))
		}
		return humanize.CommafWithDigits(t, 2)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func decimal(v any) string {
	f, ok := v.(float64)
	if !ok {
		return str(v)
	}
	return humanize.FormatFloat("#,###.##", f)
}

func money(v any) string {
	f, ok := v.(float64)
	if !ok {
		return str(v)
	}
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// age renders an RFC 3339 timestamp relative to now ("3 hours ago").
func age(v any) string {
	s := str(v)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return humanize.Time(t)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
