// Package agentdef reads agent definitions written as markdown with an
// optional YAML front matter block.
package agentdef

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	UnknownName        = "Unknown Agent"
	GeneralRole        = "General Agent"
	NoDescription      = "No description available"
	maxDescriptionSize = 500
)

var ErrMalformedFrontMatter = errors.New("agentdef: malformed front matter")

var (
	headingPattern = regexp.MustCompile(`(?m)^#\s+(.+)`)
	rolePattern    = regexp.MustCompile(`\(([^)]+)\)`)
)

// Definition is a parsed agent definition. Metadata holds the raw front
// matter.
type Definition struct {
	Name        string
	Role        string
	Description string
	Content     string
	Tools       []string
	AvatarURL   string
	BaseCost    float64
	SourceURL   string
	Metadata    map[string]any
}

// Parse reads one definition. Missing fields fall back to the markdown body:
// the name to the first heading, the role to a parenthesised part of the
// name, the description to the first plain paragraph.
func Parse(content []byte) (Definition, error) {
	meta, body, err := splitFrontMatter(content)
	if err != nil {
		return Definition{}, err
	}

	def := Definition{
		Content:   string(body),
		Metadata:  meta,
		Tools:     stringList(meta["tools"]),
		AvatarURL: firstString(meta, "avatar_url", "avatarUrl", "avatar"),
		SourceURL: firstString(meta, "source_url", "sourceUrl"),
	}
	def.Name = firstString(meta, "name")
	if def.Name == "" {
		def.Name = nameFromContent(def.Content)
	}
	def.Role = firstString(meta, "role")
	if def.Role == "" {
		def.Role = roleFromName(def.Name)
	}
	def.Description = firstString(meta, "description")
	if def.Description == "" {
		def.Description = descriptionFromContent(def.Content)
	}
	cost, err := number(meta, "base_cost", "baseCost")
	if err != nil {
		return Definition{}, err
	}
	def.BaseCost = cost
	return def, nil
}

// Load parses a single file or every .md file below a directory, in lexical
// order.
func Load(path string) ([]Definition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("agentdef: stat %q: %w", path, err)
	}
	if !info.IsDir() {
		def, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		return []Definition{def}, nil
	}

	var defs []Definition
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}
		def, err := loadFile(p)
		if err != nil {
			return err
		}
		defs = append(defs, def)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defs, nil
}

func loadFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("agentdef: read %q: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return Definition{}, fmt.Errorf("agentdef: parse %q: %w", path, err)
	}
	if def.SourceURL == "" {
		def.SourceURL = "file://" + filepath.ToSlash(path)
	}
	return def, nil
}

func splitFrontMatter(content []byte) (map[string]any, []byte, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return map[string]any{}, normalized, nil
	}
	rest := normalized[4:]
	var head, body []byte
	if bytes.HasPrefix(rest, []byte("---\n")) {
		body = rest[4:]
	} else {
		parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
		if len(parts) < 2 {
			if !bytes.HasSuffix(rest, []byte("\n---")) {
				return nil, nil, ErrMalformedFrontMatter
			}
			parts = [][]byte{bytes.TrimSuffix(rest, []byte("\n---")), nil}
		}
		head, body = parts[0], parts[1]
	}

	meta := map[string]any{}
	if err := yaml.Unmarshal(head, &meta); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedFrontMatter, err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return meta, bytes.TrimLeft(body, "\n"), nil
}

func nameFromContent(content string) string {
	if m := headingPattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return UnknownName
}

func roleFromName(name string) string {
	if m := rolePattern.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1])
	}
	return GeneralRole
}

func descriptionFromContent(content string) string {
	for _, para := range strings.Split(content, "\n\n") {
		p := strings.TrimSpace(para)
		if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "-") || strings.HasPrefix(p, "*") {
			continue
		}
		if r := []rune(p); len(r) > maxDescriptionSize {
			p = string(r[:maxDescriptionSize])
		}
		return p
	}
	return NoDescription
}

func firstString(meta map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := meta[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// stringList accepts a YAML sequence or a comma separated string.
func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, item := range strings.Split(t, ",") {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func number(meta map[string]any, keys ...string) (float64, error) {
	for _, k := range keys {
		switch v := meta[k].(type) {
		case nil:
			continue
		case int:
			return float64(v), nil
		case float64:
			return v, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return 0, fmt.Errorf("%w: %s is not a number", ErrMalformedFrontMatter, k)
			}
			return f, nil
		default:
			return 0, fmt.Errorf("%w: %s is not a number", ErrMalformedFrontMatter, k)
		}
	}
	return 0, nil
}
