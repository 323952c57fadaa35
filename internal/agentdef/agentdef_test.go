package agentdef

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestParseFrontMatter(t *testing.T) {
	src := "---\nname: Code Reviewer\nrole: Reviewer\ndescription: Reads every diff twice.\ntools:\n  - Read\n  - Grep\nbase_cost: 150\ncolor: blue\n---\n\n# Code Reviewer\n\nBody text.\n"
	def, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if def.Name != "Code Reviewer" || def.Role != "Reviewer" || def.Description != "Reads every diff twice." {
		t.Fatalf("unexpected identity: %+v", def)
	}
	if !slices.Equal(def.Tools, []string{"Read", "Grep"}) {
		t.Fatalf("tools = %v", def.Tools)
	}
	if def.BaseCost != 150 {
		t.Fatalf("base cost = %v", def.BaseCost)
	}
	if def.Metadata["color"] != "blue" {
		t.Fatalf("front matter not kept as metadata: %v", def.Metadata)
	}
	if !strings.HasPrefix(def.Content, "# Code Reviewer") {
		t.Fatalf("content = %q", def.Content)
	}
}

func TestParseFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantName string
		wantRole string
		wantDesc string
	}{
		{
			name:     "heading with role",
			src:      "# Ada (Backend Engineer)\n\n- bullet\n\nShips APIs.\n",
			wantName: "Ada (Backend Engineer)",
			wantRole: "Backend Engineer",
			wantDesc: "Ships APIs.",
		},
		{
			name:     "heading without role",
			src:      "# Ada\n\n* star\n\n## Sub\n",
			wantName: "Ada",
			wantRole: GeneralRole,
			wantDesc: NoDescription,
		},
		{
			name:     "no heading",
			src:      "Just a paragraph.",
			wantName: UnknownName,
			wantRole: GeneralRole,
			wantDesc: "Just a paragraph.",
		},
		{
			name:     "comma separated tools do not affect identity",
			src:      "---\ntools: Read, Write\n---\n# Tess (QA)\n",
			wantName: "Tess (QA)",
			wantRole: "QA",
			wantDesc: NoDescription,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := Parse([]byte(tt.src))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if def.Name != tt.wantName || def.Role != tt.wantRole || def.Description != tt.wantDesc {
				t.Fatalf("got (%q, %q, %q), want (%q, %q, %q)",
					def.Name, def.Role, def.Description, tt.wantName, tt.wantRole, tt.wantDesc)
			}
		})
	}
}

func TestParseCommaTools(t *testing.T) {
	def, err := Parse([]byte("---\ntools: Read, Write ,\n---\nbody"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !slices.Equal(def.Tools, []string{"Read", "Write"}) {
		t.Fatalf("tools = %v", def.Tools)
	}
}

func TestParseDescriptionTruncated(t *testing.T) {
	long := strings.Repeat("a", 600)
	def, err := Parse([]byte("# X\n\n" + long))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(def.Description) != maxDescriptionSize {
		t.Fatalf("description length = %d", len(def.Description))
	}
}

func TestParseMalformed(t *testing.T) {
	for _, src := range []string{
		"---\nname: [unclosed\n---\nbody",
		"---\nname: x\nbody without fence",
		"---\nbase_cost: cheap\n---\n",
	} {
		if _, err := Parse([]byte(src)); !errors.Is(err, ErrMalformedFrontMatter) {
			t.Fatalf("Parse(%q) err = %v, want ErrMalformedFrontMatter", src, err)
		}
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.md", "# Bea (Designer)\n")
	write("nested/a.md", "---\nname: Al\nrole: Ops\n---\n")
	write("notes.txt", "# ignored\n")

	defs, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("loaded %d definitions, want 2", len(defs))
	}
	if defs[0].Name != "Bea (Designer)" || defs[1].Name != "Al" {
		t.Fatalf("unexpected order: %q, %q", defs[0].Name, defs[1].Name)
	}
	if !strings.HasPrefix(defs[1].SourceURL, "file://") {
		t.Fatalf("source url = %q", defs[1].SourceURL)
	}

	single, err := Load(filepath.Join(dir, "b.md"))
	if err != nil || len(single) != 1 {
		t.Fatalf("Load file: %v (%d)", err, len(single))
	}
}
