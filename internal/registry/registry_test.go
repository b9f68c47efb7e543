package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/server"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "servers.json"))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestOpenMissingFile(t *testing.T) {
	r := testRegistry(t)
	if got := len(r.List()); got != 0 {
		t.Errorf("expected empty registry, got %d servers", got)
	}
}

func TestAddGetRoundTrip(t *testing.T) {
	r := testRegistry(t)

	def := &server.Definition{Name: "github", Command: "npx", Args: []string{"-y", "server-github"}, Tags: []string{"vcs"}}
	if err := r.Add(def); err != nil {
		t.Fatal(err)
	}

	// Re-open from disk.
	r2, err := Open(r.Path())
	if err != nil {
		t.Fatal(err)
	}
	got, err := r2.Get("github")
	if err != nil {
		t.Fatal(err)
	}
	if got.Command != "npx" || len(got.Args) != 2 {
		t.Errorf("round trip mangled definition: %+v", got)
	}
	if got.Name != "github" {
		t.Errorf("name not restored from map key: %q", got.Name)
	}
}

func TestAddDuplicate(t *testing.T) {
	r := testRegistry(t)
	def := &server.Definition{Name: "github", Command: "npx"}
	if err := r.Add(def); err != nil {
		t.Fatal(err)
	}
	err := r.Add(&server.Definition{Name: "github", Command: "other"})
	if !errors.Is(err, errors.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestAddInvalid(t *testing.T) {
	r := testRegistry(t)
	err := r.Add(&server.Definition{Name: "broken"})
	if !errors.Is(err, errors.ErrConfigurationInvalid) {
		t.Errorf("expected ErrConfigurationInvalid, got %v", err)
	}
	if _, statErr := os.Stat(r.Path()); !os.IsNotExist(statErr) {
		t.Error("invalid add must not create the registry file")
	}
}

func TestRemove(t *testing.T) {
	r := testRegistry(t)
	if err := r.Add(&server.Definition{Name: "github", Command: "npx"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove("github"); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove("github"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetDisabled(t *testing.T) {
	r := testRegistry(t)
	if err := r.Add(&server.Definition{Name: "github", Command: "npx"}); err != nil {
		t.Fatal(err)
	}
	if err := r.SetDisabled("github", true); err != nil {
		t.Fatal(err)
	}

	r2, err := Open(r.Path())
	if err != nil {
		t.Fatal(err)
	}
	def, err := r2.Get("github")
	if err != nil {
		t.Fatal(err)
	}
	if !def.Disabled {
		t.Error("disabled flag not persisted")
	}
}

func TestSearch(t *testing.T) {
	r := testRegistry(t)
	servers := []*server.Definition{
		{Name: "github", Command: "npx", Description: "GitHub API access", Tags: []string{"vcs"}},
		{Name: "postgres", Command: "npx", Description: "database queries", Tags: []string{"db", "sql"}},
		{Name: "sqlite", Command: "npx", Tags: []string{"db"}},
	}
	for _, def := range servers {
		if err := r.Add(def); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"git", []string{"github"}},
		{"db", []string{"postgres", "sqlite"}},
		{"DATABASE", []string{"postgres"}},
		{"nomatch", nil},
	}
	for _, tt := range tests {
		got := r.Search(tt.query)
		if len(got) != len(tt.want) {
			t.Errorf("Search(%q) returned %d results, want %d", tt.query, len(got), len(tt.want))
			continue
		}
		for i, def := range got {
			if def.Name != tt.want[i] {
				t.Errorf("Search(%q)[%d] = %q, want %q", tt.query, i, def.Name, tt.want[i])
			}
		}
	}
}

func TestUnknownFieldsSurviveSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servers.json")
	seed := `{
  "servers": {
    "github": {"name": "github", "command": "npx", "vendorExtra": {"pin": 1}}
  },
  "registry": {"version": 1}
}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Add(&server.Definition{Name: "other", Command: "x"}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"vendorExtra"`) {
		t.Errorf("unknown field dropped on save:\n%s", data)
	}
}
