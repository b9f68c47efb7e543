package configstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpsync/internal/server"
)

func jsonStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	return New(path, Format{Codec: JSON, ServersPath: []string{"mcpServers"}})
}

func TestHashAbsent(t *testing.T) {
	s := jsonStore(t)
	hash, err := s.Hash()
	if err != nil {
		t.Fatal(err)
	}
	if hash != HashAbsent {
		t.Errorf("hash of missing file = %q, want %q", hash, HashAbsent)
	}
}

func TestUpsertAndServers(t *testing.T) {
	s := jsonStore(t)

	def := &server.Definition{Name: "github", Command: "npx", Args: []string{"-y", "server-github"}}
	if err := s.Upsert(def); err != nil {
		t.Fatal(err)
	}

	servers, err := s.Servers()
	if err != nil {
		t.Fatal(err)
	}
	got, ok := servers["github"]
	if !ok {
		t.Fatalf("entry missing, have %v", servers)
	}
	if got.Command != "npx" || len(got.Args) != 2 {
		t.Errorf("entry mangled: %+v", got)
	}
}

func TestUpsertPreservesSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "claude_desktop_config.json")
	seed := `{
  "globalShortcut": "Cmd+Shift+A",
  "mcpServers": {
    "existing": {"command": "uvx", "args": ["existing-server"], "vendorHint": 3}
  }
}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(path, Format{Codec: JSON, ServersPath: []string{"mcpServers"}})
	if err := s.Upsert(&server.Definition{Name: "github", Command: "npx"}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"globalShortcut"`, `"existing"`, `"vendorHint"`, `"github"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("write lost %s:\n%s", want, data)
		}
	}
}

func TestDeployUndeployRestoresBytes(t *testing.T) {
	s := jsonStore(t)

	// Establish a file written by the store itself.
	if err := s.Upsert(&server.Definition{Name: "base", Command: "uvx"}); err != nil {
		t.Fatal(err)
	}
	before, err := s.Hash()
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Upsert(&server.Definition{Name: "github", Command: "npx"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("github"); err != nil {
		t.Fatal(err)
	}

	after, err := s.Hash()
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Errorf("hash changed across add+remove: %s vs %s", before, after)
	}
}

func TestRemoveAbsentEntry(t *testing.T) {
	s := jsonStore(t)
	if err := s.Remove("ghost"); err != nil {
		t.Fatalf("removing from a missing file should be a no-op: %v", err)
	}
	if s.Exists() {
		t.Error("no-op remove must not create the file")
	}
}

func TestRegistryOnlyFieldsStripped(t *testing.T) {
	s := jsonStore(t)
	def := &server.Definition{
		Name:        "github",
		Command:     "npx",
		Tags:        []string{"vcs"},
		Description: "GitHub access",
	}
	if err := s.Upsert(def); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	entry := doc["mcpServers"].(map[string]any)["github"].(map[string]any)
	for _, key := range []string{"name", "tags", "description"} {
		if _, ok := entry[key]; ok {
			t.Errorf("registry-only field %q leaked into target entry", key)
		}
	}
}

func TestTransportTypeKey(t *testing.T) {
	s := jsonStore(t)
	if err := s.Upsert(&server.Definition{Name: "api", Transport: server.TransportSSE, URL: "https://x.example/mcp"}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"type": "sse"`) {
		t.Errorf("remote entries should carry a type key:\n%s", data)
	}

	servers, err := s.Servers()
	if err != nil {
		t.Fatal(err)
	}
	if got := servers["api"].EffectiveTransport(); got != server.TransportSSE {
		t.Errorf("transport = %q after round trip", got)
	}
}

func TestWindowsCommandWrapper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := New(path, Format{
		Codec:       JSON,
		ServersPath: []string{"mcpServers"},
		Wrapper:     WindowsCommandWrapper{},
	})

	if err := s.Upsert(&server.Definition{Name: "github", Command: "npx", Args: []string{"-y", "server-github"}}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"cmd"`) || !strings.Contains(string(data), `"/c"`) {
		t.Errorf("expected cmd /c wrapping on disk:\n%s", data)
	}

	// Reading unwraps, so comparisons against the registry stay clean.
	servers, err := s.Servers()
	if err != nil {
		t.Fatal(err)
	}
	got := servers["github"]
	if got.Command != "npx" {
		t.Errorf("unwrapped command = %q", got.Command)
	}
	if len(got.Args) != 2 || got.Args[0] != "-y" {
		t.Errorf("unwrapped args = %v", got.Args)
	}
}

func TestTOMLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	s := New(path, Format{Codec: TOML, ServersPath: []string{"mcpServers"}})

	if err := s.Upsert(&server.Definition{Name: "github", Command: "npx", Args: []string{"-y"}}); err != nil {
		t.Fatal(err)
	}

	servers, err := s.Servers()
	if err != nil {
		t.Fatal(err)
	}
	if servers["github"].Command != "npx" {
		t.Errorf("TOML round trip mangled entry: %+v", servers["github"])
	}
}
