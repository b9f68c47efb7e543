package target

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/paths"
	"github.com/thoreinstein/mcpsync/internal/server"
)

func TestNewCatalogKnowsAllPlatforms(t *testing.T) {
	c := NewCatalog()
	for _, key := range paths.Platforms() {
		if _, err := c.Get(key); err != nil {
			t.Errorf("platform %q not registered: %v", key, err)
		}
	}
}

func TestResolveUnknownTarget(t *testing.T) {
	c := NewCatalog()
	_, err := c.Resolve("not-a-target")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveUnavailableTarget(t *testing.T) {
	c := NewCatalog()
	c.SetPlatformPath(paths.PlatformCursor, filepath.Join(t.TempDir(), "missing", "deeper", "mcp.json"))

	_, err := c.Resolve(paths.PlatformCursor)
	if !errors.Is(err, errors.ErrTargetUnavailable) {
		t.Errorf("expected ErrTargetUnavailable, got %v", err)
	}
}

func TestAvailabilityFollowsDirectory(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "app", "config.json")

	c := NewCatalog()
	c.SetPlatformPath(paths.PlatformClaudeDesktop, configPath)

	tgt, err := c.Get(paths.PlatformClaudeDesktop)
	if err != nil {
		t.Fatal(err)
	}
	if tgt.Available {
		t.Fatal("target should be unavailable before its directory exists")
	}

	// The platform gets installed mid-session.
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatal(err)
	}
	c.Refresh()

	tgt, err = c.Get(paths.PlatformClaudeDesktop)
	if err != nil {
		t.Fatal(err)
	}
	if !tgt.Available {
		t.Error("target should be available after refresh")
	}
}

func TestAddProject(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog()

	tgt, err := c.AddProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	if tgt.Kind != KindProject {
		t.Errorf("kind = %q", tgt.Kind)
	}
	if !tgt.Available {
		t.Error("existing project dir should be available")
	}
	if tgt.ConfigPath != filepath.Join(dir, ".mcp.json") {
		t.Errorf("config path = %q", tgt.ConfigPath)
	}

	// Registering twice is a no-op.
	again, err := c.AddProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	if again.Key != tgt.Key {
		t.Errorf("duplicate registration produced a different key: %q vs %q", again.Key, tgt.Key)
	}
}

func TestProjectStoreWritesRealValues(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog()
	if _, err := c.AddProject(dir); err != nil {
		t.Fatal(err)
	}

	abs, _ := filepath.Abs(dir)
	store, err := c.Resolve(abs)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(&server.Definition{Name: "github", Command: "npx"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".mcp.json")); err != nil {
		t.Errorf("project config not written: %v", err)
	}
}

func TestWindowsFormatWrapsCommands(t *testing.T) {
	c := NewCatalog(WithGOOS("windows"))
	dir := t.TempDir()
	c.SetPlatformPath(paths.PlatformClaudeDesktop, filepath.Join(dir, "claude_desktop_config.json"))

	store, err := c.Resolve(paths.PlatformClaudeDesktop)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(&server.Definition{Name: "github", Command: "npx", Args: []string{"-y"}}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); !strings.Contains(got, `"cmd"`) {
		t.Errorf("expected cmd wrapping on windows:\n%s", got)
	}
}
