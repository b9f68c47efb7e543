package target

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/thoreinstein/mcpsync/internal/configstore"
	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/paths"
)

// Catalog enumerates known deployment targets and binds each to its
// ConfigStore. It is safe for concurrent use.
//
// Targets are never removed once known; Refresh only flips availability,
// so history referencing a target that disappeared from this machine
// remains inspectable.
type Catalog struct {
	mu      sync.RWMutex
	targets map[string]*entry
	goos    string
}

type entry struct {
	target Target
	store  *configstore.Store
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithGOOS overrides the OS used for path and wrapper selection. For tests.
func WithGOOS(goos string) Option {
	return func(c *Catalog) {
		c.goos = goos
	}
}

// NewCatalog creates a catalog pre-populated with every known platform.
// Platforms whose config path cannot be resolved on this OS are still
// registered, just unavailable.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		targets: make(map[string]*entry),
		goos:    runtime.GOOS,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, key := range paths.Platforms() {
		c.registerPlatform(key, paths.PlatformConfigPath(key))
	}
	c.Refresh()
	return c
}

// registerPlatform adds one platform target with its format.
func (c *Catalog) registerPlatform(key, configPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	format := platformFormat(key, c.goos)
	c.targets[key] = &entry{
		target: Target{
			Key:         key,
			Kind:        KindPlatform,
			ConfigPath:  configPath,
			Description: platformDescription(key),
		},
		store: configstore.New(configPath, format),
	}
}

// SetPlatformPath rebinds a platform target to a different config file.
// Used for config overrides and tests. Unknown keys are registered.
func (c *Catalog) SetPlatformPath(key, configPath string) {
	c.registerPlatform(key, configPath)
	c.Refresh()
}

// AddProject registers a project directory as a deployment target. The
// target key is the cleaned absolute path; the config file is .mcp.json
// inside the directory. Registering an already-known project is a no-op.
func (c *Catalog) AddProject(dir string) (*Target, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(paths.ErrInvalidPath, "project dir %q: %v", dir, err)
	}

	c.mu.Lock()
	if e, ok := c.targets[abs]; ok {
		t := e.target
		c.mu.Unlock()
		return &t, nil
	}

	configPath := paths.ProjectConfigPath(abs)
	t := Target{
		Key:         abs,
		Kind:        KindProject,
		ConfigPath:  configPath,
		Description: "Project: " + abs,
	}
	c.targets[abs] = &entry{
		// Projects keep real env values and never need shell wrapping.
		target: t,
		store:  configstore.New(configPath, configstore.Format{Codec: configstore.JSON, ServersPath: []string{"mcpServers"}}),
	}
	c.mu.Unlock()

	c.Refresh()
	return c.Get(abs)
}

// Get returns the target for key, or ErrNotFound.
func (c *Catalog) Get(key string) (*Target, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.targets[key]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "target %q", key)
	}
	t := e.target
	return &t, nil
}

// Resolve returns the ConfigStore bound to an available target.
// Returns ErrNotFound for unknown keys and ErrTargetUnavailable for known
// targets whose config location does not resolve on this machine.
func (c *Catalog) Resolve(key string) (*configstore.Store, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.targets[key]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "target %q", key)
	}
	if !e.target.Available {
		return nil, errors.Wrapf(errors.ErrTargetUnavailable, "target %q (%s)", key, e.target.ConfigPath)
	}
	return e.store, nil
}

// All returns every known target sorted by key.
func (c *Catalog) All() []Target {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Target, 0, len(c.targets))
	for _, e := range c.targets {
		out = append(out, e.target)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Available returns only the currently available targets, sorted by key.
func (c *Catalog) Available() []Target {
	var out []Target
	for _, t := range c.All() {
		if t.Available {
			out = append(out, t)
		}
	}
	return out
}

// Refresh re-probes every target's config location and updates
// availability. A platform is available when its config directory exists
// (the file itself may not exist yet); a project is available when the
// project directory exists.
func (c *Catalog) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.targets {
		switch e.target.Kind {
		case KindProject:
			e.target.Available = dirExists(e.target.Key)
		default:
			e.target.Available = e.target.ConfigPath != "" && dirExists(filepath.Dir(e.target.ConfigPath))
		}
	}
}

// platformFormat returns each platform's document format. Windows hosts
// get stdio commands wrapped in cmd /c on write.
func platformFormat(key, goos string) configstore.Format {
	var wrapper configstore.CommandWrapper
	if goos == "windows" {
		wrapper = configstore.WindowsCommandWrapper{}
	}

	switch key {
	case paths.PlatformVSCode:
		return configstore.Format{
			Codec:       configstore.JSON,
			ServersPath: []string{"claude", "mcpServers"},
			Wrapper:     wrapper,
		}
	case paths.PlatformGemini:
		return configstore.Format{
			Codec:       configstore.TOML,
			ServersPath: []string{"mcpServers"},
			Wrapper:     wrapper,
		}
	default:
		return configstore.Format{
			Codec:       configstore.JSON,
			ServersPath: []string{"mcpServers"},
			Wrapper:     wrapper,
		}
	}
}

func platformDescription(key string) string {
	switch key {
	case paths.PlatformClaudeDesktop:
		return "Claude Desktop application"
	case paths.PlatformClaudeCode:
		return "Claude Code CLI"
	case paths.PlatformVSCode:
		return "VS Code Claude extension"
	case paths.PlatformCursor:
		return "Cursor editor"
	case paths.PlatformGemini:
		return "Gemini CLI"
	default:
		return key
	}
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
