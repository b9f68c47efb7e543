package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/mcpsync/internal/errors"
)

// Platform identifiers for known deployment targets.
const (
	PlatformClaudeDesktop = "claude-desktop"
	PlatformClaudeCode    = "claude-code"
	PlatformVSCode        = "vscode"
	PlatformCursor        = "cursor"
	PlatformGemini        = "gemini"
)

// AppName is used for mcpsync's own config, data, and cache directories.
const AppName = "mcpsync"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// Platforms returns all known platform keys in deterministic order.
func Platforms() []string {
	return []string{
		PlatformClaudeDesktop,
		PlatformClaudeCode,
		PlatformVSCode,
		PlatformCursor,
		PlatformGemini,
	}
}

// ValidPlatform reports whether name is a known platform key.
func ValidPlatform(name string) bool {
	for _, p := range Platforms() {
		if p == name {
			return true
		}
	}
	return false
}

// PlatformConfigPath returns the target config file path for a platform on
// the current OS. Returns an empty string for unknown platforms.
func PlatformConfigPath(platform string) string {
	return platformConfigPath(platform, runtime.GOOS, Home())
}

// platformConfigPath is the OS-parameterized implementation, split out for tests.
func platformConfigPath(platform, goos, home string) string {
	if home == "" {
		return ""
	}

	switch platform {
	case PlatformClaudeDesktop:
		switch goos {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "Claude", "claude_desktop_config.json")
		default:
			return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
		}
	case PlatformClaudeCode:
		return filepath.Join(home, ".claude.json")
	case PlatformVSCode:
		switch goos {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "Code", "User", "settings.json")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "Code", "User", "settings.json")
		default:
			return filepath.Join(home, ".config", "Code", "User", "settings.json")
		}
	case PlatformCursor:
		return filepath.Join(home, ".cursor", "mcp.json")
	case PlatformGemini:
		return filepath.Join(home, ".gemini", "settings.toml")
	default:
		return ""
	}
}

// ProjectConfigPath returns the per-project target config file inside dir.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, ".mcp.json")
}

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory, or an empty string on error.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
func DataHome() string {
	return xdg.DataHome
}

// ConfigDir returns mcpsync's own configuration directory.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// DataDir returns mcpsync's own data directory.
func DataDir() string {
	return filepath.Join(DataHome(), AppName)
}

// RegistryFile returns the default path of the central server registry.
func RegistryFile() string {
	return filepath.Join(ConfigDir(), "servers.json")
}

// PreferencesFile returns the default path of the learning/preferences store.
func PreferencesFile() string {
	return filepath.Join(ConfigDir(), "preferences.json")
}

// SnapshotDir returns the root directory for target snapshots.
func SnapshotDir() string {
	return filepath.Join(DataDir(), "snapshots")
}

// TransactionsFile returns the path of the persisted transaction journal.
func TransactionsFile() string {
	return filepath.Join(DataDir(), "transactions.json")
}
