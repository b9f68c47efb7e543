package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPlatformConfigPathPerOS(t *testing.T) {
	home := filepath.Join("/", "home", "dev")

	tests := []struct {
		platform string
		goos     string
		want     string
	}{
		{PlatformClaudeDesktop, "darwin", "/home/dev/Library/Application Support/Claude/claude_desktop_config.json"},
		{PlatformClaudeDesktop, "linux", "/home/dev/.config/Claude/claude_desktop_config.json"},
		{PlatformClaudeDesktop, "windows", filepath.Join(home, "AppData", "Roaming", "Claude", "claude_desktop_config.json")},
		{PlatformClaudeCode, "linux", "/home/dev/.claude.json"},
		{PlatformClaudeCode, "darwin", "/home/dev/.claude.json"},
		{PlatformVSCode, "linux", "/home/dev/.config/Code/User/settings.json"},
		{PlatformVSCode, "darwin", "/home/dev/Library/Application Support/Code/User/settings.json"},
		{PlatformCursor, "linux", "/home/dev/.cursor/mcp.json"},
		{PlatformGemini, "linux", "/home/dev/.gemini/settings.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.platform+"/"+tt.goos, func(t *testing.T) {
			got := platformConfigPath(tt.platform, tt.goos, home)
			if filepath.ToSlash(got) != filepath.ToSlash(tt.want) {
				t.Errorf("platformConfigPath(%s, %s) = %q, want %q", tt.platform, tt.goos, got, tt.want)
			}
		})
	}
}

func TestPlatformConfigPathUnknown(t *testing.T) {
	if got := platformConfigPath("emacs", "linux", "/home/dev"); got != "" {
		t.Errorf("unknown platform should yield empty path, got %q", got)
	}
	if got := platformConfigPath(PlatformCursor, "linux", ""); got != "" {
		t.Errorf("empty home should yield empty path, got %q", got)
	}
}

func TestValidPlatform(t *testing.T) {
	for _, key := range Platforms() {
		if !ValidPlatform(key) {
			t.Errorf("%q should be valid", key)
		}
	}
	if ValidPlatform("emacs") {
		t.Error("unknown platform reported valid")
	}
}

func TestStateFilesLiveUnderAppDirs(t *testing.T) {
	for name, path := range map[string]string{
		"registry":     RegistryFile(),
		"preferences":  PreferencesFile(),
		"snapshots":    SnapshotDir(),
		"transactions": TransactionsFile(),
	} {
		if !strings.Contains(path, AppName) {
			t.Errorf("%s path %q not namespaced under %q", name, path, AppName)
		}
	}
}

func TestProjectConfigPath(t *testing.T) {
	if got := ProjectConfigPath("/work/app"); filepath.ToSlash(got) != "/work/app/.mcp.json" {
		t.Errorf("ProjectConfigPath = %q", got)
	}
}
