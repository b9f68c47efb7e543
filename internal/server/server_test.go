package server

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpsync/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr bool
	}{
		{
			name: "valid stdio",
			def:  Definition{Name: "github", Command: "npx", Args: []string{"-y", "@modelcontextprotocol/server-github"}},
		},
		{
			name: "valid http",
			def:  Definition{Name: "api", Transport: TransportHTTP, URL: "https://api.example.com/mcp"},
		},
		{
			name: "valid container",
			def:  Definition{Name: "sandbox", Transport: TransportContainer, Image: "ghcr.io/example/mcp:latest"},
		},
		{
			name:    "empty name",
			def:     Definition{Command: "npx"},
			wantErr: true,
		},
		{
			name:    "stdio without command",
			def:     Definition{Name: "broken", Transport: TransportStdio},
			wantErr: true,
		},
		{
			name:    "http without url",
			def:     Definition{Name: "broken", Transport: TransportHTTP},
			wantErr: true,
		},
		{
			name:    "container without image",
			def:     Definition{Name: "broken", Transport: TransportContainer},
			wantErr: true,
		},
		{
			name:    "unknown transport",
			def:     Definition{Name: "broken", Transport: "grpc", Command: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, errors.ErrConfigurationInvalid) {
					t.Errorf("expected ErrConfigurationInvalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLaunchEqual(t *testing.T) {
	base := &Definition{Name: "github", Command: "npx", Args: []string{"-y", "server-github"}}

	same := &Definition{Name: "github", Command: "npx", Args: []string{"-y", "server-github"}, Description: "different docs"}
	if !base.LaunchEqual(same) {
		t.Error("descriptions must not affect launch equality")
	}

	diffArgs := &Definition{Name: "github", Command: "npx", Args: []string{"-y", "server-github", "--beta"}}
	if base.LaunchEqual(diffArgs) {
		t.Error("different args should not be launch-equal")
	}

	diffCmd := &Definition{Name: "github", Command: "node", Args: []string{"-y", "server-github"}}
	if base.LaunchEqual(diffCmd) {
		t.Error("different command should not be launch-equal")
	}
}

func TestEntryEqual(t *testing.T) {
	base := &Definition{Name: "db", Command: "mcp-db", Env: map[string]string{"DB_HOST": "a"}}

	same := &Definition{Name: "db", Command: "mcp-db", Env: map[string]string{"DB_HOST": "a"}, Tags: []string{"infra"}}
	if !base.EntryEqual(same) {
		t.Error("tags must not affect entry equality")
	}

	diffEnv := &Definition{Name: "db", Command: "mcp-db", Env: map[string]string{"DB_HOST": "b"}}
	if base.EntryEqual(diffEnv) {
		t.Error("env change must break entry equality")
	}

	diffHeaders := &Definition{Name: "db", Command: "mcp-db", Env: map[string]string{"DB_HOST": "a"}, Headers: map[string]string{"X-Auth": "t"}}
	if base.EntryEqual(diffHeaders) {
		t.Error("header change must break entry equality")
	}
}

func TestUnknownFieldsRoundTrip(t *testing.T) {
	raw := `{"name":"github","command":"npx","customExtension":{"nested":true},"priority":7}`

	var def Definition
	if err := json.Unmarshal([]byte(raw), &def); err != nil {
		t.Fatal(err)
	}
	if def.Command != "npx" {
		t.Fatalf("command = %q", def.Command)
	}

	out, err := json.Marshal(&def)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"customExtension":{"nested":true}`, `"priority":7`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("round trip lost %s: %s", want, out)
		}
	}
}

func TestWithPlaceholders(t *testing.T) {
	def := &Definition{
		Name:    "github",
		Command: "npx",
		Env: map[string]string{
			"GITHUB_TOKEN": "ghp_realsecret",
			"API_KEY":      "${VAULT_API_KEY}",
			"LOG_LEVEL":    "debug",
		},
	}

	masked := def.WithPlaceholders()
	if got := masked.Env["GITHUB_TOKEN"]; got != "YOUR_GITHUB_TOKEN_HERE" {
		t.Errorf("GITHUB_TOKEN = %q", got)
	}
	if got := masked.Env["API_KEY"]; got != "${VAULT_API_KEY}" {
		t.Errorf("secret references must pass through, got %q", got)
	}
	if got := masked.Env["LOG_LEVEL"]; got != "debug" {
		t.Errorf("non-secret value changed: %q", got)
	}
	if def.Env["GITHUB_TOKEN"] != "ghp_realsecret" {
		t.Error("WithPlaceholders mutated the original")
	}
}

func TestUnfilledPlaceholders(t *testing.T) {
	def := &Definition{
		Name:    "github",
		Command: "npx",
		Env: map[string]string{
			"GITHUB_TOKEN": "YOUR_GITHUB_TOKEN_HERE",
			"LOG_LEVEL":    "debug",
		},
	}
	got := def.UnfilledPlaceholders()
	if len(got) != 1 || got[0] != "GITHUB_TOKEN" {
		t.Errorf("UnfilledPlaceholders = %v", got)
	}
}

func TestClaimsAndCollides(t *testing.T) {
	a := &Definition{Name: "a", Command: "serve", Args: []string{"--port", "8080", "--mount", "/data:/srv"}}
	b := &Definition{Name: "b", Command: "serve", Args: []string{"--port=8080"}}
	c := &Definition{Name: "c", Command: "serve", Args: []string{"--port", "9090"}}

	ports, mounts := Collides(a.Claims(), b.Claims())
	if len(ports) != 1 || ports[0] != "8080" {
		t.Errorf("ports = %v", ports)
	}
	if len(mounts) != 0 {
		t.Errorf("mounts = %v", mounts)
	}

	ports, _ = Collides(a.Claims(), c.Claims())
	if len(ports) != 0 {
		t.Errorf("expected no collision, got %v", ports)
	}

	d := &Definition{Name: "d", Command: "serve", Args: []string{"-v", "/data:/other"}}
	_, mounts = Collides(a.Claims(), d.Claims())
	if len(mounts) != 1 || mounts[0] != "/data" {
		t.Errorf("mount collision = %v", mounts)
	}
}

func TestLocallyModifiedMarker(t *testing.T) {
	var def Definition
	if err := json.Unmarshal([]byte(`{"command":"npx","locallyModified":true}`), &def); err != nil {
		t.Fatal(err)
	}
	if !def.LocallyModified() {
		t.Error("marker not detected")
	}

	def.MarkLocallyModified(false)
	if def.LocallyModified() {
		t.Error("marker not cleared")
	}
}
