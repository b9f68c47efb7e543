package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpsync/internal/engine"
	"github.com/thoreinstein/mcpsync/internal/server"
)

func TestServerAddCommand_Metadata(t *testing.T) {
	assert.Equal(t, "add <name> [command] [args...]", serverAddCmd.Use)
	assert.NotEmpty(t, serverAddCmd.Short)

	for _, flag := range []string{"url", "image", "env", "transport", "headers", "tag", "description"} {
		assert.NotNil(t, serverAddCmd.Flags().Lookup(flag), "--%s flag should be defined", flag)
	}
}

func TestDeployCommand_Metadata(t *testing.T) {
	assert.Equal(t, "deploy <server>...", deployCmd.Use)
	assert.NotNil(t, deployCmd.Flags().Lookup("interactive"))

	// Shared flags live on the root so every subcommand inherits them.
	for _, flag := range []string{"target", "force", "verbose", "quiet", "log-format", "log-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "--%s flag should be defined", flag)
	}
}

func TestLaunchSummary(t *testing.T) {
	tests := []struct {
		name string
		def  *server.Definition
		want string
	}{
		{
			name: "stdio joins command and args",
			def:  &server.Definition{Command: "npx", Args: []string{"-y", "server-github"}},
			want: "npx -y server-github",
		},
		{
			name: "stdio without args has no trailing space",
			def:  &server.Definition{Command: "mcp-fs"},
			want: "mcp-fs",
		},
		{
			name: "remote shows URL",
			def:  &server.Definition{Transport: server.TransportSSE, URL: "https://api.example.com/mcp"},
			want: "https://api.example.com/mcp",
		},
		{
			name: "container shows image",
			def:  &server.Definition{Transport: server.TransportContainer, Image: "ghcr.io/example/mcp:latest"},
			want: "ghcr.io/example/mcp:latest",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, launchSummary(tt.def))
		})
	}
}

func TestPrintBatch(t *testing.T) {
	batch := &engine.BatchResult{
		TxID: "tx-123",
		Results: []engine.Result{
			{Server: "github", Target: "claude-code", Status: engine.StatusDeployed},
			{Server: "github", Target: "cursor", Status: engine.StatusSkipped, Reason: "already in sync"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printBatch(&buf, batch))

	out := buf.String()
	assert.Contains(t, out, "github -> claude-code")
	assert.Contains(t, out, "already in sync")
	assert.Contains(t, out, "rollback tx-123")
}

func TestPrintBatch_FailureReturnsError(t *testing.T) {
	batch := &engine.BatchResult{
		Results: []engine.Result{
			{Server: "github", Target: "claude-code", Status: engine.StatusDeployed},
			{Server: "github", Target: "cursor", Status: engine.StatusFailed, Err: assert.AnError},
		},
	}

	var buf bytes.Buffer
	err := printBatch(&buf, batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 operations failed")
}
