package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/server"
)

// Package-level flag variables for server add command.
var (
	serverAddURL         string
	serverAddImage       string
	serverAddEnv         []string
	serverAddTransport   string
	serverAddHeaders     []string
	serverAddTags        []string
	serverAddDescription string
)

func init() {
	serverAddCmd.Flags().StringVar(&serverAddURL, "url", "",
		"remote server endpoint for http/sse transport")
	serverAddCmd.Flags().StringVar(&serverAddImage, "image", "",
		"container image for container transport")
	serverAddCmd.Flags().StringSliceVar(&serverAddEnv, "env", nil,
		"environment variables in KEY=VALUE format (repeatable)")
	serverAddCmd.Flags().StringVar(&serverAddTransport, "transport", "",
		"explicit transport type: stdio, http, sse, container")
	serverAddCmd.Flags().StringSliceVar(&serverAddHeaders, "headers", nil,
		"HTTP headers for remote auth in KEY=VALUE format (repeatable)")
	serverAddCmd.Flags().StringSliceVar(&serverAddTags, "tag", nil,
		"classification tag (repeatable)")
	serverAddCmd.Flags().StringVar(&serverAddDescription, "description", "",
		"free-form description shown in listings")
	serverCmd.AddCommand(serverAddCmd)
}

var serverAddCmd = &cobra.Command{
	Use:   "add <name> [command] [args...]",
	Short: "Register an MCP server definition",
	Long: `Register an MCP server definition in the registry.

For local stdio servers, provide a command and optional arguments:
  mcpsync server add github npx -y @modelcontextprotocol/server-github

For remote servers, use the --url flag:
  mcpsync server add api-gateway --url=https://api.example.com/mcp

For container servers, use the --image flag:
  mcpsync server add sandbox --image ghcr.io/example/mcp-sandbox:latest

Environment variables can be set with --env (repeatable):
  mcpsync server add github npx -y @modelcontextprotocol/server-github \
    --env GITHUB_TOKEN=ghp_xxx

Registering does not deploy; run 'mcpsync deploy <name>' afterwards.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServerAdd,
}

func runServerAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	var command string
	var cmdArgs []string
	if len(args) > 1 {
		command = args[1]
		cmdArgs = args[2:]
	}

	sources := 0
	for _, set := range []bool{command != "", serverAddURL != "", serverAddImage != ""} {
		if set {
			sources++
		}
	}
	if sources == 0 {
		return errors.NewUserError(errors.New("a command, --url, or --image is required"), "")
	}
	if sources > 1 {
		return errors.NewUserError(errors.New("command, --url, and --image are mutually exclusive"), "")
	}

	envMap, err := parseKeyValueSlice(serverAddEnv, "--env")
	if err != nil {
		return err
	}
	headersMap, err := parseKeyValueSlice(serverAddHeaders, "--headers")
	if err != nil {
		return err
	}

	transport := serverAddTransport
	if transport == "" {
		switch {
		case serverAddURL != "":
			transport = server.TransportHTTP
		case serverAddImage != "":
			transport = server.TransportContainer
		default:
			transport = server.TransportStdio
		}
	}

	def := &server.Definition{
		Name:        name,
		Transport:   transport,
		Command:     command,
		Args:        cmdArgs,
		URL:         serverAddURL,
		Image:       serverAddImage,
		Env:         envMap,
		Headers:     headersMap,
		Tags:        serverAddTags,
		Description: serverAddDescription,
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.registry.Add(def); err != nil {
		if errors.Is(err, errors.ErrDuplicateName) {
			return errors.NewUserError(err, "use a different name or remove the existing server first")
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", name, def.EffectiveTransport())
	return nil
}
