// Package commands implements the CLI commands for mcpsync.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsync/internal/config"
	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/logging"
)

// version is set at build time via ldflags.
// Default to a development version for local builds.
const version = "0.1.0"

// targetFlag holds the value of the --target flag.
var targetFlag []string

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// forceFlag holds the value of the -f/--force flag.
var forceFlag bool

// cfg is the loaded configuration; configLoadErr holds any load error.
var (
	cfg           *config.Config
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringSliceVarP(&targetFlag, "target", "t", nil,
		`deployment target(s): a platform key or a project path (default: configured targets)`)
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&forceFlag, "force", "f", false,
		"proceed past critical conflicts and deployment guards")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("mcpsync version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load("")
}

var rootCmd = &cobra.Command{
	Use:   "mcpsync",
	Short: "Synchronize MCP server configurations across platforms",
	Long: `mcpsync keeps MCP server configurations in sync across every tool
that consumes them: Claude Desktop, Claude Code, VS Code, Cursor,
Gemini CLI, and per-project config files.

Server definitions live in a single registry. Deploying writes them
into each target's native config file; every change is snapshotted
first and applied transactionally, so a failed deploy never leaves
targets half-updated and any deploy can be rolled back.`,
	Example: `  # Register a server
  mcpsync server add github npx -y @modelcontextprotocol/server-github

  # Deploy it to Claude Desktop and Claude Code
  mcpsync deploy github -t claude-desktop -t claude-code

  # See what is deployed where
  mcpsync status

  # Undo the last deploy
  mcpsync rollback`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if configLoadErr != nil {
			return errors.NewUserError(configLoadErr, "check your config file syntax")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("MCPSYNC_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	slog.SetDefault(slog.New(handler))

	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	return nil
}

// resolveTargets returns the targets a command should act on: the
// --target flag when given, the configured default targets otherwise.
func resolveTargets() []string {
	if len(targetFlag) > 0 {
		return targetFlag
	}
	if cfg != nil && len(cfg.DefaultTargets) > 0 {
		return cfg.DefaultTargets
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
