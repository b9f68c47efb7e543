package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsync/internal/errors"
)

var undeployAll bool

func init() {
	undeployCmd.Flags().BoolVar(&undeployAll, "all", false,
		"remove from every target currently holding the server")
	rootCmd.AddCommand(undeployCmd)
}

var undeployCmd = &cobra.Command{
	Use:   "undeploy <server>...",
	Short: "Remove deployed servers from targets",
	Long: `Remove server entries from target config files.

Like deploy, all removals for one run ride a single transaction and
each touched file is snapshotted first. The registry definition is
kept; use 'mcpsync server remove' to delete it.

Examples:
  mcpsync undeploy github -t claude-desktop
  mcpsync undeploy github --all`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUndeploy,
}

func runUndeploy(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	targets := resolveTargets()
	if undeployAll {
		set := map[string]bool{}
		for _, name := range args {
			deployed, err := a.engine.DeployedTargets(name)
			if err != nil {
				return err
			}
			for _, key := range deployed {
				set[key] = true
			}
		}
		targets = targets[:0]
		for key := range set {
			targets = append(targets, key)
		}
		if len(targets) == 0 {
			cmd.Println("Nothing deployed; nothing to do.")
			return nil
		}
	}
	if len(targets) == 0 {
		return errors.NewUserError(errors.New("no targets selected"),
			"pass --target or use --all")
	}

	batch, err := a.engine.Undeploy(cmd.Context(), args, targets, deployOptions())
	if err != nil {
		return err
	}
	return printBatch(cmd.OutOrStdout(), batch)
}
