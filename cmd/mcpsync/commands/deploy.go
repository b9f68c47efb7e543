package commands

import (
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsync/internal/engine"
	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/target"
)

var (
	deployInteractive bool
	deployAsync       bool
)

func init() {
	deployCmd.Flags().BoolVarP(&deployInteractive, "interactive", "i", false,
		"pick targets with a fuzzy finder")
	deployCmd.Flags().BoolVar(&deployAsync, "async", false,
		"run the deploy on a background goroutine and wait for the result")
	rootCmd.AddCommand(deployCmd)
}

var deployCmd = &cobra.Command{
	Use:   "deploy <server>...",
	Short: "Deploy registered servers to targets",
	Long: `Deploy registered server definitions to target config files.

Targets come from the --target flag, or from the configured default
targets. All writes for one deploy ride a single transaction: either
every server lands on every target, or nothing changes. Each touched
config file is snapshotted first, so the deploy can be rolled back.

Conflicts are checked before writing. Critical conflicts (invalid
definitions, resource collisions, locally modified entries) block the
whole deploy unless --force is given.

Examples:
  mcpsync deploy github
  mcpsync deploy github postgres -t claude-desktop -t claude-code
  mcpsync deploy github --interactive
  mcpsync deploy github --force`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDeploy,
}

func runDeploy(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	targets := resolveTargets()
	if deployInteractive {
		targets, err = pickTargets(a.catalog)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}
	}
	if len(targets) == 0 {
		// One keystroke saved: a well-learned pattern picks its own targets.
		if a.learner != nil && len(args) == 1 {
			if set, ok := a.learner.QuickDeployEligible(args[0]); ok {
				targets = set
				fmt.Fprintf(cmd.OutOrStdout(), "Using learned targets: %v\n", targets)
			}
		}
	}
	if len(targets) == 0 {
		return errors.NewUserError(errors.New("no targets selected"),
			"pass --target, configure default_targets, or use --interactive")
	}

	var batch *engine.BatchResult
	if deployAsync {
		res := <-a.engine.DeployAsync(cmd.Context(), args, targets, deployOptions())
		batch, err = res.Batch, res.Err
	} else {
		batch, err = a.engine.Deploy(cmd.Context(), args, targets, deployOptions())
	}
	if err != nil {
		return err
	}
	return printBatch(cmd.OutOrStdout(), batch)
}

// pickTargets offers the available targets in a fuzzy finder.
func pickTargets(catalog *target.Catalog) ([]string, error) {
	available := catalog.Available()
	if len(available) == 0 {
		return nil, errors.NewUserError(errors.New("no targets available on this machine"),
			"install a supported platform or add a project with 'mcpsync target add-project'")
	}

	idxs, err := fuzzyfinder.FindMulti(
		available,
		func(i int) string {
			return fmt.Sprintf("%s (%s)", available[i].Key, available[i].Description)
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			t := available[i]
			return fmt.Sprintf("Target: %s\nKind: %s\nConfig: %s", t.Key, t.Kind, t.ConfigPath)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "interactive target selection failed")
	}

	keys := make([]string, len(idxs))
	for i, idx := range idxs {
		keys[i] = available[idx].Key
	}
	return keys, nil
}
