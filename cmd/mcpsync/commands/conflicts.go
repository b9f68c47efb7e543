package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsync/internal/conflict"
	"github.com/thoreinstein/mcpsync/internal/errors"
)

func init() {
	rootCmd.AddCommand(conflictsCmd)
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts <server>...",
	Short: "Check a proposed deployment for conflicts without writing",
	Long: `Run conflict detection for the given servers against the selected
targets, exactly as 'mcpsync deploy' would, but write nothing.

Examples:
  mcpsync conflicts github -t claude-desktop
  mcpsync conflicts github postgres -t claude-desktop -t claude-code`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		targets := resolveTargets()
		if len(targets) == 0 {
			return errors.NewUserError(errors.New("no targets selected"),
				"pass --target or configure default_targets")
		}

		conflicts, err := a.engine.GetConflicts(args, targets)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(conflicts) == 0 {
			statusOK.Fprintln(w, "No conflicts.")
			return nil
		}

		for _, c := range conflicts {
			marker := statusWarn
			if c.Severity == conflict.SeverityCritical {
				marker = statusBad
			}
			fmt.Fprintf(w, "%s %s\n", marker.Sprintf("[%s]", c.Severity), c)
		}
		if conflict.HasCritical(conflicts) {
			return errors.Wrap(errors.ErrConflictCritical, "deployment would be blocked")
		}
		return nil
	},
}
