package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsync/internal/engine"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the deployment matrix",
	Long: `Show every registered server against every known target.

States are computed fresh from the target files on each run:

  in-sync       target entry matches the registry definition
  drifted       target entry launches differently than the registry
  not-deployed  target has no entry for the server
  unavailable   target cannot be read on this machine

Entries found in a target but missing from the registry are listed as
untracked.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		records, err := a.engine.Status()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(w, "No servers registered and no target entries found.")
			return nil
		}

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SERVER\tTARGET\tSTATE")
		for _, rec := range records {
			state := string(rec.State)
			switch rec.State {
			case engine.StateInSync:
				state = statusOK.Sprint(state)
			case engine.StateDrifted:
				state = statusWarn.Sprint(state)
			case engine.StateUnavailable:
				state = dim.Sprint(state)
			}
			name := rec.Server
			if rec.Untracked {
				name += dim.Sprint(" (untracked)")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, rec.Target, state)
		}
		return tw.Flush()
	},
}
