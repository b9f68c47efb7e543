package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rollbackList bool

func init() {
	rollbackCmd.Flags().BoolVar(&rollbackList, "list", false,
		"list recent transactions instead of rolling back")
	rootCmd.AddCommand(rollbackCmd)
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback [transaction-id]",
	Short: "Undo a committed deploy or undeploy",
	Long: `Restore every target touched by a transaction to its state before
that transaction committed. Without an id, the most recent committed
transaction is rolled back.

Examples:
  mcpsync rollback
  mcpsync rollback 20260830T141502-a1b2c3d4
  mcpsync rollback --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()

		if rollbackList {
			history := a.engine.History()
			if len(history) == 0 {
				fmt.Fprintln(w, "No transactions recorded.")
				return nil
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TRANSACTION\tSTATE\tWHEN\tTARGETS")
			for _, rec := range history {
				keys := make([]string, len(rec.Targets))
				for i, tr := range rec.Targets {
					keys[i] = tr.Key
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					rec.ID, rec.State, rec.CreatedAt.Format("2006-01-02 15:04:05"),
					strings.Join(keys, ","))
			}
			return tw.Flush()
		}

		var id string
		if len(args) == 1 {
			id = args[0]
		}
		rec, err := a.engine.Rollback(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Rolled back transaction %s (%d target(s) restored)\n",
			rec.ID, len(rec.Targets))
		return nil
	},
}
