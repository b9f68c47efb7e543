package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var suggestStats bool

func init() {
	suggestCmd.Flags().BoolVar(&suggestStats, "stats", false,
		"show overall usage statistics instead of per-server suggestions")
	rootCmd.AddCommand(suggestCmd)
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [server]",
	Short: "Suggest deployment targets from past usage",
	Long: `Suggest target sets for a server based on learned deployment
patterns, ranked by how often, how successfully, and how recently each
combination was used.

Examples:
  mcpsync suggest github
  mcpsync suggest --stats`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		learner, err := a.requireLearner()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if suggestStats {
			st := learner.Stats()
			fmt.Fprintf(w, "Deployments recorded: %d\n", st.TotalDeployments)
			fmt.Fprintf(w, "Success rate:         %.0f%%\n", st.SuccessRate*100)
			fmt.Fprintf(w, "Patterns learned:     %d\n", st.PatternsLearned)
			if st.FavoriteTarget != "" {
				fmt.Fprintf(w, "Favorite target:      %s\n", st.FavoriteTarget)
			}
			return nil
		}

		if len(args) == 0 {
			return cmd.Help()
		}
		name := args[0]

		patterns := learner.Suggest(name)
		if len(patterns) == 0 {
			fmt.Fprintf(w, "No learned patterns for %q yet.\n", name)
			return nil
		}

		now := time.Now()
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TARGETS\tUSED\tSUCCESS\tSCORE")
		for _, p := range patterns {
			fmt.Fprintf(tw, "%s\t%d\t%.0f%%\t%.2f\n",
				strings.Join(p.Targets, ","), p.Frequency, p.SuccessRate()*100, p.Score(now))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if set, ok := learner.QuickDeployEligible(name); ok {
			fmt.Fprintf(w, "\nQuick deploy ready: mcpsync deploy %s  (targets %s)\n",
				name, strings.Join(set, ","))
		}
		return nil
	},
}
