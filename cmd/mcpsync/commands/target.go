package commands

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsync/internal/config"
)

func init() {
	targetCmd.AddCommand(targetListCmd)
	targetCmd.AddCommand(targetRefreshCmd)
	targetCmd.AddCommand(targetAddProjectCmd)
	rootCmd.AddCommand(targetCmd)
}

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Inspect and manage deployment targets",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var targetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known targets and their availability",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TARGET\tKIND\tAVAILABLE\tCONFIG")
		for _, t := range a.catalog.All() {
			avail := statusBad.Sprint("no")
			if t.Available {
				avail = statusOK.Sprint("yes")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Key, t.Kind, avail, t.ConfigPath)
		}
		return tw.Flush()
	},
}

var targetRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-probe target availability",
	Long: `Re-probe every known target's config location and report which are
available. Useful after installing a platform mid-session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		a.catalog.Refresh()

		available := a.catalog.Available()
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d targets available\n",
			len(available), len(a.catalog.All()))
		return nil
	},
}

var targetAddProjectCmd = &cobra.Command{
	Use:   "add-project <dir>",
	Short: "Register a project directory as a deployment target",
	Long: `Register a project directory as a deployment target.

The project's servers live in .mcp.json inside the directory. Unlike
platform targets, project configs keep real secret values, since they
stay inside the project. The directory is recorded under project_dirs
in config.yaml so the target survives across invocations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		t, err := a.catalog.AddProject(args[0])
		if err != nil {
			return err
		}
		if cfg != nil && !slices.Contains(cfg.ProjectDirs, t.Key) {
			cfg.ProjectDirs = append(cfg.ProjectDirs, t.Key)
			if err := config.Save(cfg); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered project target %s (%s)\n", t.Key, t.ConfigPath)
		if !t.Available {
			statusWarn.Fprintln(cmd.OutOrStdout(), "Directory does not exist yet; the target is unavailable until it does.")
		}
		return nil
	},
}
