package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupPruneCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Inspect and restore config snapshots",
	Long: `Inspect and restore the snapshots taken before every config write.

Snapshots are per target file and retained up to the configured count;
the newest snapshot of a target is always kept.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list [target]",
	Short: "List snapshots, optionally for one target",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		var keys []string
		if len(args) == 1 {
			keys = args
		} else {
			keys, err = a.backups.Targets()
			if err != nil {
				return err
			}
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SNAPSHOT\tTARGET\tTAKEN\tNOTE")
		total := 0
		for _, key := range keys {
			snaps, err := a.backups.List(key)
			if err != nil {
				return err
			}
			for _, snap := range snaps {
				note := ""
				if snap.Absent {
					note = "file did not exist"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					snap.ID, snap.TargetKey, snap.CreatedAt.Format("2006-01-02 15:04:05"), note)
				total++
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if total == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No snapshots.")
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <snapshot-id>",
	Short: "Restore one target file from a snapshot",
	Long: `Restore a single target config file to the state captured in the
given snapshot. To undo a whole deploy across several targets, use
'mcpsync rollback' instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		snap, err := a.backups.Get(args[0])
		if err != nil {
			return err
		}
		if err := a.backups.Restore(snap.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from snapshot %s\n", snap.OriginalPath, snap.ID)
		return nil
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune [target]",
	Short: "Prune old snapshots past the retention count",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		var keys []string
		if len(args) == 1 {
			keys = args
		} else {
			keys, err = a.backups.Targets()
			if err != nil {
				return err
			}
		}

		for _, key := range keys {
			if err := a.backups.Prune(key); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned snapshots for %d target(s)\n", len(keys))
		return nil
	},
}
