package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsync/internal/errors"
)

func init() {
	serverCmd.AddCommand(serverRemoveCmd)
	serverCmd.AddCommand(serverEnableCmd)
	serverCmd.AddCommand(serverDisableCmd)
}

var serverRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a server definition from the registry",
	Long: `Remove a server definition from the registry.

A server that is still deployed somewhere is protected: the removal
fails unless --force is given, in which case it is undeployed from
every target first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if err := a.engine.RemoveServer(cmd.Context(), args[0], forceFlag); err != nil {
			if errors.Is(err, errors.ErrServerDeployed) {
				return errors.NewUserError(err, "undeploy it first, or pass --force to undeploy and remove")
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

var serverEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a disabled server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setServerDisabled(cmd, args[0], false)
	},
}

var serverDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a server without removing it",
	Long: `Disable a server without removing its definition.

Disabled servers are skipped by deploys; existing target entries are
left untouched until undeployed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setServerDisabled(cmd, args[0], true)
	},
}

func setServerDisabled(cmd *cobra.Command, name string, disabled bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.registry.SetDisabled(name, disabled); err != nil {
		return err
	}
	verb := "Enabled"
	if disabled {
		verb = "Disabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, name)
	return nil
}
