package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serverCmd)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage registered MCP server definitions",
	Long: `Manage the registry of MCP server definitions.

The registry is the source of truth for deployments: 'mcpsync deploy'
writes registered definitions into each target's config file, and
'mcpsync status' compares targets against the registry.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}
