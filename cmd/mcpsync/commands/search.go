package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	serverCmd.AddCommand(serverSearchCmd)
}

var serverSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search registered servers by name, description, or tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		matches := a.registry.Search(args[0])
		w := cmd.OutOrStdout()
		if len(matches) == 0 {
			fmt.Fprintf(w, "No servers matching %q\n", args[0])
			return nil
		}

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTRANSPORT\tTAGS\tDESCRIPTION")
		for _, def := range matches {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				def.Name,
				def.EffectiveTransport(),
				strings.Join(def.Tags, ","),
				truncate(def.Description, 56))
		}
		return tw.Flush()
	},
}
