package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var serverShowJSON bool

func init() {
	serverShowCmd.Flags().BoolVar(&serverShowJSON, "json", false, "Output in JSON format")
	serverCmd.AddCommand(serverShowCmd)
}

var serverShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one server definition and where it is deployed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		def, err := a.registry.Get(args[0])
		if err != nil {
			return err
		}
		deployed, err := a.engine.DeployedTargets(def.Name)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if serverShowJSON {
			out := struct {
				serverInfoJSON
				DeployedTo []string `json:"deployed_to,omitempty"`
			}{
				serverInfoJSON{
					Name:        def.Name,
					Transport:   def.EffectiveTransport(),
					Command:     def.Command,
					URL:         def.URL,
					Image:       def.Image,
					Disabled:    def.Disabled,
					Tags:        def.Tags,
					Description: def.Description,
					Env:         maskSecrets(def.Env, false),
				},
				deployed,
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Fprintf(w, "Name:        %s\n", def.Name)
		fmt.Fprintf(w, "Transport:   %s\n", def.EffectiveTransport())
		fmt.Fprintf(w, "Launch:      %s\n", launchSummary(def))
		if def.Description != "" {
			fmt.Fprintf(w, "Description: %s\n", def.Description)
		}
		if len(def.Tags) > 0 {
			fmt.Fprintf(w, "Tags:        %s\n", strings.Join(def.Tags, ", "))
		}
		if def.Disabled {
			fmt.Fprintln(w, "State:       disabled")
		}
		if len(def.Env) > 0 {
			fmt.Fprintln(w, "Env:")
			masked := maskSecrets(def.Env, false)
			keys := make([]string, 0, len(masked))
			for k := range masked {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "  %s=%s\n", k, masked[k])
			}
		}
		if len(deployed) > 0 {
			fmt.Fprintf(w, "Deployed to: %s\n", strings.Join(deployed, ", "))
		} else {
			fmt.Fprintln(w, "Deployed to: (nowhere)")
		}
		return nil
	},
}
