package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverListJSON        bool
	serverListTag         string
	serverListShowSecrets bool
)

func init() {
	serverListCmd.Flags().BoolVar(&serverListJSON, "json", false, "Output in JSON format")
	serverListCmd.Flags().StringVar(&serverListTag, "tag", "", "Only servers carrying this tag")
	serverListCmd.Flags().BoolVar(&serverListShowSecrets, "show-secrets", false, "Reveal masked secrets in env values")
	serverCmd.AddCommand(serverListCmd)
}

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered MCP servers",
	Long: `List every server definition in the registry.

Environment variables whose key contains KEY, TOKEN, SECRET, or PASSWORD
are masked by default. Use --show-secrets to reveal them.

Examples:
  mcpsync server list
  mcpsync server list --tag database
  mcpsync server list --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServerList(cmd.OutOrStdout())
	},
}

// serverInfoJSON is one server in JSON output format.
type serverInfoJSON struct {
	Name        string            `json:"name"`
	Transport   string            `json:"transport"`
	Command     string            `json:"command,omitempty"`
	URL         string            `json:"url,omitempty"`
	Image       string            `json:"image,omitempty"`
	Disabled    bool              `json:"disabled"`
	Tags        []string          `json:"tags,omitempty"`
	Description string            `json:"description,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
}

func runServerList(w io.Writer) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	defs := a.registry.List()
	if serverListTag != "" {
		filtered := defs[:0]
		for _, def := range defs {
			for _, tag := range def.Tags {
				if tag == serverListTag {
					filtered = append(filtered, def)
					break
				}
			}
		}
		defs = filtered
	}

	if serverListJSON {
		out := make([]serverInfoJSON, len(defs))
		for i, def := range defs {
			out[i] = serverInfoJSON{
				Name:        def.Name,
				Transport:   def.EffectiveTransport(),
				Command:     def.Command,
				URL:         def.URL,
				Image:       def.Image,
				Disabled:    def.Disabled,
				Tags:        def.Tags,
				Description: def.Description,
				Env:         maskSecrets(def.Env, serverListShowSecrets),
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(defs) == 0 {
		fmt.Fprintln(w, "No servers registered. Add one with 'mcpsync server add'.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTRANSPORT\tLAUNCH\tTAGS\tSTATE")
	for _, def := range defs {
		state := "enabled"
		if def.Disabled {
			state = "disabled"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			def.Name,
			def.EffectiveTransport(),
			truncate(launchSummary(def), 48),
			strings.Join(def.Tags, ","),
			state)
	}
	return tw.Flush()
}
