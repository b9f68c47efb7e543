package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpsync/internal/engine"
	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/server"
)

var (
	statusOK   = color.New(color.FgGreen)
	statusWarn = color.New(color.FgYellow)
	statusBad  = color.New(color.FgRed)
	dim        = color.New(color.Faint)
)

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// parseKeyValueSlice parses KEY=VALUE strings from a repeatable flag.
func parseKeyValueSlice(entries []string, flagName string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, errors.Newf("invalid %s value %q: expected KEY=VALUE", flagName, entry)
		}
		out[key] = value
	}
	return out, nil
}

// maskSecrets returns env with secret-looking values masked, unless
// reveal is set.
func maskSecrets(env map[string]string, reveal bool) map[string]string {
	if reveal || len(env) == 0 {
		return env
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		if server.IsSecretKey(k) && !server.IsSecretRef(v) {
			out[k] = "********"
		} else {
			out[k] = v
		}
	}
	return out
}

// launchSummary renders a definition's launch in one column.
func launchSummary(def *server.Definition) string {
	switch def.EffectiveTransport() {
	case server.TransportStdio:
		return strings.TrimSpace(def.Command + " " + strings.Join(def.Args, " "))
	case server.TransportContainer:
		return def.Image
	default:
		return def.URL
	}
}

// printBatch renders a batch outcome per pair and returns an error when
// any pair failed, so the process exits non-zero.
func printBatch(w io.Writer, batch *engine.BatchResult) error {
	failed := 0
	for _, r := range batch.Results {
		switch r.Status {
		case engine.StatusDeployed, engine.StatusRemoved:
			fmt.Fprintf(w, "%s %s -> %s\n", statusOK.Sprint("✓"), r.Server, r.Target)
		case engine.StatusSkipped:
			fmt.Fprintf(w, "%s %s -> %s (%s)\n", dim.Sprint("-"), r.Server, r.Target, r.Reason)
		case engine.StatusFailed:
			failed++
			fmt.Fprintf(w, "%s %s -> %s: %v\n", statusBad.Sprint("✗"), r.Server, r.Target, r.Err)
		}
	}
	if batch.TxID != "" {
		fmt.Fprintf(w, "transaction %s (rollback with 'mcpsync rollback %s')\n", batch.TxID, batch.TxID)
	}
	if failed > 0 {
		return errors.Newf("%d of %d operations failed", failed, len(batch.Results))
	}
	return nil
}
