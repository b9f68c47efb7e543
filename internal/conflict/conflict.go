package conflict

import (
	"fmt"
	"strings"

	"github.com/thoreinstein/mcpsync/internal/server"
)

// Kind classifies a conflict.
type Kind string

const (
	// KindConfigurationInvalid means the server definition itself fails
	// structural validation. Always critical; blocks every target.
	KindConfigurationInvalid Kind = "ConfigurationInvalid"

	// KindVersionMismatch means the target already holds an entry for the
	// server with a different launch than the registry's definition.
	KindVersionMismatch Kind = "VersionMismatch"

	// KindResourceCollision means two different servers in the same batch
	// would bind the same local resource on the same target.
	KindResourceCollision Kind = "ResourceCollision"

	// KindDependencyMissing means the server's command does not resolve
	// on this machine. Only checked when a resolution hook is supplied.
	KindDependencyMissing Kind = "DependencyMissing"
)

// Severity grades a conflict.
type Severity string

const (
	// SeverityWarning conflicts can be deployed over, and version
	// mismatches at this severity are auto-resolvable.
	SeverityWarning Severity = "warning"

	// SeverityCritical conflicts block the batch unless forced and are
	// never silently applied.
	SeverityCritical Severity = "critical"
)

// Pair is one proposed (server, target) deployment.
type Pair struct {
	Server string
	Target string
}

// Conflict is one detected problem with a proposed pair.
type Conflict struct {
	Kind     Kind
	Severity Severity
	Server   string
	Target   string

	// Description is a human-readable explanation.
	Description string

	// AutoResolvable is true only for warning-level version mismatches,
	// which resolve by overwriting with the registry's definition.
	AutoResolvable bool
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s/%s %s→%s: %s", c.Kind, c.Severity, c.Server, c.Target, c.Description)
}

// Detector compares proposed deployments against registry definitions and
// the live content of each target.
type Detector struct {
	// ResolveCommand, when set, reports whether a launch command resolves
	// on this machine (e.g. exec.LookPath). The detector itself never
	// shells out; leaving this nil skips dependency checks entirely.
	ResolveCommand func(command string) bool
}

// Detect runs the rules in precedence order over the proposed pairs.
// The first matching rule per pair wins; conflicts are not cumulative.
//
// defs maps server names to their registry definitions; live maps target
// keys to the entries currently in that target's file.
func (d *Detector) Detect(pairs []Pair, defs map[string]*server.Definition, live map[string]map[string]*server.Definition) []Conflict {
	var conflicts []Conflict
	flagged := make(map[Pair]bool, len(pairs))

	flag := func(c Conflict) {
		conflicts = append(conflicts, c)
		flagged[Pair{Server: c.Server, Target: c.Target}] = true
	}

	// Rule 1: ConfigurationInvalid. A structurally invalid definition
	// blocks deployment of that server to every target in the batch.
	for _, p := range pairs {
		if flagged[p] {
			continue
		}
		def, ok := defs[p.Server]
		if !ok {
			continue
		}
		if err := def.Validate(); err != nil {
			flag(Conflict{
				Kind:        KindConfigurationInvalid,
				Severity:    SeverityCritical,
				Server:      p.Server,
				Target:      p.Target,
				Description: err.Error(),
			})
		}
	}

	// Rule 2: VersionMismatch against the target's live entry.
	for _, p := range pairs {
		if flagged[p] {
			continue
		}
		def, ok := defs[p.Server]
		if !ok {
			continue
		}
		existing, ok := live[p.Target][p.Server]
		if !ok || def.LaunchEqual(existing) {
			continue
		}

		severity := SeverityWarning
		if existing.LocallyModified() {
			severity = SeverityCritical
		}
		flag(Conflict{
			Kind:           KindVersionMismatch,
			Severity:       severity,
			Server:         p.Server,
			Target:         p.Target,
			Description:    fmt.Sprintf("target entry for %q differs from the registry definition", p.Server),
			AutoResolvable: severity == SeverityWarning,
		})
	}

	// Rule 3: ResourceCollision between batch members on the same target.
	// Both colliding pairs are flagged.
	byTarget := make(map[string][]string)
	for _, p := range pairs {
		byTarget[p.Target] = append(byTarget[p.Target], p.Server)
	}
	for targetKey, names := range byTarget {
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				a, b := defs[names[i]], defs[names[j]]
				if a == nil || b == nil || names[i] == names[j] {
					continue
				}
				ports, mounts := server.Collides(a.Claims(), b.Claims())
				if len(ports) == 0 && len(mounts) == 0 {
					continue
				}
				desc := collisionDescription(names[i], names[j], ports, mounts)
				for _, name := range []string{names[i], names[j]} {
					p := Pair{Server: name, Target: targetKey}
					if flagged[p] {
						continue
					}
					flag(Conflict{
						Kind:        KindResourceCollision,
						Severity:    SeverityCritical,
						Server:      name,
						Target:      targetKey,
						Description: desc,
					})
				}
			}
		}
	}

	// Rule 4: DependencyMissing, only with a resolution hook.
	if d.ResolveCommand != nil {
		for _, p := range pairs {
			if flagged[p] {
				continue
			}
			def, ok := defs[p.Server]
			if !ok || !def.IsLocal() || def.Command == "" {
				continue
			}
			if d.ResolveCommand(def.Command) {
				continue
			}
			flag(Conflict{
				Kind:        KindDependencyMissing,
				Severity:    SeverityWarning,
				Server:      p.Server,
				Target:      p.Target,
				Description: fmt.Sprintf("command %q not found on this machine", def.Command),
			})
		}
	}

	return conflicts
}

// HasCritical reports whether any conflict is critical.
func HasCritical(conflicts []Conflict) bool {
	for _, c := range conflicts {
		if c.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// ForPair returns the conflict flagged for a pair, if any.
func ForPair(conflicts []Conflict, p Pair) (Conflict, bool) {
	for _, c := range conflicts {
		if c.Server == p.Server && c.Target == p.Target {
			return c, true
		}
	}
	return Conflict{}, false
}

func collisionDescription(a, b string, ports, mounts []string) string {
	var parts []string
	if len(ports) > 0 {
		parts = append(parts, "port "+strings.Join(ports, ", "))
	}
	if len(mounts) > 0 {
		parts = append(parts, "mount "+strings.Join(mounts, ", "))
	}
	return fmt.Sprintf("servers %q and %q both claim %s", a, b, strings.Join(parts, " and "))
}
