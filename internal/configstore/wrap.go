package configstore

import (
	"github.com/thoreinstein/mcpsync/internal/server"
)

// CommandWrapper adapts a stdio launch command to a target host's shell
// conventions. Wrapping happens on write and is reversed on read so that
// live entries compare cleanly against registry definitions.
//
// This keeps platform quirks out of the engine: the engine always sees
// canonical definitions, and each store applies its own wrapper.
type CommandWrapper interface {
	Wrap(def *server.Definition) *server.Definition
	Unwrap(def *server.Definition) *server.Definition
}

// WindowsCommandWrapper wraps stdio commands in "cmd /c" so npx-style
// launchers resolve on Windows.
type WindowsCommandWrapper struct{}

// Wrap returns a copy with the command routed through cmd /c.
// Non-stdio definitions and already-wrapped commands pass through.
func (WindowsCommandWrapper) Wrap(def *server.Definition) *server.Definition {
	if !def.IsLocal() || def.Command == "" || def.Command == "cmd" {
		return def
	}

	out := def.Clone()
	out.Args = append([]string{"/c", def.Command}, def.Args...)
	out.Command = "cmd"
	return out
}

// Unwrap reverses Wrap. Definitions not wrapped by Wrap pass through.
func (WindowsCommandWrapper) Unwrap(def *server.Definition) *server.Definition {
	if def.Command != "cmd" || len(def.Args) < 2 || def.Args[0] != "/c" {
		return def
	}

	out := def.Clone()
	out.Command = def.Args[1]
	out.Args = append([]string(nil), def.Args[2:]...)
	return out
}
