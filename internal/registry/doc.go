// Package registry implements the central store of MCP server definitions.
//
// The registry owns the canonical mapping of server name to definition and
// is the desired-state side of every deployment diff. Mutations are
// persisted with an atomic whole-file rewrite before they return success.
package registry
