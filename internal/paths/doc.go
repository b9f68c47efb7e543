// Package paths centralizes filesystem path resolution for mcpsync.
//
// It knows where each supported platform keeps its MCP config file on each
// operating system, and where mcpsync keeps its own registry, preferences,
// snapshots, and transaction journal (XDG base directories).
package paths
