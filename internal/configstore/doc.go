// Package configstore reads and writes the server-map field of a single
// target configuration file.
//
// A Store only ever touches entries under the target's server-map key:
// every sibling field in the document survives load/save round trips.
// Formats differ per target (JSON vs TOML, top-level vs nested server
// maps, Windows command wrapping) and are described by a Format value, so
// the deployment engine never branches on platform specifics.
package configstore
