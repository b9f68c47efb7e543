// Package server defines the canonical MCP server definition shared by the
// registry, the conflict detector, and the deployment engine.
//
// A Definition survives JSON round trips with unknown fields preserved, so
// registry documents written by newer versions are not stripped by older
// ones. Validation, secret placeholder handling, and local resource claim
// extraction live here because they are properties of the definition itself,
// not of any particular target.
package server
