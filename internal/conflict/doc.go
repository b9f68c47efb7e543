// Package conflict detects problems with proposed deployments before any
// target file is touched.
//
// Rules run in fixed precedence order and the first match per
// (server, target) pair wins: invalid configuration, version mismatch,
// resource collision, missing dependency. Only warning-level version
// mismatches are auto-resolvable; critical conflicts always require
// explicit confirmation.
package conflict
