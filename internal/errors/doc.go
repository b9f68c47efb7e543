// Package errors provides error handling conventions for mcpsync.
//
// It defines sentinel errors for the engine's failure taxonomy, re-exports
// the cockroachdb/errors constructors used throughout the codebase, and an
// ExitError type carrying CLI exit codes.
//
// Sentinel errors allow callers to check for specific conditions:
//
//	if errors.Is(err, mcperrors.ErrTargetUnavailable) {
//	    // skip this target with a reported reason
//	}
//
// Exit codes follow standard Unix conventions: ExitSuccess (0),
// ExitUser (1) for invalid input or configuration, and ExitSystem (2)
// for I/O or permission failures.
package errors
