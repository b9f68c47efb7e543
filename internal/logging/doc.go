// Package logging provides structured logging for mcpsync built on log/slog.
//
// It offers a TTY-optimized text handler with color support, a JSON handler
// for machine consumption, and test helpers. Attribute values whose keys
// look secret-bearing (key, token, secret, password) are masked before they
// reach the output writer.
package logging
