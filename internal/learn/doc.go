// Package learn tracks deployment outcomes and suggests target sets
// based on past usage. Patterns are scored by frequency, success rate,
// and recency; the backing store is a small JSON file flushed on every
// write.
package learn
