// Package txn groups config file writes into atomic units.
//
// A transaction moves Open → (snapshotting → writing) → Committed or
// RolledBack. Commit snapshots every staged target in lexicographic key
// order under per-target advisory locks, applies the writes, and on any
// write failure restores the already-applied targets from their
// snapshots; targets not yet written are left untouched. A persisted
// journal of finished transactions supports rolling back a committed
// transaction after the fact.
package txn
