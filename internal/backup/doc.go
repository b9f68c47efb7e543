// Package backup stores point-in-time snapshots of target config files
// and restores them by id.
//
// A snapshot records the raw prior bytes of one file (or an explicit
// absent sentinel when the file did not exist) plus a content hash for
// integrity verification. Restore is idempotent. Pruning never removes a
// target's most recent snapshot, which guarantees rollback availability
// for the immediately preceding operation.
package backup
