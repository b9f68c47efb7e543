package txn

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thoreinstein/mcpsync/internal/backup"
	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/paths"
)

// State is a transaction's position in its lifecycle.
type State string

const (
	// StateOpen means the transaction accepts staged writes.
	StateOpen State = "open"

	// StateCommitted means every staged write was applied.
	StateCommitted State = "committed"

	// StateRolledBack means the transaction was undone: either a write
	// failed and applied writes were restored, or a later explicit
	// rollback restored the pre-transaction snapshots.
	StateRolledBack State = "rolled_back"
)

// Manager groups config writes into atomic units with automatic rollback.
// It owns the per-target advisory locks that serialize commits touching
// the same target, and the journal that makes committed transactions
// rollback-able after the fact.
type Manager struct {
	backups *backup.System
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	journal *journal
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithJournalPath overrides the journal file location.
func WithJournalPath(path string) ManagerOption {
	return func(m *Manager) {
		m.journal.path = path
	}
}

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a transaction manager backed by the given snapshot
// store.
func NewManager(backups *backup.System, opts ...ManagerOption) *Manager {
	m := &Manager{
		backups: backups,
		logger:  slog.Default(),
		locks:   make(map[string]*sync.Mutex),
		journal: &journal{path: paths.TransactionsFile()},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.journal.load()
	return m
}

// stagedWrite is one queued mutation of a single target file.
type stagedWrite struct {
	targetKey string
	path      string
	write     func() error
}

// Tx is a single transaction. Transactions are not nested and not safe
// for concurrent use; one goroutine stages and commits.
type Tx struct {
	ID      string
	manager *Manager
	state   State
	staged  []stagedWrite
}

// Begin opens a transaction.
func (m *Manager) Begin() *Tx {
	return &Tx{
		ID:      time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8],
		manager: m,
		state:   StateOpen,
	}
}

// State returns the transaction's current state.
func (t *Tx) State() State {
	return t.state
}

// Stage queues a write against a target. The write function must mutate
// only the file at path and must itself be atomic at the file level.
// Staging the same target twice keeps both writes in staging order.
func (t *Tx) Stage(targetKey, path string, write func() error) error {
	if t.state != StateOpen {
		return errors.Newf("cannot stage write on %s transaction", t.state)
	}
	t.staged = append(t.staged, stagedWrite{targetKey: targetKey, path: path, write: write})
	return nil
}

// Commit snapshots every staged target in lexicographic key order, then
// applies all staged writes. If any write fails, every already-applied
// write is rolled back via its snapshot and the whole commit reports
// ErrTransactionIO: the net effect is all-or-nothing across the targets
// this transaction touches.
//
// A context cancelled before Commit starts aborts with no side effects.
// Once Commit has begun, cancellation is not honored: the transaction
// runs to completion (commit or rollback) to preserve atomicity.
func (t *Tx) Commit(ctx context.Context) error {
	if t.state != StateOpen {
		return errors.Newf("cannot commit %s transaction", t.state)
	}
	if err := ctx.Err(); err != nil {
		t.state = StateRolledBack
		return errors.Wrap(err, "transaction cancelled before commit")
	}
	if len(t.staged) == 0 {
		t.state = StateCommitted
		return nil
	}

	// Deterministic commit order: lexicographic by target key. Concurrent
	// transactions acquire target locks in the same order, which rules
	// out lock-order inversions.
	sort.SliceStable(t.staged, func(i, j int) bool {
		return t.staged[i].targetKey < t.staged[j].targetKey
	})

	keys := t.targetKeys()
	t.manager.lockTargets(keys)
	defer t.manager.unlockTargets(keys)

	// Snapshot phase: one snapshot per distinct target, before any write.
	// A failure here aborts with no side effects.
	snapshots := make(map[string]*backup.Snapshot, len(keys))
	for _, w := range t.staged {
		if _, done := snapshots[w.targetKey]; done {
			continue
		}
		snap, err := t.manager.backups.Take(w.targetKey, w.path)
		if err != nil {
			t.state = StateRolledBack
			return errors.Wrapf(errors.ErrTransactionIO, "snapshotting %s: %v", w.targetKey, err)
		}
		snapshots[w.targetKey] = snap
	}

	// Write phase.
	for i, w := range t.staged {
		if err := w.write(); err != nil {
			restoreErr := t.restoreApplied(snapshots, i)
			t.state = StateRolledBack
			t.manager.journal.record(t, snapshots)

			commitErr := errors.Wrapf(errors.ErrTransactionIO, "writing %s: %v", w.targetKey, err)
			if restoreErr != nil {
				return errors.Join(commitErr, restoreErr)
			}
			return commitErr
		}
	}

	t.state = StateCommitted
	t.manager.journal.record(t, snapshots)

	// Retention pruning after a successful commit; the snapshot just taken
	// is the newest and is always kept.
	for _, key := range keys {
		if err := t.manager.backups.Prune(key); err != nil {
			t.manager.logger.Warn("snapshot pruning failed", "target", key, "error", err)
		}
	}
	return nil
}

// restoreApplied rolls back the writes at indexes < failedIdx, newest
// first. Each distinct target is restored once.
func (t *Tx) restoreApplied(snapshots map[string]*backup.Snapshot, failedIdx int) error {
	var errs []error
	restored := make(map[string]bool, failedIdx)

	for i := failedIdx - 1; i >= 0; i-- {
		key := t.staged[i].targetKey
		if restored[key] {
			continue
		}
		restored[key] = true

		snap := snapshots[key]
		if err := t.manager.backups.Restore(snap.ID); err != nil {
			t.manager.logger.Error("rollback restore failed; target state is indeterminate",
				"target", key, "snapshot", snap.ID, "error", err)
			errs = append(errs, errors.Wrapf(errors.ErrSnapshotRestoreFailed, "target %s: %v", key, err))
		}
	}
	return errors.Join(errs...)
}

// targetKeys returns the distinct staged target keys in commit order.
func (t *Tx) targetKeys() []string {
	var keys []string
	seen := make(map[string]bool, len(t.staged))
	for _, w := range t.staged {
		if !seen[w.targetKey] {
			seen[w.targetKey] = true
			keys = append(keys, w.targetKey)
		}
	}
	return keys
}

// lockTargets acquires the advisory lock of every key, in the given
// (sorted) order. At most one transaction is in flight per target key.
func (m *Manager) lockTargets(keys []string) {
	for _, key := range keys {
		m.targetLock(key).Lock()
	}
}

func (m *Manager) unlockTargets(keys []string) {
	// Release in reverse acquisition order.
	for i := len(keys) - 1; i >= 0; i-- {
		m.targetLock(keys[i]).Unlock()
	}
}

func (m *Manager) targetLock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}
