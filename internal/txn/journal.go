package txn

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/thoreinstein/mcpsync/internal/backup"
	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/pkg/fileutil"
)

// maxJournalEntries bounds the persisted transaction history.
const maxJournalEntries = 20

// Record is one journal entry describing a finished transaction and the
// snapshots that can undo it.
type Record struct {
	ID        string         `json:"id"`
	State     State          `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
	Targets   []TargetRecord `json:"targets"`
}

// TargetRecord pairs a touched target with its pre-transaction snapshot.
type TargetRecord struct {
	Key        string `json:"key"`
	SnapshotID string `json:"snapshot_id"`
}

// journal persists finished transactions so a committed transaction can
// still be rolled back later. Journal failures never fail a commit; the
// write itself already succeeded.
type journal struct {
	mu      sync.Mutex
	path    string
	records []Record
}

func (j *journal) load() {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if err != nil {
		j.records = nil
		return
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		j.records = nil
		return
	}
	j.records = records
}

func (j *journal) record(t *Tx, snapshots map[string]*backup.Snapshot) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rec := Record{
		ID:        t.ID,
		State:     t.state,
		CreatedAt: time.Now().UTC(),
	}
	for _, key := range t.targetKeys() {
		if snap, ok := snapshots[key]; ok {
			rec.Targets = append(rec.Targets, TargetRecord{Key: key, SnapshotID: snap.ID})
		}
	}

	j.records = append(j.records, rec)
	if len(j.records) > maxJournalEntries {
		j.records = j.records[len(j.records)-maxJournalEntries:]
	}
	j.save()
}

func (j *journal) save() {
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return
	}
	_ = fileutil.AtomicWriteJSON(j.path, j.records)
}

func (j *journal) find(id string) (*Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if id == "" {
		// Latest committed transaction.
		for i := len(j.records) - 1; i >= 0; i-- {
			if j.records[i].State == StateCommitted {
				rec := j.records[i]
				return &rec, nil
			}
		}
		return nil, errors.Wrap(errors.ErrNotFound, "no committed transaction to roll back")
	}

	for i := len(j.records) - 1; i >= 0; i-- {
		if j.records[i].ID == id {
			rec := j.records[i]
			return &rec, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "transaction %q", id)
}

func (j *journal) markRolledBack(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i := range j.records {
		if j.records[i].ID == id {
			j.records[i].State = StateRolledBack
		}
	}
	j.save()
}

// History returns the journal's records, newest first.
func (m *Manager) History() []Record {
	m.journal.mu.Lock()
	defer m.journal.mu.Unlock()

	out := slices.Clone(m.journal.records)
	slices.Reverse(out)
	return out
}

// Rollback restores every target touched by a journaled transaction to
// its pre-transaction snapshot. An empty id rolls back the most recent
// committed transaction. Restore failures are surfaced per target and
// never swallowed.
func (m *Manager) Rollback(id string) (*Record, error) {
	rec, err := m.journal.find(id)
	if err != nil {
		return nil, err
	}
	if rec.State != StateCommitted {
		return nil, errors.Newf("transaction %s is %s, not committed", rec.ID, rec.State)
	}

	keys := make([]string, 0, len(rec.Targets))
	for _, tr := range rec.Targets {
		keys = append(keys, tr.Key)
	}
	slices.Sort(keys)
	m.lockTargets(keys)
	defer m.unlockTargets(keys)

	var errs []error
	for i := len(rec.Targets) - 1; i >= 0; i-- {
		tr := rec.Targets[i]
		if err := m.backups.Restore(tr.SnapshotID); err != nil {
			m.logger.Error("rollback restore failed; target state is indeterminate",
				"target", tr.Key, "snapshot", tr.SnapshotID, "error", err)
			errs = append(errs, errors.Wrapf(errors.ErrSnapshotRestoreFailed, "target %s: %v", tr.Key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return rec, err
	}

	m.journal.markRolledBack(rec.ID)
	rec.State = StateRolledBack
	return rec, nil
}
