package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/paths"
	"github.com/thoreinstein/mcpsync/pkg/fileutil"
)

// System stores and restores point-in-time snapshots of target config
// files. Every mutating operation on a target takes a snapshot first, so
// the immediately preceding state is always recoverable.
type System struct {
	rootDir        string
	retentionCount int
}

// Option configures a System.
type Option func(*System)

// WithRootDir sets the snapshot storage directory.
func WithRootDir(dir string) Option {
	return func(s *System) {
		s.rootDir = dir
	}
}

// WithRetentionCount sets the number of snapshots retained per target.
func WithRetentionCount(n int) Option {
	return func(s *System) {
		if n > 0 {
			s.retentionCount = n
		}
	}
}

// NewSystem creates a snapshot store rooted at dir (or the default data
// directory).
func NewSystem(opts ...Option) *System {
	s := &System{
		rootDir:        paths.SnapshotDir(),
		retentionCount: DefaultRetentionCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Take snapshots the current bytes of path for targetKey and returns the
// snapshot. A missing file is recorded with the absent sentinel so restore
// can delete the file again.
func (s *System) Take(targetKey, path string) (*Snapshot, error) {
	if targetKey == "" {
		return nil, errors.New("target key is required")
	}

	snap := &Snapshot{
		Version:      ManifestVersion,
		ID:           newSnapshotID(),
		TargetKey:    targetKey,
		OriginalPath: path,
		CreatedAt:    time.Now().UTC(),
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		snap.Absent = true
	} else {
		sum := sha256.Sum256(content)
		snap.ContentHash = hex.EncodeToString(sum[:])
	}

	dir := s.snapshotDir(targetKey, snap.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating snapshot directory")
	}

	if !snap.Absent {
		if err := fileutil.AtomicWriteFile(filepath.Join(dir, "content"), content, 0o600); err != nil {
			os.RemoveAll(dir)
			return nil, errors.Wrap(err, "storing snapshot content")
		}
	}
	if err := fileutil.AtomicWriteJSON(filepath.Join(dir, "manifest.json"), snap); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing snapshot manifest")
	}

	return snap, nil
}

// Restore writes the snapshot's bytes back to their original location
// verbatim, or deletes the file if the absent sentinel was stored.
// Restoring the same snapshot twice produces identical final state.
func (s *System) Restore(id string) error {
	snap, err := s.Get(id)
	if err != nil {
		return err
	}

	if snap.Absent {
		if err := os.Remove(snap.OriginalPath); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(errors.ErrSnapshotRestoreFailed, "removing %s: %v", snap.OriginalPath, err)
		}
		return nil
	}

	content, err := os.ReadFile(filepath.Join(s.snapshotDir(snap.TargetKey, id), "content"))
	if err != nil {
		return errors.Wrapf(errors.ErrSnapshotRestoreFailed, "reading snapshot %s: %v", id, err)
	}

	// Verify integrity before touching the target.
	sum := sha256.Sum256(content)
	if hex.EncodeToString(sum[:]) != snap.ContentHash {
		return errors.Wrapf(ErrSnapshotCorrupted, "snapshot %s content hash mismatch", id)
	}

	if err := os.MkdirAll(filepath.Dir(snap.OriginalPath), 0o755); err != nil {
		return errors.Wrapf(errors.ErrSnapshotRestoreFailed, "creating directory for %s: %v", snap.OriginalPath, err)
	}
	if err := fileutil.AtomicWriteFile(snap.OriginalPath, content, 0o644); err != nil {
		return errors.Wrapf(errors.ErrSnapshotRestoreFailed, "restoring %s: %v", snap.OriginalPath, err)
	}

	return nil
}

// Get returns the manifest for a snapshot id.
func (s *System) Get(id string) (*Snapshot, error) {
	if id == "" {
		return nil, errors.Wrap(ErrSnapshotNotFound, "empty snapshot id")
	}

	targetDirs, err := os.ReadDir(s.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrSnapshotNotFound, "snapshot %s", id)
		}
		return nil, errors.Wrap(err, "reading snapshot root")
	}

	for _, td := range targetDirs {
		if !td.IsDir() {
			continue
		}
		manifestPath := filepath.Join(s.rootDir, td.Name(), id, "manifest.json")
		snap, err := readManifest(manifestPath)
		if err != nil {
			continue
		}
		snap.ID = id
		return snap, nil
	}
	return nil, errors.Wrapf(ErrSnapshotNotFound, "snapshot %s", id)
}

// List returns all snapshots for a target, newest first.
func (s *System) List(targetKey string) ([]Snapshot, error) {
	dir := filepath.Join(s.rootDir, keyDir(targetKey))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading snapshot directory")
	}

	snaps := make([]Snapshot, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		snap, err := readManifest(filepath.Join(dir, e.Name(), "manifest.json"))
		if err != nil {
			// Skip unreadable snapshot directories
			continue
		}
		snap.ID = e.Name()
		snaps = append(snaps, *snap)
	}

	slices.SortFunc(snaps, func(a, b Snapshot) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return snaps, nil
}

// Targets returns every target key that has at least one snapshot.
func (s *System) Targets() ([]string, error) {
	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading snapshot root")
	}

	var keys []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		snaps, err := s.List(e.Name())
		if err != nil || len(snaps) == 0 {
			continue
		}
		keys = append(keys, snaps[0].TargetKey)
	}
	slices.Sort(keys)
	return keys, nil
}

// Prune removes old snapshots for a target beyond the retention count.
// The most recent snapshot is never pruned, regardless of the count, so
// rollback of the immediately preceding operation stays possible.
func (s *System) Prune(targetKey string) error {
	keep := s.retentionCount
	if keep < 1 {
		keep = 1
	}

	snaps, err := s.List(targetKey)
	if err != nil {
		return err
	}

	// Already sorted newest first; delete everything beyond keep.
	for i := keep; i < len(snaps); i++ {
		dir := s.snapshotDir(targetKey, snaps[i].ID)
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, "removing snapshot %s", snaps[i].ID)
		}
	}
	return nil
}

func (s *System) snapshotDir(targetKey, id string) string {
	return filepath.Join(s.rootDir, keyDir(targetKey), id)
}

func readManifest(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	return &snap, nil
}

// newSnapshotID combines a sortable timestamp with a random suffix so two
// snapshots in the same second never collide.
func newSnapshotID() string {
	return time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
}

// keyDir maps a target key to a filesystem-safe directory name. Project
// keys are absolute paths; separators and colons are flattened.
func keyDir(targetKey string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	return replacer.Replace(targetKey)
}
