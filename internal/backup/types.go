package backup

import (
	"time"

	"github.com/thoreinstein/mcpsync/internal/errors"
)

// Manifest format version for forward compatibility.
const ManifestVersion = 1

// DefaultRetentionCount is the default number of snapshots to retain per
// target. The most recent snapshot is always kept regardless.
const DefaultRetentionCount = 10

// Sentinel errors for snapshot operations.
var (
	// ErrSnapshotNotFound indicates no snapshot exists for the given id.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSnapshotCorrupted indicates content integrity verification failed:
	// the stored bytes no longer match the manifest's content hash.
	ErrSnapshotCorrupted = errors.New("snapshot corrupted")
)

// Snapshot describes one saved prior state of a target file. The raw
// content lives next to the manifest in the snapshot directory; Absent
// records that the file did not exist when the snapshot was taken, in
// which case restore deletes the file.
type Snapshot struct {
	// Version is the manifest format version.
	Version int `json:"version"`

	// ID is the snapshot identifier (timestamp plus a random suffix).
	ID string `json:"id"`

	// TargetKey is the catalog key of the snapshotted target.
	TargetKey string `json:"target_key"`

	// OriginalPath is where the content came from and will be restored to.
	OriginalPath string `json:"original_path"`

	// ContentHash is the hex SHA-256 of the stored content. Empty when
	// Absent is true.
	ContentHash string `json:"content_hash,omitempty"`

	// Absent records that the target file did not exist.
	Absent bool `json:"absent,omitempty"`

	// CreatedAt is when the snapshot was taken.
	CreatedAt time.Time `json:"created_at"`
}
