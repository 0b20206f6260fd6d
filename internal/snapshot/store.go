package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

var (
	// ErrNotFound is returned for unknown ids (and for deleted ids where a live snapshot is required)
	ErrNotFound = errors.New("snapshot not found")

	// ErrIDConflict is returned when an id is already taken by different content
	ErrIDConflict = errors.New("snapshot id already holds different content")

	// ErrDuplicateChecksum is returned by AddStrict when the content already exists under another id
	ErrDuplicateChecksum = errors.New("duplicate checksum")
)

// Store is the versioned, content-addressed record of monthly snapshots
// ⭐ SSOT: S4 스냅샷 저장소 계약 (모든 백엔드가 동일하게 동작해야 함)
type Store interface {
	// Add inserts snap under id. If any snapshot (deleted or not) already has
	// the same checksum it is undeleted and its existing id is returned.
	Add(ctx context.Context, snap contracts.Snapshot, id, note string) (string, error)

	// List returns non-deleted snapshots ordered by id ascending
	List(ctx context.Context) ([]contracts.Snapshot, error)

	// Get returns a snapshot by id, soft-deleted ones included
	Get(ctx context.Context, id string) (*contracts.Snapshot, error)

	// SetActive atomically makes id the only active snapshot
	SetActive(ctx context.Context, id string) error

	// GetActive returns the active, non-deleted snapshot
	GetActive(ctx context.Context) (*contracts.Snapshot, error)

	// SoftDelete sets active=false, deleted=true
	SoftDelete(ctx context.Context, id string) error
}

// AddStrict adds snap and fails with ErrDuplicateChecksum when the store
// resolved the content to a different id than requested.
func AddStrict(ctx context.Context, s Store, snap contracts.Snapshot, id, note string) (string, error) {
	got, err := s.Add(ctx, snap, id, note)
	if err != nil {
		return "", err
	}
	if got != id {
		return got, fmt.Errorf("%w: content already stored as %s", ErrDuplicateChecksum, got)
	}
	return got, nil
}

// Summaries lists row-less views of the non-deleted snapshots
func Summaries(ctx context.Context, s Store) ([]contracts.SnapshotSummary, error) {
	snaps, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]contracts.SnapshotSummary, 0, len(snaps))
	for i := range snaps {
		out = append(out, snaps[i].Summary())
	}
	return out, nil
}

// prepare normalises a snapshot before insertion
func prepare(snap contracts.Snapshot, id, note string) (contracts.Snapshot, error) {
	if id == "" {
		return snap, fmt.Errorf("snapshot id is required")
	}
	if snap.Checksum == "" {
		return snap, fmt.Errorf("snapshot checksum is required")
	}

	out := cloneSnapshot(snap)
	out.ID = id
	if note != "" {
		out.Note = note
	}
	if out.Uploaded.IsZero() {
		out.Uploaded = time.Now().UTC()
	}
	out.Active = false
	out.Deleted = false
	return out, nil
}

func cloneSnapshot(s contracts.Snapshot) contracts.Snapshot {
	out := s
	out.Rows = make([]contracts.Fund, len(s.Rows))
	for i, f := range s.Rows {
		out.Rows[i] = f.Clone()
	}
	return out
}

func sortByID(snaps []contracts.Snapshot) {
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })
}
