package snapshot

import (
	"context"
	"sync"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

// MemoryStore keeps snapshots in process memory (tests, local runs)
type MemoryStore struct {
	mu         sync.RWMutex
	snapshots  map[string]*contracts.Snapshot
	byChecksum map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots:  make(map[string]*contracts.Snapshot),
		byChecksum: make(map[string]string),
	}
}

// Add implements Store
func (m *MemoryStore) Add(ctx context.Context, snap contracts.Snapshot, id, note string) (string, error) {
	prepared, err := prepare(snap, id, note)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byChecksum[prepared.Checksum]; ok {
		m.snapshots[existing].Deleted = false
		return existing, nil
	}
	if _, taken := m.snapshots[id]; taken {
		return "", ErrIDConflict
	}

	m.snapshots[id] = &prepared
	m.byChecksum[prepared.Checksum] = id
	return id, nil
}

// List implements Store
func (m *MemoryStore) List(ctx context.Context) ([]contracts.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]contracts.Snapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		if s.Deleted {
			continue
		}
		out = append(out, cloneSnapshot(*s))
	}
	sortByID(out)
	return out, nil
}

// Get implements Store
func (m *MemoryStore) Get(ctx context.Context, id string) (*contracts.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.snapshots[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneSnapshot(*s)
	return &out, nil
}

// SetActive implements Store
func (m *MemoryStore) SetActive(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.snapshots[id]
	if !ok || target.Deleted {
		return ErrNotFound
	}
	for _, s := range m.snapshots {
		s.Active = false
	}
	target.Active = true
	return nil
}

// GetActive implements Store
func (m *MemoryStore) GetActive(ctx context.Context) (*contracts.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.snapshots {
		if s.Active && !s.Deleted {
			out := cloneSnapshot(*s)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// SoftDelete implements Store
func (m *MemoryStore) SoftDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.snapshots[id]
	if !ok {
		return ErrNotFound
	}
	s.Active = false
	s.Deleted = true
	return nil
}
