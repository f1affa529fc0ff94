package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps the last snapshot in process memory. Snapshots are
// stored encoded so later changes to the saved value do not leak in.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the last saved snapshot
func (m *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, ErrNoSnapshot
	}
	snap := NewSnapshot()
	if err := json.Unmarshal(m.data, snap); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return snap, nil
}

// Save encodes and keeps snap
func (m *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}
