package core

import "sync"

// DirectoryStore persists the account directory as a whole snapshot.
// Load returns an empty slice (not an error) when nothing has been saved
// yet. Save replaces the entire stored collection.
type DirectoryStore interface {
	Load() ([]*Account, error)
	Save(accounts []*Account) error
}

// MemoryStore is a DirectoryStore that keeps the snapshot in memory.
// Useful for tests and throwaway environments.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts []*Account
}

var _ DirectoryStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() ([]*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a.Clone())
	}
	return out, nil
}

func (m *MemoryStore) Save(accounts []*Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]*Account, 0, len(accounts))
	for _, a := range accounts {
		snapshot = append(snapshot, a.Clone())
	}
	m.accounts = snapshot
	return nil
}
